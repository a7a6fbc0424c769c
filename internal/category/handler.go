package category

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/internal/apierr"
)

// RegisterRoutes mounts the category endpoints on rg. auth guards creation.
func RegisterRoutes(rg *gin.RouterGroup, svc *Service, auth gin.HandlerFunc) {
	rg.GET("", func(c *gin.Context) {
		list, err := svc.List(c.Request.Context())
		if err != nil {
			apierr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "data": list})
	})

	rg.POST("", auth, func(c *gin.Context) {
		var in CreateInput
		if err := c.ShouldBindJSON(&in); err != nil {
			apierr.Abort(c, apierr.BadRequest("Invalid request body", err))
			return
		}
		cat, err := svc.Create(c.Request.Context(), in)
		if err != nil {
			apierr.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": cat})
	})
}
