package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/internal/apierr"
	"github.com/quillpress/blog-api/internal/models"
	"github.com/quillpress/blog-api/internal/post"
	"github.com/quillpress/blog-api/internal/post/service"
	"github.com/quillpress/blog-api/pkg/middleware"
)

// queryInt parses a positive integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}

func caller(c *gin.Context) (models.Identity, bool) {
	id, ok := middleware.IdentityFrom(c)
	if !ok {
		apierr.Abort(c, apierr.Unauthenticated("Not authorized to access this route"))
	}
	return id, ok
}

func bind(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		apierr.Abort(c, apierr.BadRequest("Invalid request body", err))
		return false
	}
	return true
}

// RegisterPostRoutes mounts the post endpoints on rg. auth guards every write.
func RegisterPostRoutes(rg *gin.RouterGroup, svc service.Service, auth gin.HandlerFunc) {
	rg.GET("", func(c *gin.Context) {
		page, err := svc.List(c.Request.Context(),
			queryInt(c, "page", service.DefaultPage),
			queryInt(c, "limit", service.DefaultLimit))
		if err != nil {
			apierr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":     true,
			"count":       page.Count,
			"total":       page.Total,
			"totalPages":  page.TotalPages,
			"currentPage": page.CurrentPage,
			"data":        page.Posts,
		})
	})

	rg.GET("/:id", func(c *gin.Context) {
		v, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			apierr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": v})
	})

	rg.POST("", auth, func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		var in post.CreateInput
		if !bind(c, &in) {
			return
		}
		p, err := svc.Create(c.Request.Context(), id.ID, in)
		if err != nil {
			apierr.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": p})
	})

	rg.PUT("/:id", auth, func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		var in post.UpdateInput
		if !bind(c, &in) {
			return
		}
		p, err := svc.Update(c.Request.Context(), c.Param("id"), id, in)
		if err != nil {
			apierr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": p})
	})

	rg.DELETE("/:id", auth, func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		if err := svc.Delete(c.Request.Context(), c.Param("id"), id); err != nil {
			apierr.Abort(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "data": gin.H{}})
	})

	rg.POST("/:id/comments", auth, func(c *gin.Context) {
		id, ok := caller(c)
		if !ok {
			return
		}
		var in post.CommentInput
		if !bind(c, &in) {
			return
		}
		v, err := svc.AddComment(c.Request.Context(), c.Param("id"), id.ID, in)
		if err != nil {
			apierr.Abort(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "data": v})
	})
}
