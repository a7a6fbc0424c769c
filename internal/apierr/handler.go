package apierr

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/blog-api/pkg/logger"
)

// Abort records err on the context and stops the handler chain. Handler renders it.
func Abort(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

// Handler renders the last error recorded on the context as {success:false, message}.
// It is the only place failures are turned into status codes.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		e := From(c.Errors.Last().Err)
		if e.Kind == KindUnexpected {
			logger.L().Error().
				Err(e.Cause).
				Str("method", c.Request.Method).
				Str("path", c.FullPath()).
				Msg("unhandled error")
		} else {
			logger.Debugf("%s %s -> %v", c.Request.Method, c.Request.URL.Path, e)
		}
		c.JSON(e.Status(), e.Body())
	}
}

// Recovery converts panics into the 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		logger.Errorf("panic serving %s %s: %v", c.Request.Method, c.Request.URL.Path, recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, Unexpected(nil).Body())
	})
}

// NoRoute answers unknown paths with the JSON envelope.
func NoRoute(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Route not found"})
}
