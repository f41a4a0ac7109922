package middleware

import (
	"github.com/gin-gonic/gin"

	apperrors "github.com/jwalitptl/chronosync/pkg/errors"
	"github.com/jwalitptl/chronosync/pkg/httputil"
)

// ErrorHandler renders errors attached with c.Error when the handler
// chain wrote no response.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		httputil.RespondWithError(c, c.Errors.Last().Err)
	}
}

// NoRoute answers unknown paths in the API envelope.
func NoRoute(c *gin.Context) {
	httputil.RespondWithError(c, apperrors.NotFound("Route", nil))
}
