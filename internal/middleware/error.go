package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/logger"
)

// abortWithAppError stops the chain and writes e in the API error envelope.
func abortWithAppError(c *gin.Context, e *apperrors.AppError) {
	c.AbortWithStatusJSON(e.StatusCode, gin.H{
		"error": gin.H{"code": e.Code, "message": e.Message},
	})
}

// ErrorHandler renders the last error a handler attached with c.Error.
// Anything that is not an AppError is reported as INTERNAL_ERROR.
func ErrorHandler() gin.HandlerFunc {
	log := logger.Named("http")

	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		err := c.Errors.Last().Err

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			log.Errorw("unhandled error",
				"request_id", RequestID(c),
				"method", c.Request.Method,
				"path", c.Request.URL.Path,
				"error", err,
			)
			appErr = apperrors.ErrInternalServer
		} else if appErr.Internal != nil {
			log.Errorw("request failed",
				"request_id", RequestID(c),
				"code", appErr.Code,
				"path", c.Request.URL.Path,
				"internal", appErr.Internal,
			)
		}

		abortWithAppError(c, appErr)
	}
}
