package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one entry per request, including errors attached with c.Error
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"status":   c.Writer.Status(),
			"latency":  time.Since(start).String(),
			"clientIP": c.ClientIP(),
		}
		if userID, ok := c.Get(ContextUserID); ok {
			fields["user_id"] = userID
		}
		entry := logger.WithFields(fields)
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch status := c.Writer.Status(); {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Info("request rejected")
		default:
			entry.Debug("request served")
		}
	}
}
