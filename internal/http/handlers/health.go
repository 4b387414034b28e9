package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger is anything the health check can ping
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health reports ok when every dependency answers. Nil pingers are skipped.
func Health(deps map[string]Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		checks := gin.H{}
		for name, p := range deps {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				checks[name] = "down"
				status = http.StatusServiceUnavailable
				_ = c.Error(err)
				continue
			}
			checks[name] = "up"
		}

		body := gin.H{"status": "ok", "checks": checks}
		if status != http.StatusOK {
			body["status"] = "degraded"
		}
		c.JSON(status, body)
	}
}
