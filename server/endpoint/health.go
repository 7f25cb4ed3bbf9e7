// Package endpoint provides the operational HTTP endpoints.
package endpoint

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// CheckFunc probes one dependency; a non-nil error marks it unhealthy.
type CheckFunc func(ctx context.Context) error

// Health returns a handler that reports service health including the
// status of each registered dependency check.
func Health(serviceName string, checks map[string]CheckFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := "healthy"
		components := make(map[string]string, len(checks))

		for name, check := range checks {
			if err := check(c.Request.Context()); err != nil {
				components[name] = "unhealthy: " + err.Error()
				status = "unhealthy"
			} else {
				components[name] = "healthy"
			}
		}

		httpStatus := http.StatusOK
		if status == "unhealthy" {
			httpStatus = http.StatusServiceUnavailable
		}

		c.JSON(httpStatus, gin.H{
			"status":     status,
			"service":    serviceName,
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"components": components,
		})
	}
}
