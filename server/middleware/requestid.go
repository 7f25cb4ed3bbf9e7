package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/skillsenselab/iam/logger"
)

// HeaderRequestID is the header that carries the request correlation ID.
const HeaderRequestID = "X-Request-Id"

// RequestID ensures every request carries a correlation ID. An incoming
// ID is trusted as-is so callers can trace a request across services;
// otherwise a fresh UUID is assigned. The ID is echoed on the response
// and stored in the request context under logger.FieldRequestID, where
// the request logger picks it up.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(logger.FieldRequestID, id)
		c.Header(HeaderRequestID, id)
		c.Next()
	}
}
