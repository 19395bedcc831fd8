package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/htbacgiang/ecobacgiangBE/internal/domain/shared"
)

const (
	CorrelationIDHeader = "X-Correlation-ID"
	CorrelationIDKey    = "correlation_id"

	// maxCorrelationIDLen bounds ids copied into journal entries and outbox
	// messages.
	maxCorrelationIDLen = 128
)

// CorrelationID stamps every request with an id, reusing the caller's when it
// is usable. The id lands on the gin context, the request context and the
// response header, so postings and outbox messages carry it.
func CorrelationID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader(CorrelationIDHeader))
		if id == "" || len(id) > maxCorrelationIDLen {
			id = uuid.NewString()
		}

		c.Header(CorrelationIDHeader, id)
		c.Set(CorrelationIDKey, id)
		c.Request = c.Request.WithContext(shared.WithCorrelationID(c.Request.Context(), id))
		c.Next()
	}
}

// GetCorrelationID returns the request's correlation id, or "" outside the
// middleware.
func GetCorrelationID(c *gin.Context) string {
	return c.GetString(CorrelationIDKey)
}
