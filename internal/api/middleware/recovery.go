package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
)

// panicBody is the envelope written for a recovered panic. It mirrors the
// handler envelope without importing it.
type panicBody struct {
	Data          any       `json:"data"`
	Error         panicInfo `json:"error"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

type panicInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Recovery turns a panic in a handler into a 500 envelope. A posting that
// panicked mid-transaction has already been rolled back by the session, so
// only the response needs repair. http.ErrAbortHandler is re-raised for
// net/http to handle.
func Recovery(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			if err, ok := r.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(r)
			}

			correlationID := GetCorrelationID(c)
			logger.Error("Panic recovered",
				"error", r,
				"route", c.FullPath(),
				"method", c.Request.Method,
				"correlation_id", correlationID,
				"stack", string(debug.Stack()),
			)
			c.AbortWithStatusJSON(http.StatusInternalServerError, panicBody{
				Error:         panicInfo{Code: "INTERNAL", Message: "An internal server error occurred"},
				CorrelationID: correlationID,
			})
		}()
		c.Next()
	}
}
