package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/yungbote/lendtrack-backend/internal/platform/ctxutil"
)

// AttachRequestContext tags every request with a request id, honoring one
// supplied by the caller.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		td := &ctxutil.TraceData{
			TraceID:   uuid.NewString(),
			RequestID: requestID,
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}
