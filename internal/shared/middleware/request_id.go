package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"qrlink-backend/pkg/logger"
)

const RequestIDHeader = "X-Request-ID"

// RequestID lấy X-Request-ID từ client (nếu có) hoặc sinh mới,
// gắn vào gin context, request context và response header
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 64 {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Request = c.Request.WithContext(logger.WithRequestID(c.Request.Context(), id))
		c.Header(RequestIDHeader, id)

		c.Next()
	}
}
