package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"qrlink-backend/internal/shared/response"
)

// Recovery bắt panic trong handler, log stack và trả 500 SYS_001
// Response đã gửi header (vd redirect) thì chỉ log, không ghi thêm body
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			log.Error().
				Str("request_id", c.GetString("request_id")).
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Interface("panic", rec).
				Bytes("stack", debug.Stack()).
				Msg("Panic recovered")

			if c.Writer.Written() {
				c.Abort()
				return
			}
			response.Error(c, http.StatusInternalServerError, "Internal server error", gin.H{"code": "SYS_001"})
			c.Abort()
		}()

		c.Next()
	}
}
