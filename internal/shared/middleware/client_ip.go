package middleware

import (
	"github.com/gin-gonic/gin"

	"qrlink-backend/internal/shared/utils"
)

const clientIPKey = "client_ip"

// ClientIPMiddleware extract IP thật của client (sau proxy) vào gin context
// Logger middleware và redirect handler đọc lại qua key "client_ip"
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(clientIPKey, utils.ExtractClientIP(c))
		c.Next()
	}
}
