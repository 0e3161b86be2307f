package response

import (
	"github.com/gin-gonic/gin"
)

// Response là envelope chung của dashboard API
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   interface{} `json:"error,omitempty"`
}

// Success responses
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// Error: detail có thể là nil, error code (string) hoặc error
// Không truyền error của infrastructure vào đây, client chỉ nên thấy code
func Error(c *gin.Context, statusCode int, message string, detail interface{}) {
	if err, ok := detail.(error); ok {
		detail = err.Error()
	}
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Error:   detail,
	})
}

// Common error responses
func BadRequest(c *gin.Context, message string) {
	Error(c, 400, message, "BAD_REQUEST")
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 401, message, "UNAUTHORIZED")
}

func InternalServerError(c *gin.Context, message string) {
	Error(c, 500, message, "INTERNAL_SERVER_ERROR")
}
