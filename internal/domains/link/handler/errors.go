package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qrlink-backend/internal/domains/link"
	"qrlink-backend/internal/shared/response"
	"qrlink-backend/pkg/logger"
)

// handleError map domain error sang HTTP response
// 4xx trả kèm chi tiết validate, 5xx chỉ trả code
func handleError(c *gin.Context, err error) {
	status := link.GetHTTPStatusCode(err)
	code, message := link.GetErrorCode(err)

	detail := gin.H{"code": code}
	if status < http.StatusInternalServerError {
		detail["details"] = err.Error()
	} else {
		logger.Error(message, err)
	}

	response.Error(c, status, message, detail)
}
