package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"qrlink-backend/internal/domains/qrcode/model"
	"qrlink-backend/internal/shared/response"
	"qrlink-backend/pkg/logger"
)

func handleError(c *gin.Context, err error) {
	status := model.GetHTTPStatusCode(err)
	code, message := model.GetErrorCode(err)

	detail := gin.H{"code": code}
	if status < http.StatusInternalServerError {
		detail["details"] = err.Error()
	} else {
		logger.Error(message, err)
	}

	response.Error(c, status, message, detail)
}
