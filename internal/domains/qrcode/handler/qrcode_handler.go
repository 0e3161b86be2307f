package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"qrlink-backend/internal/domains/qrcode"
	"qrlink-backend/internal/domains/qrcode/model"
	"qrlink-backend/internal/shared/response"
)

type QRHandler struct {
	service qrcode.Service
}

func NewQRHandler(svc qrcode.Service) *QRHandler {
	return &QRHandler{service: svc}
}

// Preview - POST /api/v1/qr/preview?format=svg|png&size=N
// Render style chưa lưu, không đụng tới link nào
func (h *QRHandler) Preview(c *gin.Context) {
	var query qrcode.QRQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		handleError(c, fmt.Errorf("%w: %v", model.ErrInvalidSize, err))
		return
	}

	var req qrcode.PreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, model.ErrInvalidStyle) {
			handleError(c, err)
			return
		}
		response.BadRequest(c, "Invalid request body")
		return
	}

	data, contentType, err := h.service.Preview(c.Request.Context(), req, query.Format, query.Size)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}
