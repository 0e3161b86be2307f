package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"qrlink-backend/internal/domains/qrcode"
	"qrlink-backend/internal/infrastructure/storage"
	"qrlink-backend/internal/shared/middleware"
	"qrlink-backend/internal/shared/response"
)

type LogoHandler struct {
	service qrcode.LogoService
}

func NewLogoHandler(svc qrcode.LogoService) *LogoHandler {
	return &LogoHandler{service: svc}
}

// Upload - POST /api/v1/logos (multipart/form-data)
// field "file" bắt buộc, "replace" là URL logo cũ (optional)
func (h *LogoHandler) Upload(c *gin.Context) {
	owner, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request", "file is required (multipart/form-data)")
		return
	}

	src, err := file.Open()
	if err != nil {
		response.BadRequest(c, "Cannot read uploaded file")
		return
	}
	defer src.Close()

	// đọc dư 1 byte để service nhận ra file vượt giới hạn
	data, err := io.ReadAll(io.LimitReader(src, storage.DefaultMaxImageSize+1))
	if err != nil {
		response.BadRequest(c, "Cannot read uploaded file")
		return
	}

	log.Info().
		Str("user_id", owner.String()).
		Str("file_name", file.Filename).
		Int64("file_size", file.Size).
		Msg("Received logo upload")

	resp, err := h.service.Upload(c.Request.Context(), owner, qrcode.UploadLogoRequest{
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
		Replace:     c.PostForm("replace"),
	})
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Logo uploaded successfully", resp)
}

// Delete - DELETE /api/v1/logos {"url": "..."}
func (h *LogoHandler) Delete(c *gin.Context) {
	owner, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return
	}

	var req qrcode.DeleteLogoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.service.Delete(c.Request.Context(), owner, req.URL); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Logo deleted successfully", nil)
}
