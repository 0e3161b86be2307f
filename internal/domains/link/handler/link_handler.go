package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"qrlink-backend/internal/domains/link"
	"qrlink-backend/internal/domains/qrcode/model"
	"qrlink-backend/internal/shared/middleware"
	"qrlink-backend/internal/shared/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type LinkHandler struct {
	service link.Service
}

func NewLinkHandler(svc link.Service) *LinkHandler {
	return &LinkHandler{service: svc}
}

// ════════════════════════════════════════════════════════════════
// CREATE: POST /api/v1/links
// ════════════════════════════════════════════════════════════════

func (h *LinkHandler) Create(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	var req link.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.Create(c.Request.Context(), owner, req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "Link created successfully", resp)
}

// ════════════════════════════════════════════════════════════════
// READ: GET /api/v1/links, GET /api/v1/links/:id
// ════════════════════════════════════════════════════════════════

func (h *LinkHandler) List(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	links, err := h.service.List(c.Request.Context(), owner)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Get links successfully", links)
}

func (h *LinkHandler) Get(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	resp, err := h.service.Get(c.Request.Context(), owner, id)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Get link successfully", resp)
}

// ════════════════════════════════════════════════════════════════
// UPDATE: PATCH /api/v1/links/:id  (destination only)
// ════════════════════════════════════════════════════════════════

func (h *LinkHandler) UpdateDestination(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	var req link.UpdateDestinationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.UpdateDestination(c.Request.Context(), owner, id, req)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Destination updated successfully", resp)
}

// ════════════════════════════════════════════════════════════════
// DELETE: DELETE /api/v1/links/:id
// ════════════════════════════════════════════════════════════════

func (h *LinkHandler) Delete(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), owner, id); err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "Link deleted successfully", nil)
}

// ════════════════════════════════════════════════════════════════
// STYLE: PUT /api/v1/links/:id/style
// ════════════════════════════════════════════════════════════════

func (h *LinkHandler) SaveStyle(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	var style model.Style
	if err := c.ShouldBindJSON(&style); err != nil {
		// color/style sai shape => 400 với code QR_INVALID_STYLE
		if errors.Is(err, model.ErrInvalidStyle) {
			handleError(c, err)
			return
		}
		response.BadRequest(c, "Invalid request body")
		return
	}

	resp, err := h.service.SaveStyle(c.Request.Context(), owner, id, style)
	if err != nil {
		handleError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "QR style saved successfully", resp)
}

// ════════════════════════════════════════════════════════════════
// QR: GET /api/v1/links/:id/qr?format=svg|png&size=N
// ════════════════════════════════════════════════════════════════

func (h *LinkHandler) RenderQR(c *gin.Context) {
	owner, id, ok := ownerAndID(c)
	if !ok {
		return
	}

	var req link.QRRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleError(c, fmt.Errorf("%w: %v", model.ErrInvalidSize, err))
		return
	}

	data, contentType, err := h.service.RenderQR(c.Request.Context(), owner, id, req)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, contentType, data)
}

// ════════════════════════════════════════════════════════════════
// EXPORT: GET /api/v1/links/export
// ════════════════════════════════════════════════════════════════

func (h *LinkHandler) Export(c *gin.Context) {
	owner, ok := requireOwner(c)
	if !ok {
		return
	}

	data, err := h.service.Export(c.Request.Context(), owner)
	if err != nil {
		handleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="links.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, data)
}

func requireOwner(c *gin.Context) (uuid.UUID, bool) {
	owner, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Unauthorized")
		return uuid.Nil, false
	}
	return owner, true
}

func ownerAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	owner, ok := requireOwner(c)
	if !ok {
		return uuid.Nil, uuid.Nil, false
	}
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid link ID")
		return uuid.Nil, uuid.Nil, false
	}
	return owner, id, true
}
