package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"qrlink-backend/internal/domains/link"
)

// RedirectHandler phục vụ GET /r/:slug (public, không auth)
type RedirectHandler struct {
	resolver link.Resolver
}

func NewRedirectHandler(resolver link.Resolver) *RedirectHandler {
	return &RedirectHandler{resolver: resolver}
}

// Redirect: hit => 302 rồi mới ghi nhận scan; mọi lỗi => 404 cố định
func (h *RedirectHandler) Redirect(c *gin.Context) {
	slug := c.Param("slug")

	res, err := h.resolver.Resolve(c.Request.Context(), slug)
	if err != nil {
		if !errors.Is(err, link.ErrLinkNotFound) {
			// lỗi hạ tầng chỉ log, client vẫn nhận 404
			log.Error().
				Err(err).
				Str("request_id", c.GetString("request_id")).
				Str("slug", slug).
				Msg("Failed to resolve slug")
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Link not found"})
		return
	}

	c.Redirect(http.StatusFound, res.Destination)

	log.Debug().
		Str("slug", slug).
		Str("link_id", res.LinkID.String()).
		Str("ip", c.GetString("client_ip")).
		Msg("Redirected")

	h.resolver.RecordScan(c.Request.Context(), res.LinkID, res.ObservedScans)
}
