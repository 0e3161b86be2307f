package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"qrlink-backend/internal/domains/qrcode"
	"qrlink-backend/internal/domains/qrcode/model"
	"qrlink-backend/internal/domains/qrcode/render"
	"qrlink-backend/internal/infrastructure/qrencoder"
)

func newQRService() qrcode.Service {
	return NewQRService(render.NewRenderer(qrencoder.NewEncoder(nil)), "https://qr.example.com")
}

func TestQRService_Render(t *testing.T) {
	svc := newQRService()
	ctx := context.Background()

	tests := []struct {
		name        string
		format      string
		size        int
		contentType string
		expectedErr error
	}{
		{name: "default format is svg", contentType: "image/svg+xml"},
		{name: "png", format: "png", size: 150, contentType: "image/png"},
		{name: "bad format", format: "webp", expectedErr: model.ErrInvalidFormat},
		{name: "too small", format: "svg", size: 10, expectedErr: model.ErrInvalidSize},
		{name: "too big", format: "png", size: 5000, expectedErr: model.ErrInvalidSize},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, ct, err := svc.Render(ctx, model.Default(), "https://qr.example.com/r/abc123", tt.format, tt.size)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.contentType, ct)
			assert.NotEmpty(t, out)
		})
	}
}

func TestQRService_Preview(t *testing.T) {
	svc := newQRService()
	ctx := context.Background()

	t.Run("without slug", func(t *testing.T) {
		out, ct, err := svc.Preview(ctx, qrcode.PreviewRequest{Style: model.Default().WithGradient("#ff0000", "#0000ff")}, "", 0)
		require.NoError(t, err)
		assert.Equal(t, "image/svg+xml", ct)
		assert.Contains(t, string(out), "qr-gradient")
	})

	t.Run("custom slug is normalized", func(t *testing.T) {
		_, _, err := svc.Preview(ctx, qrcode.PreviewRequest{Slug: "My Promo"}, "svg", 0)
		assert.NoError(t, err)
	})

	t.Run("invalid slug", func(t *testing.T) {
		_, _, err := svc.Preview(ctx, qrcode.PreviewRequest{Slug: "ab"}, "svg", 0)
		assert.ErrorIs(t, err, model.ErrInvalidSlug)
	})

	t.Run("invalid style", func(t *testing.T) {
		_, _, err := svc.Preview(ctx, qrcode.PreviewRequest{Style: model.Default().WithSolidColor("black")}, "svg", 0)
		assert.ErrorIs(t, err, model.ErrInvalidStyle)
	})
}
