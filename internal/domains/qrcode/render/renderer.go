package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/beevik/etree"

	"qrlink-backend/internal/domains/qrcode/model"
	"qrlink-backend/internal/infrastructure/qrencoder"
)

const (
	DefaultSize = 300
	MinSize     = 100
	MaxSize     = 2000

	DefaultFormat = qrencoder.FormatSVG

	logoImageSize  = 0.4
	logoMargin     = 5
	backgroundFill = "#ffffff"
)

// Renderer chuyển Style thành SVG document qua qrencoder
type Renderer struct {
	enc *qrencoder.Encoder
}

func NewRenderer(enc *qrencoder.Encoder) *Renderer {
	return &Renderer{enc: enc}
}

// ResolveSize: 0 => DefaultSize, ngoài [100, 2000] => ErrInvalidSize
func ResolveSize(size int) (int, error) {
	if size == 0 {
		return DefaultSize, nil
	}
	if size < MinSize || size > MaxSize {
		return 0, fmt.Errorf("%w: got %d", model.ErrInvalidSize, size)
	}
	return size, nil
}

// ResolveFormat: rỗng => svg
func ResolveFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case "":
		return DefaultFormat, nil
	case qrencoder.FormatSVG, qrencoder.FormatPNG:
		return f, nil
	default:
		return "", fmt.Errorf("%w: got %q", model.ErrInvalidFormat, format)
	}
}

func ContentType(format string) string {
	if format == qrencoder.FormatPNG {
		return "image/png"
	}
	return "image/svg+xml"
}

// Render vẽ style với payload (redirect URL) rồi áp logo shape
func (r *Renderer) Render(style model.Style, payload string, size int) (*etree.Document, error) {
	size, err := ResolveSize(size)
	if err != nil {
		return nil, err
	}
	style = style.Normalize()

	doc, err := r.enc.Encode(BuildOptions(style, payload, size))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrRenderFailed, err)
	}
	if style.HasLogo() {
		ApplyLogoShape(doc, style.EffectiveLogoShape())
	}
	return doc, nil
}

// Export serialize doc theo format (svg | png)
func (r *Renderer) Export(ctx context.Context, doc *etree.Document, format string) ([]byte, error) {
	format, err := ResolveFormat(format)
	if err != nil {
		return nil, err
	}
	out, err := r.enc.Export(ctx, doc, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrRenderFailed, err)
	}
	return out, nil
}

// BuildOptions map Style sang option của encoder
func BuildOptions(style model.Style, payload string, size int) qrencoder.Options {
	opts := qrencoder.Options{
		Data:              payload,
		Size:              size,
		ErrorCorrection:   model.ErrorCorrectionHigh,
		DotsType:          string(style.Dots),
		CornersSquareType: string(style.Corners),
		CornersDotType:    cornerDotType(style.Corners),
		Color:             fill(style.Color),
		Background:        backgroundFill,
	}

	if style.HasLogo() {
		opts.Image = style.Logo
		opts.ImageOptions = qrencoder.ImageOptions{
			ImageSize:          logoImageSize,
			Margin:             logoMargin,
			HideBackgroundDots: true,
		}
	}
	return opts
}

// cornerDotType: chấm giữa finder chỉ theo dot / extra-rounded, còn lại vuông
func cornerDotType(c model.CornerType) string {
	switch c {
	case model.CornersDot:
		return qrencoder.TypeDot
	case model.CornersExtraRounded:
		return qrencoder.TypeExtraRounded
	default:
		return qrencoder.TypeSquare
	}
}

func fill(c model.Color) qrencoder.Fill {
	switch v := c.(type) {
	case model.Gradient:
		return qrencoder.Fill{Gradient: &qrencoder.LinearGradient{
			Rotation: 0,
			Stops: []qrencoder.ColorStop{
				{Offset: 0, Color: v.From},
				{Offset: 1, Color: v.To},
			},
		}}
	case model.Solid:
		return qrencoder.Fill{Solid: v.Hex}
	default:
		return qrencoder.Fill{Solid: model.DefaultColor}
	}
}
