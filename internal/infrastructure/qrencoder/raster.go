package qrencoder

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"
	"strconv"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/beevik/etree"
	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
)

// logoPlacement: thông tin <image> lấy ra trước khi rasterize
// oksvg không hỗ trợ <image> và <clipPath> nên logo được ghép sau
type logoPlacement struct {
	href       string
	x, y, w, h float64
	radius     float64
	circle     bool
}

func (e *Encoder) exportPNG(ctx context.Context, doc *etree.Document) ([]byte, error) {
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("qrencoder: empty document")
	}
	size := int(attrFloat(root, "width", 0))
	if size <= 0 {
		return nil, fmt.Errorf("qrencoder: document has no width")
	}

	work := doc.Copy()
	var logos []logoPlacement
	for _, img := range work.FindElements("//image") {
		logos = append(logos, logoPlacement{
			href:   img.SelectAttrValue("href", ""),
			x:      attrFloat(img, "x", 0),
			y:      attrFloat(img, "y", 0),
			w:      attrFloat(img, "width", 0),
			h:      attrFloat(img, "height", 0),
			radius: attrFloat(img, "rx", 0),
			circle: img.SelectAttrValue("clip-path", "") != "",
		})
		img.Parent().RemoveChild(img)
	}
	for _, cp := range work.FindElements("//clipPath") {
		cp.Parent().RemoveChild(cp)
	}

	raw, err := work.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("qrencoder: serialize svg: %w", err)
	}
	canvas, err := rasterize(raw, size, size)
	if err != nil {
		return nil, err
	}

	for _, l := range logos {
		if err := e.compositeLogo(ctx, canvas, l); err != nil {
			// QR vẫn quét được khi thiếu logo
			log.Warn().Err(err).Str("href", l.href).Msg("Logo skipped in PNG export")
		}
	}

	buf := new(bytes.Buffer)
	if err := imaging.Encode(buf, canvas, imaging.PNG); err != nil {
		return nil, fmt.Errorf("qrencoder: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// rasterize vẽ svg ra RGBA w x h
func rasterize(svg []byte, w, h int) (*image.RGBA, error) {
	icon, err := oksvg.ReadIconStream(bytes.NewReader(svg), oksvg.IgnoreErrorMode)
	if err != nil {
		return nil, fmt.Errorf("qrencoder: parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(w), float64(h))

	canvas := image.NewRGBA(image.Rect(0, 0, w, h))
	scanner := rasterx.NewScannerGV(w, h, canvas, canvas.Bounds())
	icon.Draw(rasterx.NewDasher(w, h, scanner), 1.0)
	return canvas, nil
}

func (e *Encoder) compositeLogo(ctx context.Context, canvas *image.RGBA, l logoPlacement) error {
	if e.loader == nil || l.href == "" || l.w <= 0 || l.h <= 0 {
		return nil
	}
	data, err := e.loader.Load(ctx, l.href)
	if err != nil {
		return fmt.Errorf("load logo: %w", err)
	}
	logo, err := decodeLogo(data, int(l.w), int(l.h))
	if err != nil {
		return err
	}

	// preserveAspectRatio="xMidYMid meet"
	b := logo.Bounds()
	scale := math.Min(l.w/float64(b.Dx()), l.h/float64(b.Dy()))
	dw := int(math.Round(float64(b.Dx()) * scale))
	dh := int(math.Round(float64(b.Dy()) * scale))
	if dw <= 0 || dh <= 0 {
		return fmt.Errorf("logo box too small")
	}
	fitted := imaging.Resize(logo, dw, dh, imaging.Lanczos)

	dx := int(math.Round(l.x + (l.w-float64(dw))/2))
	dy := int(math.Round(l.y + (l.h-float64(dh))/2))
	dest := image.Rect(dx, dy, dx+dw, dy+dh)

	var mask image.Image
	switch {
	case l.circle:
		mask = &circleMask{cx: l.x + l.w/2, cy: l.y + l.h/2, r: math.Min(l.w, l.h) / 2, bounds: canvas.Bounds()}
	case l.radius > 0:
		mask = &roundedMask{box: rectF{l.x, l.y, l.w, l.h}, r: l.radius, bounds: canvas.Bounds()}
	}

	if mask == nil {
		draw.Draw(canvas, dest, fitted, image.Point{}, draw.Over)
		return nil
	}
	draw.DrawMask(canvas, dest, fitted, image.Point{}, mask, dest.Min, draw.Over)
	return nil
}

// decodeLogo: raster qua image.Decode, svg rasterize bằng oksvg
func decodeLogo(data []byte, w, h int) (image.Image, error) {
	if looksLikeSVG(data) {
		return rasterize(data, w, h)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode logo: %w", err)
	}
	return img, nil
}

func looksLikeSVG(data []byte) bool {
	head := data
	if len(head) > 1024 {
		head = head[:1024]
	}
	return bytes.Contains(head, []byte("<svg"))
}

func attrFloat(el *etree.Element, key string, def float64) float64 {
	v, err := strconv.ParseFloat(el.SelectAttrValue(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}

type rectF struct{ x, y, w, h float64 }

// circleMask: alpha 255 trong hình tròn, toạ độ theo canvas
type circleMask struct {
	cx, cy, r float64
	bounds    image.Rectangle
}

func (m *circleMask) ColorModel() color.Model { return color.AlphaModel }
func (m *circleMask) Bounds() image.Rectangle { return m.bounds }
func (m *circleMask) At(x, y int) color.Color {
	dx := float64(x) + 0.5 - m.cx
	dy := float64(y) + 0.5 - m.cy
	if dx*dx+dy*dy <= m.r*m.r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}

type roundedMask struct {
	box    rectF
	r      float64
	bounds image.Rectangle
}

func (m *roundedMask) ColorModel() color.Model { return color.AlphaModel }
func (m *roundedMask) Bounds() image.Rectangle { return m.bounds }
func (m *roundedMask) At(x, y int) color.Color {
	px, py := float64(x)+0.5, float64(y)+0.5
	b := m.box
	if px < b.x || py < b.y || px > b.x+b.w || py > b.y+b.h {
		return color.Alpha{}
	}
	r := math.Min(m.r, math.Min(b.w, b.h)/2)
	// khoảng cách tới tâm bo góc gần nhất
	cx := math.Max(b.x+r, math.Min(px, b.x+b.w-r))
	cy := math.Max(b.y+r, math.Min(py, b.y+b.h-r))
	dx, dy := px-cx, py-cy
	if dx*dx+dy*dy <= r*r {
		return color.Alpha{A: 255}
	}
	return color.Alpha{}
}
