package qrencoder

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"

	"github.com/beevik/etree"
	"github.com/skip2/go-qrcode"
)

const (
	svgNamespace = "http://www.w3.org/2000/svg"

	GradientID = "qr-gradient"

	FormatSVG = "svg"
	FormatPNG = "png"

	// kích thước vùng finder pattern (7x7 module) ở 3 góc
	finderSize = 7
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Options mô tả một QR cần vẽ
// Các giá trị type giống qr-code-styling: square, rounded, extra-rounded, classy, classy-rounded, dot
type Options struct {
	Data            string
	Size            int
	ErrorCorrection string // L | M | Q | H

	DotsType          string
	CornersSquareType string
	CornersDotType    string

	Color      Fill
	Background string

	Image        string
	ImageOptions ImageOptions
}

// Fill: Solid khi Gradient == nil
type Fill struct {
	Solid    string
	Gradient *LinearGradient
}

type LinearGradient struct {
	Rotation float64 // radian, 0 = trái sang phải
	Stops    []ColorStop
}

type ColorStop struct {
	Offset float64
	Color  string
}

type ImageOptions struct {
	ImageSize          float64 // tỉ lệ cạnh ảnh so với QR
	Margin             int     // px quanh ảnh
	HideBackgroundDots bool
}

// ImageLoader load bytes của ảnh logo theo href, dùng khi export PNG
type ImageLoader interface {
	Load(ctx context.Context, ref string) ([]byte, error)
}

// Encoder vẽ QR thành SVG DOM và export svg/png
type Encoder struct {
	loader ImageLoader
}

// NewEncoder: loader có thể nil, khi đó PNG export bỏ qua logo
func NewEncoder(loader ImageLoader) *Encoder {
	return &Encoder{loader: loader}
}

// layout: toạ độ pixel của matrix trong canvas
type layout struct {
	count   int     // số module mỗi cạnh
	dot     float64 // px mỗi module
	offset  float64 // lề để matrix nằm giữa canvas
	size    float64
	hideMin int // vùng module bị logo che [hideMin, hideMax)
	hideMax int
}

func (l layout) x(col int) float64 { return l.offset + float64(col)*l.dot }
func (l layout) y(row int) float64 { return l.offset + float64(row)*l.dot }

func (l layout) hidden(row, col int) bool {
	return row >= l.hideMin && row < l.hideMax && col >= l.hideMin && col < l.hideMax
}

// Encode tạo SVG document cho opts
func (e *Encoder) Encode(opts Options) (*etree.Document, error) {
	if opts.Size <= 0 {
		return nil, fmt.Errorf("qrencoder: invalid size %d", opts.Size)
	}

	qr, err := qrcode.New(opts.Data, recoveryLevel(opts.ErrorCorrection))
	if err != nil {
		return nil, fmt.Errorf("qrencoder: encode data: %w", err)
	}
	qr.DisableBorder = true
	matrix := qr.Bitmap()

	lay := newLayout(len(matrix), opts)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	size := num(lay.size)
	svg := doc.CreateElement("svg")
	svg.CreateAttr("xmlns", svgNamespace)
	svg.CreateAttr("width", size)
	svg.CreateAttr("height", size)
	svg.CreateAttr("viewBox", "0 0 "+size+" "+size)

	fill := opts.Color.Solid
	if opts.Color.Gradient != nil {
		writeGradient(svg, opts.Color.Gradient, lay.size)
		fill = "url(#" + GradientID + ")"
	}
	if fill == "" {
		fill = "#000000"
	}

	if opts.Background != "" {
		bg := svg.CreateElement("rect")
		bg.CreateAttr("x", "0")
		bg.CreateAttr("y", "0")
		bg.CreateAttr("width", size)
		bg.CreateAttr("height", size)
		bg.CreateAttr("fill", opts.Background)
	}

	hideDots := opts.Image != "" && opts.ImageOptions.HideBackgroundDots
	dots := svg.CreateElement("g")
	dots.CreateAttr("id", "qr-dots")
	dots.CreateAttr("fill", fill)
	drawDots(dots, matrix, lay, opts.DotsType, hideDots)

	corners := svg.CreateElement("g")
	corners.CreateAttr("id", "qr-corners")
	corners.CreateAttr("fill", fill)
	for _, origin := range finderOrigins(lay.count) {
		drawCornerSquare(corners, lay, origin[0], origin[1], opts.CornersSquareType)
		drawCornerDot(corners, lay, origin[0], origin[1], opts.CornersDotType)
	}

	if opts.Image != "" {
		m := float64(opts.ImageOptions.Margin)
		boxX := lay.x(lay.hideMin)
		boxSize := float64(lay.hideMax-lay.hideMin) * lay.dot
		side := boxSize - 2*m
		if side > 0 {
			img := svg.CreateElement("image")
			img.CreateAttr("href", opts.Image)
			img.CreateAttr("x", num(boxX+m))
			img.CreateAttr("y", num(boxX+m))
			img.CreateAttr("width", num(side))
			img.CreateAttr("height", num(side))
			img.CreateAttr("preserveAspectRatio", "xMidYMid meet")
		}
	}

	return doc, nil
}

func newLayout(count int, opts Options) layout {
	size := float64(opts.Size)
	dot := math.Floor(size / float64(count))
	if dot < 1 {
		dot = size / float64(count)
	}
	lay := layout{
		count:  count,
		dot:    dot,
		offset: (size - dot*float64(count)) / 2,
		size:   size,
	}

	if opts.Image != "" && opts.ImageOptions.ImageSize > 0 {
		hide := int(math.Floor(float64(count) * opts.ImageOptions.ImageSize))
		// cùng parity với count để vùng ảnh nằm chính giữa
		if (count-hide)%2 != 0 {
			hide++
		}
		if hide > count {
			hide = count
		}
		lay.hideMin = (count - hide) / 2
		lay.hideMax = lay.hideMin + hide
	}
	return lay
}

// Export serialize document theo format
func (e *Encoder) Export(ctx context.Context, doc *etree.Document, format string) ([]byte, error) {
	switch format {
	case FormatSVG:
		return doc.WriteToBytes()
	case FormatPNG:
		return e.exportPNG(ctx, doc)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

func recoveryLevel(level string) qrcode.RecoveryLevel {
	switch level {
	case "L":
		return qrcode.Low
	case "M":
		return qrcode.Medium
	case "Q":
		return qrcode.High
	default:
		return qrcode.Highest
	}
}

func writeGradient(svg *etree.Element, g *LinearGradient, size float64) {
	defs := svg.CreateElement("defs")
	lg := defs.CreateElement("linearGradient")
	lg.CreateAttr("id", GradientID)
	lg.CreateAttr("gradientUnits", "userSpaceOnUse")

	c := size / 2
	dx := math.Cos(g.Rotation) * c
	dy := math.Sin(g.Rotation) * c
	lg.CreateAttr("x1", num(c-dx))
	lg.CreateAttr("y1", num(c-dy))
	lg.CreateAttr("x2", num(c+dx))
	lg.CreateAttr("y2", num(c+dy))

	for _, s := range g.Stops {
		stop := lg.CreateElement("stop")
		stop.CreateAttr("offset", num(s.Offset))
		stop.CreateAttr("stop-color", s.Color)
	}
}

// finderOrigins: (row, col) góc trên trái của 3 finder pattern
func finderOrigins(count int) [][2]int {
	return [][2]int{
		{0, 0},
		{0, count - finderSize},
		{count - finderSize, 0},
	}
}

func inFinder(row, col, count int) bool {
	for _, o := range finderOrigins(count) {
		if row >= o[0] && row < o[0]+finderSize && col >= o[1] && col < o[1]+finderSize {
			return true
		}
	}
	return false
}

// num format số với tối đa 2 chữ số thập phân
func num(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}
