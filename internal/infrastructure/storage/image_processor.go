package storage

import (
	"bytes"
	"errors"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/beevik/etree"
)

const (
	FormatSVG = "svg"

	DefaultMaxImageSize = 5 * 1024 * 1024 // 5MB
)

var (
	ErrImageTooLarge = errors.New("image too large")
	ErrNotAnImage    = errors.New("not an image")
)

type ImageProcessor struct {
	MaxSize int64 // bytes
}

func NewImageProcessor() *ImageProcessor {
	return &ImageProcessor{MaxSize: DefaultMaxImageSize}
}

// ValidateImage kiểm tra size rồi sniff nội dung, trả về format
// (jpeg | png | gif | svg). Không tin Content-Type của client.
func (p *ImageProcessor) ValidateImage(data []byte) (string, error) {
	if int64(len(data)) > p.MaxSize {
		return "", fmt.Errorf("%w: %d bytes exceeds %dMB", ErrImageTooLarge, len(data), p.MaxSize/(1024*1024))
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrNotAnImage)
	}

	if _, format, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		return format, nil
	}
	if isSVG(data) {
		return FormatSVG, nil
	}
	return "", ErrNotAnImage
}

// isSVG: XML hợp lệ với root <svg>
func isSVG(data []byte) bool {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return false
	}
	root := doc.Root()
	return root != nil && root.Tag == "svg"
}
