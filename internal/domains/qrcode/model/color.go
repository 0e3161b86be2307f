package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const (
	DefaultColor = "#000000"

	GradientLinear = "linear"
)

var hexColorPattern = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// Color là tagged union: Solid | Gradient
// Interface được seal bằng unexported method, chỉ 2 implementation trong package này
type Color interface {
	isColor()
	// Stops trả về danh sách màu theo thứ tự offset (1 màu cho Solid, 2 cho Gradient)
	Stops() []string
	Validate() error
}

// Solid: một màu hex duy nhất
type Solid struct {
	Hex string
}

// Gradient: linear gradient đúng 2 stop, offset 0 và 1
type Gradient struct {
	From string
	To   string
}

func (Solid) isColor()    {}
func (Gradient) isColor() {}

func (s Solid) Stops() []string    { return []string{s.Hex} }
func (g Gradient) Stops() []string { return []string{g.From, g.To} }

func (s Solid) Validate() error {
	if !IsHexColor(s.Hex) {
		return fmt.Errorf("%w: %q is not a hex color", ErrInvalidColor, s.Hex)
	}
	return nil
}

func (g Gradient) Validate() error {
	if !IsHexColor(g.From) || !IsHexColor(g.To) {
		return fmt.Errorf("%w: gradient stops must be hex colors", ErrInvalidColor)
	}
	return nil
}

func IsHexColor(s string) bool {
	return hexColorPattern.MatchString(s)
}

// gradientJSON giữ đúng wire shape {"type":"linear","colors":[a,b]}
type gradientJSON struct {
	Type   string   `json:"type"`
	Colors []string `json:"colors"`
}

// MarshalColor encode Color: Solid → "#rrggbb", Gradient → object
func MarshalColor(c Color) ([]byte, error) {
	switch v := c.(type) {
	case nil:
		return json.Marshal(DefaultColor)
	case Solid:
		return json.Marshal(v.Hex)
	case Gradient:
		return json.Marshal(gradientJSON{Type: GradientLinear, Colors: []string{v.From, v.To}})
	default:
		return nil, fmt.Errorf("%w: unknown color variant %T", ErrInvalidColor, c)
	}
}

// UnmarshalColor decode wire form về Color
// Gradient với type khác "linear" hoặc số màu khác 2 → ErrInvalidColor
func UnmarshalColor(data []byte) (Color, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return Solid{Hex: DefaultColor}, nil
	}

	if data[0] == '"' {
		var hex string
		if err := json.Unmarshal(data, &hex); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidColor, err)
		}
		return Solid{Hex: strings.TrimSpace(hex)}, nil
	}

	var g gradientJSON
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	if g.Type != GradientLinear {
		return nil, fmt.Errorf("%w: unsupported gradient type %q", ErrInvalidColor, g.Type)
	}
	if len(g.Colors) != 2 {
		return nil, fmt.Errorf("%w: gradient needs exactly 2 colors, got %d", ErrInvalidColor, len(g.Colors))
	}
	return Gradient{From: g.Colors[0], To: g.Colors[1]}, nil
}
