package model

import (
	"encoding/json"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

type DotType string
type CornerType string
type LogoShape string

const (
	DotsSquare        DotType = "square"
	DotsRounded       DotType = "rounded"
	DotsExtraRounded  DotType = "extra-rounded"
	DotsClassy        DotType = "classy"
	DotsClassyRounded DotType = "classy-rounded"

	CornersSquare       CornerType = "square"
	CornersDot          CornerType = "dot"
	CornersExtraRounded CornerType = "extra-rounded"

	LogoSquare  LogoShape = "square"
	LogoRounded LogoShape = "rounded"
	LogoCircle  LogoShape = "circle"

	// ErrorCorrectionHigh: luôn dùng H để QR vẫn đọc được khi logo che ~30% matrix
	ErrorCorrectionHigh = "H"
)

// Style là cấu hình hiển thị QR của một Link
// Value type: mọi thay đổi tạo bản copy mới, Link thay style nguyên khối
type Style struct {
	Dots            DotType
	Corners         CornerType
	Color           Color
	Logo            string
	LogoShape       LogoShape
	ErrorCorrection string
}

// Default: square dots, square corners, đen, không logo
func Default() Style {
	return Style{
		Dots:            DotsSquare,
		Corners:         CornersSquare,
		Color:           Solid{Hex: DefaultColor},
		ErrorCorrection: ErrorCorrectionHigh,
	}
}

func (s Style) WithSolidColor(hex string) Style {
	s.Color = Solid{Hex: hex}
	return s
}

func (s Style) WithGradient(from, to string) Style {
	s.Color = Gradient{From: from, To: to}
	return s
}

func (s Style) WithLogo(url string, shape LogoShape) Style {
	s.Logo = url
	s.LogoShape = shape
	return s
}

// HasLogo: logoShape chỉ có nghĩa khi có logo
func (s Style) HasLogo() bool {
	return s.Logo != ""
}

// EffectiveLogoShape trả về shape thực tế dùng khi render, mặc định square
func (s Style) EffectiveLogoShape() LogoShape {
	if !s.HasLogo() || s.LogoShape == "" {
		return LogoSquare
	}
	return s.LogoShape
}

// Normalize điền default cho field trống, bỏ logoShape khi không có logo,
// và ép error correction về H. Không bao giờ lỗi.
func (s Style) Normalize() Style {
	if s.Dots == "" {
		s.Dots = DotsSquare
	}
	if s.Corners == "" {
		s.Corners = CornersSquare
	}
	if s.Color == nil {
		s.Color = Solid{Hex: DefaultColor}
	}
	if !s.HasLogo() {
		s.LogoShape = ""
	}
	s.ErrorCorrection = ErrorCorrectionHigh
	return s
}

func (s Style) Validate() error {
	err := validation.ValidateStruct(&s,
		validation.Field(&s.Dots,
			validation.Required,
			validation.In(DotsSquare, DotsRounded, DotsExtraRounded, DotsClassy, DotsClassyRounded).
				Error("dots must be one of square, rounded, extra-rounded, classy, classy-rounded"),
		),
		validation.Field(&s.Corners,
			validation.Required,
			validation.In(CornersSquare, CornersDot, CornersExtraRounded).
				Error("corners must be one of square, dot, extra-rounded"),
		),
		// Color tự implement Validate() nên ozzo gọi luôn sau Required
		validation.Field(&s.Color, validation.Required),
		validation.Field(&s.Logo,
			validation.When(s.Logo != "", is.URL.Error("logo must be a valid URL")),
		),
		validation.Field(&s.LogoShape,
			validation.When(s.LogoShape != "",
				validation.In(LogoSquare, LogoRounded, LogoCircle).Error("logoShape must be one of square, rounded, circle"),
			),
		),
		validation.Field(&s.ErrorCorrection,
			validation.Required,
			validation.In(ErrorCorrectionHigh).Error("errorCorrection must be H"),
		),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStyle, err)
	}
	return nil
}

// styleJSON giữ wire shape: {"dots","corners","color","logo","logoShape","errorCorrection"}
type styleJSON struct {
	Dots            DotType         `json:"dots"`
	Corners         CornerType      `json:"corners"`
	Color           json.RawMessage `json:"color"`
	Logo            string          `json:"logo,omitempty"`
	LogoShape       LogoShape       `json:"logoShape,omitempty"`
	ErrorCorrection string          `json:"errorCorrection"`
}

func (s Style) MarshalJSON() ([]byte, error) {
	color, err := MarshalColor(s.Color)
	if err != nil {
		return nil, err
	}
	return json.Marshal(styleJSON{
		Dots:            s.Dots,
		Corners:         s.Corners,
		Color:           color,
		Logo:            s.Logo,
		LogoShape:       s.LogoShape,
		ErrorCorrection: s.ErrorCorrection,
	})
}

func (s *Style) UnmarshalJSON(data []byte) error {
	var raw styleJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStyle, err)
	}

	color, err := UnmarshalColor(raw.Color)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidStyle, err)
	}

	*s = Style{
		Dots:            raw.Dots,
		Corners:         raw.Corners,
		Color:           color,
		Logo:            raw.Logo,
		LogoShape:       raw.LogoShape,
		ErrorCorrection: raw.ErrorCorrection,
	}
	return nil
}

// ParseStyle đọc style đã persist. Dữ liệu rỗng hoặc hỏng → Default()
// để Link cũ vẫn render được.
func ParseStyle(raw []byte) Style {
	if len(raw) == 0 {
		return Default()
	}
	var s Style
	if err := json.Unmarshal(raw, &s); err != nil {
		return Default()
	}
	return s.Normalize()
}
