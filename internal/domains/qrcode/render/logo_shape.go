package render

import (
	"strconv"

	"github.com/beevik/etree"

	"qrlink-backend/internal/domains/qrcode/model"
)

const (
	LogoClipID    = "logo-clip"
	logoClipRef   = "url(#" + LogoClipID + ")"
	logoCornerRad = "8"
)

// ApplyLogoShape sửa <image> logo trong doc theo shape
//   - rounded: rx/ry = 8
//   - circle: clipPath logo-clip (hình tròn nội tiếp box ảnh) trong <defs>
//   - square: bỏ hết
//
// Gọi nhiều lần vẫn chỉ có một logo-clip
func ApplyLogoShape(doc *etree.Document, shape model.LogoShape) {
	root := doc.Root()
	if root == nil {
		return
	}

	for _, old := range root.FindElements("//clipPath[@id='" + LogoClipID + "']") {
		old.Parent().RemoveChild(old)
	}

	img := root.FindElement("//image")
	if img == nil {
		return
	}
	img.RemoveAttr("rx")
	img.RemoveAttr("ry")
	img.RemoveAttr("clip-path")

	switch shape {
	case model.LogoRounded:
		img.CreateAttr("rx", logoCornerRad)
		img.CreateAttr("ry", logoCornerRad)
	case model.LogoCircle:
		x := attrFloat(img, "x")
		y := attrFloat(img, "y")
		w := attrFloat(img, "width")
		h := attrFloat(img, "height")

		clip := ensureDefs(root).CreateElement("clipPath")
		clip.CreateAttr("id", LogoClipID)
		circle := clip.CreateElement("circle")
		circle.CreateAttr("cx", formatFloat(x+w/2))
		circle.CreateAttr("cy", formatFloat(y+h/2))
		circle.CreateAttr("r", formatFloat(min(w, h)/2))

		img.CreateAttr("clip-path", logoClipRef)
	}
}

// ensureDefs trả về <defs> đầu tiên của root, tạo mới ở đầu nếu chưa có
func ensureDefs(root *etree.Element) *etree.Element {
	if defs := root.SelectElement("defs"); defs != nil {
		return defs
	}
	defs := etree.NewElement("defs")
	root.InsertChildAt(0, defs)
	return defs
}

func attrFloat(el *etree.Element, key string) float64 {
	v, _ := strconv.ParseFloat(el.SelectAttrValue(key, "0"), 64)
	return v
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
