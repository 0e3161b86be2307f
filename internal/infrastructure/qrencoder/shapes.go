package qrencoder

import (
	"strings"

	"github.com/beevik/etree"
)

const (
	TypeSquare        = "square"
	TypeDot           = "dot"
	TypeRounded       = "rounded"
	TypeExtraRounded  = "extra-rounded"
	TypeClassy        = "classy"
	TypeClassyRounded = "classy-rounded"
)

// neighbors của một module tối
type neighbors struct {
	top, right, bottom, left bool
}

func drawDots(g *etree.Element, matrix [][]bool, lay layout, dotsType string, hideBehindImage bool) {
	dark := func(row, col int) bool {
		if row < 0 || col < 0 || row >= lay.count || col >= lay.count {
			return false
		}
		if inFinder(row, col, lay.count) {
			return false
		}
		if hideBehindImage && lay.hidden(row, col) {
			return false
		}
		return matrix[row][col]
	}

	var d strings.Builder
	for row := 0; row < lay.count; row++ {
		for col := 0; col < lay.count; col++ {
			if !dark(row, col) {
				continue
			}
			n := neighbors{
				top:    dark(row-1, col),
				right:  dark(row, col+1),
				bottom: dark(row+1, col),
				left:   dark(row, col-1),
			}
			d.WriteString(dotPath(lay.x(col), lay.y(row), lay.dot, dotsType, n))
		}
	}

	if d.Len() == 0 {
		return
	}
	path := g.CreateElement("path")
	path.CreateAttr("d", d.String())
}

// dotPath trả về subpath cho một module
// Bán kính góc phụ thuộc vào module kề: góc chỉ bo khi cả hai cạnh kề đều trống
func dotPath(x, y, s float64, dotsType string, n neighbors) string {
	r := s / 2
	// góc: tl, tr, br, bl
	open := [4]bool{
		!n.top && !n.left,
		!n.top && !n.right,
		!n.bottom && !n.right,
		!n.bottom && !n.left,
	}

	var radii [4]float64
	switch dotsType {
	case TypeDot:
		radii = [4]float64{r, r, r, r}
	case TypeRounded:
		for i, o := range open {
			if o {
				radii[i] = r
			}
		}
	case TypeExtraRounded:
		// ngoài góc trống, các góc chỉ có một cạnh trống cũng bo nhẹ
		for i, o := range open {
			switch {
			case o:
				radii[i] = r
			case sideOpen(i, n):
				radii[i] = s / 4
			}
		}
	case TypeClassy:
		if open[0] {
			radii[0] = r
		}
		if open[2] {
			radii[2] = r
		}
	case TypeClassyRounded:
		if open[0] {
			radii[0] = r
		}
		if open[2] {
			radii[2] = r
		}
		if open[1] {
			radii[1] = s / 4
		}
		if open[3] {
			radii[3] = s / 4
		}
	}

	return roundedRectPath(x, y, s, s, radii)
}

// sideOpen: góc i có ít nhất một cạnh kề trống
func sideOpen(corner int, n neighbors) bool {
	switch corner {
	case 0:
		return !n.top || !n.left
	case 1:
		return !n.top || !n.right
	case 2:
		return !n.bottom || !n.right
	default:
		return !n.bottom || !n.left
	}
}

// roundedRectPath: radii theo thứ tự tl, tr, br, bl
func roundedRectPath(x, y, w, h float64, radii [4]float64) string {
	tl, tr, br, bl := radii[0], radii[1], radii[2], radii[3]

	var b strings.Builder
	b.WriteString("M" + num(x+tl) + " " + num(y))
	b.WriteString("H" + num(x+w-tr))
	if tr > 0 {
		b.WriteString(arc(tr, x+w, y+tr))
	}
	b.WriteString("V" + num(y+h-br))
	if br > 0 {
		b.WriteString(arc(br, x+w-br, y+h))
	}
	b.WriteString("H" + num(x+bl))
	if bl > 0 {
		b.WriteString(arc(bl, x, y+h-bl))
	}
	b.WriteString("V" + num(y+tl))
	if tl > 0 {
		b.WriteString(arc(tl, x+tl, y))
	}
	b.WriteString("Z")
	return b.String()
}

func arc(r, toX, toY float64) string {
	return "A" + num(r) + " " + num(r) + " 0 0 1 " + num(toX) + " " + num(toY)
}

// reverseRectPath giống roundedRectPath nhưng đi ngược chiều kim đồng hồ,
// dùng cho lỗ bên trong để cả nonzero lẫn evenodd đều để trống
func reverseRectPath(x, y, w, h float64, radii [4]float64) string {
	tl, tr, br, bl := radii[0], radii[1], radii[2], radii[3]

	var b strings.Builder
	b.WriteString("M" + num(x) + " " + num(y+tl))
	b.WriteString("V" + num(y+h-bl))
	if bl > 0 {
		b.WriteString(arcCCW(bl, x+bl, y+h))
	}
	b.WriteString("H" + num(x+w-br))
	if br > 0 {
		b.WriteString(arcCCW(br, x+w, y+h-br))
	}
	b.WriteString("V" + num(y+tr))
	if tr > 0 {
		b.WriteString(arcCCW(tr, x+w-tr, y))
	}
	b.WriteString("H" + num(x+tl))
	if tl > 0 {
		b.WriteString(arcCCW(tl, x, y+tl))
	}
	b.WriteString("Z")
	return b.String()
}

func arcCCW(r, toX, toY float64) string {
	return "A" + num(r) + " " + num(r) + " 0 0 0 " + num(toX) + " " + num(toY)
}

// circlePath: hai nửa cung tròn, sweep chọn chiều vẽ
func circlePath(cx, cy, r float64, sweep string) string {
	a := "A" + num(r) + " " + num(r) + " 0 1 " + sweep + " "
	return "M" + num(cx-r) + " " + num(cy) +
		a + num(cx+r) + " " + num(cy) +
		a + num(cx-r) + " " + num(cy) + "Z"
}

// drawCornerSquare vẽ vòng ngoài 7x7 của finder pattern
func drawCornerSquare(g *etree.Element, lay layout, row, col int, cornerType string) {
	x, y := lay.x(col), lay.y(row)
	outer := float64(finderSize) * lay.dot
	inner := outer - 2*lay.dot

	var d string
	switch cornerType {
	case TypeDot:
		cx, cy := x+outer/2, y+outer/2
		d = circlePath(cx, cy, outer/2, "1") + circlePath(cx, cy, inner/2, "0")
	case TypeExtraRounded:
		ro := 2.5 * lay.dot
		ri := 1.5 * lay.dot
		d = roundedRectPath(x, y, outer, outer, [4]float64{ro, ro, ro, ro}) +
			reverseRectPath(x+lay.dot, y+lay.dot, inner, inner, [4]float64{ri, ri, ri, ri})
	default:
		d = roundedRectPath(x, y, outer, outer, [4]float64{}) +
			reverseRectPath(x+lay.dot, y+lay.dot, inner, inner, [4]float64{})
	}

	path := g.CreateElement("path")
	path.CreateAttr("fill-rule", "evenodd")
	path.CreateAttr("d", d)
}

// drawCornerDot vẽ khối 3x3 ở tâm finder pattern
func drawCornerDot(g *etree.Element, lay layout, row, col int, cornerType string) {
	x := lay.x(col) + 2*lay.dot
	y := lay.y(row) + 2*lay.dot
	side := 3 * lay.dot

	switch cornerType {
	case TypeDot:
		c := g.CreateElement("circle")
		c.CreateAttr("cx", num(x+side/2))
		c.CreateAttr("cy", num(y+side/2))
		c.CreateAttr("r", num(side/2))
	default:
		var radii [4]float64
		if cornerType == TypeExtraRounded {
			radii = [4]float64{lay.dot, lay.dot, lay.dot, lay.dot}
		}
		path := g.CreateElement("path")
		path.CreateAttr("d", roundedRectPath(x, y, side, side, radii))
	}
}
