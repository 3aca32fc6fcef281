package certificate

import (
	"image"
	"image/color"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// fillRect fills an axis-aligned rectangle with a solid color.
func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

// strokeRect draws a rectangle outline of the given stroke width.
func strokeRect(dst draw.Image, r image.Rectangle, width int, c color.Color) {
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+width), c) // top
	fillRect(dst, image.Rect(r.Min.X, r.Max.Y-width, r.Max.X, r.Max.Y), c) // bottom
	fillRect(dst, image.Rect(r.Min.X, r.Min.Y, r.Min.X+width, r.Max.Y), c) // left
	fillRect(dst, image.Rect(r.Max.X-width, r.Min.Y, r.Max.X, r.Max.Y), c) // right
}

// hline draws a horizontal rule from (x1,y) to (x2,y).
func hline(dst draw.Image, x1, x2, y, width int, c color.Color) {
	fillRect(dst, image.Rect(x1, y, x2, y+width), c)
}

// drawText renders s with its top-left corner at (x, y).
func drawText(dst draw.Image, x, y int, s string, face font.Face, c color.Color) {
	ascent := face.Metrics().Ascent.Ceil()
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y+ascent),
	}
	d.DrawString(s)
}
