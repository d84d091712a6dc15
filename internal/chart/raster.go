package chart

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"
	"time"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"accessdash/internal/model"
)

// RasterCanvas draws into an RGBA image with a white background.
type RasterCanvas struct {
	img  *image.RGBA
	face font.Face
}

// NewRasterCanvas allocates a width x height canvas.
func NewRasterCanvas(width, height int) *RasterCanvas {
	return &RasterCanvas{
		img:  image.NewRGBA(image.Rect(0, 0, width, height)),
		face: basicfont.Face7x13,
	}
}

// Image exposes the drawn image.
func (r *RasterCanvas) Image() *image.RGBA { return r.img }

func (r *RasterCanvas) Size() (int, int) {
	b := r.img.Bounds()
	return b.Dx(), b.Dy()
}

func (r *RasterCanvas) Clear() {
	draw.Draw(r.img, r.img.Bounds(), image.White, image.Point{}, draw.Src)
}

func (r *RasterCanvas) FillRect(x, y, w, h float64, c color.Color) {
	if w <= 0 || h <= 0 {
		return
	}
	rect := image.Rect(
		int(math.Round(x)), int(math.Round(y)),
		int(math.Round(x+w)), int(math.Round(y+h)),
	).Intersect(r.img.Bounds())
	draw.Draw(r.img, rect, image.NewUniform(c), image.Point{}, draw.Over)
}

// Line fills the width-wide quad around the segment with an anti-aliased
// vector rasteriser.
func (r *RasterCanvas) Line(x1, y1, x2, y2 float64, c color.Color, width float64) {
	if width < 1 {
		width = 1
	}
	dx, dy := x2-x1, y2-y1
	length := math.Hypot(dx, dy)
	// Normal offset; a zero-length segment becomes a width-sized square.
	nx, ny := 0.0, width/2
	ux, uy := width/2, 0.0
	if length > 0 {
		nx, ny = -dy/length*width/2, dx/length*width/2
		ux, uy = 0, 0
	}

	b := r.img.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	z.MoveTo(float32(x1-ux+nx), float32(y1-uy+ny))
	z.LineTo(float32(x2+ux+nx), float32(y2+uy+ny))
	z.LineTo(float32(x2+ux-nx), float32(y2+uy-ny))
	z.LineTo(float32(x1-ux-nx), float32(y1-uy-ny))
	z.ClosePath()
	z.Draw(r.img, b, image.NewUniform(c), image.Point{})
}

func (r *RasterCanvas) Text(x, y float64, s string, align Align, c color.Color) {
	d := &font.Drawer{Dst: r.img, Src: image.NewUniform(c), Face: r.face}
	adv := d.MeasureString(s)
	start := fixed.I(int(math.Round(x)))
	switch align {
	case AlignCenter:
		start -= adv / 2
	case AlignRight:
		start -= adv
	}
	d.Dot = fixed.Point26_6{X: start, Y: fixed.I(int(math.Round(y)))}
	d.DrawString(s)
}

// EncodePNG writes the canvas as PNG.
func (r *RasterCanvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, r.img)
}

// RenderPNG draws buckets on a fresh width x height canvas and writes PNG.
func RenderPNG(w io.Writer, buckets []model.HourlyBucket, width, height int, loc *time.Location) error {
	c := NewRasterCanvas(width, height)
	Draw(c, buckets, loc)
	return c.EncodePNG(w)
}
