// Package chart draws the hourly activity chart: authorized counts as bars
// with unauthorized counts stacked on top.
package chart

import (
	"image/color"
	"math"
	"strconv"
	"time"

	"accessdash/internal/format"
	"accessdash/internal/model"
)

// Align positions text horizontally relative to its anchor x.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Canvas is a 2D drawing surface. Text y is the baseline.
type Canvas interface {
	Size() (width, height int)
	Clear()
	FillRect(x, y, w, h float64, c color.Color)
	Line(x1, y1, x2, y2 float64, c color.Color, width float64)
	Text(x, y float64, s string, align Align, c color.Color)
}

// Geometry and palette.
const (
	Padding   = 40.0
	BarInset  = 2.0
	YTicks    = 4
	NoDataMsg = "No data available"
)

var (
	ColorAuthorized   = color.RGBA{0x10, 0xb9, 0x81, 0xff}
	ColorUnauthorized = color.RGBA{0xef, 0x44, 0x44, 0xff}
	ColorAxis         = color.RGBA{0xe5, 0xe7, 0xeb, 0xff}
	ColorLabel        = color.RGBA{0x6b, 0x72, 0x80, 0xff}
	ColorLegendText   = color.RGBA{0x1f, 0x29, 0x37, 0xff}
)

// MaxValue is the scale ceiling: the largest bucket total, never below 1.
func MaxValue(buckets []model.HourlyBucket) int {
	m := 1
	for _, b := range buckets {
		if b.Total > m {
			m = b.Total
		}
	}
	return m
}

// Draw redraws the whole chart. Buckets are expected oldest first; no state
// survives between calls.
func Draw(c Canvas, buckets []model.HourlyBucket, loc *time.Location) {
	width, height := c.Size()
	w, h := float64(width), float64(height)
	c.Clear()

	if len(buckets) == 0 {
		c.Text(w/2, h/2, NoDataMsg, AlignCenter, ColorLabel)
		return
	}

	maxValue := float64(MaxValue(buckets))
	chartWidth := w - Padding*2
	chartHeight := h - Padding*2
	barWidth := chartWidth / float64(len(buckets))

	for i, b := range buckets {
		x := Padding + float64(i)*barWidth
		authHeight := float64(b.Authorized) / maxValue * chartHeight
		yAuth := h - Padding - authHeight
		c.FillRect(x+BarInset, yAuth, barWidth-2*BarInset, authHeight, ColorAuthorized)

		unauthHeight := float64(b.Unauthorized) / maxValue * chartHeight
		c.FillRect(x+BarInset, yAuth-unauthHeight, barWidth-2*BarInset, unauthHeight, ColorUnauthorized)
	}

	c.Line(Padding, Padding, Padding, h-Padding, ColorAxis, 2)
	c.Line(Padding, h-Padding, w-Padding, h-Padding, ColorAxis, 2)

	for i, b := range buckets {
		x := Padding + float64(i)*barWidth + barWidth/2
		c.Text(x, h-Padding+20, format.HourLabel(b.Hour, loc), AlignCenter, ColorLabel)
	}

	for i := 0; i <= YTicks; i++ {
		value := math.Round(maxValue / YTicks * float64(i))
		y := h - Padding - chartHeight/YTicks*float64(i)
		c.Text(Padding-10, y+5, strconv.Itoa(int(value)), AlignRight, ColorLabel)
	}

	c.FillRect(w-150, 20, 20, 20, ColorAuthorized)
	c.Text(w-120, 35, "Authorized", AlignLeft, ColorLegendText)
	c.FillRect(w-150, 50, 20, 20, ColorUnauthorized)
	c.Text(w-120, 65, "Unauthorized", AlignLeft, ColorLegendText)
}
