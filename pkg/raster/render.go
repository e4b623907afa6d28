package raster

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/sectionlist/pkg/geometry"
	"github.com/go-drift/sectionlist/pkg/pool"
	"github.com/go-drift/sectionlist/pkg/scroll"
)

const (
	textPadding     = 8
	refreshBarWidth = 4
	ellipsis        = "..."
)

// Render draws the visible part of the list.
func (w *Widget) Render() (*image.RGBA, error) {
	img := image.NewRGBA(image.Rect(0, 0, w.settings.Width, w.settings.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(toRGBA(w.settings.Background)), image.Point{}, draw.Src)

	headerColor := blend(w.settings.Background, w.settings.Foreground, 0.1)
	separatorColor := blend(w.settings.Background, w.settings.Foreground, 0.25)

	for si := range w.rows {
		frame, ok := w.HeaderFrame(si)
		if !ok || !w.onScreen(frame) {
			continue
		}
		fillRect(img, w.toScreen(frame), headerColor)
		h, err := w.source.Header(si)
		if err != nil {
			return nil, err
		}
		label := fmt.Sprintf("Section %d", si)
		if h != nil {
			label = labelOf(h)
		}
		w.drawLabel(img, w.toScreen(frame), label)
	}

	for _, pos := range w.VisibleRows() {
		frame, _ := w.RowFrame(pos)
		screen := w.toScreen(frame)
		ref, _ := w.source.ItemKey(pos)
		r, ok := w.visible[ref]
		if !ok {
			var err error
			if r, err = w.source.Row(pos); err != nil {
				return nil, err
			}
			w.visible[ref] = r
		}
		w.drawLabel(img, screen, labelOf(r))
		if w.separator == scroll.SeparatorSingleLine && pos.Row < w.rows[pos.Section]-1 {
			line := screen
			line.Top = line.Bottom - 1
			fillRect(img, line, separatorColor)
		}
	}

	if w.refreshing {
		tint := w.settings.Foreground
		if w.tint != nil {
			tint = *w.tint
		}
		fillRect(img, geometry.RectFromLTWH(0, 0, float64(w.settings.Width), refreshBarWidth), tint)
	}
	return img, nil
}

// WritePNG renders the list and encodes it as PNG.
func (w *Widget) WritePNG(out io.Writer) error {
	img, err := w.Render()
	if err != nil {
		return err
	}
	return png.Encode(out, img)
}

func (w *Widget) onScreen(r geometry.Rect) bool {
	return r.Bottom > w.offset.Y && r.Top < w.offset.Y+float64(w.settings.Height)
}

func (w *Widget) toScreen(r geometry.Rect) geometry.Rect {
	return geometry.Rect{Left: r.Left - w.offset.X, Top: r.Top - w.offset.Y, Right: r.Right - w.offset.X, Bottom: r.Bottom - w.offset.Y}
}

// drawLabel draws text vertically centered in r, truncated to fit.
func (w *Widget) drawLabel(img *image.RGBA, r geometry.Rect, label string) {
	face := w.settings.Face
	m := face.Metrics()
	maxWidth := fixed.I(int(r.Width()) - 2*textPadding)
	label = Truncate(face, label, maxWidth)

	baseline := r.Top + (r.Height()+float64(m.Ascent.Ceil()-m.Descent.Ceil()))/2
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(toRGBA(w.settings.Foreground)),
		Face: face,
		Dot:  fixed.P(int(r.Left)+textPadding, int(math.Round(baseline))),
	}
	d.DrawString(label)
}

// Truncate shortens s with a trailing ellipsis so it fits in width.
func Truncate(face font.Face, s string, width fixed.Int26_6) string {
	if width <= 0 {
		return ""
	}
	if font.MeasureString(face, s) <= width {
		return s
	}
	limit := width - font.MeasureString(face, ellipsis)
	runes := []rune(s)
	for n := len(runes) - 1; n >= 0; n-- {
		if font.MeasureString(face, string(runes[:n])) <= limit {
			return string(runes[:n]) + ellipsis
		}
	}
	return ""
}

// labelOf returns the text a renderer displays.
func labelOf(r *pool.Renderer) string {
	switch c := r.Content().(type) {
	case nil:
		return r.Key().String()
	case string:
		return c
	case fmt.Stringer:
		return c.String()
	default:
		return fmt.Sprint(c)
	}
}

func fillRect(img *image.RGBA, r geometry.Rect, c geometry.Color) {
	rect := image.Rect(int(math.Floor(r.Left)), int(math.Floor(r.Top)), int(math.Ceil(r.Right)), int(math.Ceil(r.Bottom)))
	draw.Draw(img, rect.Intersect(img.Bounds()), image.NewUniform(toRGBA(c)), image.Point{}, draw.Over)
}

func toRGBA(c geometry.Color) color.NRGBA {
	r, g, b, a := c.Components()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// blend mixes t of fg into bg.
func blend(bg, fg geometry.Color, t float64) geometry.Color {
	br, bgc, bb, _ := bg.Components()
	fr, fgc, fb, _ := fg.Components()
	mix := func(a, b uint8) uint8 {
		return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
	}
	return geometry.RGB(mix(br, fr), mix(bgc, fgc), mix(bb, fb))
}
