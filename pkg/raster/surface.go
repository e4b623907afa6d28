package raster

import (
	"github.com/go-drift/sectionlist/pkg/geometry"
	"github.com/go-drift/sectionlist/pkg/scroll"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// ContentOffset implements scroll.Surface.
func (w *Widget) ContentOffset() geometry.Point {
	return w.offset
}

// SetContentOffset implements scroll.Surface.
func (w *Widget) SetContentOffset(p geometry.Point) error {
	w.offset = p
	return w.layout()
}

// SetInsets implements scroll.Surface.
func (w *Widget) SetInsets(in geometry.EdgeInsets) error {
	w.insets = in
	return w.layout()
}

// SetAlignment implements scroll.Surface.
func (w *Widget) SetAlignment(a scroll.Alignment) error {
	w.alignment = a
	return w.layout()
}

// SetBounces implements scroll.Surface.
func (w *Widget) SetBounces(vertical, horizontal bool) error {
	w.bounceV, w.bounceH = vertical, horizontal
	return nil
}

// SetStyle implements scroll.Surface.
func (w *Widget) SetStyle(s scroll.Style) error {
	w.style = s
	return w.layout()
}

// SetSeparatorStyle implements scroll.Surface.
func (w *Widget) SetSeparatorStyle(s scroll.SeparatorStyle) error {
	w.separator = s
	return nil
}

// SetRefreshTint implements scroll.Surface.
func (w *Widget) SetRefreshTint(c *geometry.Color) error {
	w.tint = c
	return nil
}

// BeginRefreshing implements scroll.Surface.
func (w *Widget) BeginRefreshing() error {
	w.refreshing = true
	return nil
}

// EndRefreshing implements scroll.Surface.
func (w *Widget) EndRefreshing() error {
	w.refreshing = false
	return nil
}

// Refreshing reports whether the refresh indicator is showing.
func (w *Widget) Refreshing() bool {
	return w.refreshing
}

// PullToRefresh shows the indicator as if the user pulled the list down.
func (w *Widget) PullToRefresh() {
	w.refreshing = true
	w.source.DidPullToRefresh()
}

// VisibleRows implements scroll.Surface.
func (w *Widget) VisibleRows() []snapshot.Position {
	var out []snapshot.Position
	top := w.offset.Y
	bottom := top + float64(w.settings.Height)
	for si, n := range w.rows {
		for r := 0; r < n; r++ {
			f, _ := w.RowFrame(snapshot.Position{Section: si, Row: r})
			if f.Bottom > top && f.Top < bottom {
				out = append(out, snapshot.Position{Section: si, Row: r})
			}
		}
	}
	return out
}

// RowFrame implements scroll.Surface.
func (w *Widget) RowFrame(pos snapshot.Position) (geometry.Rect, bool) {
	if !w.inBounds(pos) {
		return geometry.Rect{}, false
	}
	y := w.sectionTop(pos.Section) + w.settings.HeaderHeight + float64(pos.Row)*w.settings.RowHeight
	left, right := w.rowInsets()
	return geometry.Rect{
		Left:   left,
		Top:    y,
		Right:  float64(w.settings.Width) - right,
		Bottom: y + w.settings.RowHeight,
	}, true
}

// HeaderFrame returns the frame of a section header in content coordinates.
func (w *Widget) HeaderFrame(section int) (geometry.Rect, bool) {
	if section < 0 || section >= len(w.rows) || w.settings.HeaderHeight <= 0 {
		return geometry.Rect{}, false
	}
	y := w.sectionTop(section)
	return geometry.RectFromLTWH(0, y, float64(w.settings.Width), w.settings.HeaderHeight), true
}

// ContentHeight returns the height of all sections, excluding insets.
func (w *Widget) ContentHeight() float64 {
	h := 0.0
	for _, n := range w.rows {
		h += w.spacing() + w.settings.HeaderHeight + float64(n)*w.settings.RowHeight
	}
	return h
}

func (w *Widget) sectionTop(section int) float64 {
	y := w.insets.Top + w.alignmentShift()
	for si := 0; si < section; si++ {
		y += w.spacing() + w.settings.HeaderHeight + float64(w.rows[si])*w.settings.RowHeight
	}
	return y + w.spacing()
}

// alignmentShift moves short content down for center and bottom alignment.
func (w *Widget) alignmentShift() float64 {
	free := float64(w.settings.Height) - w.insets.Vertical() - w.ContentHeight()
	if free <= 0 {
		return 0
	}
	switch w.alignment {
	case scroll.AlignCenter:
		return free / 2
	case scroll.AlignBottom:
		return free
	default:
		return 0
	}
}

func (w *Widget) spacing() float64 {
	if w.style == scroll.StylePlain {
		return 0
	}
	return sectionSpacing
}

func (w *Widget) rowInsets() (left, right float64) {
	left, right = w.insets.Left, w.insets.Right
	if w.style == scroll.StyleInsetGrouped {
		left += sectionSpacing
		right += sectionSpacing
	}
	return left, right
}
