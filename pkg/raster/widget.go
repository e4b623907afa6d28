// Package raster provides a list widget that draws into an in-memory image.
//
// Widget implements driver.Widget with fixed row and header extents. It is
// used for previews and golden images; it keeps no platform resources and can
// be driven from tests or from the command line.
package raster

import (
	"fmt"
	"slices"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/go-drift/sectionlist/pkg/driver"
	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/geometry"
	"github.com/go-drift/sectionlist/pkg/pool"
	"github.com/go-drift/sectionlist/pkg/scroll"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// Grouped styles leave this much space above every section; inset-grouped
// additionally indents rows by the same amount on both sides.
const sectionSpacing = 12

// Settings size and color the widget.
type Settings struct {
	Width        int
	Height       int
	RowHeight    float64
	HeaderHeight float64
	Background   geometry.Color
	Foreground   geometry.Color
	// Face draws labels. Nil uses basicfont.Face7x13.
	Face font.Face
}

// Widget is an in-memory driver.Widget.
type Widget struct {
	settings Settings
	source   driver.DataSource
	rows     []int
	offset   geometry.Point
	visible  map[scroll.RowRef]*pool.Renderer

	style      scroll.Style
	separator  scroll.SeparatorStyle
	alignment  scroll.Alignment
	insets     geometry.EdgeInsets
	bounceV    bool
	bounceH    bool
	tint       *geometry.Color
	refreshing bool
}

// New returns an empty widget.
func New(settings Settings) *Widget {
	if settings.Face == nil {
		settings.Face = basicfont.Face7x13
	}
	return &Widget{
		settings: settings,
		visible:  make(map[scroll.RowRef]*pool.Renderer),
	}
}

// Attach implements driver.Widget.
func (w *Widget) Attach(source driver.DataSource) {
	w.source = source
}

// InsertSections implements driver.Widget.
func (w *Widget) InsertSections(indices []int) error {
	for _, i := range indices {
		if i < 0 || i > len(w.rows) {
			return outOfBounds("InsertSections", i)
		}
		w.rows = slices.Insert(w.rows, i, 0)
	}
	for _, i := range indices {
		w.rows[i] = w.source.NumberOfRows(i)
	}
	return w.commit()
}

// RemoveSections implements driver.Widget.
func (w *Widget) RemoveSections(indices []int) error {
	for _, i := range indices {
		if i < 0 || i >= len(w.rows) {
			return outOfBounds("RemoveSections", i)
		}
		w.rows = slices.Delete(w.rows, i, i+1)
	}
	return w.commit()
}

// MoveSection implements driver.Widget.
func (w *Widget) MoveSection(from, to int) error {
	if from < 0 || from >= len(w.rows) || to < 0 || to >= len(w.rows) {
		return outOfBounds("MoveSection", from)
	}
	n := w.rows[from]
	w.rows = slices.Delete(w.rows, from, from+1)
	w.rows = slices.Insert(w.rows, to, n)
	return w.commit()
}

// InsertRows implements driver.Widget.
func (w *Widget) InsertRows(positions []snapshot.Position) error {
	for _, p := range positions {
		if p.Section < 0 || p.Section >= len(w.rows) || p.Row < 0 || p.Row > w.rows[p.Section] {
			return outOfBounds("InsertRows", p)
		}
		w.rows[p.Section]++
	}
	return w.commit()
}

// RemoveRows implements driver.Widget.
func (w *Widget) RemoveRows(positions []snapshot.Position) error {
	for _, p := range positions {
		if !w.inBounds(p) {
			return outOfBounds("RemoveRows", p)
		}
		w.rows[p.Section]--
	}
	return w.commit()
}

// MoveRow implements driver.Widget.
func (w *Widget) MoveRow(from, to snapshot.Position) error {
	if !w.inBounds(from) || to.Section < 0 || to.Section >= len(w.rows) {
		return outOfBounds("MoveRow", from)
	}
	w.rows[from.Section]--
	if to.Row < 0 || to.Row > w.rows[to.Section] {
		w.rows[from.Section]++
		return outOfBounds("MoveRow", to)
	}
	w.rows[to.Section]++
	return w.commit()
}

// ReloadRows implements driver.Widget.
func (w *Widget) ReloadRows(positions []snapshot.Position) error {
	for _, p := range positions {
		if !w.inBounds(p) {
			return outOfBounds("ReloadRows", p)
		}
		ref, ok := w.source.ItemKey(p)
		if !ok {
			continue
		}
		if _, shown := w.visible[ref]; !shown {
			continue
		}
		r, err := w.source.Row(p)
		if err != nil {
			return err
		}
		w.visible[ref] = r
	}
	return w.commit()
}

// NumberOfSections implements driver.Widget.
func (w *Widget) NumberOfSections() int {
	return len(w.rows)
}

// NumberOfRows implements driver.Widget.
func (w *Widget) NumberOfRows(section int) int {
	if section < 0 || section >= len(w.rows) {
		return 0
	}
	return w.rows[section]
}

// ScrollTo scrolls as if the user dragged the content to y.
func (w *Widget) ScrollTo(y float64) error {
	w.offset.Y = y
	if err := w.layout(); err != nil {
		return err
	}
	w.source.DidScroll()
	return nil
}

func (w *Widget) inBounds(p snapshot.Position) bool {
	return p.Section >= 0 && p.Section < len(w.rows) && p.Row >= 0 && p.Row < w.rows[p.Section]
}

func outOfBounds(op string, at any) error {
	return errors.New("raster."+op, errors.KindConsistency, fmt.Errorf("%w: %v", errors.ErrOutOfBounds, at))
}

func (w *Widget) commit() error {
	if n := w.source.NumberOfSections(); n != len(w.rows) {
		return errors.New("raster.Widget", errors.KindConsistency,
			fmt.Errorf("%w: %d sections, data source has %d", errors.ErrCountMismatch, len(w.rows), n))
	}
	for i, n := range w.rows {
		if want := w.source.NumberOfRows(i); want != n {
			return &errors.ListError{
				Op:      "raster.Widget",
				Kind:    errors.KindConsistency,
				Section: i,
				Err:     fmt.Errorf("%w: %d rows, data source has %d", errors.ErrCountMismatch, n, want),
			}
		}
	}
	return w.layout()
}

// layout releases rows that left the viewport and fetches rows that entered it.
func (w *Widget) layout() error {
	positions := w.VisibleRows()
	refs := make([]scroll.RowRef, 0, len(positions))
	shown := make(map[scroll.RowRef]bool, len(positions))
	for _, p := range positions {
		ref, _ := w.source.ItemKey(p)
		refs = append(refs, ref)
		shown[ref] = true
	}
	for ref, r := range w.visible {
		if !shown[ref] {
			delete(w.visible, ref)
			w.source.DidEndDisplaying(r)
		}
	}
	for i, p := range positions {
		if _, ok := w.visible[refs[i]]; ok {
			continue
		}
		r, err := w.source.Row(p)
		if err != nil {
			return err
		}
		w.visible[refs[i]] = r
	}
	return nil
}
