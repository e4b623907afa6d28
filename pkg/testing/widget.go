package testing

import (
	"fmt"
	"slices"
	"strings"

	"github.com/go-drift/sectionlist/pkg/driver"
	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/geometry"
	"github.com/go-drift/sectionlist/pkg/identity"
	"github.com/go-drift/sectionlist/pkg/pool"
	"github.com/go-drift/sectionlist/pkg/scroll"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

type recordedSection struct {
	key  identity.Key
	rows []identity.Key
}

// RecordingWidget is an in-memory driver.Widget. Rows are laid out top to
// bottom with fixed heights; every section starts with a header of
// HeaderHeight. Rows entering the viewport are fetched from the data source
// and rows leaving it are handed back.
type RecordingWidget struct {
	// RowHeight and HeaderHeight are the fixed row and header heights.
	RowHeight    float64
	HeaderHeight float64
	// Viewport is the visible height.
	Viewport float64
	// FailOn makes the named command (e.g. "insertRows") fail once.
	FailOn string

	source    driver.DataSource
	sections  []recordedSection
	offset    geometry.Point
	log       CommandLog
	displayed map[scroll.RowRef]*pool.Renderer

	Style      scroll.Style
	Separator  scroll.SeparatorStyle
	Alignment  scroll.Alignment
	Insets     geometry.EdgeInsets
	BounceV    bool
	BounceH    bool
	Tint       *geometry.Color
	Refreshing bool
}

// NewRecordingWidget returns an empty widget with 44pt rows, no headers and a
// 440pt viewport.
func NewRecordingWidget() *RecordingWidget {
	return &RecordingWidget{
		RowHeight: 44,
		Viewport:  440,
		displayed: make(map[scroll.RowRef]*pool.Renderer),
	}
}

// Attach implements driver.Widget.
func (w *RecordingWidget) Attach(source driver.DataSource) {
	w.source = source
}

// Log returns a copy of the recorded commands.
func (w *RecordingWidget) Log() *CommandLog {
	return &CommandLog{
		Commands: slices.Clone(w.log.Commands),
		Scroll:   slices.Clone(w.log.Scroll),
	}
}

// ResetLog clears the recorded commands.
func (w *RecordingWidget) ResetLog() {
	w.log = CommandLog{}
}

// Keys returns the keys the widget currently displays, in order.
func (w *RecordingWidget) Keys() []snapshot.SectionKeys {
	out := make([]snapshot.SectionKeys, len(w.sections))
	for i, sec := range w.sections {
		out[i] = snapshot.SectionKeys{Section: sec.key, Items: slices.Clone(sec.rows)}
	}
	return out
}

// Displayed returns the renderer showing the row, if it is on screen.
func (w *RecordingWidget) Displayed(section, item identity.Key) (*pool.Renderer, bool) {
	r, ok := w.displayed[scroll.RowRef{Section: section, Item: item}]
	return r, ok
}

// DisplayedCount returns the number of rows on screen.
func (w *RecordingWidget) DisplayedCount() int {
	return len(w.displayed)
}

// InsertSections implements driver.Widget.
func (w *RecordingWidget) InsertSections(indices []int) error {
	w.record("insertSections %s", joinInts(indices))
	if err := w.failure("insertSections"); err != nil {
		return err
	}
	for _, i := range indices {
		if i < 0 || i > len(w.sections) {
			return w.outOfBounds("insertSections", fmt.Sprint(i))
		}
		w.sections = slices.Insert(w.sections, i, recordedSection{})
	}
	for _, i := range indices {
		w.sections[i] = w.fetchSection(i)
	}
	return w.commit()
}

// RemoveSections implements driver.Widget.
func (w *RecordingWidget) RemoveSections(indices []int) error {
	w.record("removeSections %s", joinInts(indices))
	if err := w.failure("removeSections"); err != nil {
		return err
	}
	for _, i := range indices {
		if i < 0 || i >= len(w.sections) {
			return w.outOfBounds("removeSections", fmt.Sprint(i))
		}
		w.sections = slices.Delete(w.sections, i, i+1)
	}
	return w.commit()
}

// MoveSection implements driver.Widget.
func (w *RecordingWidget) MoveSection(from, to int) error {
	w.record("moveSection %d->%d", from, to)
	if err := w.failure("moveSection"); err != nil {
		return err
	}
	if from < 0 || from >= len(w.sections) || to < 0 || to >= len(w.sections) {
		return w.outOfBounds("moveSection", fmt.Sprintf("%d->%d", from, to))
	}
	sec := w.sections[from]
	w.sections = slices.Delete(w.sections, from, from+1)
	w.sections = slices.Insert(w.sections, to, sec)
	return w.commit()
}

// InsertRows implements driver.Widget.
func (w *RecordingWidget) InsertRows(positions []snapshot.Position) error {
	w.record("insertRows %s", joinPositions(positions))
	if err := w.failure("insertRows"); err != nil {
		return err
	}
	for _, p := range positions {
		if p.Section < 0 || p.Section >= len(w.sections) || p.Row < 0 || p.Row > len(w.sections[p.Section].rows) {
			return w.outOfBounds("insertRows", p.String())
		}
		sec := &w.sections[p.Section]
		sec.rows = slices.Insert(sec.rows, p.Row, identity.Key{})
	}
	for _, p := range positions {
		ref, _ := w.source.ItemKey(p)
		w.sections[p.Section].rows[p.Row] = ref.Item
	}
	return w.commit()
}

// RemoveRows implements driver.Widget.
func (w *RecordingWidget) RemoveRows(positions []snapshot.Position) error {
	w.record("removeRows %s", joinPositions(positions))
	if err := w.failure("removeRows"); err != nil {
		return err
	}
	for _, p := range positions {
		if !w.inBounds(p) {
			return w.outOfBounds("removeRows", p.String())
		}
		sec := &w.sections[p.Section]
		sec.rows = slices.Delete(sec.rows, p.Row, p.Row+1)
	}
	return w.commit()
}

// MoveRow implements driver.Widget.
func (w *RecordingWidget) MoveRow(from, to snapshot.Position) error {
	w.record("moveRow %s->%s", from, to)
	if err := w.failure("moveRow"); err != nil {
		return err
	}
	if !w.inBounds(from) || to.Section < 0 || to.Section >= len(w.sections) {
		return w.outOfBounds("moveRow", from.String())
	}
	key := w.sections[from.Section].rows[from.Row]
	src := &w.sections[from.Section]
	src.rows = slices.Delete(src.rows, from.Row, from.Row+1)
	dst := &w.sections[to.Section]
	if to.Row < 0 || to.Row > len(dst.rows) {
		return w.outOfBounds("moveRow", to.String())
	}
	dst.rows = slices.Insert(dst.rows, to.Row, key)
	return w.commit()
}

// ReloadRows implements driver.Widget. Displayed rows are fetched again.
func (w *RecordingWidget) ReloadRows(positions []snapshot.Position) error {
	w.record("reloadRows %s", joinPositions(positions))
	if err := w.failure("reloadRows"); err != nil {
		return err
	}
	for _, p := range positions {
		if !w.inBounds(p) {
			return w.outOfBounds("reloadRows", p.String())
		}
		ref := scroll.RowRef{Section: w.sections[p.Section].key, Item: w.sections[p.Section].rows[p.Row]}
		if _, ok := w.displayed[ref]; !ok {
			continue
		}
		r, err := w.source.Row(p)
		if err != nil {
			return err
		}
		w.displayed[ref] = r
	}
	return w.commit()
}

// NumberOfSections implements driver.Widget.
func (w *RecordingWidget) NumberOfSections() int {
	return len(w.sections)
}

// NumberOfRows implements driver.Widget.
func (w *RecordingWidget) NumberOfRows(section int) int {
	if section < 0 || section >= len(w.sections) {
		return 0
	}
	return len(w.sections[section].rows)
}

// ScrollTo simulates a user scroll to y.
func (w *RecordingWidget) ScrollTo(y float64) error {
	w.offset.Y = y
	if err := w.layout(); err != nil {
		return err
	}
	w.source.DidScroll()
	return nil
}

// PullToRefresh simulates the user pulling the refresh control.
func (w *RecordingWidget) PullToRefresh() {
	w.Refreshing = true
	w.source.DidPullToRefresh()
}

func (w *RecordingWidget) record(format string, args ...any) {
	w.log.Commands = append(w.log.Commands, fmt.Sprintf(format, args...))
}

func (w *RecordingWidget) recordScroll(format string, args ...any) {
	w.log.Scroll = append(w.log.Scroll, fmt.Sprintf(format, args...))
}

func (w *RecordingWidget) failure(cmd string) error {
	if w.FailOn != cmd {
		return nil
	}
	w.FailOn = ""
	return errors.New("testing.RecordingWidget", errors.KindConsistency, fmt.Errorf("injected failure in %s", cmd))
}

func (w *RecordingWidget) inBounds(p snapshot.Position) bool {
	return p.Section >= 0 && p.Section < len(w.sections) && p.Row >= 0 && p.Row < len(w.sections[p.Section].rows)
}

func (w *RecordingWidget) outOfBounds(cmd, at string) error {
	return errors.New("testing.RecordingWidget", errors.KindConsistency,
		fmt.Errorf("%w: %s %s", errors.ErrOutOfBounds, cmd, at))
}

func (w *RecordingWidget) fetchSection(i int) recordedSection {
	key, _ := w.source.SectionKey(i)
	sec := recordedSection{key: key, rows: make([]identity.Key, w.source.NumberOfRows(i))}
	for r := range sec.rows {
		ref, _ := w.source.ItemKey(snapshot.Position{Section: i, Row: r})
		sec.rows[r] = ref.Item
	}
	return sec
}

// commit checks the widget against its data source and refreshes the
// displayed rows.
func (w *RecordingWidget) commit() error {
	if err := w.verify(); err != nil {
		return err
	}
	return w.layout()
}

func (w *RecordingWidget) verify() error {
	mismatch := func(format string, args ...any) error {
		return errors.New("testing.RecordingWidget", errors.KindConsistency,
			fmt.Errorf("%w: %s", errors.ErrCountMismatch, fmt.Sprintf(format, args...)))
	}
	if n := w.source.NumberOfSections(); n != len(w.sections) {
		return mismatch("widget has %d sections, data source %d", len(w.sections), n)
	}
	for i, sec := range w.sections {
		if key, _ := w.source.SectionKey(i); key != sec.key {
			return mismatch("section %d is %v, data source has %v", i, sec.key, key)
		}
		if n := w.source.NumberOfRows(i); n != len(sec.rows) {
			return mismatch("section %d has %d rows, data source %d", i, len(sec.rows), n)
		}
		for r, key := range sec.rows {
			pos := snapshot.Position{Section: i, Row: r}
			if ref, _ := w.source.ItemKey(pos); ref.Item != key {
				return mismatch("row %s is %v, data source has %v", pos, key, ref.Item)
			}
		}
	}
	return nil
}

// layout fetches rows that scrolled into view and releases rows that left it
// or no longer exist.
func (w *RecordingWidget) layout() error {
	positions := w.VisibleRows()
	visible := make(map[scroll.RowRef]bool, len(positions))
	refs := make([]scroll.RowRef, len(positions))
	for i, pos := range positions {
		sec := w.sections[pos.Section]
		refs[i] = scroll.RowRef{Section: sec.key, Item: sec.rows[pos.Row]}
		visible[refs[i]] = true
	}
	// Hand rows back before fetching so a released renderer can be reused
	// within the same pass.
	for ref, r := range w.displayed {
		if !visible[ref] {
			delete(w.displayed, ref)
			w.source.DidEndDisplaying(r)
		}
	}
	for i, pos := range positions {
		if _, ok := w.displayed[refs[i]]; ok {
			continue
		}
		r, err := w.source.Row(pos)
		if err != nil {
			return err
		}
		w.displayed[refs[i]] = r
	}
	return nil
}

// ContentOffset implements scroll.Surface.
func (w *RecordingWidget) ContentOffset() geometry.Point {
	return w.offset
}

// SetContentOffset implements scroll.Surface.
func (w *RecordingWidget) SetContentOffset(p geometry.Point) error {
	w.recordScroll("setContentOffset %s", p)
	w.offset = p
	return w.layout()
}

// SetInsets implements scroll.Surface.
func (w *RecordingWidget) SetInsets(in geometry.EdgeInsets) error {
	w.recordScroll("setInsets %v", in)
	w.Insets = in
	return nil
}

// SetAlignment implements scroll.Surface.
func (w *RecordingWidget) SetAlignment(a scroll.Alignment) error {
	w.recordScroll("setAlignment %s", a)
	w.Alignment = a
	return nil
}

// SetBounces implements scroll.Surface.
func (w *RecordingWidget) SetBounces(vertical, horizontal bool) error {
	w.recordScroll("setBounces %t %t", vertical, horizontal)
	w.BounceV, w.BounceH = vertical, horizontal
	return nil
}

// SetStyle implements scroll.Surface.
func (w *RecordingWidget) SetStyle(s scroll.Style) error {
	w.recordScroll("setStyle %s", s)
	w.Style = s
	return nil
}

// SetSeparatorStyle implements scroll.Surface.
func (w *RecordingWidget) SetSeparatorStyle(s scroll.SeparatorStyle) error {
	w.recordScroll("setSeparatorStyle %s", s)
	w.Separator = s
	return nil
}

// SetRefreshTint implements scroll.Surface.
func (w *RecordingWidget) SetRefreshTint(c *geometry.Color) error {
	if c == nil {
		w.recordScroll("setRefreshTint default")
	} else {
		w.recordScroll("setRefreshTint %s", *c)
	}
	w.Tint = c
	return nil
}

// BeginRefreshing implements scroll.Surface.
func (w *RecordingWidget) BeginRefreshing() error {
	w.recordScroll("beginRefreshing")
	w.Refreshing = true
	return nil
}

// EndRefreshing implements scroll.Surface.
func (w *RecordingWidget) EndRefreshing() error {
	w.recordScroll("endRefreshing")
	w.Refreshing = false
	return nil
}

// VisibleRows implements scroll.Surface.
func (w *RecordingWidget) VisibleRows() []snapshot.Position {
	var out []snapshot.Position
	top, bottom := w.offset.Y, w.offset.Y+w.Viewport
	y := 0.0
	for si, sec := range w.sections {
		y += w.HeaderHeight
		for r := range sec.rows {
			if y+w.RowHeight > top && y < bottom {
				out = append(out, snapshot.Position{Section: si, Row: r})
			}
			y += w.RowHeight
		}
	}
	return out
}

// RowFrame implements scroll.Surface.
func (w *RecordingWidget) RowFrame(pos snapshot.Position) (geometry.Rect, bool) {
	if !w.inBounds(pos) {
		return geometry.Rect{}, false
	}
	y := 0.0
	for si := 0; si < pos.Section; si++ {
		y += w.HeaderHeight + float64(len(w.sections[si].rows))*w.RowHeight
	}
	y += w.HeaderHeight + float64(pos.Row)*w.RowHeight
	return geometry.RectFromLTWH(0, y, 320, w.RowHeight), true
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, " ")
}

func joinPositions(v []snapshot.Position) string {
	parts := make([]string, len(v))
	for i, p := range v {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}
