package driver

import (
	"fmt"

	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/identity"
	"github.com/go-drift/sectionlist/pkg/pool"
	"github.com/go-drift/sectionlist/pkg/scroll"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// NumberOfSections implements DataSource. While a cycle is applying it reflects
// the ops issued so far.
func (d *Driver) NumberOfSections() int {
	return d.model.Len()
}

// NumberOfRows implements DataSource.
func (d *Driver) NumberOfRows(section int) int {
	return max(d.model.Rows(section), 0)
}

// SectionKey implements DataSource.
func (d *Driver) SectionKey(section int) (identity.Key, bool) {
	return d.model.SectionKey(section)
}

// ItemKey implements DataSource.
func (d *Driver) ItemKey(pos snapshot.Position) (scroll.RowRef, bool) {
	sk, ok := d.model.SectionKey(pos.Section)
	if !ok {
		return scroll.RowRef{}, false
	}
	ik, ok := d.model.Key(pos)
	if !ok {
		return scroll.RowRef{}, false
	}
	return scroll.RowRef{Section: sk, Item: ik}, true
}

// Row implements DataSource. A row keeps its renderer until it is removed or
// ends displaying; moves and reloads do not rebind it.
func (d *Driver) Row(pos snapshot.Position) (r *pool.Renderer, err error) {
	defer errors.RecoverWithCallback("driver.Row", func(p *errors.PanicError) {
		r, err = nil, panicError("driver.Row", p)
	})
	ref, ok := d.ItemKey(pos)
	if !ok {
		return nil, &errors.ListError{
			Op:      "driver.Row",
			Kind:    errors.KindConsistency,
			Section: pos.Section,
			Err:     fmt.Errorf("%w: %v", errors.ErrOutOfBounds, pos),
		}
	}
	s := slot{role: roleRow, section: ref.Section, item: ref.Item}
	if r, ok := d.bound[s]; ok {
		return r, nil
	}
	var payload any
	if item, ok := d.item(ref); ok {
		payload = item.Payload
	}
	return d.bind(s, d.content.Row, pool.KindRow, ref.Item, payload, pos), nil
}

// Header implements DataSource.
func (d *Driver) Header(section int) (*pool.Renderer, error) {
	return d.supplementary("driver.Header", roleHeader, d.content.Header, pool.KindHeader, section)
}

// Footer implements DataSource.
func (d *Driver) Footer(section int) (*pool.Renderer, error) {
	return d.supplementary("driver.Footer", roleFooter, d.content.Footer, pool.KindFooter, section)
}

func (d *Driver) supplementary(op string, role slotRole, b *Builder, kind pool.Kind, section int) (r *pool.Renderer, err error) {
	if b == nil {
		return nil, nil
	}
	defer errors.RecoverWithCallback(op, func(p *errors.PanicError) {
		r, err = nil, panicError(op, p)
	})
	sk, ok := d.model.SectionKey(section)
	if !ok {
		return nil, &errors.ListError{
			Op:      op,
			Kind:    errors.KindConsistency,
			Section: section,
			Err:     errors.ErrOutOfBounds,
		}
	}
	s := slot{role: role, section: sk}
	if r, ok := d.bound[s]; ok {
		return r, nil
	}
	var payload any
	if sec, ok := d.section(sk); ok {
		payload = sec.Payload
	}
	return d.bind(s, b, kind, sk, payload, snapshot.Position{Section: section, Row: -1}), nil
}

// DidEndDisplaying implements DataSource. Renderers the driver no longer owns
// are ignored.
func (d *Driver) DidEndDisplaying(r *pool.Renderer) {
	if r == nil {
		return
	}
	s, ok := d.owners[r.ID()]
	if !ok || d.bound[s] != r {
		return
	}
	d.release(s)
}

// DidScroll implements DataSource.
func (d *Driver) DidScroll() {
	d.sync.DidScroll(d.widget, d.cfg)
}

// DidPullToRefresh implements DataSource.
func (d *Driver) DidPullToRefresh() {
	d.sync.DidPullToRefresh(d.cfg)
}

// bind builds content before acquiring so a panicking builder leaks nothing.
func (d *Driver) bind(s slot, b *Builder, fallback pool.Kind, key identity.Key, payload any, pos snapshot.Position) *pool.Renderer {
	content := b.build(payload, pos)
	r := d.pool.Acquire(b.kind(fallback))
	r.Bind(key, content)
	d.bound[s] = r
	d.owners[r.ID()] = s
	return r
}

func (d *Driver) release(s slot) {
	r, ok := d.bound[s]
	if !ok {
		return
	}
	delete(d.bound, s)
	delete(d.owners, r.ID())
	if err := d.pool.Release(r); err != nil {
		errors.Report(wrap("driver.release", err))
	}
}

// item looks a row up in the snapshot being applied, falling back to the
// baseline.
func (d *Driver) item(ref scroll.RowRef) (snapshot.Item, bool) {
	for _, s := range []*snapshot.Snapshot{d.target, d.baseline} {
		if s == nil {
			continue
		}
		if pos, ok := s.Locate(ref.Section, ref.Item); ok {
			return s.Item(pos)
		}
	}
	return snapshot.Item{}, false
}

func (d *Driver) section(key identity.Key) (snapshot.Section, bool) {
	for _, s := range []*snapshot.Snapshot{d.target, d.baseline} {
		if s == nil {
			continue
		}
		if i, ok := s.SectionIndex(key); ok {
			return s.Section(i), true
		}
	}
	return snapshot.Section{}, false
}

func panicError(op string, p *errors.PanicError) *errors.ListError {
	return &errors.ListError{
		Op:         op,
		Kind:       errors.KindPanic,
		Err:        p,
		Section:    -1,
		StackTrace: p.StackTrace,
		Timestamp:  p.Timestamp,
	}
}
