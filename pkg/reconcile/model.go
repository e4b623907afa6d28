package reconcile

import (
	"fmt"
	"slices"

	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/identity"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// Model is a mutable, key-only copy of a rendered list. Applying the ops of a
// ChangeSet to a Model built from the old snapshot yields the keys of the new
// snapshot. The driver uses it to answer widget queries mid-update.
type Model struct {
	sections []modelSection
}

type modelSection struct {
	key   identity.Key
	items []identity.Key
}

// NewModel copies the keys of s.
func NewModel(s *snapshot.Snapshot) *Model {
	m := &Model{sections: make([]modelSection, 0, s.Len())}
	for _, sec := range s.Sections() {
		m.sections = append(m.sections, sectionFrom(sec))
	}
	return m
}

func sectionFrom(sec snapshot.Section) modelSection {
	items := make([]identity.Key, len(sec.Items))
	for i, it := range sec.Items {
		items[i] = it.Key
	}
	return modelSection{key: sec.Key, items: items}
}

// Len returns the number of sections.
func (m *Model) Len() int {
	return len(m.sections)
}

// Rows returns the number of rows in section si, or -1 if si is out of range.
func (m *Model) Rows(si int) int {
	if si < 0 || si >= len(m.sections) {
		return -1
	}
	return len(m.sections[si].items)
}

// SectionKey returns the key of section si.
func (m *Model) SectionKey(si int) (identity.Key, bool) {
	if si < 0 || si >= len(m.sections) {
		return identity.Key{}, false
	}
	return m.sections[si].key, true
}

// Key returns the item key at pos.
func (m *Model) Key(pos snapshot.Position) (identity.Key, bool) {
	if pos.Section < 0 || pos.Section >= len(m.sections) {
		return identity.Key{}, false
	}
	items := m.sections[pos.Section].items
	if pos.Row < 0 || pos.Row >= len(items) {
		return identity.Key{}, false
	}
	return items[pos.Row], true
}

// IndexOf returns the current index of the section with the given key.
func (m *Model) IndexOf(sectionKey identity.Key) (int, bool) {
	for i, sec := range m.sections {
		if sec.key == sectionKey {
			return i, true
		}
	}
	return 0, false
}

// Apply performs op. Inserted sections take their rows from target.
func (m *Model) Apply(op Op, target *snapshot.Snapshot) error {
	switch op.Kind {
	case OpRemoveSection:
		if op.Section < 0 || op.Section >= len(m.sections) {
			return m.outOfBounds(op)
		}
		m.sections = slices.Delete(m.sections, op.Section, op.Section+1)
	case OpInsertSection:
		if op.Section < 0 || op.Section > len(m.sections) {
			return m.outOfBounds(op)
		}
		ti, ok := target.SectionIndex(op.SectionKey)
		if !ok {
			return errors.New("reconcile.Model", errors.KindConsistency,
				fmt.Errorf("inserted section %v not in target", op.SectionKey))
		}
		m.sections = slices.Insert(m.sections, op.Section, sectionFrom(target.Section(ti)))
	case OpMoveSection:
		if op.Section < 0 || op.Section >= len(m.sections) || op.ToSection < 0 || op.ToSection >= len(m.sections) {
			return m.outOfBounds(op)
		}
		sec := m.sections[op.Section]
		m.sections = slices.Delete(m.sections, op.Section, op.Section+1)
		m.sections = slices.Insert(m.sections, op.ToSection, sec)
	case OpRemoveRow:
		if m.Rows(op.Section) <= op.Row || op.Row < 0 {
			return m.outOfBounds(op)
		}
		sec := &m.sections[op.Section]
		sec.items = slices.Delete(sec.items, op.Row, op.Row+1)
	case OpInsertRow:
		if n := m.Rows(op.Section); n < 0 || op.Row < 0 || op.Row > n {
			return m.outOfBounds(op)
		}
		sec := &m.sections[op.Section]
		sec.items = slices.Insert(sec.items, op.Row, op.Key)
	case OpMoveRow:
		if m.Rows(op.Section) <= op.Row || op.Row < 0 {
			return m.outOfBounds(op)
		}
		key := m.sections[op.Section].items[op.Row]
		src := &m.sections[op.Section]
		src.items = slices.Delete(src.items, op.Row, op.Row+1)
		if n := m.Rows(op.ToSection); n < 0 || op.ToRow < 0 || op.ToRow > n {
			src.items = slices.Insert(src.items, op.Row, key)
			return m.outOfBounds(op)
		}
		dst := &m.sections[op.ToSection]
		dst.items = slices.Insert(dst.items, op.ToRow, key)
	case OpReloadRow:
		if m.Rows(op.Section) <= op.Row || op.Row < 0 {
			return m.outOfBounds(op)
		}
	}
	return nil
}

func (m *Model) outOfBounds(op Op) error {
	return &errors.ListError{
		Op:      "reconcile.Model",
		Kind:    errors.KindConsistency,
		Section: op.Section,
		Err:     fmt.Errorf("%w: %s", errors.ErrOutOfBounds, op),
	}
}

// Matches reports whether the model holds exactly the keys of s, in order.
func (m *Model) Matches(s *snapshot.Snapshot) bool {
	if len(m.sections) != s.Len() {
		return false
	}
	for i, sec := range s.Sections() {
		ms := m.sections[i]
		if ms.key != sec.Key || len(ms.items) != len(sec.Items) {
			return false
		}
		for j, it := range sec.Items {
			if ms.items[j] != it.Key {
				return false
			}
		}
	}
	return true
}

// Keys returns the key-only view of the model.
func (m *Model) Keys() []snapshot.SectionKeys {
	out := make([]snapshot.SectionKeys, len(m.sections))
	for i, sec := range m.sections {
		out[i] = snapshot.SectionKeys{Section: sec.key, Items: slices.Clone(sec.items)}
	}
	return out
}
