// Package snapshot holds the immutable two-level section/item structure that
// the reconciler compares.
//
// A Snapshot is built once from caller data and never mutated. Construction
// indexes every section and item key so lookups by key are O(1); building the
// index is linear in the number of items.
//
// Keys must be unique among sections and among the items of one section. When a
// caller breaks that rule the first occurrence keeps its key and every later
// occurrence receives a synthetic key (see [identity.Synthetic]), so no row is
// ever dropped.
package snapshot

import (
	"fmt"
	"strings"

	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/identity"
)

// Position addresses a row by section index and row index.
type Position struct {
	Section int
	Row     int
}

func (p Position) String() string {
	return fmt.Sprintf("[%d,%d]", p.Section, p.Row)
}

// Less orders positions by section, then row.
func (p Position) Less(other Position) bool {
	if p.Section != other.Section {
		return p.Section < other.Section
	}
	return p.Row < other.Row
}

// Item is one row: an identity key and the caller's payload.
type Item struct {
	Key     identity.Key
	Payload any
}

// Section is a keyed, ordered group of items. Payload is the caller's section
// value, handed to header and footer builders.
type Section struct {
	Key     identity.Key
	Payload any
	Items   []Item
}

// Group is the caller-side input for one section.
type Group[S, I any] struct {
	Section S
	Items   []I
}

// Snapshot is an immutable ordered sequence of sections.
type Snapshot struct {
	sections     []Section
	sectionIndex map[identity.Key]int
	itemIndex    []map[identity.Key]int
	totalRows    int
}

// New builds a snapshot from groups, deriving keys with the given extractors.
// An extractor failure aborts construction.
func New[S, I any](groups []Group[S, I], sectionKey identity.Extractor[S], itemKey identity.Extractor[I]) (*Snapshot, error) {
	sections := make([]Section, len(groups))
	for si, g := range groups {
		sk, err := identity.Identify(g.Section, sectionKey)
		if err != nil {
			return nil, &errors.ListError{Op: "snapshot.New", Kind: errors.KindSnapshot, Section: si, Err: err}
		}
		items := make([]Item, len(g.Items))
		for ri, v := range g.Items {
			ik, err := identity.Identify(v, itemKey)
			if err != nil {
				return nil, &errors.ListError{
					Op:      "snapshot.New",
					Kind:    errors.KindSnapshot,
					Section: si,
					Err:     fmt.Errorf("row %d: %w", ri, err),
				}
			}
			items[ri] = Item{Key: ik, Payload: v}
		}
		sections[si] = Section{Key: sk, Payload: g.Section, Items: items}
	}
	return FromSections(sections), nil
}

// Single builds a one-section snapshot whose section key is the integer 0.
func Single[I any](items []I, itemKey identity.Extractor[I]) (*Snapshot, error) {
	return New([]Group[int, I]{{Section: 0, Items: items}}, identity.Self[int](), itemKey)
}

// Empty returns a snapshot with no sections.
func Empty() *Snapshot {
	return FromSections(nil)
}

// FromSections builds a snapshot from already keyed sections. The slices are
// copied; duplicate keys are disambiguated.
func FromSections(in []Section) *Snapshot {
	s := &Snapshot{
		sections:     make([]Section, len(in)),
		sectionIndex: make(map[identity.Key]int, len(in)),
		itemIndex:    make([]map[identity.Key]int, len(in)),
	}
	seenSections := make(map[identity.Key]int)
	for si, sec := range in {
		sec.Key = disambiguate(sec.Key, s.sectionIndex, seenSections)
		s.sectionIndex[sec.Key] = si

		items := make([]Item, len(sec.Items))
		index := make(map[identity.Key]int, len(sec.Items))
		seen := make(map[identity.Key]int)
		for ri, it := range sec.Items {
			it.Key = disambiguate(it.Key, index, seen)
			index[it.Key] = ri
			items[ri] = it
		}
		sec.Items = items
		s.sections[si] = sec
		s.itemIndex[si] = index
		s.totalRows += len(items)
	}
	return s
}

// disambiguate returns key, or a fresh synthetic key if key is already taken.
func disambiguate(key identity.Key, taken map[identity.Key]int, dups map[identity.Key]int) identity.Key {
	if _, ok := taken[key]; !ok {
		return key
	}
	base := key.Base()
	for {
		dups[base]++
		candidate := identity.Synthetic(base, dups[base])
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}

// Len returns the number of sections.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.sections)
}

// Section returns the section at index i.
func (s *Snapshot) Section(i int) Section {
	return s.sections[i]
}

// Sections returns the sections in order. The slice must not be modified.
func (s *Snapshot) Sections() []Section {
	if s == nil {
		return nil
	}
	return s.sections
}

// Items returns the items of section i in order. The slice must not be modified.
func (s *Snapshot) Items(i int) []Item {
	return s.sections[i].Items
}

// RowCount returns the number of items in section i.
func (s *Snapshot) RowCount(i int) int {
	return len(s.sections[i].Items)
}

// TotalRows returns the number of items across all sections.
func (s *Snapshot) TotalRows() int {
	if s == nil {
		return 0
	}
	return s.totalRows
}

// Item returns the item at pos.
func (s *Snapshot) Item(pos Position) (Item, bool) {
	if s == nil || pos.Section < 0 || pos.Section >= len(s.sections) {
		return Item{}, false
	}
	items := s.sections[pos.Section].Items
	if pos.Row < 0 || pos.Row >= len(items) {
		return Item{}, false
	}
	return items[pos.Row], true
}

// SectionIndex returns the index of the section with the given key.
func (s *Snapshot) SectionIndex(key identity.Key) (int, bool) {
	if s == nil {
		return 0, false
	}
	i, ok := s.sectionIndex[key]
	return i, ok
}

// ItemPosition returns the position of the item with the given key inside
// section index si.
func (s *Snapshot) ItemPosition(si int, key identity.Key) (Position, bool) {
	if s == nil || si < 0 || si >= len(s.itemIndex) {
		return Position{}, false
	}
	row, ok := s.itemIndex[si][key]
	if !ok {
		return Position{}, false
	}
	return Position{Section: si, Row: row}, true
}

// Locate finds an item by its section key and item key.
func (s *Snapshot) Locate(sectionKey, itemKey identity.Key) (Position, bool) {
	si, ok := s.SectionIndex(sectionKey)
	if !ok {
		return Position{}, false
	}
	return s.ItemPosition(si, itemKey)
}

// Keys returns the ordered item keys grouped by section key, mainly for tests
// and diagnostics.
func (s *Snapshot) Keys() []SectionKeys {
	if s == nil {
		return nil
	}
	out := make([]SectionKeys, len(s.sections))
	for i, sec := range s.sections {
		keys := make([]identity.Key, len(sec.Items))
		for j, it := range sec.Items {
			keys[j] = it.Key
		}
		out[i] = SectionKeys{Section: sec.Key, Items: keys}
	}
	return out
}

// SectionKeys is the key-only view of one section.
type SectionKeys struct {
	Section identity.Key
	Items   []identity.Key
}

func (s *Snapshot) String() string {
	var sb strings.Builder
	for i, sk := range s.Keys() {
		if i > 0 {
			sb.WriteString(" ")
		}
		fmt.Fprintf(&sb, "%v:[", sk.Section)
		for j, k := range sk.Items {
			if j > 0 {
				sb.WriteString(",")
			}
			sb.WriteString(k.String())
		}
		sb.WriteString("]")
	}
	return sb.String()
}
