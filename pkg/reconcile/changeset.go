package reconcile

import (
	"fmt"
	"strings"

	"github.com/go-drift/sectionlist/pkg/identity"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// OpKind identifies a structural or reload operation.
type OpKind int

const (
	// OpRemoveSection removes a section and all of its rows.
	OpRemoveSection OpKind = iota
	// OpRemoveRow removes one row.
	OpRemoveRow
	// OpInsertSection inserts a section together with its rows.
	OpInsertSection
	// OpInsertRow inserts one row.
	OpInsertRow
	// OpMoveSection moves a section, carrying its rows.
	OpMoveSection
	// OpMoveRow moves one row within its section.
	OpMoveRow
	// OpReloadRow marks a matched row whose content may have changed.
	OpReloadRow
)

func (k OpKind) String() string {
	switch k {
	case OpRemoveSection:
		return "remove-section"
	case OpRemoveRow:
		return "remove-row"
	case OpInsertSection:
		return "insert-section"
	case OpInsertRow:
		return "insert-row"
	case OpMoveSection:
		return "move-section"
	case OpMoveRow:
		return "move-row"
	case OpReloadRow:
		return "reload-row"
	default:
		return fmt.Sprintf("OpKind(%d)", int(k))
	}
}

// Op is one step of a ChangeSet. Coordinates are valid at the moment the op is
// applied, after every preceding op of the same ChangeSet has been applied.
//
// Section ops use Section (and ToSection for moves). Row ops use Section/Row
// (and ToSection/ToRow for moves).
type Op struct {
	Kind       OpKind
	Section    int
	Row        int
	ToSection  int
	ToRow      int
	SectionKey identity.Key
	Key        identity.Key
}

// At returns the source position of a row op.
func (o Op) At() snapshot.Position {
	return snapshot.Position{Section: o.Section, Row: o.Row}
}

// To returns the destination position of a row move.
func (o Op) To() snapshot.Position {
	return snapshot.Position{Section: o.ToSection, Row: o.ToRow}
}

// IsRowOp reports whether o addresses a single row.
func (o Op) IsRowOp() bool {
	switch o.Kind {
	case OpRemoveRow, OpInsertRow, OpMoveRow, OpReloadRow:
		return true
	}
	return false
}

func (o Op) String() string {
	switch o.Kind {
	case OpRemoveSection, OpInsertSection:
		return fmt.Sprintf("%s %d (%v)", o.Kind, o.Section, o.SectionKey)
	case OpMoveSection:
		return fmt.Sprintf("%s %d->%d (%v)", o.Kind, o.Section, o.ToSection, o.SectionKey)
	case OpMoveRow:
		return fmt.Sprintf("%s %v->%v (%v)", o.Kind, o.At(), o.To(), o.Key)
	default:
		return fmt.Sprintf("%s %v (%v)", o.Kind, o.At(), o.Key)
	}
}

// ChangeSet is the ordered list of operations that turns the rendering of one
// snapshot into the rendering of another.
type ChangeSet struct {
	Ops []Op
	// FullReload is set when the diff fell back to remove-all + insert-all.
	FullReload bool
	// Changed counts structural changes: one per row inserted, removed or
	// moved, the rows of inserted and removed sections, and one per section
	// move.
	Changed int
	// Total is the row count of the larger snapshot.
	Total int
}

// IsEmpty reports whether the change set contains no operations at all.
func (c *ChangeSet) IsEmpty() bool {
	return c == nil || len(c.Ops) == 0
}

// Structural reports whether the change set contains anything besides reloads.
func (c *ChangeSet) Structural() bool {
	if c == nil {
		return false
	}
	for _, op := range c.Ops {
		if op.Kind != OpReloadRow {
			return true
		}
	}
	return false
}

// Count returns the number of ops of the given kind.
func (c *ChangeSet) Count(kind OpKind) int {
	if c == nil {
		return 0
	}
	n := 0
	for _, op := range c.Ops {
		if op.Kind == kind {
			n++
		}
	}
	return n
}

// Filter returns the ops of the given kinds, in order.
func (c *ChangeSet) Filter(kinds ...OpKind) []Op {
	if c == nil {
		return nil
	}
	var out []Op
	for _, op := range c.Ops {
		for _, k := range kinds {
			if op.Kind == k {
				out = append(out, op)
				break
			}
		}
	}
	return out
}

// SectionRemovals returns removed section indices, descending.
func (c *ChangeSet) SectionRemovals() []int {
	return sectionIndices(c.Filter(OpRemoveSection))
}

// SectionInsertions returns inserted section indices, ascending.
func (c *ChangeSet) SectionInsertions() []int {
	return sectionIndices(c.Filter(OpInsertSection))
}

// ItemRemovals returns removed row positions, descending.
func (c *ChangeSet) ItemRemovals() []snapshot.Position {
	return positions(c.Filter(OpRemoveRow))
}

// ItemInsertions returns inserted row positions, ascending.
func (c *ChangeSet) ItemInsertions() []snapshot.Position {
	return positions(c.Filter(OpInsertRow))
}

// Moves returns section and row moves in application order.
func (c *ChangeSet) Moves() []Op {
	return c.Filter(OpMoveSection, OpMoveRow)
}

// Reloads returns reloaded row positions in the new snapshot.
func (c *ChangeSet) Reloads() []snapshot.Position {
	return positions(c.Filter(OpReloadRow))
}

func (c *ChangeSet) String() string {
	if c.IsEmpty() {
		return "(no changes)"
	}
	var sb strings.Builder
	if c.FullReload {
		sb.WriteString("full reload\n")
	}
	for _, op := range c.Ops {
		sb.WriteString(op.String())
		sb.WriteString("\n")
	}
	return sb.String()
}

func sectionIndices(ops []Op) []int {
	out := make([]int, len(ops))
	for i, op := range ops {
		out[i] = op.Section
	}
	return out
}

func positions(ops []Op) []snapshot.Position {
	out := make([]snapshot.Position, len(ops))
	for i, op := range ops {
		out[i] = op.At()
	}
	return out
}
