package reconcile

import (
	"fmt"
	"math/rand"
	"slices"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-drift/sectionlist/pkg/identity"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// snap builds a snapshot from a compact description: "A:1,2,3 B:4".
func snap(t testing.TB, desc string) *snapshot.Snapshot {
	t.Helper()
	var sections []snapshot.Section
	for _, part := range strings.Fields(desc) {
		name, rows, _ := strings.Cut(part, ":")
		sec := snapshot.Section{Key: identity.Of(name)}
		if rows != "" {
			for _, r := range strings.Split(rows, ",") {
				sec.Items = append(sec.Items, snapshot.Item{Key: identity.Of(r), Payload: r})
			}
		}
		sections = append(sections, sec)
	}
	return snapshot.FromSections(sections)
}

// widgetModel is an independent list model that applies ops the way an
// imperative list widget would, checking bounds at every step.
type widgetModel struct {
	sections []string
	rows     [][]string
}

func newWidgetModel(s *snapshot.Snapshot) *widgetModel {
	w := &widgetModel{}
	for _, sec := range s.Sections() {
		w.sections = append(w.sections, sec.Key.String())
		var rows []string
		for _, it := range sec.Items {
			rows = append(rows, it.Key.String())
		}
		w.rows = append(w.rows, rows)
	}
	return w
}

func (w *widgetModel) apply(op Op, target *snapshot.Snapshot) error {
	switch op.Kind {
	case OpRemoveSection:
		if op.Section >= len(w.sections) {
			return fmt.Errorf("remove section %d of %d", op.Section, len(w.sections))
		}
		w.sections = slices.Delete(w.sections, op.Section, op.Section+1)
		w.rows = slices.Delete(w.rows, op.Section, op.Section+1)
	case OpInsertSection:
		if op.Section > len(w.sections) {
			return fmt.Errorf("insert section %d of %d", op.Section, len(w.sections))
		}
		ti, _ := target.SectionIndex(op.SectionKey)
		var rows []string
		for _, it := range target.Items(ti) {
			rows = append(rows, it.Key.String())
		}
		w.sections = slices.Insert(w.sections, op.Section, op.SectionKey.String())
		w.rows = slices.Insert(w.rows, op.Section, rows)
	case OpMoveSection:
		name, rows := w.sections[op.Section], w.rows[op.Section]
		w.sections = slices.Delete(w.sections, op.Section, op.Section+1)
		w.rows = slices.Delete(w.rows, op.Section, op.Section+1)
		w.sections = slices.Insert(w.sections, op.ToSection, name)
		w.rows = slices.Insert(w.rows, op.ToSection, rows)
	case OpRemoveRow:
		if op.Row >= len(w.rows[op.Section]) {
			return fmt.Errorf("remove row %v", op.At())
		}
		w.rows[op.Section] = slices.Delete(w.rows[op.Section], op.Row, op.Row+1)
	case OpInsertRow:
		if op.Row > len(w.rows[op.Section]) {
			return fmt.Errorf("insert row %v", op.At())
		}
		w.rows[op.Section] = slices.Insert(w.rows[op.Section], op.Row, op.Key.String())
	case OpMoveRow:
		key := w.rows[op.Section][op.Row]
		w.rows[op.Section] = slices.Delete(w.rows[op.Section], op.Row, op.Row+1)
		w.rows[op.ToSection] = slices.Insert(w.rows[op.ToSection], op.ToRow, key)
	case OpReloadRow:
		if op.Row >= len(w.rows[op.Section]) {
			return fmt.Errorf("reload row %v", op.At())
		}
	}
	return nil
}

func (w *widgetModel) String() string {
	var parts []string
	for i, name := range w.sections {
		parts = append(parts, name+":["+strings.Join(w.rows[i], ",")+"]")
	}
	return strings.Join(parts, " ")
}

func roundTrip(t *testing.T, old, new *snapshot.Snapshot, cs *ChangeSet) {
	t.Helper()
	w := newWidgetModel(old)
	for i, op := range cs.Ops {
		if err := w.apply(op, new); err != nil {
			t.Fatalf("op %d (%s): %v\nchange set:\n%s", i, op, err, cs)
		}
	}
	if diff := cmp.Diff(new.String(), w.String()); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s\nchange set:\n%s", diff, cs)
	}
}

func TestDiff_Idempotent(t *testing.T) {
	s := snap(t, "A:1,2,3 B:4,5")
	cs := Diff(s, s)
	if !cs.IsEmpty() {
		t.Fatalf("diffing a snapshot against itself should be empty, got:\n%s", cs)
	}
}

func TestDiff_EqualContentWithChangedPolicy(t *testing.T) {
	cs := Diff(snap(t, "A:1,2,3"), snap(t, "A:1,2,3"), WithReloadPolicy(ReloadWhenChanged))
	if !cs.IsEmpty() {
		t.Fatalf("equal payloads with ReloadWhenChanged should be empty, got:\n%s", cs)
	}
}

func TestDiff_ConservativeReloads(t *testing.T) {
	cs := Diff(snap(t, "A:1,2,3"), snap(t, "A:1,2,3"))
	if cs.Structural() {
		t.Fatalf("no structural ops expected, got:\n%s", cs)
	}
	want := []snapshot.Position{{Section: 0, Row: 0}, {Section: 0, Row: 1}, {Section: 0, Row: 2}}
	if diff := cmp.Diff(want, cs.Reloads()); diff != "" {
		t.Errorf("reloads (-want +got):\n%s", diff)
	}
}

func TestDiff_Scenario1_Swap(t *testing.T) {
	old, new := snap(t, "A:1,2,3"), snap(t, "A:1,3,2")
	cs := Diff(old, new, WithReloadPolicy(ReloadNever))
	if len(cs.Ops) != 1 || cs.Ops[0].Kind != OpMoveRow {
		t.Fatalf("expected exactly one move, got:\n%s", cs)
	}
	if cs.Count(OpInsertRow)+cs.Count(OpRemoveRow) != 0 {
		t.Error("swap must not insert or remove")
	}
	roundTrip(t, old, new, cs)
}

func TestDiff_Scenario2_Append(t *testing.T) {
	old, new := snap(t, "A:1,2"), snap(t, "A:1,2,3")
	cs := Diff(old, new, WithReloadPolicy(ReloadNever))
	want := []snapshot.Position{{Section: 0, Row: 2}}
	if diff := cmp.Diff(want, cs.ItemInsertions()); diff != "" {
		t.Errorf("insertions (-want +got):\n%s", diff)
	}
	if len(cs.Ops) != 1 {
		t.Errorf("expected a single op, got:\n%s", cs)
	}
	roundTrip(t, old, new, cs)
}

func TestDiff_Scenario3_RemoveSection(t *testing.T) {
	old, new := snap(t, "A:1,2 B:3"), snap(t, "B:3")
	cs := Diff(old, new, WithReloadPolicy(ReloadNever))
	if cs.FullReload {
		t.Fatal("removing one section should not trigger a full reload")
	}
	if diff := cmp.Diff([]int{0}, cs.SectionRemovals()); diff != "" {
		t.Errorf("section removals (-want +got):\n%s", diff)
	}
	if len(cs.Ops) != 1 {
		t.Errorf("rows of a removed section travel with it, got:\n%s", cs)
	}
	roundTrip(t, old, new, cs)
}

func TestDiff_Scenario4_FullReload(t *testing.T) {
	var oldRows, newRows []string
	for i := 0; i < 100; i++ {
		oldRows = append(oldRows, fmt.Sprint(i))
		if i < 5 {
			newRows = append(newRows, fmt.Sprint(i))
		} else {
			newRows = append(newRows, fmt.Sprint(1000+i))
		}
	}
	old := snap(t, "A:"+strings.Join(oldRows, ","))
	new := snap(t, "A:"+strings.Join(newRows, ","))

	cs := Diff(old, new)
	if !cs.FullReload {
		t.Fatalf("expected full reload, got %d ops", len(cs.Ops))
	}
	if diff := cmp.Diff([]int{0}, cs.SectionRemovals()); diff != "" {
		t.Errorf("section removals (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]int{0}, cs.SectionInsertions()); diff != "" {
		t.Errorf("section insertions (-want +got):\n%s", diff)
	}
	roundTrip(t, old, new, cs)

	fine := Diff(old, new, WithFullReloadRatio(-1))
	if fine.FullReload {
		t.Fatal("negative ratio should disable the fallback")
	}
	if got := fine.Count(OpRemoveRow); got != 95 {
		t.Errorf("fine-grained diff removed %d rows, want 95", got)
	}
	roundTrip(t, old, new, fine)
}

func TestDiff_FullReloadThreshold(t *testing.T) {
	tests := []struct {
		name     string
		old, new string
		ratio    float64
		full     bool
	}{
		// Two removals and two insertions against four rows.
		{"changes equal row count", "A:1,2,3,4", "A:1,2,5,6", 1, true},
		{"changes below row count", "A:1,2,3,4", "A:1,2,3,5", 1, false},
		{"sections do not raise the bar", "A:1,2 B:3,4", "A:1,5 B:3,6", 1, true},
		{"removed section counts its rows", "A:1,2 B:3", "B:3", 1, false},
		{"half ratio", "A:1,2,3,4", "A:1,2,3,5", 0.5, true},
		{"disabled", "A:1,2,3,4", "A:5,6,7,8", -1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			old, new := snap(t, tt.old), snap(t, tt.new)
			cs := Diff(old, new, WithReloadPolicy(ReloadNever), WithFullReloadRatio(tt.ratio))
			if cs.FullReload != tt.full {
				t.Errorf("FullReload = %v, want %v (changed %d of %d)", cs.FullReload, tt.full, cs.Changed, cs.Total)
			}
			roundTrip(t, old, new, cs)
		})
	}
}

func TestDiff_FixedOrder(t *testing.T) {
	old := snap(t, "A:1,2,3 B:4,5 C:6")
	new := snap(t, "D:9 C:6,7 A:3,1")
	cs := Diff(old, new, WithFullReloadRatio(-1))
	last := OpKind(-1)
	for _, op := range cs.Ops {
		if op.Kind < last {
			t.Fatalf("op %s out of order in:\n%s", op, cs)
		}
		last = op.Kind
	}
	removals := cs.ItemRemovals()
	for i := 1; i < len(removals); i++ {
		if !removals[i].Less(removals[i-1]) {
			t.Errorf("row removals not descending: %v", removals)
		}
	}
	roundTrip(t, old, new, cs)
}

func TestDiff_MovesAreMinimal(t *testing.T) {
	old, new := snap(t, "A:1,2,3,4,5"), snap(t, "A:2,3,4,5,1")
	cs := Diff(old, new, WithReloadPolicy(ReloadNever))
	if got := len(cs.Moves()); got != 1 {
		t.Errorf("rotating one row should take 1 move, took %d:\n%s", got, cs)
	}
	roundTrip(t, old, new, cs)

	old, new = snap(t, "A:1,2,3,4"), snap(t, "A:4,3,2,1")
	cs = Diff(old, new, WithReloadPolicy(ReloadNever), WithFullReloadRatio(-1))
	if got := len(cs.Moves()); got != 3 {
		t.Errorf("reversing 4 rows should take 3 moves, took %d:\n%s", got, cs)
	}
	roundTrip(t, old, new, cs)
}

func TestDiff_SectionMoveCarriesRows(t *testing.T) {
	old, new := snap(t, "A:1 B:2 C:3"), snap(t, "C:3 A:1 B:2")
	cs := Diff(old, new, WithReloadPolicy(ReloadNever))
	if cs.Count(OpMoveSection) != 1 || len(cs.Ops) != 1 {
		t.Fatalf("expected a single section move, got:\n%s", cs)
	}
	roundTrip(t, old, new, cs)
}

func TestDiff_CrossSectionKeysNotConflated(t *testing.T) {
	old, new := snap(t, "A:1,2 B:3"), snap(t, "A:2 B:3,1")
	cs := Diff(old, new, WithReloadPolicy(ReloadNever), WithFullReloadRatio(-1))
	if cs.Count(OpRemoveRow) != 1 || cs.Count(OpInsertRow) != 1 {
		t.Errorf("item 1 belongs to a different section; expected remove+insert, got:\n%s", cs)
	}
	roundTrip(t, old, new, cs)
}

func TestDiff_DuplicateKeysInserted(t *testing.T) {
	old := snap(t, "A:1,2")
	new := snap(t, "A:1,2,1,1")
	cs := Diff(old, new, WithReloadPolicy(ReloadNever))
	if got := cs.Count(OpInsertRow); got != 2 {
		t.Fatalf("duplicates must be inserted as new rows, got %d inserts:\n%s", got, cs)
	}
	for _, op := range cs.Filter(OpInsertRow) {
		if !op.Key.IsSynthetic() {
			t.Errorf("inserted duplicate should carry a synthetic key, got %v", op.Key)
		}
	}
	roundTrip(t, old, new, cs)

	// A duplicate present on both sides is still treated as a fresh row.
	again := Diff(new, snap(t, "A:1,2,1,1"), WithReloadPolicy(ReloadNever), WithFullReloadRatio(-1))
	if again.Count(OpRemoveRow) != 2 || again.Count(OpInsertRow) != 2 {
		t.Errorf("synthetic keys should never match, got:\n%s", again)
	}
}

func TestDiff_NilSnapshots(t *testing.T) {
	new := snap(t, "A:1")
	cs := Diff(nil, new)
	roundTrip(t, snapshot.Empty(), new, cs)
	cs = Diff(new, nil)
	roundTrip(t, new, snapshot.Empty(), cs)
}

func TestDiff_RandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	randomSnap := func() *snapshot.Snapshot {
		var sections []snapshot.Section
		names := rng.Perm(6)[:rng.Intn(6)]
		for _, n := range names {
			sec := snapshot.Section{Key: identity.Of(fmt.Sprintf("S%d", n))}
			for _, r := range rng.Perm(12)[:rng.Intn(12)] {
				sec.Items = append(sec.Items, snapshot.Item{Key: identity.Of(r)})
			}
			sections = append(sections, sec)
		}
		return snapshot.FromSections(sections)
	}
	for i := 0; i < 300; i++ {
		old, new := randomSnap(), randomSnap()
		for _, ratio := range []float64{-1, 1} {
			cs := Diff(old, new, WithFullReloadRatio(ratio))
			roundTrip(t, old, new, cs)
			if cs.Structural() {
				continue
			}
			if old.String() != new.String() {
				t.Fatalf("non-structural change set for different snapshots %s -> %s", old, new)
			}
		}
	}
}
