// Package reconcile computes the change set between two snapshots.
//
// Diff matches sections by key and items by (section key, item key). The
// resulting [ChangeSet] lists operations in a fixed order:
//
//  1. section removals, descending
//  2. row removals in retained sections, descending
//  3. section insertions, ascending
//  4. row insertions, ascending
//  5. section moves, then row moves
//  6. row reloads
//
// Each op is expressed in the coordinates that hold when it is applied, so a
// widget that executes them one after another keeps a consistent row count at
// every step. Rows of inserted or removed sections travel with their section.
//
// When the number of touched rows and sections reaches FullReloadRatio times the
// size of the larger snapshot, Diff returns a full reload instead.
package reconcile

import (
	"reflect"
	"sort"

	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/identity"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// ReloadPolicy decides whether a matched item needs its content rebuilt.
type ReloadPolicy func(old, new snapshot.Item) bool

// ReloadAlways treats every matched item as possibly changed.
func ReloadAlways(_, _ snapshot.Item) bool { return true }

// ReloadNever never emits reload markers.
func ReloadNever(_, _ snapshot.Item) bool { return false }

// ReloadWhenChanged reloads items whose payloads are not deeply equal.
func ReloadWhenChanged(old, new snapshot.Item) bool {
	return !reflect.DeepEqual(old.Payload, new.Payload)
}

// Options tune Diff.
type Options struct {
	// FullReloadRatio is the fraction of the larger snapshot's rows that may
	// change before Diff falls back to a full reload. Negative disables the
	// fallback.
	FullReloadRatio float64
	// Reload decides which matched items get a reload marker.
	Reload ReloadPolicy
}

// DefaultOptions returns the default diff options: full reload once the change
// count reaches the row count, and a reload marker for every matched item.
func DefaultOptions() Options {
	return Options{FullReloadRatio: 1, Reload: ReloadAlways}
}

// Option configures Diff.
type Option func(*Options)

// WithFullReloadRatio sets Options.FullReloadRatio.
func WithFullReloadRatio(ratio float64) Option {
	return func(o *Options) { o.FullReloadRatio = ratio }
}

// WithReloadPolicy sets Options.Reload. A nil policy restores ReloadAlways.
func WithReloadPolicy(p ReloadPolicy) Option {
	return func(o *Options) {
		if p == nil {
			p = ReloadAlways
		}
		o.Reload = p
	}
}

// Diff computes the change set turning old into new. Diffing a snapshot
// against itself yields an empty change set. A nil snapshot is treated as
// empty.
func Diff(old, new *snapshot.Snapshot, opts ...Option) *ChangeSet {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if old == new {
		return &ChangeSet{Total: old.TotalRows()}
	}
	if old == nil {
		old = snapshot.Empty()
	}
	if new == nil {
		new = snapshot.Empty()
	}

	d := &differ{old: old, new: new, opts: o, model: NewModel(old)}
	cs := d.run()
	if cs.Changed > 0 && o.FullReloadRatio >= 0 &&
		float64(cs.Changed) >= o.FullReloadRatio*float64(cs.Total) {
		return FullReload(old, new)
	}
	return cs
}

// FullReload returns the change set that removes every old section and inserts
// every new one.
func FullReload(old, new *snapshot.Snapshot) *ChangeSet {
	cs := &ChangeSet{FullReload: true, Total: max(old.TotalRows(), new.TotalRows())}
	for i := old.Len() - 1; i >= 0; i-- {
		cs.Ops = append(cs.Ops, Op{Kind: OpRemoveSection, Section: i, SectionKey: old.Section(i).Key})
		cs.Changed += old.RowCount(i)
	}
	for i := 0; i < new.Len(); i++ {
		cs.Ops = append(cs.Ops, Op{Kind: OpInsertSection, Section: i, SectionKey: new.Section(i).Key})
		cs.Changed += new.RowCount(i)
	}
	return cs
}

type differ struct {
	old, new *snapshot.Snapshot
	opts     Options
	model    *Model
	cs       ChangeSet
	// newForOld maps an old section index to its new index, or -1.
	newForOld []int
	// oldForNew maps a new section index to its old index, or -1.
	oldForNew []int
}

func (d *differ) run() *ChangeSet {
	d.cs.Total = max(d.old.TotalRows(), d.new.TotalRows())
	d.matchSections()
	d.removeSections()
	d.removeRows()
	d.insertSections()
	d.insertRows()
	d.moveSections()
	d.moveRows()
	d.reloadRows()

	if !d.model.Matches(d.new) {
		errors.Report(errors.New("reconcile.Diff", errors.KindConsistency,
			errors.ErrCountMismatch))
		return FullReload(d.old, d.new)
	}
	return &d.cs
}

func (d *differ) emit(op Op) {
	if err := d.model.Apply(op, d.new); err != nil {
		// Any op the differ produces is in range by construction; a failure
		// here surfaces through the Matches check in run.
		errors.Report(errors.New("reconcile.Diff", errors.KindConsistency, err))
	}
	d.cs.Ops = append(d.cs.Ops, op)
}

// matchSections pairs sections by key. Synthetic keys never match.
func (d *differ) matchSections() {
	d.newForOld = make([]int, d.old.Len())
	d.oldForNew = make([]int, d.new.Len())
	for i := range d.newForOld {
		d.newForOld[i] = -1
	}
	for j, sec := range d.new.Sections() {
		d.oldForNew[j] = -1
		if sec.Key.IsSynthetic() {
			continue
		}
		if i, ok := d.old.SectionIndex(sec.Key); ok {
			d.oldForNew[j] = i
			d.newForOld[i] = j
		}
	}
}

func (d *differ) removeSections() {
	for i := d.old.Len() - 1; i >= 0; i-- {
		if d.newForOld[i] >= 0 {
			continue
		}
		d.emit(Op{Kind: OpRemoveSection, Section: i, SectionKey: d.old.Section(i).Key})
		d.cs.Changed += d.old.RowCount(i)
	}
}

// matchedRow reports whether an old item survives in the new section nj.
func (d *differ) matchedRow(key identity.Key, nj int) bool {
	if key.IsSynthetic() {
		return false
	}
	_, ok := d.new.ItemPosition(nj, key)
	return ok
}

func (d *differ) removeRows() {
	for ci := d.model.Len() - 1; ci >= 0; ci-- {
		sk, _ := d.model.SectionKey(ci)
		oi, _ := d.old.SectionIndex(sk)
		nj := d.newForOld[oi]
		items := d.old.Items(oi)
		for r := len(items) - 1; r >= 0; r-- {
			if d.matchedRow(items[r].Key, nj) {
				continue
			}
			d.emit(Op{Kind: OpRemoveRow, Section: ci, Row: r, SectionKey: sk, Key: items[r].Key})
			d.cs.Changed++
		}
	}
}

func (d *differ) insertSections() {
	for j := 0; j < d.new.Len(); j++ {
		if d.oldForNew[j] >= 0 {
			continue
		}
		d.emit(Op{Kind: OpInsertSection, Section: j, SectionKey: d.new.Section(j).Key})
		d.cs.Changed += d.new.RowCount(j)
	}
}

func (d *differ) insertRows() {
	for ci := 0; ci < d.model.Len(); ci++ {
		sk, _ := d.model.SectionKey(ci)
		nj, _ := d.new.SectionIndex(sk)
		oi := d.oldForNew[nj]
		if oi < 0 {
			continue
		}
		for r, it := range d.new.Items(nj) {
			if !it.Key.IsSynthetic() {
				if _, ok := d.old.ItemPosition(oi, it.Key); ok {
					continue
				}
			}
			d.emit(Op{Kind: OpInsertRow, Section: ci, Row: r, SectionKey: sk, Key: it.Key})
			d.cs.Changed++
		}
	}
}

func (d *differ) moveSections() {
	current := make([]identity.Key, d.model.Len())
	for i := range current {
		current[i], _ = d.model.SectionKey(i)
	}
	for _, mv := range planMoves(current, func(k identity.Key) int {
		j, _ := d.new.SectionIndex(k)
		return j
	}) {
		d.emit(Op{Kind: OpMoveSection, Section: mv.from, ToSection: mv.to, SectionKey: mv.key})
		d.cs.Changed++
	}
}

func (d *differ) moveRows() {
	for nj := 0; nj < d.new.Len(); nj++ {
		sk := d.new.Section(nj).Key
		n := d.model.Rows(nj)
		current := make([]identity.Key, n)
		for r := range current {
			current[r], _ = d.model.Key(snapshot.Position{Section: nj, Row: r})
		}
		for _, mv := range planMoves(current, func(k identity.Key) int {
			pos, _ := d.new.ItemPosition(nj, k)
			return pos.Row
		}) {
			d.emit(Op{Kind: OpMoveRow, Section: nj, Row: mv.from, ToSection: nj, ToRow: mv.to, SectionKey: sk, Key: mv.key})
			d.cs.Changed++
		}
	}
}

func (d *differ) reloadRows() {
	policy := d.opts.Reload
	if policy == nil {
		policy = ReloadAlways
	}
	for nj, sec := range d.new.Sections() {
		oi := d.oldForNew[nj]
		if oi < 0 {
			continue
		}
		for r, it := range sec.Items {
			if it.Key.IsSynthetic() {
				continue
			}
			pos, ok := d.old.ItemPosition(oi, it.Key)
			if !ok {
				continue
			}
			prev, _ := d.old.Item(pos)
			if policy(prev, it) {
				d.emit(Op{Kind: OpReloadRow, Section: nj, Row: r, SectionKey: sec.Key, Key: it.Key})
			}
		}
	}
}

type move struct {
	key      identity.Key
	from, to int
}

// planMoves returns the sequential moves that reorder current into target
// order. Keys on the longest run already in target order stay put; every
// other key moves exactly once.
func planMoves(current []identity.Key, target func(identity.Key) int) []move {
	type entry struct {
		key    identity.Key
		target int
		placed bool
	}
	list := make([]*entry, len(current))
	targets := make([]int, len(current))
	for i, k := range current {
		targets[i] = target(k)
		list[i] = &entry{key: k, target: targets[i]}
	}
	stable := longestIncreasing(targets)
	var pending []*entry
	for i, e := range list {
		if stable[i] {
			e.placed = true
		} else {
			pending = append(pending, e)
		}
	}
	sort.Slice(pending, func(a, b int) bool { return pending[a].target < pending[b].target })

	var moves []move
	for _, e := range pending {
		from := 0
		for i, x := range list {
			if x == e {
				from = i
				break
			}
		}
		list = append(list[:from], list[from+1:]...)
		to := 0
		for i, x := range list {
			if x.placed && x.target < e.target {
				to = i + 1
			}
		}
		list = append(list[:to], append([]*entry{e}, list[to:]...)...)
		e.placed = true
		moves = append(moves, move{key: e.key, from: from, to: to})
	}
	return moves
}

// longestIncreasing marks the members of one longest strictly increasing
// subsequence of seq.
func longestIncreasing(seq []int) []bool {
	members := make([]bool, len(seq))
	if len(seq) == 0 {
		return members
	}
	// tails[k] is the index in seq of the smallest tail of an increasing
	// subsequence of length k+1.
	tails := make([]int, 0, len(seq))
	prev := make([]int, len(seq))
	for i, v := range seq {
		k := sort.Search(len(tails), func(k int) bool { return seq[tails[k]] >= v })
		if k > 0 {
			prev[i] = tails[k-1]
		} else {
			prev[i] = -1
		}
		if k == len(tails) {
			tails = append(tails, i)
		} else {
			tails[k] = i
		}
	}
	for i := tails[len(tails)-1]; i >= 0; i = prev[i] {
		members[i] = true
	}
	return members
}
