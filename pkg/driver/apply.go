package driver

import (
	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/reconcile"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// apply issues the ops of cs to the widget. Consecutive removals, insertions
// and reloads of the same kind go out as one call; moves go out one by one.
func (d *Driver) apply(cs *reconcile.ChangeSet) error {
	if cs.IsEmpty() {
		return nil
	}
	if cs.FullReload {
		d.stats.FullReloads++
		d.discardRenderers()
	}
	ops := cs.Ops
	for i := 0; i < len(ops); {
		j := i + 1
		if batchable(ops[i].Kind) {
			for j < len(ops) && ops[j].Kind == ops[i].Kind {
				j++
			}
		}
		if err := d.applyBatch(ops[i:j]); err != nil {
			return err
		}
		i = j
	}
	if !d.model.Matches(d.target) {
		return errors.New("driver.apply", errors.KindConsistency, errors.ErrCountMismatch)
	}
	return nil
}

func batchable(k reconcile.OpKind) bool {
	return k != reconcile.OpMoveSection && k != reconcile.OpMoveRow
}

func (d *Driver) applyBatch(batch []reconcile.Op) error {
	for _, op := range batch {
		d.releaseRemoved(op)
		if err := d.model.Apply(op, d.target); err != nil {
			return err
		}
	}

	var err error
	switch first := batch[0]; first.Kind {
	case reconcile.OpRemoveSection:
		err = d.widget.RemoveSections(sectionIndices(batch))
	case reconcile.OpInsertSection:
		err = d.widget.InsertSections(sectionIndices(batch))
	case reconcile.OpMoveSection:
		err = d.widget.MoveSection(first.Section, first.ToSection)
	case reconcile.OpRemoveRow:
		err = d.widget.RemoveRows(rowPositions(batch))
	case reconcile.OpInsertRow:
		err = d.widget.InsertRows(rowPositions(batch))
	case reconcile.OpMoveRow:
		err = d.widget.MoveRow(first.At(), first.To())
	case reconcile.OpReloadRow:
		for _, op := range batch {
			d.rebind(op)
		}
		err = d.widget.ReloadRows(rowPositions(batch))
	}
	if err != nil {
		return wrap("driver.apply", err)
	}
	return nil
}

// releaseRemoved hands the renderers of a removed row or section back to the
// pool.
func (d *Driver) releaseRemoved(op reconcile.Op) {
	switch op.Kind {
	case reconcile.OpRemoveSection:
		for s := range d.bound {
			if s.section == op.SectionKey {
				d.release(s)
			}
		}
	case reconcile.OpRemoveRow:
		d.release(slot{role: roleRow, section: op.SectionKey, item: op.Key})
	}
}

// rebind refreshes the content of a bound row in place so it keeps its
// renderer across the reload.
func (d *Driver) rebind(op reconcile.Op) {
	r, ok := d.bound[slot{role: roleRow, section: op.SectionKey, item: op.Key}]
	if !ok {
		return
	}
	pos, ok := d.target.Locate(op.SectionKey, op.Key)
	if !ok {
		return
	}
	item, _ := d.target.Item(pos)
	r.Bind(item.Key, d.content.Row.build(item.Payload, pos))
}

func sectionIndices(ops []reconcile.Op) []int {
	out := make([]int, len(ops))
	for i, op := range ops {
		out[i] = op.Section
	}
	return out
}

func rowPositions(ops []reconcile.Op) []snapshot.Position {
	out := make([]snapshot.Position, len(ops))
	for i, op := range ops {
		out[i] = op.At()
	}
	return out
}
