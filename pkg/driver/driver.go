// Package driver runs the update cycle that keeps an imperative list widget in
// step with a sequence of declarative snapshots.
//
// Each call to [Driver.Update] diffs the new snapshot against the last one
// that was applied, executes the resulting change set against the widget,
// merges the caller's scroll configuration and commits the snapshot as the new
// baseline. The driver also serves as the widget's data source, handing out
// pooled renderers bound to row identities.
//
// A Driver is not safe for concurrent use; call it from the UI thread only.
// Update may be called re-entrantly from a widget or configuration callback.
// Such a call is queued and runs after the current cycle; only the most recent
// queued request is kept.
package driver

import (
	stderrors "errors"

	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/identity"
	"github.com/go-drift/sectionlist/pkg/pool"
	"github.com/go-drift/sectionlist/pkg/reconcile"
	"github.com/go-drift/sectionlist/pkg/scroll"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// State is the phase of the update cycle.
type State int

const (
	// StateIdle means no cycle is running.
	StateIdle State = iota
	// StateDiffing means the change set is being computed.
	StateDiffing
	// StateApplying means widget commands are being issued.
	StateApplying
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDiffing:
		return "diffing"
	case StateApplying:
		return "applying"
	default:
		return "unknown"
	}
}

// Stats counts what the driver has done since it was created.
type Stats struct {
	Cycles int
	// Deferred counts Update calls made while a cycle was running.
	Deferred int
	// Coalesced counts deferred requests replaced by a later one before they ran.
	Coalesced   int
	FullReloads int
	Failures    int
	Pool        pool.Stats
}

type request struct {
	snap *snapshot.Snapshot
	cfg  scroll.Configuration
}

type slotRole int

const (
	roleRow slotRole = iota
	roleHeader
	roleFooter
)

// slot names what a bound renderer displays.
type slot struct {
	role    slotRole
	section identity.Key
	item    identity.Key
}

// Driver owns the baseline snapshot, the renderer pool and the scroll
// synchronizer of one widget.
type Driver struct {
	widget  Widget
	content Content
	diff    []reconcile.Option
	pool    *pool.Pool
	sync    *scroll.Synchronizer

	state    State
	baseline *snapshot.Snapshot
	// target is the snapshot being applied; nil while idle.
	target *snapshot.Snapshot
	// model mirrors the widget's keys while ops are applied.
	model   *reconcile.Model
	cfg     scroll.Configuration
	pending *request
	resync  bool
	closed  bool

	bound  map[slot]*pool.Renderer
	owners map[uint64]slot
	stats  Stats
}

// New creates a driver for widget and attaches itself as the widget's data
// source. The widget is expected to be empty.
func New(widget Widget, content Content, opts ...Option) *Driver {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	empty := snapshot.Empty()
	d := &Driver{
		widget:   widget,
		content:  content,
		diff:     s.diff,
		pool:     pool.New(s.factory, s.pool...),
		sync:     scroll.NewSynchronizer(),
		baseline: empty,
		model:    reconcile.NewModel(empty),
		bound:    make(map[slot]*pool.Renderer),
		owners:   make(map[uint64]slot),
	}
	widget.Attach(d)
	return d
}

// State returns the current phase of the update cycle.
func (d *Driver) State() State {
	return d.state
}

// Baseline returns the last successfully applied snapshot.
func (d *Driver) Baseline() *snapshot.Snapshot {
	return d.baseline
}

// Stats returns cycle and pool counters.
func (d *Driver) Stats() Stats {
	st := d.stats
	st.Pool = d.pool.Stats()
	return st
}

// Update brings the widget in line with snap and merges cfg into its scroll
// state. A nil snap is treated as empty.
//
// When called during a running cycle the request is queued and Update returns
// nil immediately. A failing cycle drops any queued request; its error is
// returned and reported through the errors package.
func (d *Driver) Update(snap *snapshot.Snapshot, cfg scroll.Configuration) error {
	if d.closed {
		return errors.New("driver.Update", errors.KindConsistency, errors.ErrClosed)
	}
	if snap == nil {
		snap = snapshot.Empty()
	}
	req := &request{snap: snap, cfg: cfg}
	if d.state != StateIdle {
		d.stats.Deferred++
		if d.pending != nil {
			d.stats.Coalesced++
		}
		d.pending = req
		return nil
	}
	for req != nil {
		if err := d.cycle(req); err != nil {
			d.pending = nil
			return err
		}
		req, d.pending = d.pending, nil
	}
	return nil
}

// Close discards every renderer. Later calls to Update fail with ErrClosed.
func (d *Driver) Close() {
	d.closed = true
	d.pending = nil
	d.discardRenderers()
}

// cycle diffs req against the baseline, applies the change set, merges the
// scroll configuration and only then commits req.snap as the new baseline.
func (d *Driver) cycle(req *request) (err error) {
	d.stats.Cycles++
	defer errors.RecoverWithCallback("driver.Update", func(p *errors.PanicError) {
		err = d.fail(&errors.ListError{
			Op:         "driver.Update",
			Kind:       errors.KindPanic,
			Err:        p,
			Section:    -1,
			StackTrace: p.StackTrace,
			Timestamp:  p.Timestamp,
		})
	})

	d.state = StateDiffing
	var cs *reconcile.ChangeSet
	if !d.resync {
		cs = reconcile.Diff(d.baseline, req.snap, d.diff...)
	}

	var anchor *scroll.Anchor
	if !d.resync && cs.Structural() {
		anchor = scroll.CaptureAnchor(d.widget, d.ItemKey)
	}

	d.state = StateApplying
	d.target = req.snap
	if d.resync {
		err = d.reset()
	} else {
		err = d.apply(cs)
	}
	if err != nil {
		return d.fail(err)
	}

	d.cfg = req.cfg
	_, serr := d.sync.Sync(d.widget, req.cfg, anchor, d.locate)

	// The widget already shows req.snap, so a scroll failure still commits.
	d.baseline = req.snap
	d.resync = false
	d.target = nil
	d.state = StateIdle
	if serr != nil {
		le := wrap("driver.Sync", serr)
		d.stats.Failures++
		errors.Report(le)
		return le
	}
	return nil
}

// fail abandons the running cycle. The baseline stays at the last committed
// snapshot and the next cycle rebuilds the widget from scratch.
func (d *Driver) fail(err error) error {
	le := wrap("driver.Update", err)
	d.stats.Failures++
	d.resync = true
	d.target = nil
	d.model = reconcile.NewModel(d.baseline)
	d.state = StateIdle
	if le.Kind != errors.KindPanic {
		errors.Report(le)
	}
	return le
}

// reset clears whatever the widget shows and inserts the target from scratch.
// Renderers are discarded first so the widget hands nothing back to the pool.
func (d *Driver) reset() error {
	d.discardRenderers()
	n := d.widget.NumberOfSections()
	d.model = reconcile.NewModel(snapshot.Empty())
	if n > 0 {
		indices := make([]int, n)
		for i := range indices {
			indices[i] = n - 1 - i
		}
		if err := d.widget.RemoveSections(indices); err != nil {
			return wrap("driver.reset", err)
		}
	}
	return d.apply(reconcile.FullReload(snapshot.Empty(), d.target))
}

// wrap turns a widget or builder error into a ListError. Panics keep their
// kind; everything else is a consistency failure.
func wrap(op string, err error) *errors.ListError {
	var le *errors.ListError
	if stderrors.As(err, &le) && (le.Kind == errors.KindPanic || le.Kind == errors.KindConsistency) {
		return le
	}
	return errors.New(op, errors.KindConsistency, err)
}

func (d *Driver) locate(ref scroll.RowRef) (snapshot.Position, bool) {
	if d.target == nil {
		return d.baseline.Locate(ref.Section, ref.Item)
	}
	return d.target.Locate(ref.Section, ref.Item)
}

func (d *Driver) discardRenderers() {
	d.pool.DiscardAll()
	clear(d.bound)
	clear(d.owners)
}
