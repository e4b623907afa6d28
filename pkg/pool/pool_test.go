package pool

import (
	stderrors "errors"
	"testing"

	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/identity"
)

type cell struct{ kind Kind }

func newTestPool(opts ...Option) (*Pool, *int) {
	created := 0
	p := New(func(kind Kind) any {
		created++
		return &cell{kind: kind}
	}, opts...)
	return p, &created
}

func TestAcquire_ReusesSameKind(t *testing.T) {
	p, created := newTestPool()
	a := p.Acquire(KindRow)
	if a.State() != StateInUse || a.Host().(*cell).kind != KindRow {
		t.Fatalf("unexpected renderer %+v", a)
	}
	a.Bind(identity.Of(1), "content")
	if err := p.Release(a); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if a.State() != StatePooled || a.Key() != (identity.Key{}) || a.Content() != nil {
		t.Errorf("released renderer should be pooled and unbound, got %s %v %v", a.State(), a.Key(), a.Content())
	}

	h := p.Acquire(KindHeader)
	if h == a {
		t.Fatal("a header request must not reuse a row renderer")
	}
	b := p.Acquire(KindRow)
	if b != a {
		t.Fatal("expected the pooled row renderer to be reused")
	}
	if *created != 2 {
		t.Errorf("factory called %d times, want 2", *created)
	}
	s := p.Stats()
	if s.Created != 2 || s.Reused != 1 || s.InUse != 2 || s.Pooled != 0 {
		t.Errorf("unexpected stats %+v", s)
	}
}

func TestRelease_NotInUse(t *testing.T) {
	p, _ := newTestPool()
	r := p.Acquire(KindRow)
	if err := p.Release(r); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := p.Release(r); !stderrors.Is(err, errors.ErrNotInUse) {
		t.Errorf("double release = %v, want ErrNotInUse", err)
	}
	if err := p.Release(nil); err != nil {
		t.Errorf("Release(nil) = %v, want nil", err)
	}
}

func TestRelease_RespectsLimits(t *testing.T) {
	p, _ := newTestPool(WithMaxPooled(1), WithKindLimit(KindHeader, 0))
	a, b := p.Acquire(KindRow), p.Acquire(KindRow)
	_ = p.Release(a)
	_ = p.Release(b)
	if got := p.Pooled(KindRow); got != 1 {
		t.Errorf("Pooled(row) = %d, want 1", got)
	}
	if b.State() != StateDiscarded {
		t.Errorf("overflowing renderer should be discarded, got %s", b.State())
	}

	var headers []*Renderer
	for i := 0; i < 5; i++ {
		headers = append(headers, p.Acquire(KindHeader))
	}
	for _, h := range headers {
		_ = p.Release(h)
	}
	if got := p.Pooled(KindHeader); got != 5 {
		t.Errorf("a zero kind limit means unbounded, pooled %d", got)
	}
}

func TestDiscardAll(t *testing.T) {
	p, _ := newTestPool()
	live := p.Acquire(KindRow)
	pooled := p.Acquire(KindFooter)
	_ = p.Release(pooled)

	p.DiscardAll()

	if live.State() != StateDiscarded || pooled.State() != StateDiscarded {
		t.Errorf("states after DiscardAll: %s, %s", live.State(), pooled.State())
	}
	if p.InUse() != 0 || p.Pooled(KindFooter) != 0 {
		t.Errorf("pool should be empty, inUse=%d pooled=%d", p.InUse(), p.Pooled(KindFooter))
	}
	if err := p.Release(live); !stderrors.Is(err, errors.ErrNotInUse) {
		t.Errorf("releasing a discarded renderer = %v, want ErrNotInUse", err)
	}
	if next := p.Acquire(KindRow); next == live {
		t.Error("discarded renderers must never be handed out again")
	}
}

func TestReleaseAll(t *testing.T) {
	p, _ := newTestPool()
	for i := 0; i < 3; i++ {
		p.Acquire(KindRow)
	}
	p.ReleaseAll()
	if p.InUse() != 0 || p.Pooled(KindRow) != 3 {
		t.Errorf("ReleaseAll: inUse=%d pooled=%d", p.InUse(), p.Pooled(KindRow))
	}
}
