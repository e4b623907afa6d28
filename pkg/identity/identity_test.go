package identity

import (
	stderrors "errors"
	"fmt"
	"math"
	"testing"

	"github.com/go-drift/sectionlist/pkg/errors"
)

type contact struct {
	ID   int
	Name string
}

type message struct{ id string }

func (m message) ID() any { return m.id }

func TestIdentify_Deterministic(t *testing.T) {
	extract := ByPath(func(c contact) int { return c.ID })
	a, err := Identify(contact{ID: 7, Name: "a"}, extract)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	b, err := Identify(contact{ID: 7, Name: "renamed"}, extract)
	if err != nil {
		t.Fatalf("Identify: %v", err)
	}
	if a != b {
		t.Errorf("keys differ for the same ID: %v vs %v", a, b)
	}
	if a != Of(7) {
		t.Errorf("key %v should equal Of(7)", a)
	}
}

func TestIdentify_Extractors(t *testing.T) {
	k, err := Identify("hello", Self[string]())
	if err != nil || k.Value() != "hello" {
		t.Errorf("Self: got %v, %v", k, err)
	}
	k, err = Identify(message{id: "m1"}, ByID[message]())
	if err != nil || k.Value() != "m1" {
		t.Errorf("ByID: got %v, %v", k, err)
	}
}

func TestIdentify_NilExtractor(t *testing.T) {
	_, err := Identify(1, nil)
	if !stderrors.Is(err, errors.ErrNoExtractor) {
		t.Fatalf("expected ErrNoExtractor, got %v", err)
	}
	var listErr *errors.ListError
	if !stderrors.As(err, &listErr) || listErr.Kind != errors.KindIdentity {
		t.Errorf("expected identity ListError, got %#v", err)
	}
}

func TestIdentify_ExtractorFailurePropagates(t *testing.T) {
	boom := fmt.Errorf("no id")
	_, err := Identify(1, Func(func(int) (any, error) { return nil, boom }))
	if !stderrors.Is(err, boom) {
		t.Fatalf("expected extractor error to propagate, got %v", err)
	}
}

func TestIdentify_UnhashableKey(t *testing.T) {
	_, err := Identify([]int{1}, Func(func(v []int) (any, error) { return v, nil }))
	if !stderrors.Is(err, errors.ErrUnhashableKey) {
		t.Fatalf("expected ErrUnhashableKey, got %v", err)
	}
}

func TestIdentify_KeyNotEqualToItself(t *testing.T) {
	type point struct{ X, Y float64 }
	tests := []struct {
		name string
		id   func() (Key, error)
	}{
		{"nan", func() (Key, error) { return Identify(math.NaN(), Self[float64]()) }},
		{"struct with nan", func() (Key, error) {
			return Identify(point{1, math.NaN()}, Self[point]())
		}},
		{"array with nan", func() (Key, error) {
			return Identify([2]float64{math.NaN(), 0}, Self[[2]float64]())
		}},
		{"key with nan", func() (Key, error) {
			return Identify(0, Func(func(int) (any, error) { return Of(math.NaN()), nil }))
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.id()
			if !stderrors.Is(err, errors.ErrUnstableKey) {
				t.Fatalf("expected ErrUnstableKey, got %v", err)
			}
			var le *errors.ListError
			if !stderrors.As(err, &le) || le.Kind != errors.KindIdentity {
				t.Errorf("expected identity error, got %v", err)
			}
		})
	}

	if _, err := Identify(math.Inf(1), Self[float64]()); err != nil {
		t.Errorf("infinity is a valid key: %v", err)
	}
}

func TestSyntheticKeys(t *testing.T) {
	base := Of("row")
	dup := Synthetic(base, 1)
	if dup == base {
		t.Fatal("synthetic key must not equal its base")
	}
	if !dup.IsSynthetic() || base.IsSynthetic() {
		t.Error("IsSynthetic reported incorrectly")
	}
	if dup.Base() != base {
		t.Error("Base should recover the original key")
	}
	if Synthetic(base, 2) == dup {
		t.Error("different ordinals must yield different keys")
	}
	if got := dup.String(); got != "row#1" {
		t.Errorf("String() = %q, want %q", got, "row#1")
	}
}

func TestKeysAsMapKeys(t *testing.T) {
	m := map[Key]int{Of(1): 1, Of("1"): 2, Synthetic(Of(1), 1): 3}
	if len(m) != 3 {
		t.Errorf("expected 3 distinct keys, got %d", len(m))
	}
}
