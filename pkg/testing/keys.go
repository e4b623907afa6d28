package testing

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/go-drift/sectionlist/pkg/identity"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// KeyComparer lets cmp compare identity keys, which have unexported fields.
var KeyComparer = cmp.Comparer(func(a, b identity.Key) bool { return a == b })

// DiffKeys returns a readable diff between two key layouts, or "" when they
// match. Nil and empty row lists are equal.
func DiffKeys(want, got []snapshot.SectionKeys) string {
	return cmp.Diff(want, got, KeyComparer, cmpopts.EquateEmpty())
}
