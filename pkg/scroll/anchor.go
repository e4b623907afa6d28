package scroll

import (
	"github.com/go-drift/sectionlist/pkg/geometry"
	"github.com/go-drift/sectionlist/pkg/identity"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// RowRef names a row by identity rather than position.
type RowRef struct {
	Section identity.Key
	Item    identity.Key
}

// Anchor records where identity-addressed rows sat on screen before a
// structural change. Candidates are ordered top to bottom; the first one that
// survives the change is kept stationary.
type Anchor struct {
	Candidates []AnchorRow
}

// AnchorRow is one visible row and its distance from the top of the viewport.
type AnchorRow struct {
	Row RowRef
	// ScreenY is the row's top edge minus the content offset.
	ScreenY float64
}

// CaptureAnchor records the visible rows of surface. keyAt resolves a position
// in the currently rendered content to its identity.
func CaptureAnchor(surface Surface, keyAt func(snapshot.Position) (RowRef, bool)) *Anchor {
	visible := surface.VisibleRows()
	if len(visible) == 0 {
		return nil
	}
	offset := surface.ContentOffset()
	a := &Anchor{Candidates: make([]AnchorRow, 0, len(visible))}
	for _, pos := range visible {
		ref, ok := keyAt(pos)
		if !ok {
			continue
		}
		frame, ok := surface.RowFrame(pos)
		if !ok {
			continue
		}
		a.Candidates = append(a.Candidates, AnchorRow{Row: ref, ScreenY: frame.Top - offset.Y})
	}
	if len(a.Candidates) == 0 {
		return nil
	}
	return a
}

// Resolve returns the offset that puts the first surviving candidate back at
// its recorded screen position. locate maps a row to its new position.
func (a *Anchor) Resolve(surface Surface, live geometry.Point, locate func(RowRef) (snapshot.Position, bool)) (geometry.Point, bool) {
	if a == nil {
		return live, false
	}
	for _, c := range a.Candidates {
		pos, ok := locate(c.Row)
		if !ok {
			continue
		}
		frame, ok := surface.RowFrame(pos)
		if !ok {
			continue
		}
		return geometry.Point{X: live.X, Y: frame.Top - c.ScreenY}, true
	}
	return live, false
}
