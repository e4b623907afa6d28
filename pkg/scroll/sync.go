// Package scroll merges the caller's declared scroll configuration with the
// live state of the list widget.
//
// Insets, alignment, bounce flags, styles and the refresh tint are owned by the
// caller and overwritten when they change. The content offset is shared: a
// caller-side change is commanded to the widget, otherwise the widget's offset
// flows back into the caller's [Binding]. Running this once per update cycle,
// instead of wiring observers in both directions, keeps the two sides from
// overwriting each other forever.
package scroll

import (
	"github.com/go-drift/sectionlist/pkg/geometry"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// OffsetEpsilon is the largest offset difference, in points, treated as equal.
const OffsetEpsilon = 0.5

// Result reports what a Sync call did.
type Result struct {
	// Commanded is set when the caller's offset was pushed to the widget.
	Commanded bool
	// Anchored is set when the offset was adjusted to keep an anchor row still.
	Anchored bool
	// Offset is the live offset after the merge.
	Offset geometry.Point
}

// Synchronizer holds what was last applied to one widget so repeated cycles
// with an unchanged configuration issue no commands.
type Synchronizer struct {
	applied    bool
	style      Style
	separator  SeparatorStyle
	alignment  Alignment
	bounceV    bool
	bounceH    bool
	insets     geometry.EdgeInsets
	tint       *geometry.Color
	refreshing bool
	reported   geometry.Point
}

// NewSynchronizer returns a synchronizer that has applied nothing yet.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{}
}

// Refreshing reports whether the synchronizer believes the refresh indicator
// is showing.
func (s *Synchronizer) Refreshing() bool {
	return s.refreshing
}

// Sync merges cfg into surface. anchor may be nil; locate maps anchor rows to
// their positions in the freshly applied content.
func (s *Synchronizer) Sync(surface Surface, cfg Configuration, anchor *Anchor, locate func(RowRef) (snapshot.Position, bool)) (Result, error) {
	if err := s.applyAuthoritative(surface, cfg); err != nil {
		return Result{}, err
	}
	if err := s.syncRefresh(surface, cfg); err != nil {
		return Result{}, err
	}

	var res Result
	live := surface.ContentOffset()
	switch {
	case cfg.Offset != nil && !cfg.Offset.Get().ApproxEqual(live, OffsetEpsilon):
		target := cfg.Offset.Get()
		if err := surface.SetContentOffset(target); err != nil {
			return Result{}, err
		}
		live = target
		res.Commanded = true
	case anchor != nil && locate != nil:
		target, ok := anchor.Resolve(surface, live, locate)
		// Never anchor above the top of the content.
		target.Y = max(target.Y, -cfg.Insets.Top)
		if ok && !target.ApproxEqual(live, OffsetEpsilon) {
			if err := surface.SetContentOffset(target); err != nil {
				return Result{}, err
			}
			live = target
			res.Anchored = true
		}
	}
	s.publish(cfg, live)
	res.Offset = live
	return res, nil
}

// DidScroll surfaces a user-initiated scroll to the caller.
func (s *Synchronizer) DidScroll(surface Surface, cfg Configuration) {
	s.publish(cfg, surface.ContentOffset())
}

// DidPullToRefresh records a user-initiated refresh. The widget has already
// started its indicator, so no begin command is issued.
func (s *Synchronizer) DidPullToRefresh(cfg Configuration) {
	s.refreshing = true
	if cfg.Refreshing != nil {
		cfg.Refreshing.Set(true)
	}
	if cfg.OnRefresh != nil {
		cfg.OnRefresh()
	}
}

func (s *Synchronizer) publish(cfg Configuration, live geometry.Point) {
	if cfg.Offset != nil {
		cfg.Offset.Set(live)
	}
	if s.reported.ApproxEqual(live, geometry.Epsilon) {
		return
	}
	s.reported = live
	if cfg.OnOffsetChange != nil {
		cfg.OnOffsetChange(live)
	}
}

func (s *Synchronizer) syncRefresh(surface Surface, cfg Configuration) error {
	if cfg.Refreshing == nil {
		return nil
	}
	want := cfg.Refreshing.Get()
	switch {
	case want && !s.refreshing:
		if err := surface.BeginRefreshing(); err != nil {
			return err
		}
	case !want && s.refreshing:
		if err := surface.EndRefreshing(); err != nil {
			return err
		}
	}
	s.refreshing = want
	return nil
}

func (s *Synchronizer) applyAuthoritative(surface Surface, cfg Configuration) error {
	first := !s.applied
	if first || cfg.Style != s.style {
		if err := surface.SetStyle(cfg.Style); err != nil {
			return err
		}
		s.style = cfg.Style
	}
	if cfg.Separator != SeparatorUnspecified && (first || cfg.Separator != s.separator) {
		if err := surface.SetSeparatorStyle(cfg.Separator); err != nil {
			return err
		}
		s.separator = cfg.Separator
	}
	if first || cfg.Alignment != s.alignment {
		if err := surface.SetAlignment(cfg.Alignment); err != nil {
			return err
		}
		s.alignment = cfg.Alignment
	}
	if first || cfg.BounceVertical != s.bounceV || cfg.BounceHorizontal != s.bounceH {
		if err := surface.SetBounces(cfg.BounceVertical, cfg.BounceHorizontal); err != nil {
			return err
		}
		s.bounceV, s.bounceH = cfg.BounceVertical, cfg.BounceHorizontal
	}
	if first || cfg.Insets != s.insets {
		if err := surface.SetInsets(cfg.Insets); err != nil {
			return err
		}
		s.insets = cfg.Insets
	}
	if !sameColor(cfg.RefreshTint, s.tint) {
		if err := surface.SetRefreshTint(cfg.RefreshTint); err != nil {
			return err
		}
		if cfg.RefreshTint != nil {
			c := *cfg.RefreshTint
			s.tint = &c
		} else {
			s.tint = nil
		}
	}
	s.applied = true
	return nil
}

func sameColor(a, b *geometry.Color) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
