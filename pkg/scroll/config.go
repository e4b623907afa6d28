package scroll

import (
	"fmt"

	"github.com/go-drift/sectionlist/pkg/geometry"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// Style selects the list presentation.
type Style int

const (
	StylePlain Style = iota
	StyleGrouped
	StyleInsetGrouped
)

func (s Style) String() string {
	switch s {
	case StylePlain:
		return "plain"
	case StyleGrouped:
		return "grouped"
	case StyleInsetGrouped:
		return "inset-grouped"
	default:
		return fmt.Sprintf("Style(%d)", int(s))
	}
}

// SeparatorStyle selects row separators. SeparatorUnspecified leaves the
// widget's platform default untouched.
type SeparatorStyle int

const (
	SeparatorUnspecified SeparatorStyle = iota
	SeparatorNone
	SeparatorSingleLine
)

func (s SeparatorStyle) String() string {
	switch s {
	case SeparatorUnspecified:
		return "unspecified"
	case SeparatorNone:
		return "none"
	case SeparatorSingleLine:
		return "single-line"
	default:
		return fmt.Sprintf("SeparatorStyle(%d)", int(s))
	}
}

// Alignment positions content that is shorter than the viewport.
type Alignment int

const (
	AlignTop Alignment = iota
	AlignCenter
	AlignBottom
)

func (a Alignment) String() string {
	switch a {
	case AlignTop:
		return "top"
	case AlignCenter:
		return "center"
	case AlignBottom:
		return "bottom"
	default:
		return fmt.Sprintf("Alignment(%d)", int(a))
	}
}

// Configuration is the caller's declared scroll state for one update cycle.
type Configuration struct {
	Style            Style
	Separator        SeparatorStyle
	Alignment        Alignment
	BounceVertical   bool
	BounceHorizontal bool
	Insets           geometry.EdgeInsets
	// Offset is the two-way content offset binding. Nil leaves the offset to
	// the user and to anchoring.
	Offset *Binding[geometry.Point]
	// Refreshing is the two-way refresh indicator binding. Nil leaves the
	// indicator untouched.
	Refreshing *Binding[bool]
	// RefreshTint colors the refresh indicator; nil keeps the platform tint.
	RefreshTint *geometry.Color
	// OnOffsetChange is called whenever the observed offset changes.
	OnOffsetChange func(geometry.Point)
	// OnRefresh is called when the user pulls to refresh.
	OnRefresh func()
}

// Surface is the scroll-related part of the imperative list widget.
type Surface interface {
	ContentOffset() geometry.Point
	SetContentOffset(geometry.Point) error
	SetInsets(geometry.EdgeInsets) error
	SetAlignment(Alignment) error
	SetBounces(vertical, horizontal bool) error
	SetStyle(Style) error
	SetSeparatorStyle(SeparatorStyle) error
	// SetRefreshTint sets the indicator tint; nil restores the default.
	SetRefreshTint(*geometry.Color) error
	BeginRefreshing() error
	EndRefreshing() error
	// VisibleRows returns the visible row positions, top to bottom.
	VisibleRows() []snapshot.Position
	// RowFrame returns the frame of a row in content coordinates.
	RowFrame(snapshot.Position) (geometry.Rect, bool)
}
