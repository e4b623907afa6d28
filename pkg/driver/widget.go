package driver

import (
	"github.com/go-drift/sectionlist/pkg/identity"
	"github.com/go-drift/sectionlist/pkg/pool"
	"github.com/go-drift/sectionlist/pkg/scroll"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// Widget is the imperative list widget a Driver keeps in step with snapshots.
//
// Index arguments are applied in the order given. Removals arrive in
// descending order and insertions in ascending order of their final index, so
// a widget may treat a call either as a batch or as a sequence. After every
// call the widget's section and row counts must agree with its DataSource.
type Widget interface {
	scroll.Surface

	// Attach installs the data source the widget pulls content from.
	Attach(source DataSource)

	InsertSections(indices []int) error
	RemoveSections(indices []int) error
	MoveSection(from, to int) error
	InsertRows(positions []snapshot.Position) error
	RemoveRows(positions []snapshot.Position) error
	MoveRow(from, to snapshot.Position) error
	ReloadRows(positions []snapshot.Position) error

	NumberOfSections() int
	NumberOfRows(section int) int
}

// DataSource is what a Widget may ask of its Driver.
type DataSource interface {
	NumberOfSections() int
	NumberOfRows(section int) int
	// SectionKey returns the identity of a section.
	SectionKey(section int) (identity.Key, bool)
	// ItemKey returns the identity of the row at pos.
	ItemKey(pos snapshot.Position) (scroll.RowRef, bool)
	// Row returns the renderer bound to the row at pos, binding one if needed.
	Row(pos snapshot.Position) (*pool.Renderer, error)
	// Header returns the header renderer of a section, or nil when the list
	// has no headers.
	Header(section int) (*pool.Renderer, error)
	// Footer returns the footer renderer of a section, or nil when the list
	// has no footers.
	Footer(section int) (*pool.Renderer, error)
	// DidEndDisplaying hands a renderer that went off screen back to the pool.
	DidEndDisplaying(r *pool.Renderer)
	// DidScroll reports a user scroll.
	DidScroll()
	// DidPullToRefresh reports a user-initiated refresh.
	DidPullToRefresh()
}

// Builder produces the displayable content for one kind of renderer.
type Builder struct {
	// Kind tags the renderer template. Empty uses the pool's default kind for
	// the builder's role.
	Kind pool.Kind
	// Build turns a payload into content. A nil Build uses the payload itself.
	Build func(payload any, pos snapshot.Position) any
}

// Content groups the caller's builders. Builders are invoked only when a
// renderer is bound or a row is reloaded.
type Content struct {
	Row    *Builder
	Header *Builder
	Footer *Builder
}

func (b *Builder) kind(fallback pool.Kind) pool.Kind {
	if b == nil || b.Kind == "" {
		return fallback
	}
	return b.Kind
}

func (b *Builder) build(payload any, pos snapshot.Position) any {
	if b == nil || b.Build == nil {
		return payload
	}
	return b.Build(payload, pos)
}
