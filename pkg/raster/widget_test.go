package raster

import (
	"bytes"
	stderrors "errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/go-drift/sectionlist/pkg/config"
	"github.com/go-drift/sectionlist/pkg/driver"
	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/geometry"
	"github.com/go-drift/sectionlist/pkg/identity"
	"github.com/go-drift/sectionlist/pkg/pool"
	"github.com/go-drift/sectionlist/pkg/scroll"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

var white, black = geometry.RGB(255, 255, 255), geometry.RGB(0, 0, 0)

func testSettings() Settings {
	return Settings{Width: 200, Height: 120, RowHeight: 20, HeaderHeight: 20, Background: white, Foreground: black}
}

func fixture(t *testing.T, doc string) *snapshot.Snapshot {
	t.Helper()
	s, err := config.ParseFixture([]byte(doc))
	if err != nil {
		t.Fatalf("ParseFixture: %v", err)
	}
	return s
}

func labels() driver.Content {
	return driver.Content{
		Row: &driver.Builder{Build: func(payload any, _ snapshot.Position) any {
			return payload.(config.FixtureItem).Label()
		}},
		Header: &driver.Builder{Build: func(payload any, _ snapshot.Position) any {
			return payload.(config.FixtureSection).Label()
		}},
	}
}

const twoFruit = `
sections:
  - key: fruit
    title: Fruit
    items:
      - {key: apple, text: Apple}
      - {key: pear, text: Pear}
`

func render(t *testing.T, w *Widget) *image.RGBA {
	t.Helper()
	img, err := w.Render()
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	return img
}

func hasInk(img *image.RGBA, top, bottom int) bool {
	for y := top; y < bottom; y++ {
		for x := 0; x < img.Bounds().Dx(); x++ {
			if img.RGBAAt(x, y).R < 128 {
				return true
			}
		}
	}
	return false
}

func TestRender_RowsAndHeaders(t *testing.T) {
	w := New(testSettings())
	d := driver.New(w, labels())
	if err := d.Update(fixture(t, twoFruit), scroll.Configuration{}); err != nil {
		t.Fatalf("Update: %v", err)
	}

	img := render(t, w)
	if img.Bounds() != image.Rect(0, 0, 200, 120) {
		t.Fatalf("bounds = %v", img.Bounds())
	}
	if got, want := img.RGBAAt(1, 1), (color.RGBA{230, 230, 230, 255}); got != want {
		t.Errorf("header background = %v, want %v", got, want)
	}
	if !hasInk(img, 0, 20) {
		t.Error("header label not drawn")
	}
	if !hasInk(img, 20, 40) || !hasInk(img, 40, 60) {
		t.Error("row labels not drawn")
	}
	if hasInk(img, 60, 120) {
		t.Error("area below the content should be empty")
	}
}

func TestRender_RefreshIndicatorUsesTint(t *testing.T) {
	w := New(testSettings())
	d := driver.New(w, labels())
	red := geometry.RGB(255, 0, 0)
	cfg := scroll.Configuration{Refreshing: scroll.NewBinding(true), RefreshTint: &red}
	if err := d.Update(fixture(t, twoFruit), cfg); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !w.Refreshing() {
		t.Fatal("indicator should be showing")
	}
	if got := render(t, w).RGBAAt(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("indicator color = %v", got)
	}
}

func TestLayout_Alignment(t *testing.T) {
	w := New(testSettings())
	d := driver.New(w, labels())
	cfg := scroll.Configuration{Alignment: scroll.AlignBottom}
	if err := d.Update(fixture(t, twoFruit), cfg); err != nil {
		t.Fatalf("Update: %v", err)
	}
	last, ok := w.RowFrame(snapshot.Position{Row: 1})
	if !ok || last.Bottom != 120 {
		t.Errorf("bottom-aligned last row = %+v, want bottom 120", last)
	}

	cfg.Alignment = scroll.AlignCenter
	if err := d.Update(d.Baseline(), cfg); err != nil {
		t.Fatalf("Update: %v", err)
	}
	header, _ := w.HeaderFrame(0)
	if header.Top != 30 {
		t.Errorf("centered header top = %v, want 30", header.Top)
	}
}

func TestLayout_GroupedStyles(t *testing.T) {
	w := New(testSettings())
	d := driver.New(w, labels())
	if err := d.Update(fixture(t, twoFruit), scroll.Configuration{Style: scroll.StyleInsetGrouped}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	f, _ := w.RowFrame(snapshot.Position{Row: 0})
	want := geometry.Rect{Left: sectionSpacing, Top: sectionSpacing + 20, Right: 200 - sectionSpacing, Bottom: sectionSpacing + 40}
	if f != want {
		t.Errorf("RowFrame = %+v, want %+v", f, want)
	}
}

func TestScrollReleasesRows(t *testing.T) {
	w := New(testSettings())
	d := driver.New(w, labels())
	var items []string
	for _, k := range []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"} {
		items = append(items, "      - {key: "+k+"}")
	}
	doc := "sections:\n  - key: s\n    items:\n" + strings.Join(items, "\n") + "\n"
	if err := d.Update(fixture(t, doc), scroll.Configuration{}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	before := d.Stats().Pool.InUse
	if err := w.ScrollTo(200); err != nil {
		t.Fatalf("ScrollTo: %v", err)
	}
	st := d.Stats().Pool
	if st.InUse != len(w.VisibleRows()) {
		t.Errorf("in use = %d, visible = %d", st.InUse, len(w.VisibleRows()))
	}
	if st.Reused == 0 || st.Created > before+st.Reused {
		t.Errorf("scrolling should recycle renderers, stats = %+v", st)
	}
}

func TestWritePNG(t *testing.T) {
	w := New(testSettings())
	d := driver.New(w, labels())
	if err := d.Update(fixture(t, twoFruit), scroll.Configuration{}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	var buf bytes.Buffer
	if err := w.WritePNG(&buf); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("png.Decode: %v", err)
	}
	if img.Bounds().Dx() != 200 || img.Bounds().Dy() != 120 {
		t.Errorf("decoded bounds = %v", img.Bounds())
	}
}

func TestTruncate(t *testing.T) {
	face := basicfont.Face7x13
	if got := Truncate(face, "short", fixed.I(100)); got != "short" {
		t.Errorf("Truncate(short) = %q", got)
	}
	width := fixed.I(70)
	got := Truncate(face, "a rather long row label", width)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Truncate = %q, want ellipsis", got)
	}
	if font.MeasureString(face, got) > width {
		t.Errorf("Truncate(%q) is wider than %v", got, width)
	}
	if got := Truncate(face, "x", 0); got != "" {
		t.Errorf("Truncate with no room = %q", got)
	}
}

// staticSource reports a single section of three rows no matter what the
// widget does.
type staticSource struct {
	pool *pool.Pool
}

func (s *staticSource) NumberOfSections() int { return 1 }
func (s *staticSource) NumberOfRows(int) int  { return 3 }
func (s *staticSource) SectionKey(int) (identity.Key, bool) {
	return identity.Of("s"), true
}
func (s *staticSource) ItemKey(pos snapshot.Position) (scroll.RowRef, bool) {
	return scroll.RowRef{Section: identity.Of("s"), Item: identity.Of(pos.Row)}, true
}
func (s *staticSource) Row(snapshot.Position) (*pool.Renderer, error) {
	return s.pool.Acquire(pool.KindRow), nil
}
func (s *staticSource) Header(int) (*pool.Renderer, error) { return nil, nil }
func (s *staticSource) Footer(int) (*pool.Renderer, error) { return nil, nil }
func (s *staticSource) DidEndDisplaying(r *pool.Renderer)  { _ = s.pool.Release(r) }
func (s *staticSource) DidScroll()                         {}
func (s *staticSource) DidPullToRefresh()                  {}

func TestCommandsAreCheckedAgainstSource(t *testing.T) {
	w := New(testSettings())
	w.Attach(&staticSource{pool: pool.New(nil)})
	if err := w.InsertSections([]int{0}); err != nil {
		t.Fatalf("InsertSections: %v", err)
	}
	err := w.InsertRows([]snapshot.Position{{Section: 0, Row: 3}})
	if !stderrors.Is(err, errors.ErrCountMismatch) {
		t.Errorf("InsertRows error = %v, want count mismatch", err)
	}
	if err := w.RemoveRows([]snapshot.Position{{Section: 2, Row: 0}}); !stderrors.Is(err, errors.ErrOutOfBounds) {
		t.Errorf("RemoveRows error = %v, want out of bounds", err)
	}
}
