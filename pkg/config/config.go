// Package config loads list configuration and content fixtures from YAML.
package config

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/geometry"
	"github.com/go-drift/sectionlist/pkg/pool"
	"github.com/go-drift/sectionlist/pkg/reconcile"
	"github.com/go-drift/sectionlist/pkg/scroll"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "sectionlist.yaml"

// DefaultVersion is assumed when a file omits its schema version.
const DefaultVersion = "v1.0.0"

// Config represents a sectionlist.yaml file.
type Config struct {
	Version string       `yaml:"version,omitempty"`
	List    ListConfig   `yaml:"list"`
	Diff    DiffConfig   `yaml:"diff"`
	Pool    PoolConfig   `yaml:"pool"`
	Render  RenderConfig `yaml:"render"`
}

// ListConfig mirrors scroll.Configuration.
type ListConfig struct {
	Style       string       `yaml:"style,omitempty"`
	Separator   string       `yaml:"separator,omitempty"`
	Alignment   string       `yaml:"alignment,omitempty"`
	Bounce      BounceConfig `yaml:"bounce"`
	Insets      InsetsConfig `yaml:"insets"`
	Offset      *PointConfig `yaml:"offset,omitempty"`
	Refreshing  *bool        `yaml:"refreshing,omitempty"`
	RefreshTint string       `yaml:"refreshTint,omitempty"`
}

// BounceConfig holds the bounce flags.
type BounceConfig struct {
	Vertical   bool `yaml:"vertical"`
	Horizontal bool `yaml:"horizontal"`
}

// InsetsConfig holds content insets in points.
type InsetsConfig struct {
	Top    float64 `yaml:"top"`
	Left   float64 `yaml:"left"`
	Bottom float64 `yaml:"bottom"`
	Right  float64 `yaml:"right"`
}

// PointConfig is a content offset.
type PointConfig struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// DiffConfig tunes the reconciler.
type DiffConfig struct {
	// FullReloadRatio defaults to 1; negative disables the fallback.
	FullReloadRatio *float64 `yaml:"fullReloadRatio,omitempty"`
	// Reload is one of "always", "never" or "changed".
	Reload string `yaml:"reload,omitempty"`
}

// PoolConfig bounds the renderer pool.
type PoolConfig struct {
	MaxPooled int            `yaml:"maxPooled,omitempty"`
	Limits    map[string]int `yaml:"limits,omitempty"`
}

// RenderConfig sizes the raster preview.
type RenderConfig struct {
	Width     int     `yaml:"width,omitempty"`
	Height    int     `yaml:"height,omitempty"`
	RowHeight float64 `yaml:"rowHeight,omitempty"`
	// HeaderHeight defaults to DefaultHeaderHeight when unset; 0 hides headers.
	HeaderHeight *float64 `yaml:"headerHeight,omitempty"`
	Background   string   `yaml:"background,omitempty"`
	Foreground   string   `yaml:"foreground,omitempty"`
}

// Render defaults.
const (
	DefaultWidth        = 320
	DefaultHeight       = 480
	DefaultRowHeight    = 24
	DefaultHeaderHeight = 20
)

// Resolved holds validated values ready to hand to a driver.
type Resolved struct {
	Version     string
	Scroll      scroll.Configuration
	DiffOptions []reconcile.Option
	PoolOptions []pool.Option
	Render      RenderSettings
}

// RenderSettings are resolved raster preview settings.
type RenderSettings struct {
	Width        int
	Height       int
	RowHeight    float64
	HeaderHeight float64
	Background   geometry.Color
	Foreground   geometry.Color
}

// LoadOptional reads sectionlist.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := Load(filepath.Join(dir, FileName))
	if err != nil {
		if stderrors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("config.Load", errors.KindConfig, fmt.Errorf("failed to read %s: %w", path, err))
	}
	return Parse(data)
}

// Parse decodes a configuration document. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stderrors.Is(err, io.EOF) {
		return nil, errors.New("config.Parse", errors.KindConfig, fmt.Errorf("failed to parse config: %w", err))
	}
	return &cfg, nil
}

// Resolve validates cfg and fills in defaults. A nil cfg resolves to the
// defaults.
func Resolve(cfg *Config) (*Resolved, error) {
	if cfg == nil {
		cfg = &Config{}
	}
	fail := func(format string, args ...any) (*Resolved, error) {
		return nil, errors.New("config.Resolve", errors.KindConfig, fmt.Errorf(format, args...))
	}

	version := strings.TrimSpace(cfg.Version)
	if version == "" {
		version = DefaultVersion
	}
	if !strings.HasPrefix(version, "v") {
		version = "v" + version
	}
	if !semver.IsValid(version) {
		return fail("invalid version %q", cfg.Version)
	}
	if major := semver.Major(version); major != semver.Major(DefaultVersion) {
		return fail("unsupported config version %s (want %s.x)", version, semver.Major(DefaultVersion))
	}

	sc, err := resolveList(cfg.List)
	if err != nil {
		return fail("%v", err)
	}

	var diffOpts []reconcile.Option
	if cfg.Diff.FullReloadRatio != nil {
		diffOpts = append(diffOpts, reconcile.WithFullReloadRatio(*cfg.Diff.FullReloadRatio))
	}
	switch strings.ToLower(strings.TrimSpace(cfg.Diff.Reload)) {
	case "", "always":
	case "never":
		diffOpts = append(diffOpts, reconcile.WithReloadPolicy(reconcile.ReloadNever))
	case "changed":
		diffOpts = append(diffOpts, reconcile.WithReloadPolicy(reconcile.ReloadWhenChanged))
	default:
		return fail("unknown reload policy %q", cfg.Diff.Reload)
	}

	var poolOpts []pool.Option
	if cfg.Pool.MaxPooled > 0 {
		poolOpts = append(poolOpts, pool.WithMaxPooled(cfg.Pool.MaxPooled))
	}
	for kind, n := range cfg.Pool.Limits {
		poolOpts = append(poolOpts, pool.WithKindLimit(pool.Kind(kind), n))
	}

	render, err := resolveRender(cfg.Render)
	if err != nil {
		return fail("%v", err)
	}

	return &Resolved{
		Version:     version,
		Scroll:      sc,
		DiffOptions: diffOpts,
		PoolOptions: poolOpts,
		Render:      render,
	}, nil
}

func resolveList(l ListConfig) (scroll.Configuration, error) {
	var sc scroll.Configuration
	var err error
	if sc.Style, err = parseEnum(l.Style, "style", map[string]scroll.Style{
		"": scroll.StylePlain, "plain": scroll.StylePlain, "grouped": scroll.StyleGrouped, "inset-grouped": scroll.StyleInsetGrouped,
	}); err != nil {
		return sc, err
	}
	if sc.Separator, err = parseEnum(l.Separator, "separator", map[string]scroll.SeparatorStyle{
		"": scroll.SeparatorUnspecified, "none": scroll.SeparatorNone, "single-line": scroll.SeparatorSingleLine,
	}); err != nil {
		return sc, err
	}
	if sc.Alignment, err = parseEnum(l.Alignment, "alignment", map[string]scroll.Alignment{
		"": scroll.AlignTop, "top": scroll.AlignTop, "center": scroll.AlignCenter, "bottom": scroll.AlignBottom,
	}); err != nil {
		return sc, err
	}
	sc.BounceVertical = l.Bounce.Vertical
	sc.BounceHorizontal = l.Bounce.Horizontal
	sc.Insets = geometry.EdgeInsets{Top: l.Insets.Top, Left: l.Insets.Left, Bottom: l.Insets.Bottom, Right: l.Insets.Right}
	if l.Offset != nil {
		sc.Offset = scroll.NewBinding(geometry.Point{X: l.Offset.X, Y: l.Offset.Y})
	}
	if l.Refreshing != nil {
		sc.Refreshing = scroll.NewBinding(*l.Refreshing)
	}
	if l.RefreshTint != "" {
		c, err := geometry.ParseHex(l.RefreshTint)
		if err != nil {
			return sc, fmt.Errorf("refreshTint: %w", err)
		}
		sc.RefreshTint = &c
	}
	return sc, nil
}

func resolveRender(r RenderConfig) (RenderSettings, error) {
	rs := RenderSettings{
		Width:        r.Width,
		Height:       r.Height,
		RowHeight:    r.RowHeight,
		HeaderHeight: DefaultHeaderHeight,
		Background:   geometry.RGB(255, 255, 255),
		Foreground:   geometry.RGB(0, 0, 0),
	}
	if rs.Width <= 0 {
		rs.Width = DefaultWidth
	}
	if rs.Height <= 0 {
		rs.Height = DefaultHeight
	}
	if rs.RowHeight <= 0 {
		rs.RowHeight = DefaultRowHeight
	}
	if r.HeaderHeight != nil {
		if *r.HeaderHeight < 0 {
			return rs, fmt.Errorf("headerHeight must not be negative")
		}
		rs.HeaderHeight = *r.HeaderHeight
	}
	for _, c := range []struct {
		name string
		in   string
		out  *geometry.Color
	}{{"background", r.Background, &rs.Background}, {"foreground", r.Foreground, &rs.Foreground}} {
		if c.in == "" {
			continue
		}
		v, err := geometry.ParseHex(c.in)
		if err != nil {
			return rs, fmt.Errorf("%s: %w", c.name, err)
		}
		*c.out = v
	}
	return rs, nil
}

func parseEnum[T any](value, field string, values map[string]T) (T, error) {
	v, ok := values[strings.ToLower(strings.TrimSpace(value))]
	if !ok {
		var zero T
		return zero, fmt.Errorf("unknown %s %q", field, value)
	}
	return v, nil
}
