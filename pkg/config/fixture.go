package config

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/sectionlist/pkg/errors"
	"github.com/go-drift/sectionlist/pkg/identity"
	"github.com/go-drift/sectionlist/pkg/snapshot"
)

// Fixture is a YAML description of list content:
//
//	sections:
//	  - key: fruit
//	    title: Fruit
//	    items:
//	      - {key: apple, text: Apple}
//	      - {key: pear}
type Fixture struct {
	Sections []FixtureSection `yaml:"sections"`
}

// FixtureSection is one section of a fixture. Title is its header payload.
type FixtureSection struct {
	Key   string        `yaml:"key"`
	Title string        `yaml:"title,omitempty"`
	Items []FixtureItem `yaml:"items"`
}

// FixtureItem is one row. Text defaults to the key.
type FixtureItem struct {
	Key  string `yaml:"key"`
	Text string `yaml:"text,omitempty"`
}

// Label returns the text shown for the row.
func (it FixtureItem) Label() string {
	if it.Text != "" {
		return it.Text
	}
	return it.Key
}

// Label returns the text shown in the section header.
func (s FixtureSection) Label() string {
	if s.Title != "" {
		return s.Title
	}
	return s.Key
}

// LoadFixture reads a fixture file and builds its snapshot.
func LoadFixture(path string) (*snapshot.Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("config.LoadFixture", errors.KindConfig, fmt.Errorf("failed to read %s: %w", path, err))
	}
	s, err := ParseFixture(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseFixture decodes a fixture document into a snapshot. Section payloads
// are FixtureSection values and item payloads are FixtureItem values.
func ParseFixture(data []byte) (*snapshot.Snapshot, error) {
	var fx Fixture
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&fx); err != nil {
		return nil, errors.New("config.ParseFixture", errors.KindConfig, fmt.Errorf("failed to parse fixture: %w", err))
	}
	return fx.Snapshot()
}

// Snapshot builds the snapshot described by the fixture. Empty keys are
// rejected; duplicate keys are disambiguated like any other snapshot.
func (fx *Fixture) Snapshot() (*snapshot.Snapshot, error) {
	groups := make([]snapshot.Group[FixtureSection, FixtureItem], len(fx.Sections))
	for i, sec := range fx.Sections {
		groups[i] = snapshot.Group[FixtureSection, FixtureItem]{Section: sec, Items: sec.Items}
	}
	return snapshot.New(groups, keyOf(func(s FixtureSection) string { return s.Key }),
		keyOf(func(it FixtureItem) string { return it.Key }))
}

func keyOf[T any](key func(T) string) identity.Extractor[T] {
	return identity.Func(func(v T) (any, error) {
		k := key(v)
		if k == "" {
			return nil, fmt.Errorf("empty key")
		}
		return k, nil
	})
}
