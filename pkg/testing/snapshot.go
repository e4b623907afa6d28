package testing

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// UpdateEnv is the environment variable that switches MatchesFile from
// comparing to rewriting golden files.
const UpdateEnv = "SECTIONLIST_UPDATE_SNAPSHOTS"

// TestingT is the subset of *testing.T used by MatchesFile, allowing
// test doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// CommandLog is the ordered list of commands a widget received.
type CommandLog struct {
	Commands []string `json:"commands"`
	// Scroll holds scroll and refresh commands, kept apart from structural
	// ones so layout tweaks do not churn structural goldens.
	Scroll []string `json:"scroll,omitempty"`
}

// MatchesFile compares this log against a golden file. On mismatch it
// reports a diff and instructions for updating. When
// SECTIONLIST_UPDATE_SNAPSHOTS=1 is set, the file is silently updated instead.
func (l *CommandLog) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv(UpdateEnv) == "1" {
		if err := l.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadLog(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: %s=1 go test -run %s", path, UpdateEnv, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := l.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: %s=1 go test -run %s", path, diff, UpdateEnv, t.Name())
	}
}

// UpdateFile writes this log to the given path, creating directories
// as needed.
func (l *CommandLog) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalLog(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a readable diff between other (expected) and this log (actual).
// Returns empty string if equal.
func (l *CommandLog) Diff(other *CommandLog) string {
	return cmp.Diff(other, l, cmpopts.EquateEmpty())
}

func loadLog(path string) (*CommandLog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var l CommandLog
	if err := json.Unmarshal(data, &l); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &l, nil
}

func marshalLog(l *CommandLog) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(l); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
