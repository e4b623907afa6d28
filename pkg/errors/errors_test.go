package errors

import (
	"bytes"
	stderrors "errors"
	"strings"
	"testing"
	"time"
)

func TestListErrorString(t *testing.T) {
	err := New("driver.Update", KindConsistency, ErrOutOfBounds)
	got := err.Error()
	want := "driver.Update [consistency]: position out of bounds"
	if got != want {
		t.Errorf("ListError.Error() = %q, want %q", got, want)
	}
}

func TestListErrorWithSection(t *testing.T) {
	err := &ListError{
		Op:      "driver.apply",
		Kind:    KindConsistency,
		Section: 3,
		Err:     ErrCountMismatch,
	}
	want := "section=3"
	if got := err.Error(); !strings.Contains(got, want) {
		t.Errorf("error string %q should contain %q", got, want)
	}
}

func TestListErrorUnwrap(t *testing.T) {
	err := New("identity.Identify", KindIdentity, ErrNoExtractor)
	if !stderrors.Is(err, ErrNoExtractor) {
		t.Error("errors.Is should see the wrapped sentinel")
	}
	var listErr *ListError
	if !stderrors.As(error(err), &listErr) {
		t.Fatal("errors.As should find *ListError")
	}
	if listErr.Kind != KindIdentity {
		t.Errorf("Kind = %v, want %v", listErr.Kind, KindIdentity)
	}
}

func TestErrorKindString(t *testing.T) {
	tests := []struct {
		kind ErrorKind
		want string
	}{
		{KindUnknown, "unknown"},
		{KindIdentity, "identity"},
		{KindSnapshot, "snapshot"},
		{KindConsistency, "consistency"},
		{KindPanic, "panic"},
		{KindConfig, "config"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("ErrorKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}

func TestPanicErrorString(t *testing.T) {
	err := &PanicError{Value: "boom", Timestamp: time.Now()}
	if got, want := err.Error(), "panic: boom"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
	err.Op = "driver.Row"
	if got, want := err.Error(), "panic in driver.Row: boom"; got != want {
		t.Errorf("PanicError.Error() = %q, want %q", got, want)
	}
}

func TestReport(t *testing.T) {
	var captured *ListError
	handler := &testHandler{onError: func(err *ListError) { captured = err }}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	Report(New("test.op", KindSnapshot, ErrNoExtractor))

	if captured == nil {
		t.Fatal("expected error to be captured")
	}
	if captured.Op != "test.op" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.op")
	}
	if captured.Timestamp.IsZero() {
		t.Error("expected Timestamp to be set")
	}
}

func TestRecover(t *testing.T) {
	var captured *PanicError
	handler := &testHandler{onPanic: func(err *PanicError) { captured = err }}

	oldHandler := DefaultHandler
	SetHandler(handler)
	defer SetHandler(oldHandler)

	func() {
		defer Recover("test.recover")
		panic("intentional test panic")
	}()

	if captured == nil {
		t.Fatal("expected panic to be recovered and captured")
	}
	if captured.Value != "intentional test panic" {
		t.Errorf("Value = %v, want %q", captured.Value, "intentional test panic")
	}
	if captured.Op != "test.recover" {
		t.Errorf("Op = %q, want %q", captured.Op, "test.recover")
	}
}

func TestRecoverWithCallback(t *testing.T) {
	oldHandler := DefaultHandler
	SetHandler(&testHandler{})
	defer SetHandler(oldHandler)

	var got *PanicError
	func() {
		defer RecoverWithCallback("test.callback", func(p *PanicError) { got = p })
		panic(42)
	}()
	if got == nil || got.Value != 42 {
		t.Fatalf("callback got %+v, want panic value 42", got)
	}
}

func TestCaptureStack(t *testing.T) {
	stack := CaptureStack()
	if stack == "" {
		t.Error("expected non-empty stack trace")
	}
	if !strings.Contains(stack, "testing") && !strings.Contains(stack, "runtime") {
		t.Errorf("stack trace should contain testing or runtime frames, got: %s", stack)
	}
}

func TestSetHandlerNil(t *testing.T) {
	SetHandler(nil)
	if _, ok := DefaultHandler.(*LogHandler); !ok {
		t.Errorf("SetHandler(nil) should set LogHandler, got %T", DefaultHandler)
	}
}

func TestLogHandler(t *testing.T) {
	var buf bytes.Buffer
	h := &LogHandler{Out: &buf}
	h.HandleError(New("driver.Update", KindConsistency, ErrCountMismatch))
	if got := buf.String(); got != "[sectionlist error] driver.Update: row count mismatch\n" {
		t.Errorf("unexpected log line %q", got)
	}

	buf.Reset()
	h.Verbose = true
	h.HandlePanic(&PanicError{Op: "driver.Row", Value: "boom", StackTrace: "frame"})
	if got := buf.String(); !strings.Contains(got, "[sectionlist panic] driver.Row: boom") || !strings.Contains(got, "frame") {
		t.Errorf("unexpected verbose panic log %q", got)
	}
}

type testHandler struct {
	onError func(*ListError)
	onPanic func(*PanicError)
}

func (h *testHandler) HandleError(err *ListError) {
	if h.onError != nil {
		h.onError(err)
	}
}

func (h *testHandler) HandlePanic(err *PanicError) {
	if h.onPanic != nil {
		h.onPanic(err)
	}
}
