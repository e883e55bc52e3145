package nrt

import (
	"testing"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// expectFatal runs fn and fails the test unless fn panics with *FatalError.
// The logging hook is silenced for the duration so expected fatals do not
// pollute test output.
func expectFatal(t *testing.T, fn func()) {
	t.Helper()
	prev, prevStream := Logger, LogStream
	LoggerSet(func(Stream, string, ...any) int { return 0 }, nil)
	defer LoggerSet(prev, prevStream)
	defer func() {
		t.Helper()
		r := recover()
		if r == nil {
			t.Fatalf("expected a fatal error, got none")
		}
		if _, ok := r.(*FatalError); !ok {
			t.Fatalf("expected *FatalError, got %T: %v", r, r)
		}
	}()
	fn()
}
