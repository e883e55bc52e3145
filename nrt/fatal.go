package nrt

import "fmt"

// FatalError is the panic payload raised on caller contract violations:
// rebinding the allocator over live blocks, varsize operations on handles
// not built for them, or a refcount observed at zero by a live caller.
// These indicate memory-safety bugs in compiled callers; execution must
// not continue past them.
type FatalError struct {
	Msg string
}

func (e *FatalError) Error() string {
	return "fatal nrt error: " + e.Msg
}

func fatalf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	Logger(LogStream, "fatal nrt error: %s\n", msg)
	panic(&FatalError{Msg: msg})
}
