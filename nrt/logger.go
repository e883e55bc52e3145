package nrt

import (
	"fmt"
	"io"
	"os"
)

// Stream is the output sink handed to the logging hook.
type Stream = io.Writer

// LoggerFunc is the logging hook; it behaves like fprintf.
type LoggerFunc func(stream Stream, format string, args ...any) int

var (
	// Logger is the active logging hook.
	Logger LoggerFunc = DefaultLogger
	// LogStream is passed as the first argument to Logger.
	LogStream Stream = os.Stderr
	// DebugEnabled turns on allocation tracing through the logging hook.
	DebugEnabled bool
)

// DefaultLogger writes formatted output to the provided stream.
func DefaultLogger(stream Stream, format string, args ...any) int {
	if stream == nil {
		stream = os.Stderr
	}
	n, _ := fmt.Fprintf(stream, format, args...)
	return n
}

// LoggerSet updates the logging function and its default stream.
func LoggerSet(logger LoggerFunc, stream Stream) {
	if logger == nil {
		logger = DefaultLogger
	}
	if stream == nil {
		stream = os.Stderr
	}
	Logger = logger
	LogStream = stream
}

func debugf(format string, args ...any) {
	if DebugEnabled {
		Logger(LogStream, "nrt: "+format+"\n", args...)
	}
}
