package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// OutputSink abstracts where console messages go.
type OutputSink interface {
	Print(text string)
	Printf(format string, args ...any)
}

// StdoutSink writes directly to standard output.
type StdoutSink struct{}

func (StdoutSink) Print(text string)                 { fmt.Print(text) }
func (StdoutSink) Printf(format string, args ...any) { fmt.Printf(format, args...) }

// WriterSink writes to an arbitrary writer. Safe for concurrent use.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink returns a sink writing to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

func (s *WriterSink) Print(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.w, text)
}

func (s *WriterSink) Printf(format string, args ...any) {
	s.Print(fmt.Sprintf(format, args...))
}

// Default sink selection
var defaultSink OutputSink = StdoutSink{}

// SetDefaultSink sets the global default OutputSink.
func SetDefaultSink(s OutputSink) { defaultSink = s }

// Out returns the current default output sink.
func Out() OutputSink { return defaultSink }


// Quiet silences console output, used by tests and --json style callers.
func Quiet() { defaultSink = NewWriterSink(io.Discard) }

// FromEnv reports whether styled output was disabled through the environment.
func FromEnv() bool {
	return os.Getenv("SPAIDER_PLAIN") == "1" || os.Getenv("NO_COLOR") != ""
}
