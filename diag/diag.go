// Package diag implements the pipeline's diagnostics sink (spec §7):
// parse-error counting with first-occurrence messages, and a warn-once
// counter for repeated structural complaints (e.g. the same unsupported
// at-rule appearing on every element of a tag). Sinks are threaded
// explicitly through each stage rather than reached via a package-level
// logger, the same way pages.Handler threads a *slog.Logger through
// instead of calling slog.Default().
package diag

import (
	"io"
	"log/slog"
	"sync"
)

// Sink collects diagnostics for one pipeline run. The zero value is not
// usable; construct with New.
type Sink struct {
	logger *slog.Logger

	mu        sync.Mutex
	count     int
	first     map[string]string // construct -> first message seen
	seenWarn  map[[2]string]int // (construct, tag) -> times warned
}

// New creates a Sink that logs through logger. A nil logger falls back
// to a discarding logger, matching pages.go's sync.Once-guarded default.
func New(logger *slog.Logger) *Sink {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sink{logger: logger, first: make(map[string]string), seenWarn: make(map[[2]string]int)}
}

// Record logs a parse error under construct (e.g. "html", "css") and
// keeps the first message seen for that construct for later reporting.
func (s *Sink) Record(construct, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	if _, ok := s.first[construct]; !ok {
		s.first[construct] = msg
	}
	s.logger.Warn("parse error", slog.String("construct", construct), slog.String("msg", msg))
}

// WarnOnce logs msg for (construct, tag) only the first time it is seen;
// subsequent calls just increment the internal counter (useful for
// per-element diagnostics like "unsupported selector on every <div>"
// that would otherwise flood the log).
func (s *Sink) WarnOnce(construct, tag, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]string{construct, tag}
	n := s.seenWarn[key]
	s.seenWarn[key] = n + 1
	if n == 0 {
		s.logger.Warn(msg, slog.String("construct", construct), slog.String("tag", tag))
	}
}

// Count returns the total number of Record calls made on this sink.
func (s *Sink) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}

// FirstMessage returns the first Record'd message for construct, if any.
func (s *Sink) FirstMessage(construct string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.first[construct]
	return m, ok
}

// WarnOnceCount returns how many times WarnOnce was called for
// (construct, tag), including the first (logged) call.
func (s *Sink) WarnOnceCount(construct, tag string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seenWarn[[2]string{construct, tag}]
}

// ParseErrorCallback adapts Sink.Record to the func(string) shape
// htmltok.Tokenizer.OnParseError and htmltree.Builder.OnParseError
// expect, tagging every message under construct.
func (s *Sink) ParseErrorCallback(construct string) func(string) {
	return func(msg string) { s.Record(construct, msg) }
}
