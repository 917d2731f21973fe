// Package notify is the user-facing notification channel for asynchronous
// operations. Implementations are fire-and-forget; callers never consume a
// return value.
package notify

import (
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// Notifier reports operation outcomes to the user.
type Notifier interface {
	Success(message string)
	Error(message string)
}

// Log routes notifications through the default slog logger.
type Log struct{}

func (Log) Success(message string) { slog.Info(message) }
func (Log) Error(message string)   { slog.Error(message) }

// Writer prints notifications to a pair of streams, for CLI use.
type Writer struct {
	Out io.Writer
	Err io.Writer
}

func (w Writer) Success(message string) { fmt.Fprintln(w.Out, message) }
func (w Writer) Error(message string)   { fmt.Fprintln(w.Err, "error: "+message) }

// Capture records notifications for later inspection. Safe for concurrent use.
type Capture struct {
	mu        sync.Mutex
	successes []string
	errors    []string
}

func (c *Capture) Success(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.successes = append(c.successes, message)
}

func (c *Capture) Error(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.errors = append(c.errors, message)
}

// Successes returns a copy of the recorded success messages.
func (c *Capture) Successes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.successes...)
}

// Errors returns a copy of the recorded error messages.
func (c *Capture) Errors() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.errors...)
}
