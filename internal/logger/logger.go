// Package logger writes leveled, line-oriented diagnostics to stderr.
// Errors always print; everything else needs --verbose.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level orders log lines by severity.
type Level int

// Levels, least severe first.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelTags = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

// String returns the tag printed in brackets.
func (l Level) String() string {
	if l < LevelDebug || l > LevelError {
		return "LEVEL(" + fmt.Sprint(int(l)) + ")"
	}
	return levelTags[l]
}

var (
	mu         sync.Mutex
	threshold  = LevelError
	timestamps bool
	output     io.Writer = os.Stderr
	now                  = time.Now
)

// SetVerbose lowers the threshold to Debug, or restores it to Error.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	if v {
		threshold = LevelDebug
	} else {
		threshold = LevelError
	}
}

// IsVerbose reports whether lines below Error are printed.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return threshold < LevelError
}

// SetTimestamps prefixes every line with the local wall-clock time.
func SetTimestamps(v bool) {
	mu.Lock()
	defer mu.Unlock()
	timestamps = v
}

// SetOutput redirects log lines. Tests use it to capture output.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// logf writes one line under the lock so concurrent lines never interleave.
func logf(level Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if level < threshold {
		return
	}

	var b strings.Builder
	if timestamps {
		b.WriteString(now().Format("15:04:05.000"))
		b.WriteByte(' ')
	}
	b.WriteByte('[')
	b.WriteString(level.String())
	b.WriteString("] ")
	fmt.Fprintf(&b, format, args...)
	b.WriteByte('\n')
	_, _ = io.WriteString(output, b.String())
}

func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }
func Info(format string, args ...any)  { logf(LevelInfo, format, args...) }
func Warn(format string, args ...any)  { logf(LevelWarn, format, args...) }
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section prints a blank line and a banner in verbose mode, marking the
// start of a session or cycle in long logs.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if threshold < LevelError {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
