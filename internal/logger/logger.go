// Package logger narrates the indexing and query pipelines on stderr.
// Debug, Info, and Section output only appears with --verbose; Warn
// always prints, since warnings explain why an answer came back
// degraded.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

var (
	mu      sync.RWMutex
	verbose bool
	out     io.Writer = os.Stderr
)

// SetVerbose toggles pipeline narration.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether narration is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects log output, mainly for tests. Defaults to
// os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func logf(gated bool, prefix, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if gated && !verbose {
		return
	}
	fmt.Fprintf(out, prefix+format+"\n", args...)
}

// Section marks the start of a pipeline stage.
func Section(name string) {
	logf(true, "", "\n=== %s ===", name)
}

// Info reports stage progress.
func Info(format string, args ...any) {
	logf(true, "[INFO] ", format, args...)
}

// Debug reports fine-grained detail within a stage.
func Debug(format string, args ...any) {
	logf(true, "[DEBUG] ", format, args...)
}

// Warn reports a degradation. Not gated on verbose.
func Warn(format string, args ...any) {
	logf(false, "[WARN] ", format, args...)
}
