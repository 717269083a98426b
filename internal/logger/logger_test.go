package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func setupTestLogger(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	setupTestLogger(t)

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())
}

func TestGatedOutput(t *testing.T) {
	tests := []struct {
		name    string
		log     func()
		verbose string
		quiet   string
	}{
		{
			name:    "debug",
			log:     func() { Debug("split %d parents", 3) },
			verbose: "[DEBUG] split 3 parents\n",
			quiet:   "",
		},
		{
			name:    "info",
			log:     func() { Info("Stage: %s", "retrieving") },
			verbose: "[INFO] Stage: retrieving\n",
			quiet:   "",
		},
		{
			name:    "section",
			log:     func() { Section("Query Execution") },
			verbose: "\n=== Query Execution ===\n",
			quiet:   "",
		},
		{
			name:    "warn prints without verbose",
			log:     func() { Warn("quota exhausted") },
			verbose: "[WARN] quota exhausted\n",
			quiet:   "[WARN] quota exhausted\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := setupTestLogger(t)

			SetVerbose(true)
			tt.log()
			assert.Equal(t, tt.verbose, buf.String())

			buf.Reset()
			SetVerbose(false)
			tt.log()
			assert.Equal(t, tt.quiet, buf.String())
		})
	}
}

func TestConcurrentAccess(t *testing.T) {
	setupTestLogger(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			SetVerbose(true)
			Debug("worker %d", i)
			IsVerbose()
			SetVerbose(false)
		}(i)
	}
	wg.Wait()
}
