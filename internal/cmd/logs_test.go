package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Iron-Ham/roster/internal/logging"
)

// writeTestLog writes entries through the real logger so the format matches.
func writeTestLog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	logger, err := logging.NewLogger(dir, "debug")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	ctrl := logger.WithComponent("controller")
	ctrl.WithOperation("refresh").Info("refresh completed", "count", 10)
	ctrl.WithOperation("add_one").Warn("add failed", "error", "HTTP 503")
	logger.WithComponent("source").Debug("fetched batch", "requested", 10)
	logger.WithComponent("tui").Error("render failed")
	if err := logger.Close(); err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(dir, logging.LogFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("not json at all\n")
	_ = f.Close()
	return path
}

func TestLogEntry_UnmarshalJSON(t *testing.T) {
	line := `{"time":"2026-01-02T03:04:05Z","level":"WARN","msg":"add failed","component":"controller","operation":"add_one","error":"HTTP 503","retryable":true}`

	var e logEntry
	if err := json.Unmarshal([]byte(line), &e); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if e.Level != "WARN" || e.Msg != "add failed" || e.Component != "controller" || e.Operation != "add_one" {
		t.Errorf("known fields not parsed: %+v", e)
	}
	if len(e.Extra) != 2 || e.Extra["error"] != "HTTP 503" || e.Extra["retryable"] != true {
		t.Errorf("Extra = %v", e.Extra)
	}
}

func TestFormatLogEntry(t *testing.T) {
	e := &logEntry{
		Time:      time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Level:     "info",
		Msg:       "refresh completed",
		Component: "controller",
		Operation: "refresh",
		Extra:     map[string]any{"duration_ms": 1002, "count": 10},
	}

	got := formatLogEntry(e)
	for _, want := range []string{"03:04:05.000", "[INFO]", "refresh completed", "component=", "operation=", "count=", "duration_ms="} {
		if !strings.Contains(got, want) {
			t.Errorf("formatted entry missing %q: %s", want, got)
		}
	}
	if strings.Index(got, "count=") > strings.Index(got, "duration_ms=") {
		t.Error("extra fields should be sorted by key")
	}
}

func TestLevelPriority(t *testing.T) {
	tests := map[string]int{"debug": 0, "INFO": 1, "Warn": 2, "ERROR": 3, "trace": -1}
	for level, want := range tests {
		if got := levelPriority(level); got != want {
			t.Errorf("levelPriority(%q) = %d, want %d", level, got, want)
		}
	}
}

func TestLogFilter(t *testing.T) {
	now := time.Now()
	e := &logEntry{Time: now, Level: "WARN", Msg: "add failed", Component: "controller", Extra: map[string]any{"error": "HTTP 503"}}

	tests := []struct {
		name   string
		filter logFilter
		want   bool
	}{
		{"no filter", logFilter{minLevel: -1}, true},
		{"level at threshold", logFilter{minLevel: 2}, true},
		{"level above entry", logFilter{minLevel: 3}, false},
		{"since before entry", logFilter{minLevel: -1, since: now.Add(-time.Minute)}, true},
		{"since after entry", logFilter{minLevel: -1, since: now.Add(time.Minute)}, false},
		{"component match", logFilter{minLevel: -1, component: "controller"}, true},
		{"component mismatch", logFilter{minLevel: -1, component: "tui"}, false},
		{"grep message", logFilter{minLevel: -1, grep: regexp.MustCompile("add")}, true},
		{"grep extra field", logFilter{minLevel: -1, grep: regexp.MustCompile("503")}, true},
		{"grep miss", logFilter{minLevel: -1, grep: regexp.MustCompile("refresh")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.pass(e); got != tt.want {
				t.Errorf("pass() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDisplayLogs(t *testing.T) {
	path := writeTestLog(t)

	t.Run("all", func(t *testing.T) {
		var buf bytes.Buffer
		if err := displayLogs(&buf, path, 0, logFilter{minLevel: -1}); err != nil {
			t.Fatal(err)
		}
		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		if len(lines) != 5 {
			t.Fatalf("got %d lines, want 5:\n%s", len(lines), buf.String())
		}
		if lines[4] != "not json at all" {
			t.Errorf("raw lines should be shown as-is, got %q", lines[4])
		}
	})

	t.Run("tail", func(t *testing.T) {
		var buf bytes.Buffer
		if err := displayLogs(&buf, path, 2, logFilter{minLevel: -1}); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		if strings.Contains(out, "refresh completed") || !strings.Contains(out, "render failed") {
			t.Errorf("tail should keep only the last entries:\n%s", out)
		}
	})

	t.Run("level and component", func(t *testing.T) {
		var buf bytes.Buffer
		if err := displayLogs(&buf, path, 0, logFilter{minLevel: 2, component: "controller"}); err != nil {
			t.Fatal(err)
		}
		out := buf.String()
		if !strings.Contains(out, "add failed") || strings.Contains(out, "refresh completed") || strings.Contains(out, "render failed") {
			t.Errorf("unexpected output:\n%s", out)
		}
	})

	t.Run("no matches", func(t *testing.T) {
		var buf bytes.Buffer
		if err := displayLogs(&buf, path, 0, logFilter{minLevel: -1, component: "nobody"}); err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(buf.String(), "No matching log entries found.") {
			t.Errorf("output = %q", buf.String())
		}
	})

	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		if err := displayLogs(&buf, filepath.Join(t.TempDir(), "missing.log"), 0, logFilter{minLevel: -1}); err == nil {
			t.Error("expected an error for a missing file")
		}
	})
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader goroutine.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestFollowLogs(t *testing.T) {
	path := writeTestLog(t)

	ctx, cancel := context.WithCancel(context.Background())
	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() {
		done <- followLogs(ctx, out, path, logFilter{minLevel: -1})
	}()

	waitFor := func(want string) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if strings.Contains(out.String(), want) {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatalf("timed out waiting for %q in:\n%s", want, out.String())
	}

	waitFor("Following")
	if strings.Contains(out.String(), "refresh completed") {
		t.Error("existing entries should be skipped")
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString(`{"time":"2026-01-02T03:04:05Z","level":"INFO","msg":"appended entry"}` + "\n")
	_ = f.Close()

	waitFor("appended entry")

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("followLogs returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("followLogs did not stop after cancel")
	}
}
