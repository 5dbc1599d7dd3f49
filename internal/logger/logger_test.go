package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================================
// Test Helper Functions
// ============================================================================

// captureOutput redirects logger output to a buffer and restores the
// previous writer, level and format on cleanup.
func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()
	buf := new(bytes.Buffer)

	mu.Lock()
	origOutput, origColor := output, useColor
	output, useColor = buf, false
	mu.Unlock()
	origLevel := Level(currentLevel.Load())
	origFormat, _ := currentFormat.Load().(string)
	reconfigure()

	t.Cleanup(func() {
		mu.Lock()
		output, useColor = origOutput, origColor
		mu.Unlock()
		currentLevel.Store(int32(origLevel))
		currentFormat.Store(origFormat)
		reconfigure()
	})
	return buf
}

// ============================================================================
// Level Filtering Tests
// ============================================================================

func TestLevelFiltering(t *testing.T) {
	tests := []struct {
		level    string
		visible  []string
		filtered []string
	}{
		{"DEBUG", []string{"debug message", "info message", "warn message", "error message"}, nil},
		{"INFO", []string{"info message", "warn message", "error message"}, []string{"debug message"}},
		{"WARN", []string{"warn message", "error message"}, []string{"debug message", "info message"}},
		{"ERROR", []string{"error message"}, []string{"debug message", "info message", "warn message"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			buf := captureOutput(t)
			SetLevel(tt.level)

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")

			out := buf.String()
			for _, s := range tt.visible {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.filtered {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestSetLevel_IgnoresUnknown(t *testing.T) {
	captureOutput(t)

	SetLevel("WARN")
	SetLevel("verbose")
	assert.Equal(t, LevelWarn, Level(currentLevel.Load()))

	SetLevel("debug")
	assert.Equal(t, LevelDebug, Level(currentLevel.Load()))
}

func TestParseLevel(t *testing.T) {
	l, ok := ParseLevel("warn")
	assert.True(t, ok)
	assert.Equal(t, LevelWarn, l)

	_, ok = ParseLevel("trace")
	assert.False(t, ok)

	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", Level(42).String())
}

// ============================================================================
// Formatting Tests
// ============================================================================

func TestTextFormat(t *testing.T) {
	buf := captureOutput(t)
	SetLevel("INFO")
	SetFormat("text")

	Info("file created", KeyFilename, "a.txt", KeySize, 522, KeyBlocks, []int{0, 1})

	out := buf.String()
	assert.Contains(t, out, "[INFO] file created")
	assert.Contains(t, out, "filename=a.txt")
	assert.Contains(t, out, "size=522")
	assert.Contains(t, out, "blocks=[0 1]")
	assert.NotContains(t, out, "\033[", "color must be off when capturing")
}

func TestTextFormat_QuotesAndGroups(t *testing.T) {
	buf := captureOutput(t)
	SetFormat("text")

	With("image", "fs.bin").WithGroup("disk").Info("saved", "used", 3, "note", "two words")

	out := buf.String()
	assert.Contains(t, out, "image=fs.bin")
	assert.Contains(t, out, "disk.used=3")
	assert.Contains(t, out, `disk.note="two words"`)
}

func TestJSONFormat(t *testing.T) {
	buf := captureOutput(t)
	SetFormat("json")

	Info("block allocated", KeyBlock, 7)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "block allocated", rec["msg"])
	assert.Equal(t, "INFO", rec["level"])
	assert.Equal(t, float64(7), rec["block"])
}

func TestSetFormat_IgnoresUnknown(t *testing.T) {
	buf := captureOutput(t)
	SetFormat("text")
	SetFormat("xml")

	Info("still text")
	assert.True(t, strings.HasPrefix(buf.String(), "["))
}

// ============================================================================
// Context Tests
// ============================================================================

func TestContextLogging(t *testing.T) {
	buf := captureOutput(t)
	SetFormat("json")

	lc := NewLogContext("sess-1").WithCommand("mkdir", "/root").WithTrace("t1", "s1")
	ctx := WithContext(context.Background(), lc)

	InfoCtx(ctx, "directory created", KeyFilename, "docs")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "sess-1", rec[KeySessionID])
	assert.Equal(t, "mkdir", rec[KeyCommand])
	assert.Equal(t, "/root", rec[KeyCwd])
	assert.Equal(t, "t1", rec[KeyTraceID])
	assert.Equal(t, "s1", rec[KeySpanID])
	assert.Equal(t, "docs", rec[KeyFilename])
}

func TestContextLogging_WithoutLogContext(t *testing.T) {
	buf := captureOutput(t)

	WarnCtx(context.Background(), "plain")
	assert.Contains(t, buf.String(), "plain")
	assert.NotContains(t, buf.String(), KeySessionID)
}

func TestLogContext(t *testing.T) {
	var nilCtx *LogContext
	assert.Nil(t, nilCtx.Clone())
	assert.Nil(t, nilCtx.WithCommand("ls", "/root"))
	assert.Zero(t, nilCtx.DurationMs())
	assert.Nil(t, FromContext(context.Background()))

	base := NewLogContext("s")
	derived := base.WithCommand("rm", "/root/docs")
	assert.Empty(t, base.Command, "WithCommand must not mutate the receiver")
	assert.Equal(t, "rm", derived.Command)
	assert.Equal(t, "s", derived.SessionID)
	assert.GreaterOrEqual(t, derived.DurationMs(), 0.0)
}

// ============================================================================
// Field Helpers
// ============================================================================

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, slog.String(KeyPath, "/root"), Path("/root"))
	assert.Equal(t, slog.Uint64(KeyInodeID, 3), InodeID(3))
	assert.Equal(t, slog.Int(KeyBlock, 9), Block(9))
	assert.Equal(t, slog.Attr{}, Err(nil))
	assert.Equal(t, "boom", Err(errors.New("boom")).Value.String())
}

// ============================================================================
// Init / Concurrency
// ============================================================================

func TestInit_File(t *testing.T) {
	captureOutput(t)
	path := filepath.Join(t.TempDir(), "blockfs.log")

	require.NoError(t, Init(Config{Level: "DEBUG", Format: "text", Output: path}))
	Debug("to file")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestInit_BadPath(t *testing.T) {
	captureOutput(t)
	err := Init(Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestInitWithWriter(t *testing.T) {
	captureOutput(t)
	var buf bytes.Buffer
	InitWithWriter(&buf, "ERROR", "text", false)

	Warn("hidden")
	Error("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConcurrentLogging(t *testing.T) {
	buf := captureOutput(t)
	SetLevel("INFO")

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			Info("concurrent", KeyBlock, i)
		}()
	}
	wg.Wait()

	assert.Equal(t, 20, strings.Count(buf.String(), "concurrent"))
}

func BenchmarkLogDisabled(b *testing.B) {
	InitWithWriter(&bytes.Buffer{}, "ERROR", "text", false)
	for b.Loop() {
		Debug("disabled", KeyBlock, 1)
	}
}

func BenchmarkLogText(b *testing.B) {
	InitWithWriter(&bytes.Buffer{}, "INFO", "text", false)
	for b.Loop() {
		Info("enabled", KeyBlock, 1)
	}
}
