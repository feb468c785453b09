package logging

import (
	"bytes"
	"context"
	"io"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	t.Parallel()

	cases := map[string]Level{
		"debug":   LevelDebug,
		" WARN ":  LevelWarn,
		"warning": LevelWarn,
		"error":   LevelError,
		"info":    LevelInfo,
		"":        LevelInfo,
		"verbose": LevelInfo,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNewJSON_WritesToWriter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	logger := NewJSON(LevelInfo, &buf).Named("orchestrator")
	logger.Debug("hidden")
	logger.InfoContext(context.Background(), "matches loaded", "count", 3, "key", "date=2024-03-10")
	require.NoError(t, logger.Sync())

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)

	var record map[string]any
	require.NoError(t, sonic.Unmarshal(lines[0], &record))
	assert.Equal(t, "matches loaded", record["msg"])
	assert.Equal(t, "INFO", record["level"])
	assert.Equal(t, "orchestrator", record["logger"])
	assert.EqualValues(t, 3, record["count"])
	assert.Equal(t, "date=2024-03-10", record["key"])
}

func TestNilLoggerFallsBackToDefault(t *testing.T) {
	var l *Logger
	assert.NotPanics(t, func() {
		l.Info("no logger")
		_ = l.With("k", "v")
		_ = l.Named("x")
	})
}

func TestWithMirror_ReceivesWrittenRecords(t *testing.T) {
	t.Parallel()

	type mirrored struct {
		level Level
		msg   string
		args  []any
	}
	var got []mirrored
	logger := NewJSON(LevelInfo, io.Discard).WithMirror(func(_ context.Context, level Level, msg string, args ...any) {
		got = append(got, mirrored{level: level, msg: msg, args: args})
	})

	logger.Debug("filtered out")
	logger.Named("prefetch").With("date", "2024-03-11").Warn("prefetch failed", "attempt", 2)

	require.Len(t, got, 1)
	assert.Equal(t, LevelWarn, got[0].level)
	assert.Equal(t, "prefetch failed", got[0].msg)
	assert.Equal(t, []any{"date", "2024-03-11", "attempt", 2}, got[0].args)
}
