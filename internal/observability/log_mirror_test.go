package observability

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	otellog "go.opentelemetry.io/otel/log"

	"github.com/riskibarqy/whereismatch/internal/platform/logging"
)

func TestSkipMirroredLog(t *testing.T) {
	t.Parallel()

	assert.True(t, skipMirroredLog("http request", []any{"method", "GET", "path", "/healthz"}))
	assert.False(t, skipMirroredLog("http request", []any{"path", "/v1/state"}))
	assert.False(t, skipMirroredLog("matches loaded", []any{"path", "/healthz"}))
}

func TestMirrorAttributes(t *testing.T) {
	t.Parallel()

	attrs := mirrorAttributes([]any{"date", "2024-03-10", "count", 3, 7, true, "dangling"})
	require.Len(t, attrs, 4)

	assert.Equal(t, "date", attrs[0].Key)
	assert.Equal(t, "2024-03-10", attrs[0].Value.AsString())
	assert.Equal(t, "count", attrs[1].Key)
	assert.EqualValues(t, 3, attrs[1].Value.AsInt64())
	assert.Equal(t, "arg_2", attrs[2].Key)
	assert.True(t, attrs[2].Value.AsBool())
	assert.Equal(t, "dangling", attrs[3].Key)
	assert.Equal(t, otellog.KindEmpty, attrs[3].Value.Kind())
}

func TestMirrorValue(t *testing.T) {
	t.Parallel()

	ids := mirrorValue([]int64{3, 8}, 0)
	require.Equal(t, otellog.KindSlice, ids.Kind())
	require.Len(t, ids.AsSlice(), 2)
	assert.EqualValues(t, 8, ids.AsSlice()[1].AsInt64())

	m := mirrorValue(map[string]any{"sports": 1, "countries": 0}, 0)
	require.Equal(t, otellog.KindMap, m.Kind())
	assert.Equal(t, "countries", m.AsMap()[0].Key)

	assert.Equal(t, "boom", mirrorValue(errors.New("boom"), 0).AsString())
	assert.Equal(t, otellog.KindEmpty, mirrorValue((*int)(nil), 0).Kind())
	assert.Equal(t, otellog.KindString, mirrorValue([]int{1}, maxMirrorValueDepth).Kind())
}

func TestMirrorSeverity(t *testing.T) {
	t.Parallel()

	assert.Equal(t, otellog.SeverityDebug, mirrorSeverity(logging.LevelDebug))
	assert.Equal(t, otellog.SeverityInfo, mirrorSeverity(logging.LevelInfo))
	assert.Equal(t, otellog.SeverityWarn, mirrorSeverity(logging.LevelWarn))
	assert.Equal(t, otellog.SeverityError, mirrorSeverity(logging.LevelError))
}

func TestNewLogMirror_NoProviderDoesNotPanic(t *testing.T) {
	t.Parallel()

	logger := logging.NewJSON(logging.LevelInfo, io.Discard).WithMirror(NewLogMirror("test"))
	assert.NotPanics(t, func() {
		logger.InfoContext(context.Background(), "matches loaded", "count", 2)
		logger.Info("http request", "path", "/healthz")
	})
}
