package observability

import (
	"context"
	"log/slog"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rashmichoudhary13/ocean-hazard-backend/internal/config"
)

func TestNewLogger_Level(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	debug := NewLogger(&config.Config{LogLevel: "debug", LogFormat: "text"})
	require.NotNil(t, debug)
	assert.True(t, debug.Enabled(context.Background(), slog.LevelDebug))

	info := NewLogger(&config.Config{LogLevel: "info", LogFormat: "json"})
	assert.False(t, info.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, info.Enabled(context.Background(), slog.LevelInfo))
}

func TestNewMetricsForTesting_Independent(t *testing.T) {
	a := NewMetricsForTesting()
	b := NewMetricsForTesting()

	a.Runs.WithLabelValues(OutcomeSuccess).Inc()

	assert.InDelta(t, 1, testutil.ToFloat64(a.Runs.WithLabelValues(OutcomeSuccess)), 0)
	assert.InDelta(t, 0, testutil.ToFloat64(b.Runs.WithLabelValues(OutcomeSuccess)), 0)
}
