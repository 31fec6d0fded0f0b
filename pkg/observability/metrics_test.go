package observability_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_RecordHistory(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	hooks := observability.Hooks(m, nil)
	ctx := context.Background()

	hooks.OnHistory(ctx, &domain.HistoryEvent{Type: domain.EventPush, Tab: "main", UndoDepth: 2, SnapshotSize: 120})
	hooks.OnHistory(ctx, &domain.HistoryEvent{Type: domain.EventUndo, Tab: "main", UndoDepth: 1, RedoDepth: 1})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryEvents.WithLabelValues("main", "push")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HistoryEvents.WithLabelValues("main", "undo")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UndoDepth.WithLabelValues("main")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RedoDepth.WithLabelValues("main")))
}

func TestHooks_LoadSaveResults(t *testing.T) {
	m, err := observability.NewMetrics(nil)
	require.NoError(t, err)
	var buf bytes.Buffer
	hooks := observability.Hooks(m, logging.NewWriter(&buf, slog.LevelInfo, logging.FormatText))
	ctx := context.Background()

	hooks.OnLoad(ctx, "a.xml", nil)
	hooks.OnLoad(ctx, "b.xml", &domain.ShapeError{Reason: "x"})
	hooks.OnSave(ctx, "c.xml", errors.New("disk full"))

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Loads.WithLabelValues("malformed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Saves.WithLabelValues("error")))
	assert.True(t, strings.Contains(buf.String(), "save failed"))
}

func TestNewMetrics_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := observability.NewMetrics(reg)
	require.NoError(t, err)
	_, err = observability.NewMetrics(reg)
	assert.Error(t, err)
}

func TestChain(t *testing.T) {
	var order []string
	a := domain.LifecycleHooks{OnLoad: func(context.Context, string, error) { order = append(order, "a") }}
	b := domain.LifecycleHooks{
		OnLoad:    func(context.Context, string, error) { order = append(order, "b") },
		OnHistory: func(context.Context, *domain.HistoryEvent) { order = append(order, "h") },
	}
	hooks := observability.Chain(a, b)
	hooks.OnLoad(context.Background(), "x", nil)
	hooks.OnHistory(context.Background(), &domain.HistoryEvent{})
	hooks.OnSave(context.Background(), "x", nil)
	assert.Equal(t, []string{"a", "b", "h"}, order)
}
