package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the editor collectors.
type Metrics struct {
	HistoryEvents *prometheus.CounterVec
	UndoDepth     *prometheus.GaugeVec
	RedoDepth     *prometheus.GaugeVec
	SnapshotBytes *prometheus.HistogramVec
	Loads         *prometheus.CounterVec
	Saves         *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		HistoryEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_history_events_total",
				Help: "Total number of undo/redo history transitions",
			},
			[]string{"tab", "type"},
		),
		UndoDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "arbor_undo_depth",
				Help: "Current undo stack depth",
			},
			[]string{"tab"},
		),
		RedoDepth: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "arbor_redo_depth",
				Help: "Current redo stack depth",
			},
			[]string{"tab"},
		),
		SnapshotBytes: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "arbor_snapshot_bytes",
				Help:    "Size of scene snapshots taken by the history",
				Buckets: prometheus.ExponentialBuckets(64, 4, 8),
			},
			[]string{"tab"},
		),
		Loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_loads_total",
				Help: "Total number of document loads",
			},
			[]string{"result"},
		),
		Saves: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "arbor_saves_total",
				Help: "Total number of document saves",
			},
			[]string{"result"},
		),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.HistoryEvents, m.UndoDepth, m.RedoDepth, m.SnapshotBytes, m.Loads, m.Saves}
}

// Hooks returns lifecycle hooks that record into m and log through logger.
// Either may be nil.
func Hooks(m *Metrics, logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnHistory: func(ctx context.Context, e *domain.HistoryEvent) {
			if logger != nil {
				logger.DebugContext(ctx, "history",
					"tab", e.Tab,
					"type", string(e.Type),
					"undo", e.UndoDepth,
					"redo", e.RedoDepth,
					"bytes", e.SnapshotSize,
				)
			}
			if m == nil {
				return
			}
			m.HistoryEvents.WithLabelValues(e.Tab, string(e.Type)).Inc()
			m.UndoDepth.WithLabelValues(e.Tab).Set(float64(e.UndoDepth))
			m.RedoDepth.WithLabelValues(e.Tab).Set(float64(e.RedoDepth))
			if e.SnapshotSize > 0 {
				m.SnapshotBytes.WithLabelValues(e.Tab).Observe(float64(e.SnapshotSize))
			}
		},
		OnLoad: func(ctx context.Context, name string, err error) {
			if logger != nil {
				logResult(ctx, logger, "load", name, err)
			}
			if m != nil {
				m.Loads.WithLabelValues(result(err)).Inc()
			}
		},
		OnSave: func(ctx context.Context, name string, err error) {
			if logger != nil {
				logResult(ctx, logger, "save", name, err)
			}
			if m != nil {
				m.Saves.WithLabelValues(result(err)).Inc()
			}
		},
	}
}

// Chain combines hook sets; each callback runs in order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnHistory: func(ctx context.Context, e *domain.HistoryEvent) {
			for _, h := range hooks {
				if h.OnHistory != nil {
					h.OnHistory(ctx, e)
				}
			}
		},
		OnLoad: func(ctx context.Context, name string, err error) {
			for _, h := range hooks {
				if h.OnLoad != nil {
					h.OnLoad(ctx, name, err)
				}
			}
		},
		OnSave: func(ctx context.Context, name string, err error) {
			for _, h := range hooks {
				if h.OnSave != nil {
					h.OnSave(ctx, name, err)
				}
			}
		},
	}
}

func result(err error) string {
	var shape *domain.ShapeError
	var parse *domain.ParseError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &shape):
		return "malformed"
	case errors.As(err, &parse):
		return "parse_error"
	case errors.Is(err, domain.ErrUnknownModel):
		return "unknown_model"
	default:
		return "error"
	}
}

func logResult(ctx context.Context, logger *slog.Logger, op, name string, err error) {
	if err != nil {
		logger.WarnContext(ctx, op+" failed", "name", name, "err", err)
		return
	}
	logger.InfoContext(ctx, op, "name", name)
}
