package cli

import (
	"context"
	"log/slog"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/btxml"
	"github.com/aretw0/arbor/pkg/domain"
)

// Publisher receives exported trees. *monitor.Publisher satisfies it.
type Publisher interface {
	Publish(data []byte)
}

// Relay republishes the current tree every time the editor's history
// changes, so that remote monitors follow the edits.
type Relay struct {
	changed chan struct{}
	logger  *slog.Logger
}

// NewRelay creates an idle relay. Pass its Hooks to the editor, then Run it.
func NewRelay(logger *slog.Logger) *Relay {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Relay{changed: make(chan struct{}, 1), logger: logger}
}

// Hooks signals the relay. History events fire under the editor lock, so
// the export happens later on the Run goroutine.
func (r *Relay) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnHistory: func(context.Context, *domain.HistoryEvent) {
			select {
			case r.changed <- struct{}{}:
			default:
			}
		},
	}
}

// Run publishes the current tree once, then after every change, until ctx
// is done. Trees that cannot be exported are skipped.
func (r *Relay) Run(ctx context.Context, ed *arbor.Editor, pub Publisher) {
	r.publish(ed, pub)
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.changed:
			r.publish(ed, pub)
		}
	}
}

// publish exports without marking the tab saved.
func (r *Relay) publish(ed *arbor.Editor, pub Publisher) {
	data, err := btxml.Marshal(ed.Tree(), ed.Registry())
	if err != nil {
		r.logger.Debug("Tree not published", "err", err)
		return
	}
	pub.Publish(data)
}
