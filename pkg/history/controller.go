// Package history implements snapshot-based undo/redo for a scene.
//
// The controller keeps one timeline split at "now": an undo stack of older
// states, the current state, and a redo stack of undone states. It listens to
// scene change notifications and captures a snapshot after each committed
// edit. Replaying a snapshot is done under a guard so the restore itself is
// never recorded.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/arbor/internal/logging"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/snapshot"
)

// State is the controller state machine position.
type State int

const (
	// StateIdle accepts change notifications.
	StateIdle State = iota
	// StateReplaying is held for the duration of a scene restore.
	StateReplaying
)

func (s State) String() string {
	if s == StateReplaying {
		return "replaying"
	}
	return "idle"
}

// Codec captures and restores scenes.
type Codec interface {
	Encode(scene *domain.Scene) (domain.Snapshot, error)
	Restore(snap domain.Snapshot, scene *domain.Scene) error
}

// Option configures a Controller.
type Option func(*Controller)

// WithCodec sets the snapshot codec. Defaults to an LZ4-framed snapshot.Codec.
func WithCodec(codec Codec) Option {
	return func(c *Controller) {
		c.codec = codec
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithModeSource sets the function queried before undo and redo. Without it
// the controller always behaves as in editor mode.
func WithModeSource(mode func() domain.Mode) Option {
	return func(c *Controller) {
		c.mode = mode
	}
}

// WithHooks registers lifecycle callbacks. Only OnHistory is used.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithTab labels emitted events and log lines with the owning tab name.
func WithTab(name string) Option {
	return func(c *Controller) {
		c.tab = name
	}
}

// Controller is the undo/redo state machine of one scene.
// It is not safe for concurrent use.
type Controller struct {
	scene  *domain.Scene
	codec  Codec
	logger *slog.Logger
	hooks  domain.LifecycleHooks
	mode   func() domain.Mode
	tab    string

	current domain.Snapshot
	saved   domain.Snapshot
	undo    []domain.Snapshot
	redo    []domain.Snapshot

	guard  guard
	detach func()
}

// New creates a controller for scene and subscribes it to the scene's change
// notifications. The current state is the scene as it is now; both stacks
// start empty.
func New(scene *domain.Scene, opts ...Option) (*Controller, error) {
	c := &Controller{
		scene:  scene,
		codec:  snapshot.New(),
		logger: logging.NewNop(),
		mode:   func() domain.Mode { return domain.ModeEditor },
	}
	for _, opt := range opts {
		opt(c)
	}

	snap, err := c.codec.Encode(scene)
	if err != nil {
		return nil, fmt.Errorf("capture initial state: %w", err)
	}
	c.current = snap
	c.saved = snap
	c.detach = scene.Subscribe(c.onChange)
	return c, nil
}

// Detach stops listening to the scene.
func (c *Controller) Detach() {
	if c.detach != nil {
		c.detach()
		c.detach = nil
	}
}

func (c *Controller) onChange() {
	if _, err := c.NotifyChange(); err != nil {
		c.logger.Error("Failed to capture scene change", "tab", c.tab, "err", err)
	}
}

// NotifyChange records the live scene as the current state. It is a no-op
// while a restore is in progress. The previous current state is pushed onto
// the undo stack, and the redo stack cleared, only when the scene actually
// changed and the undo top is not already that state. It reports whether an
// entry was pushed. Any replacement of the current state emits a history
// event, EventChange when nothing was pushed.
func (c *Controller) NotifyChange() (bool, error) {
	release, ok := c.guard.acquire()
	if !ok {
		return false, nil
	}
	defer release()

	fresh, err := c.codec.Encode(c.scene)
	if err != nil {
		return false, fmt.Errorf("capture scene: %w", err)
	}
	if fresh.Equal(c.current) {
		return false, nil
	}

	pushed := false
	if len(c.undo) == 0 || !c.undo[len(c.undo)-1].Equal(c.current) {
		c.undo = append(c.undo, c.current)
		c.redo = nil
		pushed = true
	}
	c.current = fresh
	c.trace("notify")
	if pushed {
		c.emit(domain.EventPush)
	} else {
		c.emit(domain.EventChange)
	}
	return pushed, nil
}

// Undo restores the state before the last edit. It returns domain.ErrLocked
// outside editor mode and does nothing when there is nothing to undo. An
// undo top equal to the current state is the baseline recorded by Reset and
// is left in place.
func (c *Controller) Undo() error {
	if !c.mode().Editable() {
		return domain.ErrLocked
	}
	if len(c.undo) == 0 || c.undo[len(c.undo)-1].Equal(c.current) {
		return nil
	}
	if err := c.step(&c.undo, &c.redo); err != nil {
		return fmt.Errorf("undo: %w", err)
	}
	c.trace("undo")
	c.emit(domain.EventUndo)
	return nil
}

// Redo re-applies the last undone state. It returns domain.ErrLocked outside
// editor mode and does nothing when the redo stack is empty.
func (c *Controller) Redo() error {
	if !c.mode().Editable() {
		return domain.ErrLocked
	}
	if len(c.redo) == 0 {
		return nil
	}
	if err := c.step(&c.redo, &c.undo); err != nil {
		return fmt.Errorf("redo: %w", err)
	}
	c.trace("redo")
	c.emit(domain.EventRedo)
	return nil
}

// step pops from src into current, pushing the old current onto dst, and
// restores the scene. On a failed restore the stacks are left as they were.
func (c *Controller) step(src, dst *[]domain.Snapshot) error {
	release, ok := c.guard.acquire()
	if !ok {
		return fmt.Errorf("restore already in progress")
	}
	defer release()

	top := (*src)[len(*src)-1]
	if err := c.codec.Restore(top, c.scene); err != nil {
		return err
	}
	*src = (*src)[:len(*src)-1]
	*dst = append(*dst, c.current)
	c.current = top
	return nil
}

// Reset discards both stacks and records the scene as it is now as the only
// undo baseline. It is used after a tree is fed in from an external source.
func (c *Controller) Reset() error {
	release, ok := c.guard.acquire()
	if !ok {
		return fmt.Errorf("reset: restore in progress")
	}
	defer release()

	snap, err := c.codec.Encode(c.scene)
	if err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	c.current = snap
	c.saved = snap
	c.undo = []domain.Snapshot{snap}
	c.redo = nil
	c.trace("reset")
	c.emit(domain.EventReset)
	return nil
}

// Rollback restores snap into the scene without touching either stack.
// It is used to undo a failed load.
func (c *Controller) Rollback(snap domain.Snapshot) error {
	release, ok := c.guard.acquire()
	if !ok {
		return fmt.Errorf("rollback: restore in progress")
	}
	defer release()

	if err := c.codec.Restore(snap, c.scene); err != nil {
		return fmt.Errorf("rollback: %w", err)
	}
	c.current = snap
	c.trace("rollback")
	c.emit(domain.EventRollback)
	return nil
}

// MarkSaved records the current state as the persisted one.
func (c *Controller) MarkSaved() {
	c.saved = c.current
}

// Dirty reports whether the current state differs from the last saved or
// loaded one. A change that round-trips to an identical snapshot is not
// dirty.
func (c *Controller) Dirty() bool {
	return !c.current.Equal(c.saved)
}

// Current returns the snapshot of the present state.
func (c *Controller) Current() domain.Snapshot {
	return c.current
}

// UndoDepth returns the number of entries on the undo stack.
func (c *Controller) UndoDepth() int {
	return len(c.undo)
}

// RedoDepth returns the number of entries on the redo stack.
func (c *Controller) RedoDepth() int {
	return len(c.redo)
}

// State reports whether a restore is in progress.
func (c *Controller) State() State {
	if c.guard.held {
		return StateReplaying
	}
	return StateIdle
}

func (c *Controller) trace(op string) {
	c.logger.Debug("History updated",
		"op", op,
		"tab", c.tab,
		"undo", len(c.undo),
		"redo", len(c.redo),
		"current_bytes", len(c.current),
	)
}

func (c *Controller) emit(t domain.EventType) {
	if c.hooks.OnHistory == nil {
		return
	}
	c.hooks.OnHistory(context.Background(), &domain.HistoryEvent{
		Timestamp:    time.Now(),
		Type:         t,
		Tab:          c.tab,
		UndoDepth:    len(c.undo),
		RedoDepth:    len(c.redo),
		SnapshotSize: len(c.current),
	})
}
