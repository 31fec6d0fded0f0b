package domain

import (
	"context"
	"time"
)

// EventType defines the category of a history event.
type EventType string

const (
	EventPush     EventType = "push"
	// EventChange records an edit that replaced the current state without
	// pushing, as happens for the first edit after a reset.
	EventChange   EventType = "change"
	EventUndo     EventType = "undo"
	EventRedo     EventType = "redo"
	EventReset    EventType = "reset"
	EventRollback EventType = "rollback"
)

// HistoryEvent describes a change of the undo/redo stacks.
type HistoryEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Tab       string    `json:"tab,omitempty"`
	UndoDepth int       `json:"undo_depth"`
	RedoDepth int       `json:"redo_depth"`
	// SnapshotSize is the size in bytes of the resulting current snapshot.
	SnapshotSize int `json:"snapshot_size"`
}

// LifecycleHooks defines callbacks for editor observability.
type LifecycleHooks struct {
	OnHistory func(context.Context, *HistoryEvent)
	OnLoad    func(context.Context, string, error)
	OnSave    func(context.Context, string, error)
}
