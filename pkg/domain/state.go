package domain

import (
	"fmt"
	"strings"
)

// Mode is the externally selected editor mode.
type Mode string

const (
	// ModeEditor allows direct editing, undo/redo and file loading.
	ModeEditor Mode = "editor"
	// ModeMonitor displays trees fed by a live source.
	ModeMonitor Mode = "monitor"
	// ModeReplay displays trees fed by a recorded log.
	ModeReplay Mode = "replay"
)

// ParseMode accepts the mode name in any case.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeEditor:
		return ModeEditor, nil
	case ModeMonitor:
		return ModeMonitor, nil
	case ModeReplay:
		return ModeReplay, nil
	}
	return "", fmt.Errorf("unknown mode %q (want editor, monitor or replay)", s)
}

// Editable reports whether the mode permits direct edits.
func (m Mode) Editable() bool {
	return m == ModeEditor
}

// Snapshot is an opaque serialization of a Scene. Snapshots are compared by
// content and never patched.
type Snapshot []byte

// Equal compares two snapshots byte-wise.
func (s Snapshot) Equal(other Snapshot) bool {
	return string(s) == string(other)
}
