package domain

import (
	"errors"
	"fmt"
)

// ErrDuplicateTab is returned when a tab name is reused.
var ErrDuplicateTab = errors.New("tab already exists")

// ErrTabNotFound is returned when a named tab does not exist.
var ErrTabNotFound = errors.New("tab not found")

// ErrLocked is returned when an editing operation is attempted outside Editor mode.
var ErrLocked = errors.New("editing is locked")

// ErrDocumentNotFound is returned when a document name cannot be found in a store.
var ErrDocumentNotFound = errors.New("document not found")

// ErrNodeNotFound is returned when a scene node ID does not exist.
var ErrNodeNotFound = errors.New("node not found")

// ErrUnknownModel is returned when a tree references an unregistered model.
var ErrUnknownModel = errors.New("unknown node model")

// ParseError reports a malformed external representation.
type ParseError struct {
	Line int
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		if msg == "" {
			msg = e.Err.Error()
		} else {
			msg = msg + ": " + e.Err.Error()
		}
	}
	if e.Line > 0 {
		return fmt.Sprintf("parse error at line %d: %s", e.Line, msg)
	}
	return "parse error: " + msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ShapeError reports a tree that is not exactly one Root with exactly one child.
type ShapeError struct {
	// Roots is the number of parentless nodes found.
	Roots int
	// RootChildren is the number of children of the single root, or -1 when
	// there is no single root.
	RootChildren int
	Reason       string
}

func (e *ShapeError) Error() string {
	return "malformed behavior tree: " + e.Reason
}
