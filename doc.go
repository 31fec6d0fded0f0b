/*
Package arbor is the editing core of a behavior tree editor: the model registry, the
scene graph a user edits, snapshot-based undo/redo, tree validation and BehaviorTree XML
import and export.

It follows a hexagonal layout. The core (pkg/domain, pkg/convert, pkg/history,
pkg/workspace) knows nothing about files, networks or rendering; document backends and
live tree sources plug in through pkg/ports.

# Concept

A tree is edited as a Scene: positioned nodes and parent-child edges. The child order of
a node is derived from positions, so the drawing is the single source of truth. Every
committed scene change is captured as an opaque Snapshot; undo and redo restore whole
snapshots rather than patching the scene.

# Usage

	package main

	import (
		"fmt"
		"log"

		"github.com/aretw0/arbor"
	)

	func main() {
		ed, err := arbor.New()
		if err != nil {
			log.Fatal(err)
		}

		if err := ed.LoadFile("patrol.xml"); err != nil {
			log.Fatal(err)
		}

		// ... edit through ed.Edit, then:
		if err := ed.Undo(); err != nil {
			log.Fatal(err)
		}

		st := ed.Status()
		fmt.Printf("valid=%v undo=%d redo=%d\n", st.Valid, st.UndoDepth, st.RedoDepth)
	}

# Modes

The editor mode gates direct editing. In monitor and replay modes Undo, Redo, Edit and
LoadXML return domain.ErrLocked; trees arrive through LoadTree or FeedXML instead, which
reset the tab history.
*/
package arbor
