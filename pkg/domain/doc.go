/*
Package domain contains the core models of the behavior tree editor.

It defines the two representations the editor converts between, the abstract tree and
the graphical scene, plus the opaque snapshot used as the unit of undo/redo. The package
is kept free of I/O and persistence concerns, following Hexagonal Architecture principles.

# Key Entities

  - Kind: The closed set of node types (Root, Sequence, SequenceStar, Fallback, Decorator, Action, SubTree).
  - AbstractTree: An ordered, rooted tree of typed nodes with parameters, independent of layout.
  - Scene: The live, mutable graph of positioned nodes and ordered parent->child edges.
  - Snapshot: A serialized capture of a Scene, compared by content.
  - Mode: The externally selected editor mode (Editor, Monitor, Replay).
*/
package domain
