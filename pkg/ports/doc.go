/*
Package ports defines the driven ports (interfaces) of the editor core.

These interfaces decouple the core logic from external implementations, allowing the
editor to work with various document backends, layout collaborators and live tree sources.

# Key Interfaces

  - DocumentStore: Persists and retrieves XML behavior tree documents by name.
  - DistributedLocker: Provides distributed locking for concurrent document access.
  - Arranger: Assigns positions to scene nodes after a tree is built.
  - Watchable: Notifies about backend changes (file watching, live feeds).
*/
package ports
