// Package library serializes access to a shared document store.
//
// A Manager wraps any ports.DocumentStore and guarantees that operations on
// the same document name never interleave within a process. When a
// ports.DistributedLocker is configured, the guarantee extends to every
// editor instance sharing that locker. Manager itself satisfies
// ports.DocumentStore, so it can be handed to arbor.WithStore directly.
package library
