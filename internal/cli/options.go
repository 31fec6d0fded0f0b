// Package cli wires the editor, its stores and its feeds for the arbor
// command line.
package cli

// Options contains the configuration shared by every command.
type Options struct {
	// ConfigPath overrides the XDG settings location.
	ConfigPath string
	Debug      bool
	// LogLevel overrides the settings log level.
	LogLevel string
	// JSONLogs switches the log handler to JSON.
	JSONLogs bool

	// Store selects the document backend: file, memory, sqlite or redis.
	Store string
	// StoreDSN is the backend location: a directory, a database path or a
	// redis:// URL.
	StoreDSN string
	// Compress frames stored documents with LZ4.
	Compress bool
	// StoreKeys are hex encoded AES-256 keys. The first one seals new
	// documents; the others only open old ones.
	StoreKeys []string

	// Layout and Mode override the settings when non-empty.
	Layout string
	Mode   string
}
