package arbor

// Version is the release of the arbor module. Overridden at build time with
// -ldflags "-X github.com/aretw0/arbor.Version=...".
var Version = "0.1.0"
