// Package logging configures structured slog output for Nexus.
//
// The resident process writes JSON lines to ~/.nexus/logs/nexus.log with
// size-based rotation. Stderr mirroring is off while the terminal launcher
// owns the screen and on for one-shot CLI commands run with --debug.
package logging
