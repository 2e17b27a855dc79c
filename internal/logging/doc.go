// Package logging provides structured logging for the graysqlite CLI.
//
// It wraps Go's standard log/slog package: JSON output for machine
// consumption, text for humans, level filtering from configuration, and
// service/version fields on every entry. The library packages never
// log, only the CLI does, so logging stays internal.
package logging
