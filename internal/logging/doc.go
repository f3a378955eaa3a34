// Package logging configures slog handlers and standardized structured fields
// shared by the CLI and pipeline stages.
package logging
