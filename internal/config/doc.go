// Package config loads, normalizes, and validates the TOML configuration that
// drives the pipeline: workspace layout, timeline padding, audio mix gains,
// encoder settings, and upstream service credentials.
package config
