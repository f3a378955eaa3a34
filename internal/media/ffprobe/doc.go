// Package ffprobe wraps the ffprobe binary for media inspection: durations,
// sample rates, stream layouts, and alpha capability of overlay images.
package ffprobe
