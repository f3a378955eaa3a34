// Package timeline computes monotonically increasing start/end offsets for
// each poem line's voice-over and screenshot from measured audio durations.
package timeline
