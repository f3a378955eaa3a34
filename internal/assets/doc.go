// Package assets verifies that every poem line's voice-over clip and
// screenshot overlay exist on disk and are well-formed before any timeline
// math runs. All-or-nothing: a single offending line fails the whole set.
package assets
