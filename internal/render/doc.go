// Package render drives the ffmpeg encode for a composed job: it runs the
// encoder under a wall clock budget, verifies the produced file against the
// expected duration and stream layout, and removes partial output on failure.
package render
