// Package background derives loop/trim/volume instructions that stretch a
// fixed-length background video and optional music track over the full
// timeline duration without resampling the sources.
package background
