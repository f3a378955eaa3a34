// Package screenshot renders the transparent comment cards overlaid on the
// final video, one per poem line.
package screenshot
