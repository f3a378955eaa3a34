// Package workflow orders the pipeline stages (fetch, compose, screenshots,
// audio, video), persists their progress and artifact fingerprints, and skips
// stages whose products are already current when resume is enabled.
package workflow
