// Package compositor turns a timeline, a background plan, and resolved assets
// into the single immutable render job the encoder consumes: input list,
// filtergraph, stream labels, and exact output duration.
package compositor
