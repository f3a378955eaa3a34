// Package poem defines the on-disk contract shared by the pipeline stages:
// the comment and poem CSV files and the per-line asset naming scheme.
package poem
