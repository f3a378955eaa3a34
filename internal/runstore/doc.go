// Package runstore persists pipeline runs and per-stage artifact fingerprints
// in a local SQLite database so repeated invocations can skip stages whose
// inputs have not changed.
package runstore
