// Package services provides shared error classification and context plumbing
// used by every pipeline stage and external tool client.
package services
