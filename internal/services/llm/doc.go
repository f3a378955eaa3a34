// Package llm composes a rhyming poem from fetched comments by asking a chat
// model to arrange numbered lines, verifying every selection verbatim against
// the sample it was offered.
package llm
