// Package reddit fetches recent comments from configured subreddits and
// filters them down to bodies short and clean enough to serve as poem lines.
package reddit
