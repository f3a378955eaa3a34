package reddit

import (
	"regexp"
	"strings"
)

const (
	minLineLength = 5
	maxLineLength = 80

	// Lines carrying more than this many unusual characters read as noise,
	// not verse.
	maxSpecialChars = 3
)

var (
	urlPattern      = regexp.MustCompile(`(?i)https?://|www\.`)
	specialPattern  = regexp.MustCompile(`[^\w\s'",.!?-]`)
	alphabetic      = regexp.MustCompile(`[a-zA-Z]`)
	markdownSignals = []*regexp.Regexp{
		regexp.MustCompile(`\[.*?\]\(.*?\)`),
		regexp.MustCompile(`\*\*.*?\*\*`),
		regexp.MustCompile(`__.*?__`),
		regexp.MustCompile(`\*.*?\*`),
		regexp.MustCompile(`_.*?_`),
		regexp.MustCompile(`~~.*?~~`),
		regexp.MustCompile(`^#{1,6}\s`),
		regexp.MustCompile(`^\s*[-*+]\s`),
		regexp.MustCompile(`^\s*\d+\.\s`),
		regexp.MustCompile("```.*?```"),
		regexp.MustCompile("`.*?`"),
		regexp.MustCompile(`^\s*>`),
		regexp.MustCompile(`/r/`),
		regexp.MustCompile(`/u/`),
		regexp.MustCompile(`&amp;|&lt;|&gt;`),
	}
	throwawayLines = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^\s*lol\s*$`),
		regexp.MustCompile(`(?i)^\s*lmao\s*$`),
		regexp.MustCompile(`(?i)^\s*omg\s*$`),
		regexp.MustCompile(`(?i)^\s*wtf\s*$`),
		regexp.MustCompile(`(?i)^\s*idk\s*$`),
		regexp.MustCompile(`(?i)^\s*imo\s*$`),
		regexp.MustCompile(`(?i)^\s*tbh\s*$`),
		regexp.MustCompile(`(?i)^this\.$`),
		regexp.MustCompile(`(?i)^same\.$`),
		regexp.MustCompile(`^\^+$`),
	}
)

// Poetic reports whether a comment body could work as one poem line: short
// single-line prose without links, markdown, or throwaway filler.
func Poetic(text string) bool {
	text = strings.TrimSpace(text)

	if len(text) < minLineLength || len(text) > maxLineLength {
		return false
	}
	if urlPattern.MatchString(text) {
		return false
	}
	for _, pattern := range markdownSignals {
		if pattern.MatchString(text) {
			return false
		}
	}
	if len(specialPattern.FindAllString(text, -1)) > maxSpecialChars {
		return false
	}
	if !alphabetic.MatchString(text) {
		return false
	}
	for _, pattern := range throwawayLines {
		if pattern.MatchString(text) {
			return false
		}
	}
	return true
}

// NormalizeBody flattens a comment body to one line.
func NormalizeBody(body string) string {
	body = strings.ReplaceAll(body, "\r", " ")
	body = strings.ReplaceAll(body, "\n", " ")
	return strings.Join(strings.Fields(body), " ")
}
