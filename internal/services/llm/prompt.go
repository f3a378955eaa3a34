package llm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sundai-club/reddit-rhymes/internal/poem"
)

// BuildPrompt numbers the sampled comments and asks the model to arrange a
// subset into a rhyming poem, answering with "number: text" lines so the
// selection can be verified against the sample.
func BuildPrompt(sample []poem.Comment) string {
	var numbered strings.Builder
	for i, comment := range sample {
		fmt.Fprintf(&numbered, "%d. %s\n", i+1, comment.Text)
	}

	return fmt.Sprintf(`Here are Reddit comments. Create a rhyming poem using ONLY these exact comments as lines:

%s
Rules:
- Each line MUST be one complete comment from above
- Do NOT modify the comments AT ALL
- Arrange 8-16 of them into a rhyming poem (AABB, ABAB, or ABCB)
- Focus on rhythm and rhyme
- Look for comments that end with similar sounds

Return the poem as comment numbers followed by the comment text, one per line, in this format:
5: He is smart
12: This is unintelligible.
(etc.)

This format helps me verify the poem visually while ensuring accurate matching.`, numbered.String())
}

// ParseSelection extracts the chosen comments from a model response. Each
// usable line is "number: text" with a 1-based number into the sample. Lines
// whose number is out of range, or whose text does not match the sampled
// comment verbatim, are dropped. A comment is used at most once.
func ParseSelection(response string, sample []poem.Comment) []poem.Comment {
	var selected []poem.Comment
	used := make(map[int]struct{})

	for _, line := range strings.Split(response, "\n") {
		line = strings.TrimSpace(line)
		numberPart, textPart, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		number, err := strconv.Atoi(strings.TrimSpace(numberPart))
		if err != nil {
			continue
		}
		index := number - 1
		if index < 0 || index >= len(sample) {
			continue
		}
		if _, duplicate := used[index]; duplicate {
			continue
		}
		if text := strings.TrimSpace(textPart); text != "" && text != sample[index].Text {
			continue
		}
		used[index] = struct{}{}
		selected = append(selected, sample[index])
	}
	return selected
}

// FallbackSelection arranges sampled comments into couplets by matching the
// trailing letters of each comment's last word. Used when the model response
// yields too few verified lines.
func FallbackSelection(sample []poem.Comment, minLines, maxLines int) []poem.Comment {
	if maxLines <= 0 {
		maxLines = len(sample)
	}

	type ending struct {
		comment poem.Comment
		suffix  string
	}
	endings := make([]ending, 0, len(sample))
	for _, comment := range sample {
		words := strings.Fields(comment.Text)
		if len(words) == 0 {
			continue
		}
		last := strings.ToLower(strings.Trim(words[len(words)-1], `.,!?;:"`))
		if last == "" {
			continue
		}
		endings = append(endings, ending{comment: comment, suffix: lastN(last, 3)})
	}

	// Group candidate rhymes by sorting on the word tails, then take adjacent
	// pairs whose final two letters agree.
	for i := 1; i < len(endings); i++ {
		for j := i; j > 0 && endings[j-1].suffix > endings[j].suffix; j-- {
			endings[j-1], endings[j] = endings[j], endings[j-1]
		}
	}

	var selected []poem.Comment
	for i := 0; i+1 < len(endings) && len(selected) < maxLines-1; {
		if lastN(endings[i].suffix, 2) == lastN(endings[i+1].suffix, 2) {
			selected = append(selected, endings[i].comment, endings[i+1].comment)
			i += 2
		} else {
			i++
		}
	}

	// Pad with unpaired comments when the couplets alone fall short.
	if len(selected) < minLines {
		chosen := make(map[string]struct{}, len(selected))
		for _, comment := range selected {
			chosen[comment.Text] = struct{}{}
		}
		for _, e := range endings {
			if len(selected) >= minLines || len(selected) >= maxLines {
				break
			}
			if _, ok := chosen[e.comment.Text]; ok {
				continue
			}
			chosen[e.comment.Text] = struct{}{}
			selected = append(selected, e.comment)
		}
	}
	return selected
}

func lastN(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
