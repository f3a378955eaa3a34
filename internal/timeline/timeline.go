package timeline

import (
	"errors"
	"fmt"

	"github.com/sundai-club/reddit-rhymes/internal/services"
)

// ErrEmpty indicates the builder was given zero lines. An empty poem is a
// fatal input error, not a zero-duration video.
var ErrEmpty = errors.New("timeline: no lines")

// Entry assigns one line's audio and screenshot to a slot in the final video.
// The screenshot is visible exactly while its voice-over plays, so every
// audible line has a visible caption and vice versa.
type Entry struct {
	Index        int
	Start        float64
	End          float64
	DisplayStart float64
	DisplayEnd   float64
}

// Duration returns the entry's audible length in seconds.
func (e Entry) Duration() float64 {
	return e.End - e.Start
}

// Timeline is the ordered, gap-and-overlap-free slot assignment for a poem.
type Timeline struct {
	Entries []Entry
	// Total is the full video duration including intro and outro padding.
	Total float64
}

// Options control the padding around and between lines, all in seconds.
type Options struct {
	Pause float64
	Intro float64
	Outro float64
}

// Build walks the durations in line order with a running cursor: each line
// starts where the previous one ended plus the configured pause. Deterministic
// for a given input.
func Build(durations []float64, opts Options) (Timeline, error) {
	if len(durations) == 0 {
		return Timeline{}, services.Wrap(services.ErrValidation, "timeline", "build", "", ErrEmpty)
	}
	if opts.Pause < 0 || opts.Intro < 0 || opts.Outro < 0 {
		return Timeline{}, services.Wrap(services.ErrConfiguration, "timeline", "build", "padding must not be negative", nil)
	}

	entries := make([]Entry, 0, len(durations))
	cursor := opts.Intro
	for i, duration := range durations {
		if duration <= 0 {
			return Timeline{}, services.Wrap(services.ErrValidation, "timeline", "build",
				fmt.Sprintf("line %d has non-positive duration %v", i, duration), nil)
		}
		start := cursor
		end := start + duration
		entries = append(entries, Entry{
			Index:        i,
			Start:        start,
			End:          end,
			DisplayStart: start,
			DisplayEnd:   end,
		})
		cursor = end + opts.Pause
	}

	// The trailing pause is not part of the video; only the outro pads the end.
	total := entries[len(entries)-1].End + opts.Outro
	return Timeline{Entries: entries, Total: total}, nil
}
