package background

import (
	"fmt"
	"math"

	"github.com/sundai-club/reddit-rhymes/internal/services"
)

// Source identifies one background input and its measured duration.
type Source struct {
	Path     string
	Duration float64
}

// LoopSpec describes how a fixed-length source covers the timeline: repeat the
// whole source Loops times from its start, then hard-trim the concatenation to
// TrimTo seconds. Loops is 1 when the source is already long enough.
type LoopSpec struct {
	Source Source
	Loops  int
	TrimTo float64
}

// Plan is the derived looping/trimming/volume instruction set for the
// background layers. Recomputed whenever the timeline changes.
type Plan struct {
	Total       float64
	Video       LoopSpec
	Music       *LoopSpec
	MusicVolume float64
	VoiceVolume float64
}

// Mix carries the relative gains applied when the layers are combined.
type Mix struct {
	MusicVolume float64
	VoiceVolume float64
}

// Synthesize derives the background plan for a timeline of the given total
// duration. A nil music source is not an error: the plan simply omits the
// music layer and the voice-over is mixed against silence. Sources are never
// stretched or pitched, and looping always restarts from offset 0.
func Synthesize(total float64, video Source, music *Source, mix Mix) (Plan, error) {
	if total <= 0 {
		return Plan{}, services.Wrap(services.ErrValidation, "background", "synthesize",
			fmt.Sprintf("total duration %v must be positive", total), nil)
	}
	videoSpec, err := loopSpec(video, total, "video")
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{
		Total:       total,
		Video:       videoSpec,
		MusicVolume: mix.MusicVolume,
		VoiceVolume: mix.VoiceVolume,
	}

	if music != nil {
		musicSpec, err := loopSpec(*music, total, "music")
		if err != nil {
			return Plan{}, err
		}
		plan.Music = &musicSpec
	}

	return plan, nil
}

func loopSpec(source Source, total float64, kind string) (LoopSpec, error) {
	if source.Duration <= 0 {
		return LoopSpec{}, services.Wrap(services.ErrValidation, "background", "synthesize",
			fmt.Sprintf("%s source %s has non-positive duration %v", kind, source.Path, source.Duration), nil)
	}
	loops := 1
	if source.Duration < total {
		loops = int(math.Ceil(total / source.Duration))
	}
	return LoopSpec{Source: source, Loops: loops, TrimTo: total}, nil
}
