package compositor

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sundai-club/reddit-rhymes/internal/assets"
	"github.com/sundai-club/reddit-rhymes/internal/background"
	"github.com/sundai-club/reddit-rhymes/internal/services"
	"github.com/sundai-club/reddit-rhymes/internal/timeline"
)

// Input is one media file handed to the encoder, with the number of whole
// repetitions needed to cover the timeline (1 = play once).
type Input struct {
	Path  string
	Loops int
}

// Settings carries the encoder parameters the job is rendered with.
type Settings struct {
	Width        int
	Height       int
	CRF          int
	Preset       string
	AudioBitrate string
	SampleRate   int
}

// Job is the complete, immutable instruction set for one render: ordered
// inputs, the full filtergraph, output stream labels, the exact total
// duration, and the destination path. Created once per run, consumed exactly
// once, never mutated after creation.
type Job struct {
	Inputs        []Input
	FilterComplex string
	VideoLabel    string
	AudioLabel    string
	Duration      float64
	OutputPath    string
	Settings      Settings
}

// Build composes the render job from the timeline, the background plan, and
// the resolved per-line assets. Pure: no filesystem access, no side effects.
func Build(tl timeline.Timeline, plan background.Plan, resolved []assets.Asset, settings Settings, outputPath string) (Job, error) {
	if len(tl.Entries) == 0 {
		return Job{}, services.Wrap(services.ErrValidation, "compositor", "build", "", timeline.ErrEmpty)
	}
	if len(resolved) != len(tl.Entries) {
		return Job{}, services.Wrap(services.ErrValidation, "compositor", "build",
			fmt.Sprintf("%d assets for %d timeline entries", len(resolved), len(tl.Entries)), nil)
	}
	if math.Abs(plan.Total-tl.Total) > 1e-9 {
		return Job{}, services.Wrap(services.ErrValidation, "compositor", "build",
			fmt.Sprintf("background plan covers %v but timeline totals %v", plan.Total, tl.Total), nil)
	}
	if err := checkWindows(tl.Entries); err != nil {
		return Job{}, err
	}

	lineCount := len(tl.Entries)

	// Input layout: background video, then one image per line, then one audio
	// clip per line, then the optional music track.
	inputs := make([]Input, 0, 2*lineCount+2)
	inputs = append(inputs, Input{Path: plan.Video.Source.Path, Loops: plan.Video.Loops})
	for _, asset := range resolved {
		inputs = append(inputs, Input{Path: asset.ImagePath, Loops: 1})
	}
	for _, asset := range resolved {
		inputs = append(inputs, Input{Path: asset.AudioPath, Loops: 1})
	}
	musicIndex := -1
	if plan.Music != nil {
		musicIndex = len(inputs)
		inputs = append(inputs, Input{Path: plan.Music.Source.Path, Loops: plan.Music.Loops})
	}

	var fc strings.Builder

	// Background layer: scale and crop to the output frame, then hard-trim the
	// looped concatenation to the exact timeline total.
	fmt.Fprintf(&fc, "[0:v]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1,trim=0:%s,setpts=PTS-STARTPTS[bg];",
		settings.Width, settings.Height, settings.Width, settings.Height, fmtSeconds(plan.Video.TrimTo))

	// Screenshot overlays, each visible only during its display window.
	for i, entry := range tl.Entries {
		fmt.Fprintf(&fc, "[%d:v]scale=%d:%d[ov%d];", 1+i, settings.Width, settings.Height, i)
		base := "[bg]"
		if i > 0 {
			base = fmt.Sprintf("[v%d]", i-1)
		}
		fmt.Fprintf(&fc, "%s[ov%d]overlay=0:0:enable='between(t,%s,%s)'[v%d];",
			base, i, fmtSeconds(entry.DisplayStart), fmtSeconds(entry.DisplayEnd), i)
	}
	videoLabel := fmt.Sprintf("[v%d]", lineCount-1)

	// Voice-over: delay each clip to its start offset, apply the voice gain,
	// and mix. Windows never overlap, so the mix is plain superposition.
	for i, entry := range tl.Entries {
		delay := int(math.Round(entry.Start * 1000))
		fmt.Fprintf(&fc, "[%d:a]aresample=%d,adelay=%d|%d,volume=%s[ln%d];",
			1+lineCount+i, settings.SampleRate, delay, delay, fmtVolume(plan.VoiceVolume), i)
	}
	voiceLabel := "[ln0]"
	if lineCount > 1 {
		for i := 0; i < lineCount; i++ {
			fmt.Fprintf(&fc, "[ln%d]", i)
		}
		fmt.Fprintf(&fc, "amix=inputs=%d:normalize=0[voice];", lineCount)
		voiceLabel = "[voice]"
	}

	// Optional music bed at the attenuated gain, trimmed to the total.
	mixLabel := voiceLabel
	if musicIndex >= 0 {
		fmt.Fprintf(&fc, "[%d:a]volume=%s,atrim=0:%s,asetpts=PTS-STARTPTS[music];",
			musicIndex, fmtVolume(plan.MusicVolume), fmtSeconds(plan.Music.TrimTo))
		fmt.Fprintf(&fc, "%s[music]amix=inputs=2:duration=first:normalize=0[mix];", voiceLabel)
		mixLabel = "[mix]"
	}

	// Pad with silence then trim so the audio track covers [0, T] exactly.
	fmt.Fprintf(&fc, "%sapad,atrim=0:%s[aout]", mixLabel, fmtSeconds(tl.Total))

	return Job{
		Inputs:        inputs,
		FilterComplex: fc.String(),
		VideoLabel:    videoLabel,
		AudioLabel:    "[aout]",
		Duration:      tl.Total,
		OutputPath:    outputPath,
		Settings:      settings,
	}, nil
}

// CommandArgs renders the job as ffmpeg arguments (binary name excluded).
func (j Job) CommandArgs() []string {
	args := []string{"-y", "-hide_banner"}
	for _, input := range j.Inputs {
		if input.Loops > 1 {
			args = append(args, "-stream_loop", strconv.Itoa(input.Loops-1))
		}
		args = append(args, "-i", input.Path)
	}
	args = append(args,
		"-filter_complex", j.FilterComplex,
		"-map", j.VideoLabel,
		"-map", j.AudioLabel,
		"-c:v", "libx264",
		"-preset", j.Settings.Preset,
		"-crf", strconv.Itoa(j.Settings.CRF),
		"-pix_fmt", "yuv420p",
		"-profile:v", "high",
		"-level", "4.1",
		"-c:a", "aac",
		"-b:a", j.Settings.AudioBitrate,
		"-ar", strconv.Itoa(j.Settings.SampleRate),
		"-t", fmtSeconds(j.Duration),
		"-movflags", "+faststart",
		j.OutputPath,
	)
	return args
}

func checkWindows(entries []timeline.Entry) error {
	for i := 1; i < len(entries); i++ {
		previous, current := entries[i-1], entries[i]
		if current.Index <= previous.Index {
			return services.Wrap(services.ErrValidation, "compositor", "build",
				fmt.Sprintf("entries out of order at position %d", i), nil)
		}
		if current.Start < previous.End || current.DisplayStart < previous.DisplayEnd {
			return services.Wrap(services.ErrValidation, "compositor", "build",
				fmt.Sprintf("line %d window overlaps line %d", current.Index, previous.Index), nil)
		}
	}
	return nil
}

func fmtSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}

func fmtVolume(volume float64) string {
	return strconv.FormatFloat(volume, 'f', -1, 64)
}
