package compositor

import (
	"errors"
	"strings"
	"testing"

	"github.com/sundai-club/reddit-rhymes/internal/assets"
	"github.com/sundai-club/reddit-rhymes/internal/background"
	"github.com/sundai-club/reddit-rhymes/internal/timeline"
)

func testSettings() Settings {
	return Settings{Width: 1080, Height: 1920, CRF: 18, Preset: "slow", AudioBitrate: "256k", SampleRate: 48000}
}

func threeLineFixture(t *testing.T) (timeline.Timeline, background.Plan, []assets.Asset) {
	t.Helper()
	tl, err := timeline.Build([]float64{2.0, 1.5, 3.0}, timeline.Options{})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	plan, err := background.Synthesize(tl.Total,
		background.Source{Path: "/media/bg.webm", Duration: 4.0},
		&background.Source{Path: "/media/music.mp3", Duration: 30.0},
		background.Mix{MusicVolume: 0.08, VoiceVolume: 1.5})
	if err != nil {
		t.Fatalf("background: %v", err)
	}
	resolved := make([]assets.Asset, len(tl.Entries))
	for i := range resolved {
		resolved[i] = assets.Asset{
			Index:     i,
			AudioPath: "/work/audio/" + string(rune('a'+i)) + ".wav",
			ImagePath: "/work/images/" + string(rune('a'+i)) + ".png",
			Audio:     assets.AudioDescriptor{Duration: tl.Entries[i].Duration(), SampleRate: 24000},
		}
	}
	return tl, plan, resolved
}

func TestBuildInputOrder(t *testing.T) {
	t.Parallel()
	tl, plan, resolved := threeLineFixture(t)

	job, err := Build(tl, plan, resolved, testSettings(), "/out/final.mp4")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// Background, three images, three clips, music.
	if len(job.Inputs) != 8 {
		t.Fatalf("got %d inputs, want 8", len(job.Inputs))
	}
	if job.Inputs[0].Path != "/media/bg.webm" {
		t.Fatalf("input 0 = %q", job.Inputs[0].Path)
	}
	// 6.5s timeline over a 4.0s source needs two whole passes.
	if job.Inputs[0].Loops != 2 {
		t.Fatalf("background loops = %d, want 2", job.Inputs[0].Loops)
	}
	if job.Inputs[7].Path != "/media/music.mp3" || job.Inputs[7].Loops != 1 {
		t.Fatalf("music input = %+v", job.Inputs[7])
	}
	if job.Duration != 6.5 {
		t.Fatalf("duration = %v, want 6.5", job.Duration)
	}
}

func TestBuildFilterGraph(t *testing.T) {
	t.Parallel()
	tl, plan, resolved := threeLineFixture(t)

	job, err := Build(tl, plan, resolved, testSettings(), "/out/final.mp4")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	for _, fragment := range []string{
		"scale=1080:1920:force_original_aspect_ratio=increase,crop=1080:1920",
		"trim=0:6.500",
		"overlay=0:0:enable='between(t,0.000,2.000)'",
		"overlay=0:0:enable='between(t,2.000,3.500)'",
		"overlay=0:0:enable='between(t,3.500,6.500)'",
		"adelay=0|0,volume=1.5",
		"adelay=2000|2000,volume=1.5",
		"adelay=3500|3500,volume=1.5",
		"amix=inputs=3:normalize=0[voice]",
		"volume=0.08,atrim=0:6.500",
		"[voice][music]amix=inputs=2:duration=first:normalize=0[mix]",
		"[mix]apad,atrim=0:6.500[aout]",
	} {
		if !strings.Contains(job.FilterComplex, fragment) {
			t.Fatalf("filtergraph missing %q:\n%s", fragment, job.FilterComplex)
		}
	}
	if job.VideoLabel != "[v2]" || job.AudioLabel != "[aout]" {
		t.Fatalf("labels = %q / %q", job.VideoLabel, job.AudioLabel)
	}
}

func TestBuildWithoutMusic(t *testing.T) {
	t.Parallel()
	tl, _, resolved := threeLineFixture(t)
	plan, err := background.Synthesize(tl.Total,
		background.Source{Path: "/media/bg.webm", Duration: 4.0}, nil,
		background.Mix{MusicVolume: 0.08, VoiceVolume: 1.5})
	if err != nil {
		t.Fatalf("background: %v", err)
	}

	job, err := Build(tl, plan, resolved, testSettings(), "/out/final.mp4")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(job.Inputs) != 7 {
		t.Fatalf("got %d inputs, want 7", len(job.Inputs))
	}
	if strings.Contains(job.FilterComplex, "[music]") {
		t.Fatalf("no-music graph references a music stream:\n%s", job.FilterComplex)
	}
	if !strings.Contains(job.FilterComplex, "[voice]apad,atrim=0:6.500[aout]") {
		t.Fatalf("voice track must feed the output pad directly:\n%s", job.FilterComplex)
	}
}

func TestBuildSingleLine(t *testing.T) {
	t.Parallel()
	tl, err := timeline.Build([]float64{2.5}, timeline.Options{})
	if err != nil {
		t.Fatalf("timeline: %v", err)
	}
	plan, err := background.Synthesize(tl.Total,
		background.Source{Path: "/media/bg.webm", Duration: 10.0}, nil,
		background.Mix{MusicVolume: 0.08, VoiceVolume: 1.5})
	if err != nil {
		t.Fatalf("background: %v", err)
	}
	resolved := []assets.Asset{{Index: 0, AudioPath: "/a.wav", ImagePath: "/a.png", Audio: assets.AudioDescriptor{Duration: 2.5}}}

	job, err := Build(tl, plan, resolved, testSettings(), "/out/final.mp4")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if strings.Contains(job.FilterComplex, "amix=inputs=1") {
		t.Fatalf("single line must not mix:\n%s", job.FilterComplex)
	}
	if !strings.Contains(job.FilterComplex, "[ln0]apad,atrim=0:2.500[aout]") {
		t.Fatalf("single clip should feed the output pad directly:\n%s", job.FilterComplex)
	}
}

func TestBuildRejectsMismatchedAssets(t *testing.T) {
	t.Parallel()
	tl, plan, resolved := threeLineFixture(t)
	if _, err := Build(tl, plan, resolved[:2], testSettings(), "/out/final.mp4"); err == nil {
		t.Fatal("expected error for asset count mismatch")
	}
}

func TestBuildRejectsEmptyTimeline(t *testing.T) {
	t.Parallel()
	_, err := Build(timeline.Timeline{}, background.Plan{}, nil, testSettings(), "/out/final.mp4")
	if !errors.Is(err, timeline.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestBuildRejectsOverlap(t *testing.T) {
	t.Parallel()
	tl, plan, resolved := threeLineFixture(t)
	tl.Entries[1].Start = 1.0
	tl.Entries[1].DisplayStart = 1.0
	if _, err := Build(tl, plan, resolved, testSettings(), "/out/final.mp4"); err == nil {
		t.Fatal("expected error for overlapping windows")
	}
}

func TestCommandArgs(t *testing.T) {
	t.Parallel()
	tl, plan, resolved := threeLineFixture(t)
	job, err := Build(tl, plan, resolved, testSettings(), "/out/final.mp4")
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	args := job.CommandArgs()
	joined := strings.Join(args, " ")
	for _, fragment := range []string{
		"-stream_loop 1 -i /media/bg.webm",
		"-map [v2] -map [aout]",
		"-c:v libx264 -preset slow -crf 18",
		"-c:a aac -b:a 256k -ar 48000",
		"-t 6.500",
		"-movflags +faststart",
	} {
		if !strings.Contains(joined, fragment) {
			t.Fatalf("args missing %q:\n%s", fragment, joined)
		}
	}
	if args[len(args)-1] != "/out/final.mp4" {
		t.Fatalf("last arg = %q, want output path", args[len(args)-1])
	}
}
