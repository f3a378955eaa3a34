package render

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sundai-club/reddit-rhymes/internal/compositor"
	"github.com/sundai-club/reddit-rhymes/internal/media/ffprobe"
	"github.com/sundai-club/reddit-rhymes/internal/services"
)

func testJob(outputPath string) compositor.Job {
	return compositor.Job{
		Inputs:        []compositor.Input{{Path: "/media/bg.webm", Loops: 2}},
		FilterComplex: "[0:v]null[vout]",
		VideoLabel:    "[vout]",
		AudioLabel:    "[aout]",
		Duration:      6.5,
		OutputPath:    outputPath,
		Settings:      compositor.Settings{Width: 1080, Height: 1920, CRF: 18, Preset: "slow", AudioBitrate: "256k", SampleRate: 48000},
	}
}

func writingRunner(t *testing.T) func(context.Context, string, []string) ([]byte, error) {
	t.Helper()
	return func(_ context.Context, _ string, args []string) ([]byte, error) {
		return nil, os.WriteFile(args[len(args)-1], []byte("mp4"), 0o644)
	}
}

func fakeResultProbe(duration float64) func(context.Context, string, string) (ffprobe.Result, error) {
	return func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "video", CodecName: "h264"}, {CodecType: "audio", CodecName: "aac"}},
			Format:  ffprobe.Format{Duration: fmt.Sprintf("%f", duration)},
		}, nil
	}
}

func TestRenderSuccess(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "final.mp4")
	restoreRunner := SetRunnerForTests(writingRunner(t))
	defer restoreRunner()
	restoreProbe := SetProbeForTests(fakeResultProbe(6.48))
	defer restoreProbe()

	driver := NewDriver("ffmpeg", "ffprobe", time.Minute, 0.5, nil)
	result, err := driver.Render(context.Background(), testJob(outputPath))
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.OutputPath != outputPath {
		t.Fatalf("output path = %q", result.OutputPath)
	}
	if result.Duration != 6.48 {
		t.Fatalf("duration = %v, want 6.48", result.Duration)
	}
	if result.SizeBytes == 0 {
		t.Fatal("size not recorded")
	}
}

func TestRenderEncoderFailureRemovesOutput(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "final.mp4")
	restoreRunner := SetRunnerForTests(func(_ context.Context, _ string, args []string) ([]byte, error) {
		if err := os.WriteFile(args[len(args)-1], []byte("partial"), 0o644); err != nil {
			t.Fatalf("write partial: %v", err)
		}
		return []byte("frame=1\nError opening filter\nConversion failed!\n"), errors.New("exit status 1")
	})
	defer restoreRunner()

	driver := NewDriver("ffmpeg", "ffprobe", time.Minute, 0.5, nil)
	_, err := driver.Render(context.Background(), testJob(outputPath))
	var encodeErr *EncodeError
	if !errors.As(err, &encodeErr) {
		t.Fatalf("expected EncodeError, got %v", err)
	}
	if encodeErr.Diagnostic == "" {
		t.Fatal("diagnostic output not preserved")
	}
	if !errors.Is(err, services.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if _, statErr := os.Stat(outputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("partial output left behind")
	}
}

func TestRenderTimeout(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "final.mp4")
	restoreRunner := SetRunnerForTests(func(ctx context.Context, _ string, _ []string) ([]byte, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	defer restoreRunner()

	driver := NewDriver("ffmpeg", "ffprobe", 10*time.Millisecond, 0.5, nil)
	_, err := driver.Render(context.Background(), testJob(outputPath))
	if !errors.Is(err, ErrEncodeTimeout) {
		t.Fatalf("expected ErrEncodeTimeout, got %v", err)
	}
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected timeout marker, got %v", err)
	}
}

func TestRenderDurationDrift(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "final.mp4")
	restoreRunner := SetRunnerForTests(writingRunner(t))
	defer restoreRunner()
	// Produced file is 1.2s short of the planned 6.5s.
	restoreProbe := SetProbeForTests(fakeResultProbe(5.3))
	defer restoreProbe()

	driver := NewDriver("ffmpeg", "ffprobe", time.Minute, 0.5, nil)
	_, err := driver.Render(context.Background(), testJob(outputPath))
	var validation *OutputValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected OutputValidationError, got %v", err)
	}
	if _, statErr := os.Stat(outputPath); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("invalid output left behind")
	}
}

func TestRenderMissingStreams(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "final.mp4")
	restoreRunner := SetRunnerForTests(writingRunner(t))
	defer restoreRunner()
	restoreProbe := SetProbeForTests(func(context.Context, string, string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "video", CodecName: "h264"}},
			Format:  ffprobe.Format{Duration: "6.5"},
		}, nil
	})
	defer restoreProbe()

	driver := NewDriver("ffmpeg", "ffprobe", time.Minute, 0.5, nil)
	_, err := driver.Render(context.Background(), testJob(outputPath))
	var validation *OutputValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected OutputValidationError, got %v", err)
	}
	if validation.Reason != "no audio stream" {
		t.Fatalf("reason = %q", validation.Reason)
	}
}

func TestTailLines(t *testing.T) {
	t.Parallel()
	out := []byte("a\nb\n\nc\nd\ne\n")
	if got := tailLines(out, 2); got != "d\ne" {
		t.Fatalf("tailLines = %q", got)
	}
	if got := tailLines(nil, 3); got != "" {
		t.Fatalf("tailLines(nil) = %q", got)
	}
}
