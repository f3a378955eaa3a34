package assets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sundai-club/reddit-rhymes/internal/media/ffprobe"
	"github.com/sundai-club/reddit-rhymes/internal/poem"
)

func fakeProbe(durations map[string]float64) func(context.Context, string, string) (ffprobe.Result, error) {
	return func(_ context.Context, _ string, path string) (ffprobe.Result, error) {
		if strings.HasSuffix(path, ".png") {
			return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "video", CodecName: "png", PixFmt: "rgba"}}}, nil
		}
		duration, ok := durations[filepath.Base(path)]
		if !ok {
			return ffprobe.Result{}, errors.New("probe: unknown file")
		}
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "audio", CodecName: "pcm_s16le", SampleRate: "24000"}},
			Format:  ffprobe.Format{Duration: fmt.Sprintf("%f", duration)},
		}, nil
	}
}

func writeLineAssets(t *testing.T, audioDir, imagesDir string, count int) []poem.Line {
	t.Helper()
	lines := make([]poem.Line, count)
	for i := 0; i < count; i++ {
		lines[i] = poem.Line{Index: i, Comment: poem.Comment{Text: fmt.Sprintf("line %d", i)}}
		if err := os.WriteFile(filepath.Join(audioDir, poem.AudioFileName(i)), []byte("wav"), 0o644); err != nil {
			t.Fatalf("write audio: %v", err)
		}
		if err := os.WriteFile(filepath.Join(imagesDir, poem.ImageFileName(i)), []byte("png"), 0o644); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	return lines
}

func TestResolveComplete(t *testing.T) {
	audioDir, imagesDir := t.TempDir(), t.TempDir()
	lines := writeLineAssets(t, audioDir, imagesDir, 3)

	restore := SetProbeForTests(fakeProbe(map[string]float64{
		"audio_01.wav": 2.0,
		"audio_02.wav": 1.5,
		"audio_03.wav": 3.0,
	}))
	defer restore()

	resolver := NewResolver("ffprobe", 2)
	resolved, err := resolver.Resolve(context.Background(), audioDir, imagesDir, lines)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if len(resolved) != 3 {
		t.Fatalf("got %d assets, want 3", len(resolved))
	}
	for i, asset := range resolved {
		if asset.Index != i {
			t.Fatalf("asset %d out of order: %+v", i, asset)
		}
		if asset.Audio.SampleRate != 24000 {
			t.Fatalf("asset %d sample rate = %d", i, asset.Audio.SampleRate)
		}
	}
	if resolved[1].Audio.Duration != 1.5 {
		t.Fatalf("asset 1 duration = %v, want 1.5", resolved[1].Audio.Duration)
	}
}

func TestResolveMissingAudio(t *testing.T) {
	audioDir, imagesDir := t.TempDir(), t.TempDir()
	lines := writeLineAssets(t, audioDir, imagesDir, 3)
	if err := os.Remove(filepath.Join(audioDir, poem.AudioFileName(1))); err != nil {
		t.Fatalf("remove: %v", err)
	}

	restore := SetProbeForTests(fakeProbe(map[string]float64{
		"audio_01.wav": 2.0,
		"audio_03.wav": 3.0,
	}))
	defer restore()

	resolver := NewResolver("ffprobe", 4)
	_, err := resolver.Resolve(context.Background(), audioDir, imagesDir, lines)
	var missing *MissingAssetError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingAssetError, got %v", err)
	}
	if missing.Index != 1 || missing.Kind != KindAudio {
		t.Fatalf("wrong identification: %+v", missing)
	}
}

func TestResolveReportsFirstOffenderByIndex(t *testing.T) {
	audioDir, imagesDir := t.TempDir(), t.TempDir()
	lines := writeLineAssets(t, audioDir, imagesDir, 5)
	// Break lines 2 and 4; the error must identify line 2.
	if err := os.Remove(filepath.Join(imagesDir, poem.ImageFileName(2))); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := os.WriteFile(filepath.Join(audioDir, poem.AudioFileName(4)), nil, 0o644); err != nil {
		t.Fatalf("truncate: %v", err)
	}

	restore := SetProbeForTests(fakeProbe(map[string]float64{
		"audio_01.wav": 1, "audio_02.wav": 1, "audio_03.wav": 1, "audio_04.wav": 1, "audio_05.wav": 1,
	}))
	defer restore()

	resolver := NewResolver("ffprobe", 5)
	_, err := resolver.Resolve(context.Background(), audioDir, imagesDir, lines)
	var missing *MissingAssetError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingAssetError, got %v", err)
	}
	if missing.Index != 2 || missing.Kind != KindImage {
		t.Fatalf("expected line 2 image to be reported first, got %+v", missing)
	}
}

func TestResolveCorruptDuration(t *testing.T) {
	audioDir, imagesDir := t.TempDir(), t.TempDir()
	lines := writeLineAssets(t, audioDir, imagesDir, 1)

	restore := SetProbeForTests(func(_ context.Context, _ string, path string) (ffprobe.Result, error) {
		if strings.HasSuffix(path, ".png") {
			return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "video"}}}, nil
		}
		// Parsable container but no readable duration.
		return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "audio"}}}, nil
	})
	defer restore()

	resolver := NewResolver("ffprobe", 1)
	_, err := resolver.Resolve(context.Background(), audioDir, imagesDir, lines)
	var corrupt *CorruptAssetError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptAssetError, got %v", err)
	}
	if corrupt.Kind != KindAudio || corrupt.Reason != "unreadable duration" {
		t.Fatalf("wrong reason: %+v", corrupt)
	}
}

func TestResolveRejectsOpaqueImage(t *testing.T) {
	audioDir, imagesDir := t.TempDir(), t.TempDir()
	lines := writeLineAssets(t, audioDir, imagesDir, 1)

	restore := SetProbeForTests(func(_ context.Context, _ string, path string) (ffprobe.Result, error) {
		if strings.HasSuffix(path, ".png") {
			// A valid image, but flattened to an opaque pixel format.
			return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "video", CodecName: "png", PixFmt: "rgb24"}}}, nil
		}
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{CodecType: "audio", SampleRate: "24000"}},
			Format:  ffprobe.Format{Duration: "2.0"},
		}, nil
	})
	defer restore()

	resolver := NewResolver("ffprobe", 1)
	_, err := resolver.Resolve(context.Background(), audioDir, imagesDir, lines)
	var corrupt *CorruptAssetError
	if !errors.As(err, &corrupt) {
		t.Fatalf("expected CorruptAssetError, got %v", err)
	}
	if corrupt.Kind != KindImage || corrupt.Reason != "no alpha channel" {
		t.Fatalf("wrong reason: %+v", corrupt)
	}
}

func TestResolveEmptyLines(t *testing.T) {
	t.Parallel()
	resolver := NewResolver("ffprobe", 1)
	if _, err := resolver.Resolve(context.Background(), t.TempDir(), t.TempDir(), nil); err == nil {
		t.Fatal("expected error for empty line set")
	}
}
