package assets

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/sundai-club/reddit-rhymes/internal/media/ffprobe"
	"github.com/sundai-club/reddit-rhymes/internal/poem"
	"github.com/sundai-club/reddit-rhymes/internal/services"
)

// AudioDescriptor carries the measured properties of one voice-over clip.
type AudioDescriptor struct {
	Duration   float64
	SampleRate int
}

// Asset is one line's verified audio clip and screenshot overlay.
type Asset struct {
	Index     int
	AudioPath string
	ImagePath string
	Audio     AudioDescriptor
}

// resolveProbe is the ffprobe function used by the resolver. It is a
// package-level variable so tests can override it.
var resolveProbe = ffprobe.Inspect

// SetProbeForTests overrides the ffprobe runner during tests.
func SetProbeForTests(fn func(context.Context, string, string) (ffprobe.Result, error)) func() {
	previous := resolveProbe
	resolveProbe = fn
	return func() {
		resolveProbe = previous
	}
}

// Resolver validates per-line assets on a bounded worker pool.
type Resolver struct {
	ffprobeBinary string
	concurrency   int
}

// NewResolver builds a resolver probing with the given ffprobe binary and at
// most concurrency files in flight.
func NewResolver(ffprobeBinary string, concurrency int) *Resolver {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Resolver{ffprobeBinary: ffprobeBinary, concurrency: concurrency}
}

// Resolve verifies every line's audio clip and screenshot and returns the
// complete asset list ordered by line index, or a single terminal error for
// the first offending index in ascending order. Probing runs concurrently;
// the error choice does not depend on completion order.
func (r *Resolver) Resolve(ctx context.Context, audioDir, imagesDir string, lines []poem.Line) ([]Asset, error) {
	if len(lines) == 0 {
		return nil, services.Wrap(services.ErrValidation, "assets", "resolve", "no lines to resolve", nil)
	}

	results := make([]Asset, len(lines))
	failures := make([]error, len(lines))

	sem := make(chan struct{}, r.concurrency)
	var wg sync.WaitGroup
	for slot, line := range lines {
		wg.Add(1)
		go func(slot int, line poem.Line) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			asset, err := r.resolveLine(ctx, audioDir, imagesDir, line)
			if err != nil {
				failures[slot] = err
				return
			}
			results[slot] = asset
		}(slot, line)
	}
	wg.Wait()

	// First offending line in ascending index order, for deterministic
	// diagnostics regardless of which probe finished first.
	for _, err := range failures {
		if err != nil {
			return nil, err
		}
	}
	return results, nil
}

func (r *Resolver) resolveLine(ctx context.Context, audioDir, imagesDir string, line poem.Line) (Asset, error) {
	audioPath := filepath.Join(audioDir, poem.AudioFileName(line.Index))
	imagePath := filepath.Join(imagesDir, poem.ImageFileName(line.Index))

	descriptor, err := r.checkAudio(ctx, line.Index, audioPath)
	if err != nil {
		return Asset{}, err
	}
	if err := r.checkImage(ctx, line.Index, imagePath); err != nil {
		return Asset{}, err
	}
	return Asset{Index: line.Index, AudioPath: audioPath, ImagePath: imagePath, Audio: descriptor}, nil
}

func (r *Resolver) checkAudio(ctx context.Context, index int, path string) (AudioDescriptor, error) {
	info, err := os.Stat(path)
	if err != nil {
		return AudioDescriptor{}, services.Wrap(services.ErrNotFound, "assets", "resolve", "",
			&MissingAssetError{Index: index, Kind: KindAudio, Path: path})
	}
	if info.Size() == 0 {
		return AudioDescriptor{}, services.Wrap(services.ErrValidation, "assets", "resolve", "",
			&CorruptAssetError{Index: index, Kind: KindAudio, Path: path, Reason: "zero-length file"})
	}

	result, err := resolveProbe(ctx, r.ffprobeBinary, path)
	if err != nil {
		return AudioDescriptor{}, services.Wrap(services.ErrValidation, "assets", "resolve", "",
			&CorruptAssetError{Index: index, Kind: KindAudio, Path: path, Reason: "unreadable header"})
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return AudioDescriptor{}, services.Wrap(services.ErrValidation, "assets", "resolve", "",
			&CorruptAssetError{Index: index, Kind: KindAudio, Path: path, Reason: "unreadable duration"})
	}
	if result.AudioStreamCount() == 0 {
		return AudioDescriptor{}, services.Wrap(services.ErrValidation, "assets", "resolve", "",
			&CorruptAssetError{Index: index, Kind: KindAudio, Path: path, Reason: "no audio stream"})
	}
	return AudioDescriptor{Duration: duration, SampleRate: result.SampleRate()}, nil
}

func (r *Resolver) checkImage(ctx context.Context, index int, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return services.Wrap(services.ErrNotFound, "assets", "resolve", "",
			&MissingAssetError{Index: index, Kind: KindImage, Path: path})
	}
	if info.Size() == 0 {
		return services.Wrap(services.ErrValidation, "assets", "resolve", "",
			&CorruptAssetError{Index: index, Kind: KindImage, Path: path, Reason: "zero-length file"})
	}

	result, err := resolveProbe(ctx, r.ffprobeBinary, path)
	if err != nil {
		return services.Wrap(services.ErrValidation, "assets", "resolve", "",
			&CorruptAssetError{Index: index, Kind: KindImage, Path: path, Reason: "unreadable header"})
	}
	if result.VideoStreamCount() == 0 {
		return services.Wrap(services.ErrValidation, "assets", "resolve", "",
			&CorruptAssetError{Index: index, Kind: KindImage, Path: path, Reason: "no image stream"})
	}
	// Opaque cards would overlay as solid rectangles over the background.
	if !result.HasAlpha() {
		return services.Wrap(services.ErrValidation, "assets", "resolve", "",
			&CorruptAssetError{Index: index, Kind: KindImage, Path: path, Reason: "no alpha channel"})
	}
	return nil
}
