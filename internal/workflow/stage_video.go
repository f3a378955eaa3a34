package workflow

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/sundai-club/reddit-rhymes/internal/assets"
	"github.com/sundai-club/reddit-rhymes/internal/background"
	"github.com/sundai-club/reddit-rhymes/internal/compositor"
	"github.com/sundai-club/reddit-rhymes/internal/config"
	"github.com/sundai-club/reddit-rhymes/internal/fileutil"
	"github.com/sundai-club/reddit-rhymes/internal/logging"
	"github.com/sundai-club/reddit-rhymes/internal/media/ffprobe"
	"github.com/sundai-club/reddit-rhymes/internal/poem"
	"github.com/sundai-club/reddit-rhymes/internal/render"
	"github.com/sundai-club/reddit-rhymes/internal/services"
	"github.com/sundai-club/reddit-rhymes/internal/timeline"
)

type assetResolver interface {
	Resolve(ctx context.Context, audioDir, imagesDir string, lines []poem.Line) ([]assets.Asset, error)
}

type encoder interface {
	Render(ctx context.Context, job compositor.Job) (render.Result, error)
}

// probeMedia measures the background sources. Package-level variable so tests
// can substitute a fake.
var probeMedia = ffprobe.Inspect

// SetProbeForTests overrides the background media prober during tests.
func SetProbeForTests(fn func(context.Context, string, string) (ffprobe.Result, error)) func() {
	previous := probeMedia
	probeMedia = fn
	return func() {
		probeMedia = previous
	}
}

// VideoStage assembles the final video: it resolves per-line assets, lays out
// the timeline, plans the background loops, and drives the encoder.
type VideoStage struct {
	cfg      *config.Config
	resolver assetResolver
	driver   encoder
	logger   *slog.Logger
}

func NewVideoStage(cfg *config.Config, resolver assetResolver, driver encoder, logger *slog.Logger) *VideoStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &VideoStage{cfg: cfg, resolver: resolver, driver: driver, logger: logger}
}

func (s *VideoStage) Name() string { return "video" }

func (s *VideoStage) Fingerprint() (string, error) {
	inputHash, err := fileutil.HashFile(s.cfg.PoemCSV())
	if err != nil {
		return "", err
	}
	// Background sources are fingerprinted by path and size; hashing multi-
	// gigabyte media on every invocation is not worth the certainty.
	return fileutil.HashStrings(
		inputHash,
		s.cfg.Paths.BackgroundVideo,
		strconv.FormatInt(fileutil.FileSize(s.cfg.Paths.BackgroundVideo), 10),
		s.cfg.Paths.BackgroundMusic,
		strconv.FormatInt(fileutil.FileSize(s.cfg.Paths.BackgroundMusic), 10),
		strconv.FormatFloat(s.cfg.Timing.LinePause, 'f', -1, 64),
		strconv.FormatFloat(s.cfg.Timing.Intro, 'f', -1, 64),
		strconv.FormatFloat(s.cfg.Timing.Outro, 'f', -1, 64),
		strconv.FormatFloat(s.cfg.AudioMix.MusicVolume, 'f', -1, 64),
		strconv.FormatFloat(s.cfg.AudioMix.VoiceVolume, 'f', -1, 64),
		strconv.Itoa(s.cfg.Render.Width),
		strconv.Itoa(s.cfg.Render.Height),
		strconv.Itoa(s.cfg.Render.CRF),
		s.cfg.Render.Preset,
	), nil
}

func (s *VideoStage) ArtifactPath() string { return s.cfg.OutputPath() }

func (s *VideoStage) ArtifactReady() bool { return fileutil.NonEmptyFile(s.cfg.OutputPath()) }

func (s *VideoStage) Run(ctx context.Context) error {
	lines, err := poem.ReadLines(s.cfg.PoemCSV())
	if err != nil {
		return services.Wrap(services.ErrValidation, s.Name(), "read", "", err)
	}
	if len(lines) == 0 {
		return services.Wrap(services.ErrValidation, s.Name(), "read", "", timeline.ErrEmpty)
	}

	resolved, err := s.resolver.Resolve(ctx, s.cfg.AudioDir(), s.cfg.ImagesDir(), lines)
	if err != nil {
		return err
	}

	durations := make([]float64, len(resolved))
	for i, asset := range resolved {
		durations[i] = asset.Audio.Duration
	}
	tl, err := timeline.Build(durations, timeline.Options{
		Pause: s.cfg.Timing.LinePause,
		Intro: s.cfg.Timing.Intro,
		Outro: s.cfg.Timing.Outro,
	})
	if err != nil {
		return err
	}

	video, err := s.probeSource(ctx, s.cfg.Paths.BackgroundVideo, true)
	if err != nil {
		return err
	}
	music, err := s.probeSource(ctx, s.cfg.Paths.BackgroundMusic, false)
	if err != nil {
		return err
	}

	plan, err := background.Synthesize(tl.Total, *video, music, background.Mix{
		MusicVolume: s.cfg.AudioMix.MusicVolume,
		VoiceVolume: s.cfg.AudioMix.VoiceVolume,
	})
	if err != nil {
		return err
	}

	job, err := compositor.Build(tl, plan, resolved, compositor.Settings{
		Width:        s.cfg.Render.Width,
		Height:       s.cfg.Render.Height,
		CRF:          s.cfg.Render.CRF,
		Preset:       s.cfg.Render.Preset,
		AudioBitrate: s.cfg.Render.AudioBitrate,
		SampleRate:   s.cfg.Render.SampleRate,
	}, s.cfg.OutputPath())
	if err != nil {
		return err
	}

	result, err := s.driver.Render(ctx, job)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "video assembled",
		logging.String("output", result.OutputPath),
		logging.Float64("duration_seconds", result.Duration),
		logging.Int("lines", len(lines)))
	return nil
}

// probeSource measures a background source. A missing optional source yields
// nil; a missing required one is an error.
func (s *VideoStage) probeSource(ctx context.Context, path string, required bool) (*background.Source, error) {
	if path == "" {
		if required {
			return nil, services.Wrap(services.ErrConfiguration, s.Name(), "probe", "no background video configured", nil)
		}
		return nil, nil
	}
	if !fileutil.NonEmptyFile(path) {
		if required {
			return nil, services.Wrap(services.ErrConfiguration, s.Name(), "probe", "background video missing: "+path, nil)
		}
		s.logger.Warn("background music missing, rendering without it", logging.String("path", path))
		return nil, nil
	}

	result, err := probeMedia(ctx, s.cfg.FFprobeBinary(), path)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, s.Name(), "probe", path, err)
	}
	duration := result.DurationSeconds()
	if duration <= 0 {
		return nil, services.Wrap(services.ErrValidation, s.Name(), "probe", "unreadable duration: "+path, nil)
	}
	return &background.Source{Path: path, Duration: duration}, nil
}
