package workflow

import (
	"log/slog"
	"time"

	"github.com/sundai-club/reddit-rhymes/internal/assets"
	"github.com/sundai-club/reddit-rhymes/internal/config"
	"github.com/sundai-club/reddit-rhymes/internal/render"
	"github.com/sundai-club/reddit-rhymes/internal/screenshot"
	"github.com/sundai-club/reddit-rhymes/internal/services/llm"
	"github.com/sundai-club/reddit-rhymes/internal/services/reddit"
	"github.com/sundai-club/reddit-rhymes/internal/services/tts"
)

// BuildStages wires the full pipeline from configuration: fetch, compose,
// screenshots, audio, video.
func BuildStages(cfg *config.Config, logger *slog.Logger) ([]Stage, error) {
	fetcher, err := reddit.NewFetcher(cfg.Reddit, logger)
	if err != nil {
		return nil, err
	}
	composer, err := llm.NewComposer(cfg.LLM, logger)
	if err != nil {
		return nil, err
	}
	generator, err := tts.NewGenerator(cfg.TTS, logger)
	if err != nil {
		return nil, err
	}

	renderer := screenshot.NewRenderer(cfg.FFmpegBinary(), cfg.Screenshots.FontFile, logger)
	resolver := assets.NewResolver(cfg.FFprobeBinary(), cfg.Pipeline.ProbeConcurrency)
	driver := render.NewDriver(
		cfg.FFmpegBinary(),
		cfg.FFprobeBinary(),
		time.Duration(cfg.Render.EncodeTimeoutSeconds)*time.Second,
		cfg.Render.DurationTolerance,
		logger,
	)

	return []Stage{
		NewFetchStage(cfg, fetcher, logger),
		NewComposeStage(cfg, composer, logger),
		NewScreenshotStage(cfg, renderer, logger),
		NewAudioStage(cfg, generator, logger),
		NewVideoStage(cfg, resolver, driver, logger),
	}, nil
}
