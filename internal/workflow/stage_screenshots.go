package workflow

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/sundai-club/reddit-rhymes/internal/config"
	"github.com/sundai-club/reddit-rhymes/internal/fileutil"
	"github.com/sundai-club/reddit-rhymes/internal/logging"
	"github.com/sundai-club/reddit-rhymes/internal/poem"
	"github.com/sundai-club/reddit-rhymes/internal/services"
)

type cardRenderer interface {
	RenderAll(ctx context.Context, lines []poem.Line, imagesDir string) error
}

// ScreenshotStage renders one transparent comment card per poem line.
type ScreenshotStage struct {
	cfg      *config.Config
	renderer cardRenderer
	logger   *slog.Logger
}

func NewScreenshotStage(cfg *config.Config, renderer cardRenderer, logger *slog.Logger) *ScreenshotStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ScreenshotStage{cfg: cfg, renderer: renderer, logger: logger}
}

func (s *ScreenshotStage) Name() string { return "screenshots" }

func (s *ScreenshotStage) Fingerprint() (string, error) {
	inputHash, err := fileutil.HashFile(s.cfg.PoemCSV())
	if err != nil {
		return "", err
	}
	return fileutil.HashStrings(inputHash, s.cfg.Screenshots.FontFile), nil
}

func (s *ScreenshotStage) ArtifactPath() string { return s.cfg.ImagesDir() }

func (s *ScreenshotStage) ArtifactReady() bool {
	lines, err := poem.ReadLines(s.cfg.PoemCSV())
	if err != nil || len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		if !fileutil.NonEmptyFile(filepath.Join(s.cfg.ImagesDir(), poem.ImageFileName(line.Index))) {
			return false
		}
	}
	return true
}

func (s *ScreenshotStage) Run(ctx context.Context) error {
	lines, err := poem.ReadLines(s.cfg.PoemCSV())
	if err != nil {
		return services.Wrap(services.ErrValidation, s.Name(), "read", "", err)
	}
	if err := s.renderer.RenderAll(ctx, lines, s.cfg.ImagesDir()); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "cards rendered",
		logging.Int("lines", len(lines)),
		logging.String("path", s.cfg.ImagesDir()))
	return nil
}
