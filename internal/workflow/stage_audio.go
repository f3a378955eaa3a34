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

type voiceGenerator interface {
	GenerateAll(ctx context.Context, lines []poem.Line, audioDir string) error
}

// AudioStage voices every poem line into the per-line clip files.
type AudioStage struct {
	cfg       *config.Config
	generator voiceGenerator
	logger    *slog.Logger
}

func NewAudioStage(cfg *config.Config, generator voiceGenerator, logger *slog.Logger) *AudioStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AudioStage{cfg: cfg, generator: generator, logger: logger}
}

func (s *AudioStage) Name() string { return "audio" }

func (s *AudioStage) Fingerprint() (string, error) {
	inputHash, err := fileutil.HashFile(s.cfg.PoemCSV())
	if err != nil {
		return "", err
	}
	parts := append([]string{inputHash, s.cfg.TTS.Command, s.cfg.TTS.ModelPath}, s.cfg.TTS.Voices...)
	return fileutil.HashStrings(parts...), nil
}

func (s *AudioStage) ArtifactPath() string { return s.cfg.AudioDir() }

func (s *AudioStage) ArtifactReady() bool {
	lines, err := poem.ReadLines(s.cfg.PoemCSV())
	if err != nil || len(lines) == 0 {
		return false
	}
	for _, line := range lines {
		if !fileutil.NonEmptyFile(filepath.Join(s.cfg.AudioDir(), poem.AudioFileName(line.Index))) {
			return false
		}
	}
	return true
}

func (s *AudioStage) Run(ctx context.Context) error {
	lines, err := poem.ReadLines(s.cfg.PoemCSV())
	if err != nil {
		return services.Wrap(services.ErrValidation, s.Name(), "read", "", err)
	}
	if err := s.generator.GenerateAll(ctx, lines, s.cfg.AudioDir()); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "lines voiced",
		logging.Int("lines", len(lines)),
		logging.String("path", s.cfg.AudioDir()))
	return nil
}
