package workflow

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/sundai-club/reddit-rhymes/internal/config"
	"github.com/sundai-club/reddit-rhymes/internal/fileutil"
	"github.com/sundai-club/reddit-rhymes/internal/logging"
	"github.com/sundai-club/reddit-rhymes/internal/poem"
	"github.com/sundai-club/reddit-rhymes/internal/services"
)

type commentSource interface {
	Fetch(ctx context.Context) ([]poem.Comment, error)
}

// FetchStage pulls candidate comments and writes the comment CSV.
type FetchStage struct {
	cfg    *config.Config
	source commentSource
	logger *slog.Logger
}

func NewFetchStage(cfg *config.Config, source commentSource, logger *slog.Logger) *FetchStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &FetchStage{cfg: cfg, source: source, logger: logger}
}

func (s *FetchStage) Name() string { return "fetch" }

func (s *FetchStage) Fingerprint() (string, error) {
	parts := append([]string{}, s.cfg.Reddit.Subreddits...)
	parts = append(parts, strconv.Itoa(s.cfg.Reddit.FetchLimit))
	return fileutil.HashStrings(parts...), nil
}

func (s *FetchStage) ArtifactPath() string { return s.cfg.CommentsCSV() }

func (s *FetchStage) ArtifactReady() bool { return fileutil.NonEmptyFile(s.cfg.CommentsCSV()) }

func (s *FetchStage) Run(ctx context.Context) error {
	comments, err := s.source.Fetch(ctx)
	if err != nil {
		return err
	}
	if err := poem.WriteComments(s.cfg.CommentsCSV(), comments); err != nil {
		return services.Wrap(services.ErrConfiguration, s.Name(), "write", "", err)
	}
	s.logger.InfoContext(ctx, "comments written",
		logging.Int("comments", len(comments)),
		logging.String("path", s.cfg.CommentsCSV()))
	return nil
}
