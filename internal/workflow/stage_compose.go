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

type poemComposer interface {
	Compose(ctx context.Context, comments []poem.Comment) ([]poem.Comment, error)
}

// ComposeStage arranges fetched comments into the poem CSV.
type ComposeStage struct {
	cfg      *config.Config
	composer poemComposer
	logger   *slog.Logger
}

func NewComposeStage(cfg *config.Config, composer poemComposer, logger *slog.Logger) *ComposeStage {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &ComposeStage{cfg: cfg, composer: composer, logger: logger}
}

func (s *ComposeStage) Name() string { return "compose" }

func (s *ComposeStage) Fingerprint() (string, error) {
	inputHash, err := fileutil.HashFile(s.cfg.CommentsCSV())
	if err != nil {
		return "", err
	}
	return fileutil.HashStrings(
		inputHash,
		s.cfg.LLM.Model,
		strconv.Itoa(s.cfg.LLM.MinLines),
		strconv.Itoa(s.cfg.LLM.MaxLines),
		strconv.Itoa(s.cfg.LLM.SampleSize),
	), nil
}

func (s *ComposeStage) ArtifactPath() string { return s.cfg.PoemCSV() }

func (s *ComposeStage) ArtifactReady() bool { return fileutil.NonEmptyFile(s.cfg.PoemCSV()) }

func (s *ComposeStage) Run(ctx context.Context) error {
	comments, err := poem.ReadComments(s.cfg.CommentsCSV())
	if err != nil {
		return services.Wrap(services.ErrValidation, s.Name(), "read", "", err)
	}
	selected, err := s.composer.Compose(ctx, comments)
	if err != nil {
		return err
	}
	if err := poem.WriteComments(s.cfg.PoemCSV(), selected); err != nil {
		return services.Wrap(services.ErrConfiguration, s.Name(), "write", "", err)
	}
	s.logger.InfoContext(ctx, "poem written",
		logging.Int("lines", len(selected)),
		logging.String("path", s.cfg.PoemCSV()))
	return nil
}
