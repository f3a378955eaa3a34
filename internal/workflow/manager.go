package workflow

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sundai-club/reddit-rhymes/internal/config"
	"github.com/sundai-club/reddit-rhymes/internal/logging"
	"github.com/sundai-club/reddit-rhymes/internal/poem"
	"github.com/sundai-club/reddit-rhymes/internal/runstore"
	"github.com/sundai-club/reddit-rhymes/internal/services"
)

const maxTitleLength = 80

// Manager runs the pipeline stages in order, recording progress and stage
// artifacts in the run store. With resume enabled, a stage whose recorded
// fingerprint matches its current inputs and whose product is intact on disk
// is skipped.
type Manager struct {
	cfg    *config.Config
	store  *runstore.Store
	stages []Stage
	resume bool
	logger *slog.Logger
}

func NewManager(cfg *config.Config, store *runstore.Store, stages []Stage, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		cfg:    cfg,
		store:  store,
		stages: stages,
		resume: cfg.Pipeline.Resume,
		logger: logger.With(logging.String(logging.FieldComponent, "workflow")),
	}
}

// Execute runs every stage for one pipeline invocation identified by runID.
// The run record reflects the outcome either way: completed with line count
// and output path, or failed with the offending stage's message.
func (m *Manager) Execute(ctx context.Context, runID string) (*runstore.Run, error) {
	ctx = services.WithRunID(ctx, runID)
	logger := m.logger.With(logging.String(logging.FieldRunID, runID))

	run, err := m.store.CreateRun(ctx, runID, "")
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "create-run", "", err)
	}
	run.Status = runstore.StatusRunning
	if err := m.store.UpdateRun(ctx, run); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workflow", "update-run", "", err)
	}

	for _, stage := range m.stages {
		if err := m.executeStage(ctx, logger, stage); err != nil {
			run.Status = runstore.StatusFailed
			run.ErrorMessage = services.Message(err)
			if updateErr := m.store.UpdateRun(ctx, run); updateErr != nil {
				logger.Error("failed to persist run failure", logging.Error(updateErr))
			}
			return run, err
		}
	}

	m.finishRun(ctx, run)
	if err := m.store.UpdateRun(ctx, run); err != nil {
		return run, services.Wrap(services.ErrConfiguration, "workflow", "update-run", "", err)
	}
	logger.InfoContext(ctx, "run complete",
		logging.Int("lines", run.LineCount),
		logging.String("output", run.OutputPath))
	return run, nil
}

func (m *Manager) executeStage(ctx context.Context, logger *slog.Logger, stage Stage) error {
	ctx = services.WithStage(ctx, stage.Name())
	stageLogger := logger.With(logging.String(logging.FieldStage, stage.Name()))

	fingerprint, err := stage.Fingerprint()
	if err != nil {
		// Inputs not in place yet; the stage itself reports the real problem.
		fingerprint = ""
	}

	if m.resume && fingerprint != "" {
		if skip, skipErr := m.canSkip(ctx, stage, fingerprint); skipErr != nil {
			stageLogger.Warn("artifact lookup failed, running stage", logging.Error(skipErr))
		} else if skip {
			stageLogger.InfoContext(ctx, "stage skipped",
				logging.String(logging.FieldEventType, "stage_skipped"),
				logging.String("artifact", stage.ArtifactPath()))
			return nil
		}
	}

	started := time.Now()
	stageLogger.InfoContext(ctx, "stage started",
		logging.String(logging.FieldEventType, "stage_start"))

	if err := stage.Run(ctx); err != nil {
		stageLogger.ErrorContext(ctx, "stage failed",
			logging.String(logging.FieldEventType, "stage_failed"),
			logging.Duration("elapsed", time.Since(started)),
			logging.Error(err))
		return err
	}

	if fingerprint == "" {
		// Inputs exist now that the predecessors ran.
		fingerprint, _ = stage.Fingerprint()
	}
	if fingerprint != "" {
		if err := m.store.RecordArtifact(ctx, stage.Name(), fingerprint, stage.ArtifactPath()); err != nil {
			stageLogger.Warn("failed to record artifact", logging.Error(err))
		}
	}

	stageLogger.InfoContext(ctx, "stage complete",
		logging.String(logging.FieldEventType, "stage_complete"),
		logging.Duration("elapsed", time.Since(started)))
	return nil
}

func (m *Manager) canSkip(ctx context.Context, stage Stage, fingerprint string) (bool, error) {
	artifact, err := m.store.LookupArtifact(ctx, stage.Name())
	if err != nil {
		return false, err
	}
	if artifact == nil || artifact.Fingerprint != fingerprint {
		return false, nil
	}
	return stage.ArtifactReady(), nil
}

func (m *Manager) finishRun(ctx context.Context, run *runstore.Run) {
	run.Status = runstore.StatusCompleted
	run.OutputPath = m.cfg.OutputPath()
	if lines, err := poem.ReadLines(m.cfg.PoemCSV()); err == nil {
		run.LineCount = len(lines)
		run.Title = deriveTitle(lines)
	}
}

// deriveTitle promotes the first poem line to a display title.
func deriveTitle(lines []poem.Line) string {
	if len(lines) == 0 {
		return ""
	}
	title := cases.Title(language.English).String(lines[0].Comment.Text)
	if len(title) > maxTitleLength {
		title = title[:maxTitleLength]
	}
	return title
}
