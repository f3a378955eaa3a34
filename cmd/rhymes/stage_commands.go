package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sundai-club/reddit-rhymes/internal/assets"
	"github.com/sundai-club/reddit-rhymes/internal/config"
	"github.com/sundai-club/reddit-rhymes/internal/render"
	"github.com/sundai-club/reddit-rhymes/internal/screenshot"
	"github.com/sundai-club/reddit-rhymes/internal/services/llm"
	"github.com/sundai-club/reddit-rhymes/internal/services/reddit"
	"github.com/sundai-club/reddit-rhymes/internal/services/tts"
	"github.com/sundai-club/reddit-rhymes/internal/workflow"
)

type stageBuilder func(*config.Config, *slog.Logger) (workflow.Stage, error)

// newStageCommands exposes each pipeline stage as its own subcommand for
// partial reruns and debugging.
func newStageCommands(ctx *commandContext) []*cobra.Command {
	return []*cobra.Command{
		newSingleStageCommand(ctx, "fetch", "Fetch poetic comments into the workspace",
			func(cfg *config.Config, logger *slog.Logger) (workflow.Stage, error) {
				fetcher, err := reddit.NewFetcher(cfg.Reddit, logger)
				if err != nil {
					return nil, err
				}
				return workflow.NewFetchStage(cfg, fetcher, logger), nil
			}),
		newSingleStageCommand(ctx, "compose", "Compose the poem from fetched comments",
			func(cfg *config.Config, logger *slog.Logger) (workflow.Stage, error) {
				composer, err := llm.NewComposer(cfg.LLM, logger)
				if err != nil {
					return nil, err
				}
				return workflow.NewComposeStage(cfg, composer, logger), nil
			}),
		newSingleStageCommand(ctx, "screenshots", "Render one comment card per poem line",
			func(cfg *config.Config, logger *slog.Logger) (workflow.Stage, error) {
				renderer := screenshot.NewRenderer(cfg.FFmpegBinary(), cfg.Screenshots.FontFile, logger)
				return workflow.NewScreenshotStage(cfg, renderer, logger), nil
			}),
		newSingleStageCommand(ctx, "audio", "Voice every poem line into clip files",
			func(cfg *config.Config, logger *slog.Logger) (workflow.Stage, error) {
				generator, err := tts.NewGenerator(cfg.TTS, logger)
				if err != nil {
					return nil, err
				}
				return workflow.NewAudioStage(cfg, generator, logger), nil
			}),
		newSingleStageCommand(ctx, "video", "Assemble and encode the final video",
			func(cfg *config.Config, logger *slog.Logger) (workflow.Stage, error) {
				resolver := assets.NewResolver(cfg.FFprobeBinary(), cfg.Pipeline.ProbeConcurrency)
				driver := render.NewDriver(
					cfg.FFmpegBinary(),
					cfg.FFprobeBinary(),
					time.Duration(cfg.Render.EncodeTimeoutSeconds)*time.Second,
					cfg.Render.DurationTolerance,
					logger,
				)
				return workflow.NewVideoStage(cfg, resolver, driver, logger), nil
			}),
	}
}

func newSingleStageCommand(ctx *commandContext, name, short string, build stageBuilder) *cobra.Command {
	return &cobra.Command{
		Use:   name,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspaceLock(func(cfg *config.Config) error {
				logger, err := ctx.logger()
				if err != nil {
					return err
				}
				store, err := ctx.openStore()
				if err != nil {
					return err
				}
				defer store.Close()

				stage, err := build(cfg, logger)
				if err != nil {
					return err
				}
				manager := workflow.NewManager(cfg, store, []workflow.Stage{stage}, logger)
				if _, err := manager.Execute(cmd.Context(), uuid.NewString()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Stage %s complete: %s\n", stage.Name(), stage.ArtifactPath())
				return nil
			})
		},
	}
}
