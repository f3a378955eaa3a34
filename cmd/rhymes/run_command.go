package main

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sundai-club/reddit-rhymes/internal/config"
	"github.com/sundai-club/reddit-rhymes/internal/workflow"
)

func newRunCommand(ctx *commandContext) *cobra.Command {
	var resume bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the full pipeline: fetch, compose, screenshots, audio, video",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withWorkspaceLock(func(cfg *config.Config) error {
				if cmd.Flags().Changed("resume") {
					cfg.Pipeline.Resume = resume
				}

				logger, err := ctx.logger()
				if err != nil {
					return err
				}
				store, err := ctx.openStore()
				if err != nil {
					return err
				}
				defer store.Close()

				stages, err := workflow.BuildStages(cfg, logger)
				if err != nil {
					return err
				}

				manager := workflow.NewManager(cfg, store, stages, logger)
				run, err := manager.Execute(cmd.Context(), uuid.NewString())
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Run %s complete: %d lines, %s\n", run.ID, run.LineCount, run.OutputPath)
				if run.Title != "" {
					fmt.Fprintf(out, "Title: %s\n", run.Title)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&resume, "resume", false, "Skip stages whose artifacts are already current")
	return cmd
}
