package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/sundai-club/reddit-rhymes/internal/assets"
	"github.com/sundai-club/reddit-rhymes/internal/poem"
	"github.com/sundai-club/reddit-rhymes/internal/timeline"
)

const snippetLength = 44

// newTimelineCommand previews the playback schedule without encoding.
func newTimelineCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "timeline",
		Short: "Show the playback schedule for the composed poem",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			lines, err := poem.ReadLines(cfg.PoemCSV())
			if err != nil {
				return err
			}

			resolver := assets.NewResolver(cfg.FFprobeBinary(), cfg.Pipeline.ProbeConcurrency)
			resolved, err := resolver.Resolve(cmd.Context(), cfg.AudioDir(), cfg.ImagesDir(), lines)
			if err != nil {
				return err
			}

			durations := make([]float64, len(resolved))
			for i, asset := range resolved {
				durations[i] = asset.Audio.Duration
			}
			tl, err := timeline.Build(durations, timeline.Options{
				Pause: cfg.Timing.LinePause,
				Intro: cfg.Timing.Intro,
				Outro: cfg.Timing.Outro,
			})
			if err != nil {
				return err
			}

			rows := make([][]string, 0, len(tl.Entries))
			for _, entry := range tl.Entries {
				rows = append(rows, []string{
					strconv.Itoa(entry.Index + 1),
					formatSeconds(entry.Start),
					formatSeconds(entry.End),
					formatSeconds(entry.Duration()),
					snippet(lines[entry.Index].Comment.Text),
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable(
				[]string{"#", "Start", "End", "Length", "Line"},
				rows,
				[]columnAlignment{alignRight, alignRight, alignRight, alignRight, alignLeft},
			))
			fmt.Fprintf(out, "Total: %s across %d lines\n", formatSeconds(tl.Total), len(tl.Entries))
			return nil
		},
	}
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 2, 64) + "s"
}

func snippet(text string) string {
	if len(text) <= snippetLength {
		return text
	}
	return text[:snippetLength-1] + "…"
}
