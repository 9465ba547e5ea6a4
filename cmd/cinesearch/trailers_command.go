package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cinesearch/internal/services/youtube"
)

func newTrailersCommand(ctx *commandContext) *cobra.Command {
	trailersCmd := &cobra.Command{
		Use:   "trailers",
		Short: "Trailer maintenance and related videos",
	}
	trailersCmd.AddCommand(newTrailersFillCommand(ctx))
	trailersCmd.AddCommand(newTrailersRelatedCommand(ctx))
	return trailersCmd
}

func newTrailersFillCommand(ctx *commandContext) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "fill",
		Short: "Search trailers for titles that have none and save them to the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApplication(func(app *application) error {
				report := app.service.FillTrailers(cmd.Context(), limit)
				if ctx.jsonOutput(cmd) {
					return writeJSON(cmd, report)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues([][2]string{
					{"Updated", strconv.Itoa(report.Updated)},
					{"Failed", strconv.Itoa(report.Failed)},
					{"Skipped", strconv.Itoa(report.Skipped)},
					{"Missing before", strconv.Itoa(report.MissingBefore)},
					{"Missing after", strconv.Itoa(report.MissingAfter)},
					{"Message", orDash(report.Message)},
				}))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Titles to process (default trailers.fill_batch_size)")
	return cmd
}

func newTrailersRelatedCommand(ctx *commandContext) *cobra.Command {
	var maxResults int
	cmd := &cobra.Command{
		Use:   "related <id>",
		Short: "List review and analysis videos about a title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApplication(func(app *application) error {
				videos, err := app.service.RelatedVideos(cmd.Context(), strings.TrimSpace(args[0]), maxResults)
				if err != nil {
					return err
				}
				if ctx.jsonOutput(cmd) {
					return writeJSON(cmd, videos)
				}
				out := cmd.OutOrStdout()
				if len(videos) == 0 {
					fmt.Fprintln(out, "No related videos (is youtube.api_key configured?)")
					return nil
				}
				rows := make([][]string, 0, len(videos))
				for _, v := range videos {
					rows = append(rows, []string{
						v.Title,
						orDash(v.ChannelTitle),
						strconv.FormatInt(v.ViewCount, 10),
						youtube.WatchURL(v.ID),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Video", "Channel", "Views", "URL"},
					rows,
					[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft},
				))
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&maxResults, "max", "n", 0, "Maximum videos")
	return cmd
}
