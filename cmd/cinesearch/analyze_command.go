package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAnalyzeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "analyze <id>",
		Short: "Show the content analysis of one title",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApplication(func(app *application) error {
				id := strings.TrimSpace(args[0])
				title, err := app.service.Title(cmd.Context(), id)
				if err != nil {
					return err
				}
				res, err := app.service.Analyze(cmd.Context(), id)
				if err != nil {
					return err
				}
				if ctx.jsonOutput(cmd) {
					return writeJSON(cmd, res)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues([][2]string{
					{"Title", title.Title},
					{"Sentiment", formatScore(res.SentimentScore)},
					{"Genres", orDash(strings.Join(res.GenrePrediction, ", "))},
					{"Audience", res.TargetAudience},
					{"Warnings", orDash(strings.Join(res.ContentWarnings, ", "))},
					{"Recommendation", formatScore(res.RecommendationScore)},
					{"Similar", orDash(strings.Join(res.SimilarTitles, ", "))},
					{"Critique", orDash(res.Critique)},
					{"Source", string(res.Source)},
				}))
				return nil
			})
		},
	}
}
