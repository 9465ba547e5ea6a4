package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"cinesearch/internal/api"
	"cinesearch/internal/recommend"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	req := api.NewRecommendationRequest()
	var fromYear, toYear int
	var noTrailers, noAnalysis bool

	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank the catalog against your preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("from") || cmd.Flags().Changed("to") {
				req.Preferences.YearRange = &recommend.YearRange{From: fromYear, To: toYear}
			}
			req.Preferences.IncludeTrailers = !noTrailers
			req.Preferences.IncludeAnalysis = !noAnalysis
			return ctx.withApplication(func(app *application) error {
				resp, err := app.service.Recommend(cmd.Context(), req)
				if err != nil {
					return err
				}
				if ctx.jsonOutput(cmd) {
					return writeJSON(cmd, resp)
				}
				printRecommendations(cmd, resp)
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&req.Preferences.PreferredGenres, "genre", "g", nil, "Preferred genres (repeatable)")
	cmd.Flags().StringSliceVarP(&req.Preferences.PreferredRatings, "rating", "r", nil, "Preferred ratings, e.g. PG-13 (repeatable)")
	cmd.Flags().IntVar(&fromYear, "from", 0, "Earliest release year")
	cmd.Flags().IntVar(&toYear, "to", 9999, "Latest release year")
	cmd.Flags().IntVarP(&req.Limit, "limit", "n", 0, "Maximum recommendations")
	cmd.Flags().BoolVar(&noTrailers, "no-trailers", false, "Skip trailer search")
	cmd.Flags().BoolVar(&noAnalysis, "no-analysis", false, "Omit analysis from the output")
	return cmd
}

func printRecommendations(cmd *cobra.Command, resp api.RecommendationResponse) {
	out := cmd.OutOrStdout()
	if len(resp.Recommendations) == 0 {
		fmt.Fprintln(out, "No titles scored above the recommendation threshold")
		return
	}
	rows := make([][]string, 0, len(resp.Recommendations))
	for i, rec := range resp.Recommendations {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			rec.Title.ID,
			rec.Title.Title,
			formatYear(rec.Title.ReleaseYear),
			formatScore(rec.Score),
			rec.Reason,
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"#", "ID", "Title", "Year", "Score", "Reason"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignLeft},
	))
	fmt.Fprintf(out, "%d of %d qualifying title(s)\n", len(resp.Recommendations), resp.TotalCount)
}
