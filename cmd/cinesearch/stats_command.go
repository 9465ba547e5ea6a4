package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dataset statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withApplication(func(app *application) error {
				stats := app.service.Stats(cmd.Context())
				if ctx.jsonOutput(cmd) {
					return writeJSON(cmd, stats)
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderKeyValues([][2]string{
					{"Dataset", app.store.Path()},
					{"Titles", strconv.Itoa(stats.TotalTitles)},
					{"Movies", strconv.Itoa(stats.Movies)},
					{"TV shows", strconv.Itoa(stats.TVShows)},
					{"Countries", strconv.Itoa(stats.Countries)},
					{"Years", fmt.Sprintf("%s - %s", formatYear(stats.YearMin), formatYear(stats.YearMax))},
					{"Missing trailers", strconv.Itoa(stats.MissingTrailers)},
					{"Video provider", yesNo(stats.VideoProvider)},
					{"Language model", yesNo(stats.LanguageModel)},
				}))
				return nil
			})
		},
	}
}
