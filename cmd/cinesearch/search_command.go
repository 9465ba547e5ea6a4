package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"cinesearch/internal/api"
)

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var req api.SearchRequest

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the catalog",
		Long: "Search titles by substring. --type narrows matching to one column " +
			"(title, director, cast, description, country, listed_in).",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Query = strings.Join(args, " ")
			return ctx.withApplication(func(app *application) error {
				resp, err := app.service.Search(cmd.Context(), req)
				if err != nil {
					return err
				}
				if ctx.jsonOutput(cmd) {
					return writeJSON(cmd, resp)
				}
				printSearch(cmd, resp, req.IncludeAnalysis)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&req.Scope, "type", "t", "all", "Column to search")
	cmd.Flags().IntVarP(&req.Limit, "limit", "n", 0, "Maximum results (default from config)")
	cmd.Flags().BoolVar(&req.IncludeTrailers, "trailers", false, "Search trailers for results without one")
	cmd.Flags().BoolVar(&req.IncludeAnalysis, "analysis", false, "Include content analysis")
	cmd.Flags().BoolVar(&req.SmartQuery, "smart", false, "Refine results with the language model when configured")
	return cmd
}

func printSearch(cmd *cobra.Command, resp api.SearchResponse, withAnalysis bool) {
	out := cmd.OutOrStdout()
	if len(resp.Results) == 0 {
		fmt.Fprintf(out, "No titles match %q\n", resp.Query)
		return
	}

	headers := []string{"#", "ID", "Title", "Type", "Year", "Trailer"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
	if withAnalysis {
		headers = append(headers, "Genres", "Score")
		aligns = append(aligns, alignLeft, alignRight)
	}
	rows := make([][]string, 0, len(resp.Results))
	for i, item := range resp.Results {
		row := []string{
			strconv.Itoa(i + 1),
			item.Title.ID,
			item.Title.Title,
			orDash(item.Title.Type),
			formatYear(item.Title.ReleaseYear),
			trailerCell(item),
		}
		if withAnalysis {
			genres, score := "-", "-"
			if item.Analysis != nil {
				genres = orDash(strings.Join(item.Analysis.GenrePrediction, ", "))
				score = formatScore(item.Analysis.RecommendationScore)
			}
			row = append(row, genres, score)
		}
		rows = append(rows, row)
	}
	fmt.Fprintln(out, renderTable(headers, rows, aligns))
	suffix := ""
	if resp.Refined {
		suffix = " (refined)"
	}
	fmt.Fprintf(out, "%d result(s) for %q in %s%s\n", resp.TotalCount, resp.Query, resp.Scope, suffix)
}

func trailerCell(item api.EnrichedTitle) string {
	if item.Title.TrailerURL != "" {
		return item.Title.TrailerURL
	}
	return string(item.TrailerOutcome)
}
