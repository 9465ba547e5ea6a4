package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"cinesearch/internal/logging"
	"cinesearch/internal/services"
)

// Column names of the catalog CSV.
const (
	ColumnID          = "show_id"
	ColumnType        = "type"
	ColumnTitle       = "title"
	ColumnDirector    = "director"
	ColumnCast        = "cast"
	ColumnCountry     = "country"
	ColumnDateAdded   = "date_added"
	ColumnReleaseYear = "release_year"
	ColumnRating      = "rating"
	ColumnDuration    = "duration"
	ColumnListedIn    = "listed_in"
	ColumnDescription = "description"
	ColumnTrailerURL  = "trailer_url"
	ColumnSentiment   = "sentiment_llm"
	ColumnScore       = "score_llm"
	ColumnCritique    = "critique_llm"
)

var enrichmentColumns = []string{ColumnTrailerURL, ColumnSentiment, ColumnScore, ColumnCritique}

// Load reads the catalog CSV at path into a Store. Cells are trimmed, exact
// duplicate rows are dropped, unparseable release years become unknown, and
// missing enrichment columns are added empty. Rows repeating an earlier
// identifier are dropped with a warning.
func Load(path string, logger *slog.Logger) (*Store, error) {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, services.Wrap(services.ErrConfiguration, "catalog", "load", "data file not found: "+path, err)
		}
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer file.Close()

	store, err := Read(file, logger)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	store.path = path
	store.logger.Info("catalog loaded",
		logging.String("path", path),
		logging.Int("title_count", store.Len()),
		logging.Int("missing_trailers", store.MissingTrailerCount()))
	return store, nil
}

// Read parses catalog CSV data from r. The returned store has no backing file,
// so Flush is a no-op until one is attached through Load.
func Read(r io.Reader, logger *slog.Logger) (*Store, error) {
	store := newStore(logging.NewComponentLogger(logger, "catalog"))

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, services.Wrap(services.ErrValidation, "catalog", "read", "empty catalog", nil)
		}
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}
	store.setColumns(header)
	if _, ok := store.index[ColumnTitle]; !ok {
		return nil, services.Wrap(services.ErrValidation, "catalog", "read", "missing required column "+ColumnTitle, nil)
	}

	seenRows := make(map[string]struct{})
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		row = store.alignRow(row)
		key := strings.Join(row, "\x1f")
		if _, dup := seenRows[key]; dup {
			continue
		}
		seenRows[key] = struct{}{}

		rec := store.recordFromRow(row)
		if rec.title.ID == "" {
			rec.title.ID = "row-" + strconv.Itoa(line)
		}
		if _, exists := store.byID[rec.title.ID]; exists {
			logging.WarnWithContext(store.logger, "duplicate title identifier dropped", "catalog_duplicate_id",
				logging.String(logging.FieldTitleID, rec.title.ID),
				logging.Int("line", line),
				logging.String(logging.FieldErrorHint, "deduplicate show_id values in the data file"),
				logging.String(logging.FieldImpact, "later row is ignored for this session"),
			)
			continue
		}
		store.byID[rec.title.ID] = len(store.records)
		store.records = append(store.records, rec)
	}
	return store, nil
}

// parseYear accepts "2019", " 2019 " and float renderings such as "2019.0".
func parseYear(raw string) int {
	raw = strings.TrimSpace(raw)
	if IsBlank(raw) {
		return 0
	}
	if year, err := strconv.Atoi(raw); err == nil && year > 0 {
		return year
	}
	if value, err := strconv.ParseFloat(raw, 64); err == nil && value > 0 && !math.IsInf(value, 0) {
		return int(value)
	}
	return 0
}

func parseOptionalFloat(raw string) *float64 {
	if IsBlank(raw) {
		return nil
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(value) {
		return nil
	}
	return &value
}

func formatOptionalFloat(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}
