package catalog

import (
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"cinesearch/internal/logging"
	"cinesearch/internal/services"
)

type record struct {
	title Title
	row   []string
}

// Store is the keyed, process-wide title table.
type Store struct {
	mu      sync.RWMutex
	flushMu sync.Mutex
	path    string
	logger  *slog.Logger
	columns []string
	index   map[string]int
	records []*record
	byID    map[string]int
	dirty   bool
	// generation counts enrichment writes; Flush only marks the store clean
	// when no write landed after its snapshot.
	generation uint64
}

func newStore(logger *slog.Logger) *Store {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Store{
		logger: logger,
		index:  make(map[string]int),
		byID:   make(map[string]int),
	}
}

// NewStore builds an in-memory store from titles, mainly for tests and
// embedding. The store has no backing file.
func NewStore(titles []Title, logger *slog.Logger) *Store {
	store := newStore(logging.NewComponentLogger(logger, "catalog"))
	store.setColumns([]string{
		ColumnID, ColumnType, ColumnTitle, ColumnDirector, ColumnCast, ColumnCountry,
		ColumnDateAdded, ColumnReleaseYear, ColumnRating, ColumnDuration, ColumnListedIn, ColumnDescription,
	})
	for _, t := range titles {
		if _, exists := store.byID[t.ID]; exists || t.ID == "" {
			continue
		}
		rec := &record{title: t, row: make([]string, len(store.columns))}
		if rec.title.Kind == KindUnknown {
			rec.title.Kind = ParseKind(t.Type)
		}
		rec.title.fold()
		store.writeRow(rec)
		store.byID[t.ID] = len(store.records)
		store.records = append(store.records, rec)
	}
	return store
}

func (s *Store) setColumns(header []string) {
	s.columns = append([]string(nil), header...)
	for _, col := range enrichmentColumns {
		found := false
		for _, existing := range s.columns {
			if existing == col {
				found = true
				break
			}
		}
		if !found {
			s.columns = append(s.columns, col)
		}
	}
	s.index = make(map[string]int, len(s.columns))
	for i, col := range s.columns {
		if _, dup := s.index[col]; !dup {
			s.index[col] = i
		}
	}
}

// alignRow trims every cell and pads or truncates to the column count.
func (s *Store) alignRow(row []string) []string {
	out := make([]string, len(s.columns))
	for i := range out {
		if i < len(row) {
			out[i] = strings.TrimSpace(row[i])
		}
	}
	return out
}

func (s *Store) cell(row []string, column string) string {
	if idx, ok := s.index[column]; ok && idx < len(row) {
		return row[idx]
	}
	return ""
}

func (s *Store) recordFromRow(row []string) *record {
	t := Title{
		ID:          s.cell(row, ColumnID),
		Type:        s.cell(row, ColumnType),
		Name:        s.cell(row, ColumnTitle),
		Director:    s.cell(row, ColumnDirector),
		Cast:        s.cell(row, ColumnCast),
		Country:     s.cell(row, ColumnCountry),
		DateAdded:   s.cell(row, ColumnDateAdded),
		ReleaseYear: parseYear(s.cell(row, ColumnReleaseYear)),
		Rating:      s.cell(row, ColumnRating),
		Duration:    s.cell(row, ColumnDuration),
		ListedIn:    s.cell(row, ColumnListedIn),
		Description: s.cell(row, ColumnDescription),
		Enrichment: Enrichment{
			TrailerURL: s.cell(row, ColumnTrailerURL),
			Sentiment:  parseOptionalFloat(s.cell(row, ColumnSentiment)),
			Score:      parseOptionalFloat(s.cell(row, ColumnScore)),
			Critique:   s.cell(row, ColumnCritique),
		},
	}
	t.Kind = ParseKind(t.Type)
	t.fold()
	return &record{title: t, row: row}
}

// writeRow mirrors the record's fields into its CSV row.
func (s *Store) writeRow(rec *record) {
	set := func(column, value string) {
		if idx, ok := s.index[column]; ok && idx < len(rec.row) {
			rec.row[idx] = value
		}
	}
	t := rec.title
	set(ColumnID, t.ID)
	set(ColumnType, t.Type)
	set(ColumnTitle, t.Name)
	set(ColumnDirector, t.Director)
	set(ColumnCast, t.Cast)
	set(ColumnCountry, t.Country)
	set(ColumnDateAdded, t.DateAdded)
	if t.ReleaseYear > 0 {
		set(ColumnReleaseYear, strconv.Itoa(t.ReleaseYear))
	}
	set(ColumnRating, t.Rating)
	set(ColumnDuration, t.Duration)
	set(ColumnListedIn, t.ListedIn)
	set(ColumnDescription, t.Description)
	s.writeEnrichment(rec)
}

func (s *Store) writeEnrichment(rec *record) {
	e := rec.title.Enrichment
	values := map[string]string{
		ColumnTrailerURL: e.TrailerURL,
		ColumnSentiment:  formatOptionalFloat(e.Sentiment),
		ColumnScore:      formatOptionalFloat(e.Score),
		ColumnCritique:   e.Critique,
	}
	for column, value := range values {
		if idx, ok := s.index[column]; ok && idx < len(rec.row) {
			rec.row[idx] = value
		}
	}
}

// Len returns the number of titles.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Path returns the backing CSV path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// Get returns a copy of the title with the given identifier.
func (s *Store) Get(id string) (Title, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	idx, ok := s.byID[id]
	if !ok {
		return Title{}, false
	}
	return snapshot(s.records[idx].title), true
}

// All returns copies of every title in table order.
func (s *Store) All() []Title {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Title, len(s.records))
	for i, rec := range s.records {
		out[i] = snapshot(rec.title)
	}
	return out
}

// Each calls fn for every title in table order until fn returns false. The
// read lock is held for the duration, so fn must not call back into the store.
func (s *Store) Each(fn func(Title) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if !fn(snapshot(rec.title)) {
			return
		}
	}
}

// SetTrailerURL stores url for the title unless a usable URL already exists.
// It reports whether the value was written.
func (s *Store) SetTrailerURL(id, url string) (bool, error) {
	if IsBlank(url) {
		return false, services.Wrap(services.ErrValidation, "catalog", "set trailer", "empty trailer url", nil)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return false, services.Wrap(services.ErrNotFound, "catalog", "set trailer", "unknown title "+id, nil)
	}
	rec := s.records[idx]
	if rec.title.Enrichment.HasTrailer() {
		return false, nil
	}
	rec.title.Enrichment.TrailerURL = url
	s.writeEnrichment(rec)
	s.dirty = true
	s.generation++
	return true, nil
}

// RecordAnalysis stores the latest model-derived sentiment, score, and critique.
func (s *Store) RecordAnalysis(id string, sentiment, score float64, critique string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.byID[id]
	if !ok {
		return services.Wrap(services.ErrNotFound, "catalog", "record analysis", "unknown title "+id, nil)
	}
	rec := s.records[idx]
	rec.title.Enrichment.Sentiment = &sentiment
	rec.title.Enrichment.Score = &score
	rec.title.Enrichment.Critique = critique
	s.writeEnrichment(rec)
	s.dirty = true
	s.generation++
	return nil
}

// MissingTrailerIDs returns identifiers without a usable trailer URL, in table order.
func (s *Store) MissingTrailerIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, rec := range s.records {
		if !rec.title.Enrichment.HasTrailer() {
			ids = append(ids, rec.title.ID)
		}
	}
	return ids
}

// MissingTrailerCount returns how many titles lack a usable trailer URL.
func (s *Store) MissingTrailerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, rec := range s.records {
		if !rec.title.Enrichment.HasTrailer() {
			count++
		}
	}
	return count
}

// FilterByKind returns titles of the given kind.
func (s *Store) FilterByKind(kind Kind) []Title {
	var out []Title
	s.Each(func(t Title) bool {
		if t.Kind == kind {
			out = append(out, t)
		}
		return true
	})
	return out
}

// FilterByYearRange returns titles released within [from, to]. Titles with an
// unknown year never match.
func (s *Store) FilterByYearRange(from, to int) []Title {
	var out []Title
	s.Each(func(t Title) bool {
		if t.HasYear() && t.ReleaseYear >= from && t.ReleaseYear <= to {
			out = append(out, t)
		}
		return true
	})
	return out
}

func snapshot(t Title) Title {
	if t.Enrichment.Sentiment != nil {
		v := *t.Enrichment.Sentiment
		t.Enrichment.Sentiment = &v
	}
	if t.Enrichment.Score != nil {
		v := *t.Enrichment.Score
		t.Enrichment.Score = &v
	}
	return t
}
