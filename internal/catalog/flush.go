package catalog

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"cinesearch/internal/logging"
)

// Dirty reports whether enrichment changed since the last successful flush.
func (s *Store) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

// Flush writes the table back to its CSV file. Stores without a backing file
// and clean stores are left untouched. The write goes to a temp file that
// replaces the original, guarded by an exclusive lock on "<path>.lock".
// Writes that land while the file is being written keep the store dirty.
func (s *Store) Flush() error {
	if s.path == "" {
		return nil
	}
	s.flushMu.Lock()
	defer s.flushMu.Unlock()

	s.mu.RLock()
	if !s.dirty {
		s.mu.RUnlock()
		return nil
	}
	columns := append([]string(nil), s.columns...)
	rows := make([][]string, len(s.records))
	for i, rec := range s.records {
		rows[i] = append([]string(nil), rec.row...)
	}
	snapshot := s.generation
	s.mu.RUnlock()

	lock := flock.New(s.path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("lock catalog: %w", err)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Debug("catalog unlock failed", logging.Error(err))
		}
	}()

	if err := writeCSV(s.path, columns, rows); err != nil {
		return err
	}

	s.mu.Lock()
	if s.generation == snapshot {
		s.dirty = false
	}
	s.mu.Unlock()

	s.logger.Debug("catalog flushed",
		logging.String("path", s.path),
		logging.Int("title_count", len(rows)))
	return nil
}

func writeCSV(path string, columns []string, rows [][]string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	writer := csv.NewWriter(tmp)
	if err := writer.Write(columns); err != nil {
		cleanup()
		return fmt.Errorf("write header: %w", err)
	}
	if err := writer.WriteAll(rows); err != nil {
		cleanup()
		return fmt.Errorf("write rows: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
