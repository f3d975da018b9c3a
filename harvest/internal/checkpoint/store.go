// CLAUDE:SUMMARY Resumable dataset file: load prior records, diff discovered URLs against them, append + full atomic rewrite per item.
// Package checkpoint makes harvest runs resumable. The dataset file is the
// only checkpoint: the set of processed URLs is derived from it, and it is
// rewritten in full after every item.
package checkpoint

import (
	"fmt"
	"log/slog"

	"github.com/hazyhaar/quizharvest/harvest/internal/jsonfile"
	"github.com/hazyhaar/quizharvest/quiz"
)

// Store persists a quiz.Dataset at a fixed path.
type Store struct {
	path   string
	logger *slog.Logger
}

// New creates a Store for the dataset file at path.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

// Path returns the dataset file path.
func (s *Store) Path() string { return s.path }

// Load parses the dataset file. A missing file yields an empty dataset.
// A file that does not parse is an error: overwriting it would lose data.
func (s *Store) Load() (*quiz.Dataset, error) {
	data, exists, err := jsonfile.Read(s.path)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: %w", err)
	}
	if !exists {
		s.logger.Info("checkpoint: no dataset yet", "path", s.path)
		return quiz.NewDataset(), nil
	}

	ds, dups, err := quiz.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: load %s: %w", s.path, err)
	}
	if len(dups) > 0 {
		s.logger.Warn("checkpoint: dropped repeated urls", "path", s.path, "count", len(dups))
	}
	s.logger.Info("checkpoint: loaded", "path", s.path, "records", ds.Len())
	return ds, nil
}

// Remaining returns the identifiers of all that ds does not hold yet, in
// the order of all.
func Remaining(all []string, ds *quiz.Dataset) []string {
	out := make([]string, 0, len(all))
	for _, u := range all {
		if !ds.Has(u) {
			out = append(out, u)
		}
	}
	return out
}

// Append adds q to ds and rewrites the whole dataset file.
func (s *Store) Append(ds *quiz.Dataset, q *quiz.Question) error {
	if err := ds.Add(q); err != nil {
		return fmt.Errorf("checkpoint: append: %w", err)
	}
	if err := s.Save(ds); err != nil {
		return err
	}
	s.logger.Info("checkpoint: saved", "records", ds.Len(), "url", q.URL)
	return nil
}

// Save rewrites the dataset file with ds.
func (s *Store) Save(ds *quiz.Dataset) error {
	if err := jsonfile.Write(s.path, ds, 0o644); err != nil {
		return fmt.Errorf("checkpoint: save: %w", err)
	}
	return nil
}
