package harvest

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	_ "modernc.org/sqlite"

	"github.com/hazyhaar/quizharvest/harvest/internal/checkpoint"
	"github.com/hazyhaar/quizharvest/harvest/internal/dbopen"
	"github.com/hazyhaar/quizharvest/harvest/internal/export"
	"github.com/hazyhaar/quizharvest/harvest/internal/idgen"
	"github.com/hazyhaar/quizharvest/harvest/internal/report"
	"github.com/hazyhaar/quizharvest/quiz"
)

// LoadDataset reads the dataset file at path. A missing file is an empty
// dataset.
func LoadDataset(path string, logger *slog.Logger) (*quiz.Dataset, error) {
	return checkpoint.New(path, logger).Load()
}

// ExportSQLite writes ds into the SQLite database at dbPath, creating it if
// needed, and returns the export's run ID.
func ExportSQLite(ctx context.Context, dbPath string, ds *quiz.Dataset) (string, error) {
	db, err := dbopen.Open(dbPath, dbopen.WithMkdirAll(), dbopen.WithSchema(export.Schema))
	if err != nil {
		return "", fmt.Errorf("harvest: export: %w", err)
	}
	defer db.Close()

	runID := idgen.RunID()
	if err := export.SQLite(ctx, db, ds, runID); err != nil {
		return "", err
	}
	return runID, nil
}

// WriteSummary renders the tally tables to w.
func WriteSummary(w io.Writer, t quiz.Tally) error {
	return report.WriteSummary(w, t)
}
