// CLAUDE:SUMMARY Exports a quiz dataset into SQLite (questions, question_options, harvest_runs), upserting by URL.
// Package export writes a harvested dataset into an SQLite database for
// querying. Exports are repeatable: questions upsert by URL and their
// options are replaced.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/hazyhaar/quizharvest/harvest/internal/dbopen"
	"github.com/hazyhaar/quizharvest/quiz"
)

// Schema creates the export tables.
const Schema = `
CREATE TABLE IF NOT EXISTS harvest_runs (
	run_id      TEXT PRIMARY KEY,
	exported_at INTEGER NOT NULL,
	total       INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
	url             TEXT PRIMARY KEY,
	title           TEXT,
	language        TEXT,
	topic           TEXT,
	difficulty      TEXT,
	description     TEXT,
	correct_answer  TEXT,
	multiple_choice INTEGER NOT NULL DEFAULT 0,
	run_id          TEXT NOT NULL REFERENCES harvest_runs(run_id)
);

CREATE TABLE IF NOT EXISTS question_options (
	url      TEXT NOT NULL REFERENCES questions(url) ON DELETE CASCADE,
	position INTEGER NOT NULL,
	text     TEXT NOT NULL,
	PRIMARY KEY (url, position)
);

CREATE INDEX IF NOT EXISTS idx_questions_language ON questions(language);
CREATE INDEX IF NOT EXISTS idx_questions_difficulty ON questions(difficulty);
`

const upsertQuestion = `
INSERT INTO questions (url, title, language, topic, difficulty, description, correct_answer, multiple_choice, run_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(url) DO UPDATE SET
	title = excluded.title,
	language = excluded.language,
	topic = excluded.topic,
	difficulty = excluded.difficulty,
	description = excluded.description,
	correct_answer = excluded.correct_answer,
	multiple_choice = excluded.multiple_choice,
	run_id = excluded.run_id`

// SQLite writes every question of ds in one transaction, recorded under
// runID. The schema must exist (see Schema).
func SQLite(ctx context.Context, db *sql.DB, ds *quiz.Dataset, runID string) error {
	return dbopen.RunTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO harvest_runs (run_id, exported_at, total) VALUES (?, ?, ?)`,
			runID, time.Now().Unix(), ds.Len()); err != nil {
			return fmt.Errorf("export: insert run: %w", err)
		}

		qStmt, err := tx.PrepareContext(ctx, upsertQuestion)
		if err != nil {
			return fmt.Errorf("export: prepare: %w", err)
		}
		defer qStmt.Close()
		oStmt, err := tx.PrepareContext(ctx, `INSERT INTO question_options (url, position, text) VALUES (?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("export: prepare: %w", err)
		}
		defer oStmt.Close()

		for _, q := range ds.Questions() {
			if _, err := qStmt.ExecContext(ctx,
				q.URL, nullable(q.Title), nullable(q.Language), nullable(q.Topic),
				nullable(q.Difficulty), nullable(q.Description), nullable(q.CorrectAnswer),
				q.MultipleChoice(), runID); err != nil {
				return fmt.Errorf("export: upsert %s: %w", q.URL, err)
			}
			if _, err := tx.ExecContext(ctx, `DELETE FROM question_options WHERE url = ?`, q.URL); err != nil {
				return fmt.Errorf("export: clear options %s: %w", q.URL, err)
			}
			for i, opt := range q.Options {
				if _, err := oStmt.ExecContext(ctx, q.URL, i, opt); err != nil {
					return fmt.Errorf("export: option %s #%d: %w", q.URL, i, err)
				}
			}
		}
		return nil
	})
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
