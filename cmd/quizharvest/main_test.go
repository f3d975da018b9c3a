package main

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

const datasetJSON = `[
  {"url": "https://q.test/question/1", "title": "One", "language": "C++", "topic": null,
   "difficulty": "Easy", "description": null, "options": ["0", "1"], "correct_answer": "0"},
  {"url": "https://q.test/question/2", "title": "Two", "language": "Python", "topic": null,
   "difficulty": null, "description": null, "options": [], "correct_answer": "42"}
]
`

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	a := &app{stdout: &out, stderr: &errOut}
	cmd := newRootCmd(a)
	cmd.SetArgs(append([]string{
		"--config", filepath.Join(t.TempDir(), "missing.yaml"),
		"--env-file", filepath.Join(t.TempDir(), "missing.env"),
		"--log-format", "json",
	}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "all_questions.json")
	require.NoError(t, os.WriteFile(path, []byte(datasetJSON), 0o644))
	t.Setenv("QUIZHARVEST_DATASET", path)
	return path
}

func TestStats(t *testing.T) {
	writeDataset(t)

	out, err := execute(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "C++")
	assert.Contains(t, out, "Python")
	assert.Contains(t, out, "50.0%")
}

func TestExport(t *testing.T) {
	writeDataset(t)
	dbPath := filepath.Join(t.TempDir(), "out", "q.db")

	out, err := execute(t, "export", "--sqlite", dbPath)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "exported 2 questions"))

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM questions WHERE multiple_choice = 1`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestStats_CorruptDataset(t *testing.T) {
	path := writeDataset(t)
	require.NoError(t, os.WriteFile(path, []byte("not json"), 0o644))

	_, err := execute(t, "stats")
	assert.Error(t, err)
}

func TestBadLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "stats")
	assert.ErrorContains(t, err, "log level")
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(&buf, "warn", "json")
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	_, err = newLogger(&buf, "info", "xml")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitOK, exitCode(nil))
	assert.Equal(t, exitInterrupted, exitCode(fmt.Errorf("harvest: %w", context.Canceled)))
	assert.Equal(t, exitFault, exitCode(errors.New("boom")))
}
