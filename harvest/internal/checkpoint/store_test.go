package checkpoint

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/quizharvest/quiz"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "all_questions.json"), nil)
}

func TestLoad_MissingFileIsEmpty(t *testing.T) {
	ds, err := testStore(t).Load()
	require.NoError(t, err)
	assert.Equal(t, 0, ds.Len())
}

func TestLoad_CorruptFileIsError(t *testing.T) {
	s := testStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte(`[{"url": `), 0o644))
	_, err := s.Load()
	assert.Error(t, err)
}

func TestRemaining_PreservesOrder(t *testing.T) {
	ds := quiz.NewDataset()
	require.NoError(t, ds.Add(quiz.NewQuestion("b")))
	require.NoError(t, ds.Add(quiz.NewQuestion("d")))

	got := Remaining([]string{"a", "b", "c", "d", "e"}, ds)
	assert.Equal(t, []string{"a", "c", "e"}, got)

	assert.Empty(t, Remaining([]string{"b", "d"}, ds))
}

func TestAppend_PersistsFullSnapshot(t *testing.T) {
	s := testStore(t)
	ds, err := s.Load()
	require.NoError(t, err)

	q1 := quiz.NewQuestion("https://example.com/question/1")
	q1.Title = quiz.Str("One")
	require.NoError(t, s.Append(ds, q1))
	require.NoError(t, s.Append(ds, quiz.NewQuestion("https://example.com/question/2")))

	reloaded, err := s.Load()
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.Len())
	assert.Equal(t, "https://example.com/question/1", reloaded.Questions()[0].URL)
	assert.Equal(t, "One", *reloaded.Questions()[0].Title)
}

func TestAppend_RefusesDuplicate(t *testing.T) {
	s := testStore(t)
	ds := quiz.NewDataset()
	require.NoError(t, s.Append(ds, quiz.NewQuestion("a")))

	err := s.Append(ds, quiz.NewQuestion("a"))
	require.ErrorIs(t, err, quiz.ErrDuplicateURL)

	reloaded, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, reloaded.Len())
}

// A process killed right after item k was appended resumes at k+1.
func TestResumeAfterCrash(t *testing.T) {
	all := []string{"u1", "u2", "u3", "u4"}
	s := testStore(t)

	ds, err := s.Load()
	require.NoError(t, err)
	for _, u := range Remaining(all, ds)[:2] {
		require.NoError(t, s.Append(ds, quiz.NewQuestion(u)))
	}

	// New process: fresh store on the same file.
	restarted := New(s.Path(), nil)
	ds2, err := restarted.Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"u3", "u4"}, Remaining(all, ds2))
}
