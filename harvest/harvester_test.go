package harvest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/quizharvest/harvest/internal/static"
)

const base = "https://quiz.test"

var (
	qa = base + "/question/a"
	qb = base + "/question/b"
	qc = base + "/question/c"
)

const listingHTML = `<html><body>
<nav><a href="/">Home</a><a href="/about">About</a></nav>
<ul>
  <li><a href="/question/a">A</a></li>
  <li><a href="/question/b">B</a></li>
  <li><a href="/question/a">A again</a></li>
  <li><a href="https://quiz.test/question/c">C</a></li>
</ul>
</body></html>`

func questionHTML(title, difficulty string) string {
	return `<html><body><h1>` + title + `</h1><span>` + difficulty + `</span>
<svg><title>python</title></svg><code>print(1)</code></body></html>`
}

func newSite(listing string) *static.Site {
	return static.NewSite(map[string]string{
		base:                "<html><body><h1>home</h1></body></html>",
		base + "/questions": listing,
		qa:                  questionHTML("A", "Easy"),
		qb:                  questionHTML("B", "Medium"),
		qc:                  questionHTML("C", "Hard"),
	})
}

type trackedPage struct {
	*static.Page
	closes     int
	onNavigate func(url string)
}

func (t *trackedPage) Navigate(ctx context.Context, url string) error {
	if t.onNavigate != nil {
		t.onNavigate(url)
	}
	return t.Page.Navigate(ctx, url)
}

func (t *trackedPage) Close() error {
	t.closes++
	return t.Page.Close()
}

type okConfirmer struct{}

func (okConfirmer) Confirm(ctx context.Context, prompt string) error { return nil }

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func testConfig(t *testing.T) *Config {
	t.Helper()
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Site.BaseURL = base
	cfg.Files.Cookies = filepath.Join(dir, "cookies.json")
	cfg.Files.Dataset = filepath.Join(dir, "all_questions.json")
	cfg.Timing = TimingConfig{
		EntrySettle:   time.Millisecond,
		ListingWait:   time.Millisecond,
		ListingSettle: time.Millisecond,
		PageWait:      time.Millisecond,
		RevealTimeout: time.Millisecond,
		ItemDelay:     time.Millisecond,
	}
	return cfg
}

// run executes one harvest against site with a fresh page.
func run(ctx context.Context, t *testing.T, cfg *Config, site *static.Site, tweak func(*trackedPage)) (*Result, *trackedPage, error) {
	t.Helper()
	tp := &trackedPage{Page: static.NewMemory(site, static.WithLogger(quiet()))}
	if tweak != nil {
		tweak(tp)
	}
	open := func(ctx context.Context) (Page, error) { return tp, nil }
	h := New(cfg, open, WithLogger(quiet()), WithConfirmer(okConfirmer{}))
	res, err := h.Run(ctx)
	return res, tp, err
}

func urls(t *testing.T, path string) []string {
	t.Helper()
	ds, err := LoadDataset(path, quiet())
	require.NoError(t, err)
	var out []string
	for _, q := range ds.Questions() {
		out = append(out, q.URL)
	}
	return out
}

func TestRun_HarvestsInListingOrderThenResumesIdempotently(t *testing.T) {
	cfg := testConfig(t)
	site := newSite(listingHTML)

	res, tp, err := run(context.Background(), t, cfg, site, nil)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, res.State)
	assert.Equal(t, 3, res.Discovered)
	assert.Equal(t, 3, res.Harvested)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, tp.closes)
	assert.Equal(t, 3, res.Tally.ByLanguage["Python"])
	assert.Equal(t, []string{qa, qb, qc}, urls(t, cfg.Files.Dataset))

	before, err := os.ReadFile(cfg.Files.Dataset)
	require.NoError(t, err)

	res, _, err = run(context.Background(), t, cfg, site, nil)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, res.State)
	assert.Zero(t, res.Harvested)
	assert.Zero(t, res.Remaining)

	after, err := os.ReadFile(cfg.Files.Dataset)
	require.NoError(t, err)
	assert.Equal(t, before, after)
	assert.Equal(t, 1, site.Hits(qa), "already harvested pages are not visited again")
}

func TestRun_LimitThenResume(t *testing.T) {
	cfg := testConfig(t)
	cfg.Run.Limit = 2
	site := newSite(listingHTML)

	res, _, err := run(context.Background(), t, cfg, site, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Harvested)
	assert.Equal(t, []string{qa, qb}, urls(t, cfg.Files.Dataset))

	cfg.Run.Limit = 0
	res, _, err = run(context.Background(), t, cfg, site, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Harvested)
	assert.Equal(t, []string{qa, qb, qc}, urls(t, cfg.Files.Dataset))
}

func TestRun_EmptyListingIsIdle(t *testing.T) {
	cfg := testConfig(t)
	site := newSite(`<html><body><p>Please sign in</p><a href="/login">Login</a></body></html>`)

	res, tp, err := run(context.Background(), t, cfg, site, nil)
	require.NoError(t, err)
	assert.Equal(t, StateIdle, res.State)
	assert.Equal(t, 1, tp.closes)

	_, err = os.Stat(cfg.Files.Dataset)
	assert.True(t, os.IsNotExist(err), "idle run writes no dataset")
}

func TestRun_InterruptDiscardsInFlightRecord(t *testing.T) {
	cfg := testConfig(t)
	site := newSite(listingHTML)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	res, tp, err := run(ctx, t, cfg, site, func(tp *trackedPage) {
		tp.onNavigate = func(url string) {
			if url == qb {
				cancel()
			}
		}
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, StateIterating, res.State)
	assert.Equal(t, 1, res.Harvested)
	assert.Equal(t, 1, tp.closes)
	assert.Equal(t, []string{qa}, urls(t, cfg.Files.Dataset))

	res, _, err = run(context.Background(), t, cfg, site, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Harvested)
	assert.Equal(t, []string{qa, qb, qc}, urls(t, cfg.Files.Dataset))
}

func TestRun_UnreachableQuestionIsStillRecorded(t *testing.T) {
	cfg := testConfig(t)
	site := static.NewSite(map[string]string{
		base:                "<html><body><h1>home</h1></body></html>",
		base + "/questions": listingHTML,
		qa:                  questionHTML("A", "Easy"),
		qc:                  questionHTML("C", "Hard"),
	})

	res, _, err := run(context.Background(), t, cfg, site, nil)
	require.NoError(t, err)
	assert.Equal(t, StateComplete, res.State)
	assert.Equal(t, 3, res.Harvested)
	assert.Equal(t, []string{qa, qb, qc}, urls(t, cfg.Files.Dataset))

	ds, err := LoadDataset(cfg.Files.Dataset, quiet())
	require.NoError(t, err)
	b := ds.Questions()[1]
	assert.Nil(t, b.Title)
	assert.Nil(t, b.CorrectAnswer)
	assert.Empty(t, b.Options)

	site.Set(qb, questionHTML("B", "Medium"))
	res, _, err = run(context.Background(), t, cfg, site, nil)
	require.NoError(t, err)
	assert.Zero(t, res.Harvested, "a recorded URL is not retried")
	assert.Equal(t, 0, site.Hits(qb))
}

func TestRun_CancelledBeforeStart(t *testing.T) {
	cfg := testConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, tp, err := run(ctx, t, cfg, newSite(listingHTML), nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, tp.closes)
}

func TestRun_CorruptDatasetIsFault(t *testing.T) {
	cfg := testConfig(t)
	require.NoError(t, os.WriteFile(cfg.Files.Dataset, []byte(`[{"url": "x"`), 0o644))

	opened := false
	open := func(ctx context.Context) (Page, error) {
		opened = true
		return nil, errors.New("unreachable")
	}
	h := New(cfg, open, WithLogger(quiet()), WithConfirmer(okConfirmer{}))
	res, err := h.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateInit, res.State)
	assert.False(t, opened)

	data, err := os.ReadFile(cfg.Files.Dataset)
	require.NoError(t, err)
	assert.Equal(t, `[{"url": "x"`, string(data))
}

func TestRun_OpenerError(t *testing.T) {
	cfg := testConfig(t)
	boom := errors.New("chrome not found")
	h := New(cfg, func(ctx context.Context) (Page, error) { return nil, boom },
		WithLogger(quiet()), WithConfirmer(okConfirmer{}))

	_, err := h.Run(context.Background())
	assert.ErrorIs(t, err, boom)
}

func TestRun_EntryNavigationFault(t *testing.T) {
	cfg := testConfig(t)
	site := static.NewSite(nil)

	_, tp, err := run(context.Background(), t, cfg, site, nil)
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, tp.closes)
}

func TestNewOpener_HTTPBackend(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Browser.Backend = BackendHTTP

	p, err := NewOpener(cfg, quiet())(context.Background())
	require.NoError(t, err)
	assert.IsType(t, &static.Page{}, p)
	assert.NoError(t, p.Close())
}
