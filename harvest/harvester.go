// CLAUDE:SUMMARY Run orchestrator: checkpoint load, page acquisition, session, discovery, resumable paced extraction loop, final tally.
// Package harvest scrapes quiz questions into a resumable JSON dataset.
//
// A run logs in (saved cookies or a manual login), lists every question URL,
// skips the ones the dataset already holds and extracts the rest one at a
// time, rewriting the dataset after each item. Interrupting a run loses at
// most the item in flight; the next run picks up where it stopped.
package harvest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hazyhaar/quizharvest/harvest/internal/checkpoint"
	"github.com/hazyhaar/quizharvest/harvest/internal/discover"
	"github.com/hazyhaar/quizharvest/harvest/internal/extract"
	"github.com/hazyhaar/quizharvest/harvest/internal/page"
	"github.com/hazyhaar/quizharvest/harvest/internal/session"
	"github.com/hazyhaar/quizharvest/quiz"
)

// State is a run's lifecycle stage.
type State string

// Run states, in order. A run ends in Idle or Complete unless it fails.
const (
	StateInit          State = "init"
	StateAuthenticated State = "authenticated"
	StateListingLoaded State = "listing_loaded"
	StateDiscovering   State = "discovering"
	StateIdle          State = "idle"
	StateIterating     State = "iterating"
	StateComplete      State = "complete"
)

// Result summarises a run. It is returned alongside errors too, holding the
// progress made before the failure.
type Result struct {
	State      State
	Discovered int
	Remaining  int
	Harvested  int
	// Total is the dataset size when the run ended.
	Total int
	Tally quiz.Tally
}

// Harvester runs harvests for one configuration.
type Harvester struct {
	cfg     *Config
	open    Opener
	confirm Confirmer
	logger  *slog.Logger
}

// Option configures a Harvester.
type Option func(*Harvester)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harvester) { h.logger = l }
}

// WithConfirmer sets how a manual login is confirmed. Default: stdin.
func WithConfirmer(c Confirmer) Option {
	return func(h *Harvester) { h.confirm = c }
}

// New creates a Harvester. open is called once per Run.
func New(cfg *Config, open Opener, opts ...Option) *Harvester {
	h := &Harvester{cfg: cfg, open: open, logger: slog.Default()}
	for _, o := range opts {
		o(h)
	}
	if h.confirm == nil {
		h.confirm = session.TerminalConfirmer()
	}
	return h
}

// Run executes one harvest. An interrupted run returns ctx.Err() and
// discards the record being extracted; everything appended before stays.
func (h *Harvester) Run(ctx context.Context) (*Result, error) {
	cfg := h.cfg
	res := &Result{}
	h.enter(res, StateInit)

	store := checkpoint.New(cfg.Files.Dataset, h.logger)
	ds, err := store.Load()
	if err != nil {
		return res, fmt.Errorf("harvest: %w", err)
	}
	res.Total = ds.Len()

	p, err := h.open(ctx)
	if err != nil {
		return res, fmt.Errorf("harvest: open page: %w", err)
	}
	defer h.release(ctx, p)

	if err := p.Navigate(ctx, cfg.EntryURL()); err != nil {
		return res, h.fail(ctx, "navigate entry", err)
	}
	boot := session.New(session.Config{
		CookieFile: cfg.Files.Cookies,
		Settle:     cfg.Timing.EntrySettle,
		Confirmer:  h.confirm,
		Logger:     h.logger,
	})
	if err := boot.Ensure(ctx, p); err != nil {
		return res, h.fail(ctx, "session", err)
	}
	h.enter(res, StateAuthenticated)

	if err := p.Navigate(ctx, cfg.ListingURL()); err != nil {
		return res, h.fail(ctx, "navigate listing", err)
	}
	h.enter(res, StateListingLoaded)

	h.enter(res, StateDiscovering)
	ids, err := discover.Identifiers(ctx, p, discover.Config{
		ItemPath: cfg.Site.ItemPath,
		Wait:     cfg.Timing.ListingWait,
		Settle:   cfg.Timing.ListingSettle,
		Logger:   h.logger,
	})
	if err != nil {
		return res, h.fail(ctx, "discover", err)
	}
	res.Discovered = len(ids)
	if len(ids) == 0 {
		h.enter(res, StateIdle)
		h.logger.Warn("harvest: no questions found, is the session logged in?",
			"listing", cfg.ListingURL(), "cookies", cfg.Files.Cookies)
		return res, nil
	}

	todo := checkpoint.Remaining(ids, ds)
	if lim := cfg.Run.Limit; lim > 0 && len(todo) > lim {
		todo = todo[:lim]
	}
	res.Remaining = len(todo)
	h.logger.Info("harvest: work list",
		"discovered", len(ids), "done", ds.Len(), "todo", len(todo), "limit", cfg.Run.Limit)

	h.enter(res, StateIterating)
	engine := extract.New(extract.Config{
		PageWait:      cfg.Timing.PageWait,
		RevealTimeout: cfg.Timing.RevealTimeout,
		Logger:        h.logger,
	})
	for i, u := range todo {
		h.logger.Info("harvest: item", "n", i+1, "of", len(todo), "url", u)

		q := engine.Extract(ctx, p, u)
		if ctx.Err() != nil {
			h.logger.Warn("harvest: interrupted, discarding in-flight record", "url", u)
			return res, ctx.Err()
		}
		if err := store.Append(ds, q); err != nil {
			return res, fmt.Errorf("harvest: %w", err)
		}
		res.Harvested++
		res.Total = ds.Len()

		if i < len(todo)-1 {
			if err := page.Sleep(ctx, cfg.Timing.ItemDelay); err != nil {
				return res, err
			}
		}
	}

	res.Tally = quiz.Count(ds.Questions())
	h.enter(res, StateComplete)
	h.logger.Info("harvest: done",
		"harvested", res.Harvested, "total", res.Total,
		"multiple_choice", res.Tally.MultipleChoice, "path", store.Path())
	return res, nil
}

func (h *Harvester) enter(res *Result, s State) {
	res.State = s
	h.logger.Info("harvest: state", "state", string(s))
}

// fail wraps a run-level error. After cancellation the context error is
// returned as is so that callers can compare it directly.
func (h *Harvester) fail(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return fmt.Errorf("harvest: %s: %w", op, err)
}

// release closes the page, after holding it open for inspection when the
// run was not interrupted.
func (h *Harvester) release(ctx context.Context, p Page) {
	if hold := h.cfg.Timing.InspectHold; hold > 0 && ctx.Err() == nil {
		h.logger.Info("harvest: keeping browser open for inspection", "hold", hold)
		_ = page.Sleep(ctx, hold)
	}
	if err := p.Close(); err != nil {
		h.logger.Warn("harvest: close page", "error", err)
	}
}
