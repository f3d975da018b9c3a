// CLAUDE:SUMMARY Field extraction engine: navigates to a question page and runs an ordered list of failure-isolated probes into a quiz.Question.
// Package extract turns one question page into a quiz.Question.
//
// Extraction is an ordered list of probes. Each probe fills one or more
// fields and may fail without affecting the others:
//   - a miss (page.ErrNotFound) leaves its fields unset,
//   - any other error is logged and the next probe runs,
//   - a page fault (page.ErrFault) abandons the remaining probes.
//
// Order matters: the reveal probe clicks the button that makes the answer
// box render, which the options and answer probes read.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hazyhaar/quizharvest/harvest/internal/page"
	"github.com/hazyhaar/quizharvest/quiz"
)

// Item is the state a probe works on.
type Item struct {
	Page     page.Page
	Question *quiz.Question
	Log      *slog.Logger
}

// Probe extracts part of a question.
type Probe interface {
	Name() string
	Apply(ctx context.Context, it *Item) error
}

// Config configures an Engine.
type Config struct {
	// PageWait bounds the wait for the question heading after navigation.
	PageWait time.Duration
	// RevealTimeout bounds the wait for the answer box after the reveal click.
	RevealTimeout time.Duration
	// Probes overrides DefaultProbes.
	Probes []Probe
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.PageWait <= 0 {
		c.PageWait = 10 * time.Second
	}
	if c.RevealTimeout <= 0 {
		c.RevealTimeout = 10 * time.Second
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Probes == nil {
		c.Probes = DefaultProbes(c.RevealTimeout)
	}
}

// DefaultProbes returns the probe sequence for question pages.
func DefaultProbes(revealTimeout time.Duration) []Probe {
	return []Probe{
		Title{},
		Language{},
		Badges{},
		Description{},
		Reveal{Timeout: revealTimeout},
		Options{},
		Answer{},
	}
}

// Engine runs the probe sequence against question pages.
type Engine struct {
	cfg Config
}

// New creates an Engine.
func New(cfg Config) *Engine {
	cfg.defaults()
	return &Engine{cfg: cfg}
}

// Extract navigates p to url and runs every probe. It always returns a
// record carrying url, filled with whatever was learned before any fault.
// Callers check ctx.Err() to tell an interrupted extraction apart.
func (e *Engine) Extract(ctx context.Context, p page.Page, url string) *quiz.Question {
	q := quiz.NewQuestion(url)
	log := e.cfg.Logger.With("url", url)

	if err := p.Navigate(ctx, url); err != nil {
		if ctx.Err() == nil {
			log.Warn("extract: navigation failed", "error", err)
		}
		return q
	}

	if _, err := p.WaitFor(ctx, "h1", e.cfg.PageWait); err != nil {
		if page.IsFault(err) {
			log.Warn("extract: page fault while loading", "error", err)
			return q
		}
		log.Info("extract: heading did not render", "wait", e.cfg.PageWait, "error", err)
	}

	it := &Item{Page: p, Question: q, Log: log}
	for _, pr := range e.cfg.Probes {
		if ctx.Err() != nil {
			return q
		}
		err := apply(ctx, pr, it)
		switch {
		case err == nil:
		case ctx.Err() != nil:
			return q
		case page.IsMiss(err):
			log.Info("extract: nothing found", "probe", pr.Name())
		case page.IsFault(err):
			log.Warn("extract: page fault, keeping partial record", "probe", pr.Name(), "error", err)
			return q
		default:
			log.Warn("extract: probe failed", "probe", pr.Name(), "error", err)
		}
	}
	return q
}

// apply runs one probe, turning a panic into an error so that a broken
// probe cannot take the run down.
func apply(ctx context.Context, pr Probe, it *Item) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract: probe %s panicked: %v", pr.Name(), r)
		}
	}()
	return pr.Apply(ctx, it)
}
