package extract

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hazyhaar/quizharvest/harvest/internal/page"
	"github.com/hazyhaar/quizharvest/quiz"
)

// noisePhrases mark promotional or unrelated UI text that shares the option
// styling. Matched case-insensitively as substrings.
var noisePhrases = []string{
	"code",
	"sign-up",
	"off",
	"redemption",
	"limited",
	"success rate",
	"%",
	"first attempt",
	"merrycrackedmas",
	"discount",
	"promo",
	"smash the knowledge",
}

// Reveal clicks the "I'm cooked" button and waits for the answer box.
type Reveal struct {
	Timeout time.Duration
}

func (Reveal) Name() string { return "reveal" }

func (r Reveal) Apply(ctx context.Context, it *Item) error {
	buttons, err := it.Page.Find(ctx, buttonSelector)
	if err != nil {
		return err
	}
	for _, btn := range buttons {
		label, err := btn.Text(ctx)
		if err != nil {
			if page.IsFault(err) || ctx.Err() != nil {
				return err
			}
			continue
		}
		if !strings.Contains(strings.ToLower(label), revealLabel) {
			continue
		}

		if err := r.click(ctx, it, btn); err != nil {
			return err
		}
		it.Log.Info("extract: clicked reveal button", "label", strings.TrimSpace(label))

		if _, err := it.Page.WaitFor(ctx, answerBoxSelector, r.Timeout); err != nil {
			return fmt.Errorf("extract: answer box: %w", err)
		}
		return nil
	}
	return page.ErrNotFound
}

// click scrolls to btn and clicks it within r.Timeout. A button that stays
// covered or disabled past the timeout is a plain probe failure.
func (r Reveal) click(ctx context.Context, it *Item, btn page.Element) error {
	clickCtx, cancel := context.WithTimeout(ctx, r.Timeout)
	defer cancel()

	if err := btn.ScrollIntoView(clickCtx); err != nil {
		if page.IsFault(err) || ctx.Err() != nil {
			return err
		}
		it.Log.Debug("extract: scroll failed", "error", err)
	}
	err := btn.Click(clickCtx)
	switch {
	case err == nil:
		return nil
	case ctx.Err() != nil:
		return ctx.Err()
	case clickCtx.Err() != nil:
		return fmt.Errorf("extract: click reveal: not clickable after %s", r.Timeout)
	default:
		return fmt.Errorf("extract: click reveal: %w", err)
	}
}

// Options collects the candidate answers.
type Options struct{}

func (Options) Name() string { return "options" }

func (Options) Apply(ctx context.Context, it *Item) error {
	els, err := it.Page.Find(ctx, optionSelector)
	if err != nil {
		return err
	}
	texts := make([]string, 0, len(els))
	for _, el := range els {
		t, err := el.Text(ctx)
		if err != nil {
			if page.IsFault(err) || ctx.Err() != nil {
				return err
			}
			continue
		}
		texts = append(texts, t)
	}

	for _, opt := range FilterOptions(texts) {
		it.Question.AddOption(opt)
	}
	it.Log.Info("extract: options", "count", len(it.Question.Options), "candidates", len(texts))
	if len(it.Question.Options) == 0 {
		return page.ErrNotFound
	}
	return nil
}

// FilterOptions trims candidates and drops empty, overlong, noisy and
// repeated entries, keeping first-seen order.
func FilterOptions(candidates []string) []string {
	out := make([]string, 0, len(candidates))
	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		text := strings.TrimSpace(c)
		if text == "" || utf8.RuneCountInString(text) > maxOptionLen || isNoise(text) || seen[text] {
			continue
		}
		seen[text] = true
		out = append(out, text)
	}
	return out
}

func isNoise(text string) bool {
	lower := strings.ToLower(text)
	for _, n := range noisePhrases {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// Answer reads the heading inside the revealed answer box.
type Answer struct{}

func (Answer) Name() string { return "answer" }

func (Answer) Apply(ctx context.Context, it *Item) error {
	box, err := page.First(ctx, it.Page, answerBoxSelector)
	if err != nil {
		return err
	}
	heads, err := box.Find(ctx, answerTextSelector)
	if err != nil {
		return err
	}
	if len(heads) == 0 {
		return page.ErrNotFound
	}
	raw, err := heads[0].Text(ctx)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return page.ErrNotFound
	}

	q := it.Question
	q.CorrectAnswer = quiz.Str(text)
	it.Log.Info("extract: correct answer", "answer", text, "multiple_choice", q.MultipleChoice())
	return nil
}
