package extract

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hazyhaar/quizharvest/harvest/internal/page"
	"github.com/hazyhaar/quizharvest/quiz"
)

// Selectors for the question page layout. Language icons are inline SVGs
// carrying a <title> label; badges are elements whose own text is short,
// often next to an icon.
const (
	titleSelector      = "h1"
	iconLabelSelector  = "svg title"
	badgeSelector      = "body *:not(script):not(style):not(svg):not(svg *)"
	codeSelector       = "code.hljs"
	codeFallback       = "code"
	buttonSelector     = "button"
	optionSelector     = ".text-text-primary"
	answerBoxSelector  = `div[class*="border-red-500"]`
	answerTextSelector = "h2"
	revealLabel        = "cooked"
	maxBadgeLen        = 50
	maxTopicWords      = 4
	topicKeyword       = "knowledge"
	maxOptionLen       = 100
)

// Title reads the first top-level heading.
type Title struct{}

func (Title) Name() string { return "title" }

func (Title) Apply(ctx context.Context, it *Item) error {
	text, err := page.FirstText(ctx, it.Page, titleSelector)
	if err != nil {
		return err
	}
	if text == "" {
		return page.ErrNotFound
	}
	it.Question.Title = quiz.Str(text)
	it.Log.Info("extract: title", "title", text)
	return nil
}

// Language reads the label of the first language icon on the page.
type Language struct{}

func (Language) Name() string { return "language" }

func (Language) Apply(ctx context.Context, it *Item) error {
	labels, err := it.Page.Find(ctx, iconLabelSelector)
	if err != nil {
		return err
	}
	for _, el := range labels {
		raw, err := el.Text(ctx)
		if err != nil {
			if page.IsFault(err) || ctx.Err() != nil {
				return err
			}
			continue
		}
		if lang, ok := quiz.NormalizeLanguage(raw); ok {
			it.Question.Language = quiz.Str(lang)
			it.Log.Info("extract: language", "language", lang, "label", strings.TrimSpace(raw))
			return nil
		}
	}
	return page.ErrNotFound
}

// Badges scans the own text of every element for the difficulty and topic
// badges.
type Badges struct{}

func (Badges) Name() string { return "badges" }

func (Badges) Apply(ctx context.Context, it *Item) error {
	els, err := it.Page.Find(ctx, badgeSelector)
	if err != nil {
		return err
	}
	q := it.Question
	for _, el := range els {
		if q.Difficulty != nil && q.Topic != nil {
			break
		}
		raw, err := el.OwnText(ctx)
		if err != nil {
			if page.IsFault(err) || ctx.Err() != nil {
				return err
			}
			continue
		}
		text := strings.TrimSpace(raw)
		if text == "" || utf8.RuneCountInString(text) > maxBadgeLen {
			continue
		}
		if q.Difficulty == nil {
			if d, ok := quiz.NormalizeDifficulty(text); ok {
				q.Difficulty = quiz.Str(d)
				it.Log.Info("extract: difficulty", "difficulty", d)
			}
		}
		if q.Topic == nil && isTopic(text) {
			q.Topic = quiz.Str(text)
			it.Log.Info("extract: topic", "topic", text)
		}
	}
	if q.Difficulty == nil && q.Topic == nil {
		return page.ErrNotFound
	}
	return nil
}

// isTopic matches short "... Knowledge" badges such as "Language Knowledge".
func isTopic(text string) bool {
	return strings.Contains(strings.ToLower(text), topicKeyword) &&
		len(strings.Fields(text)) <= maxTopicWords
}

// Description reads the highlighted code block, or any code element.
type Description struct{}

func (Description) Name() string { return "description" }

func (Description) Apply(ctx context.Context, it *Item) error {
	for _, sel := range []string{codeSelector, codeFallback} {
		el, err := page.First(ctx, it.Page, sel)
		if page.IsMiss(err) {
			continue
		}
		if err != nil {
			return err
		}
		text, err := el.Text(ctx)
		if err != nil {
			return fmt.Errorf("extract: read %s: %w", sel, err)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		it.Question.Description = quiz.Str(text)
		it.Log.Info("extract: description", "selector", sel, "chars", utf8.RuneCountInString(text))
		return nil
	}
	return page.ErrNotFound
}
