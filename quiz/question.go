// Package quiz defines the records produced by quizharvest.
// These are the public API contract: the dataset file, the SQLite export and
// any downstream consumer read the same Question type.
package quiz

import (
	"strings"
)

// Difficulty levels as they appear on question pages, title-cased.
const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Question is one scraped quiz item. Optional fields are pointers so that an
// unset field serialises as JSON null, the format earlier runs wrote.
type Question struct {
	URL           string   `json:"url"`
	Title         *string  `json:"title"`
	Language      *string  `json:"language"`
	Topic         *string  `json:"topic"`
	Difficulty    *string  `json:"difficulty"`
	Description   *string  `json:"description"`
	Options       []string `json:"options"`
	CorrectAnswer *string  `json:"correct_answer"`
}

// NewQuestion returns an empty record for url.
func NewQuestion(url string) *Question {
	return &Question{URL: url, Options: []string{}}
}

// AddOption appends opt unless an identical option is already present.
func (q *Question) AddOption(opt string) bool {
	for _, o := range q.Options {
		if o == opt {
			return false
		}
	}
	q.Options = append(q.Options, opt)
	return true
}

// MultipleChoice reports whether the correct answer is one of the options.
// Short-answer items have a correct answer that matches no option.
func (q *Question) MultipleChoice() bool {
	if q.CorrectAnswer == nil {
		return false
	}
	for _, o := range q.Options {
		if o == *q.CorrectAnswer {
			return true
		}
	}
	return false
}

// Str returns a pointer to s, for filling optional fields.
func Str(s string) *string { return &s }

// Deref returns *p, or fallback when p is nil.
func Deref(p *string, fallback string) string {
	if p == nil {
		return fallback
	}
	return *p
}

// languages maps the lowercase label found on a page to its canonical tag.
// "c" maps to C++: the site labels its C++ questions with a bare "C" icon.
var languages = map[string]string{
	"c":          "C++",
	"c++":        "C++",
	"cpp":        "C++",
	"python":     "Python",
	"javascript": "JavaScript",
	"java":       "Java",
	"rust":       "Rust",
	"go":         "Go",
	"typescript": "TypeScript",
	"ruby":       "Ruby",
	"swift":      "Swift",
	"csharp":     "C#",
	"c#":         "C#",
}

// NormalizeLanguage maps a raw icon label to a canonical language tag.
// ok is false when the label is not a known language.
func NormalizeLanguage(raw string) (lang string, ok bool) {
	lang, ok = languages[strings.ToLower(strings.TrimSpace(raw))]
	return lang, ok
}

// NormalizeDifficulty maps "easy", "MEDIUM", ... to the title-cased level.
func NormalizeDifficulty(raw string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "easy":
		return DifficultyEasy, true
	case "medium":
		return DifficultyMedium, true
	case "hard":
		return DifficultyHard, true
	}
	return "", false
}
