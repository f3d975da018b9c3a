// Package report renders dataset summaries as terminal tables.
package report

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/hazyhaar/quizharvest/quiz"
)

// WriteSummary writes the totals, then one table per breakdown.
func WriteSummary(w io.Writer, t quiz.Tally) error {
	totals := table.NewWriter()
	totals.SetOutputMirror(w)
	totals.SetStyle(table.StyleRounded)
	totals.AppendHeader(table.Row{"Questions", "Multiple choice", "Short answer"})
	totals.AppendRow(table.Row{t.Total, t.MultipleChoice, t.Total - t.MultipleChoice})
	totals.Render()

	for _, b := range []struct {
		title  string
		counts map[string]int
	}{
		{"Language", t.ByLanguage},
		{"Difficulty", t.ByDifficulty},
	} {
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		breakdown(w, b.title, b.counts, t.Total)
	}
	return nil
}

func breakdown(w io.Writer, title string, counts map[string]int, total int) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.AppendHeader(table.Row{title, "Count", "Share"})
	for _, b := range quiz.Sorted(counts) {
		tw.AppendRow(table.Row{b.Key, b.Count, share(b.Count, total)})
	}
	tw.AppendFooter(table.Row{"Total", total, ""})
	tw.Render()
}

func share(n, total int) string {
	if total == 0 {
		return "-"
	}
	return fmt.Sprintf("%.1f%%", 100*float64(n)/float64(total))
}
