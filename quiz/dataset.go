package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrDuplicateURL is returned by Dataset.Add when the URL is already present.
var ErrDuplicateURL = errors.New("quiz: duplicate url")

// Dataset is the ordered, URL-unique collection of scraped questions.
type Dataset struct {
	items []*Question
	index map[string]int
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{index: make(map[string]int)}
}

// Add appends q. Records with an empty URL or a URL already present are refused.
func (d *Dataset) Add(q *Question) error {
	if q == nil || q.URL == "" {
		return fmt.Errorf("quiz: record without url")
	}
	if _, ok := d.index[q.URL]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateURL, q.URL)
	}
	if q.Options == nil {
		q.Options = []string{}
	}
	d.index[q.URL] = len(d.items)
	d.items = append(d.items, q)
	return nil
}

// Has reports whether a record for url exists.
func (d *Dataset) Has(url string) bool {
	_, ok := d.index[url]
	return ok
}

// Len returns the number of records.
func (d *Dataset) Len() int { return len(d.items) }

// Questions returns the records in insertion order. The slice is shared.
func (d *Dataset) Questions() []*Question { return d.items }

// MarshalJSON encodes the dataset as a JSON array of questions.
func (d *Dataset) MarshalJSON() ([]byte, error) {
	if d.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.items)
}

// Decode parses a JSON array of questions. Records repeating an earlier URL
// are dropped and returned as dups so the caller can report them.
func Decode(data []byte) (ds *Dataset, dups []string, err error) {
	var items []*Question
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, nil, fmt.Errorf("quiz: decode dataset: %w", err)
	}
	ds = NewDataset()
	for _, q := range items {
		if q == nil {
			continue
		}
		if err := ds.Add(q); err != nil {
			if errors.Is(err, ErrDuplicateURL) {
				dups = append(dups, q.URL)
				continue
			}
			return nil, nil, err
		}
	}
	return ds, dups, nil
}
