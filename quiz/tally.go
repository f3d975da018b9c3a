package quiz

import "sort"

// Unknown groups records whose field is unset.
const Unknown = "Unknown"

// Tally summarises a dataset.
type Tally struct {
	Total          int            `json:"total"`
	MultipleChoice int            `json:"multiple_choice"`
	ByLanguage     map[string]int `json:"by_language"`
	ByDifficulty   map[string]int `json:"by_difficulty"`
}

// Count builds the tally of qs.
func Count(qs []*Question) Tally {
	t := Tally{
		ByLanguage:   make(map[string]int),
		ByDifficulty: make(map[string]int),
	}
	for _, q := range qs {
		t.Total++
		t.ByLanguage[Deref(q.Language, Unknown)]++
		t.ByDifficulty[Deref(q.Difficulty, Unknown)]++
		if q.MultipleChoice() {
			t.MultipleChoice++
		}
	}
	return t
}

// Bucket is one key/count pair of a tally map.
type Bucket struct {
	Key   string
	Count int
}

// Sorted returns the buckets of m by descending count, then key.
func Sorted(m map[string]int) []Bucket {
	out := make([]Bucket, 0, len(m))
	for k, v := range m {
		out = append(out, Bucket{Key: k, Count: v})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	return out
}
