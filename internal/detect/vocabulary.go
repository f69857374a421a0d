package detect

import (
	"sort"
	"strings"
)

// Vocabulary is the set of case-normalized tokens never reported as
// duplicates. A nil Vocabulary is empty.
type Vocabulary struct {
	words map[string]struct{}
}

// NewVocabulary unions the given tiers.
func NewVocabulary(tiers ...[]string) *Vocabulary {
	v := &Vocabulary{words: make(map[string]struct{})}
	for _, tier := range tiers {
		for _, w := range tier {
			w = normalize(w)
			if w != "" {
				v.words[w] = struct{}{}
			}
		}
	}
	return v
}

// Contains reports whether token is excluded.
func (v *Vocabulary) Contains(token string) bool {
	if v == nil {
		return false
	}
	_, ok := v.words[normalize(token)]
	return ok
}

// Len returns the number of excluded tokens.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.words)
}

// Words returns the excluded tokens sorted.
func (v *Vocabulary) Words() []string {
	if v == nil {
		return nil
	}
	out := make([]string, 0, len(v.words))
	for w := range v.words {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func normalize(token string) string {
	return strings.ToLower(strings.TrimSpace(token))
}
