// Package vocabulary derives a fixed, indexed term set from a training
// corpus and encodes token sequences as sparse count vectors over it.
package vocabulary

import (
	"errors"
	"fmt"
	"sort"
)

// DefaultMinDocFrequency prunes terms present in fewer than 1% of
// training documents.
const DefaultMinDocFrequency = 0.01

var (
	// ErrEmptyVocabulary means pruning removed every term, or the corpus
	// contained no terms at all.
	ErrEmptyVocabulary = errors.New("vocabulary: no terms survived pruning")
	// ErrInvalidFraction means the document-frequency threshold is not a
	// valid fraction.
	ErrInvalidFraction = errors.New("vocabulary: min document frequency fraction must be in [0, 1]")
)

// Vocabulary is an immutable, index-assigned set of distinct terms.
// Indices are assigned in lexicographic term order, so the same term set
// always produces the same indexing regardless of corpus order. It is
// never mutated after construction; terms absent from it are
// out-of-vocabulary and contribute nothing when encoding.
type Vocabulary struct {
	terms   []string
	indexes map[string]int
}

// Build computes per-term document frequency over the training token
// sequences and keeps the terms whose frequency fraction reaches
// minDocFrequencyFraction. Document frequency counts documents containing
// the term at least once, not raw occurrences.
func Build(docs [][]string, minDocFrequencyFraction float64) (*Vocabulary, error) {
	if !(minDocFrequencyFraction >= 0 && minDocFrequencyFraction <= 1) {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidFraction, minDocFrequencyFraction)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("%w: empty corpus", ErrEmptyVocabulary)
	}

	docFreq := make(map[string]int)
	seen := make(map[string]struct{})
	for _, tokens := range docs {
		for _, token := range tokens {
			if _, ok := seen[token]; ok {
				continue
			}
			seen[token] = struct{}{}
			docFreq[token]++
		}
		clear(seen)
	}

	threshold := minDocFrequencyFraction * float64(len(docs))
	terms := make([]string, 0, len(docFreq))
	for term, df := range docFreq {
		if float64(df) >= threshold {
			terms = append(terms, term)
		}
	}
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: threshold %v over %d documents", ErrEmptyVocabulary, minDocFrequencyFraction, len(docs))
	}
	sort.Strings(terms)

	return fromSortedTerms(terms), nil
}

// FromTerms reconstructs a vocabulary from a persisted ordered term list.
// The list must be non-empty, sorted, and free of duplicates, which is
// exactly what Build and Terms produce.
func FromTerms(terms []string) (*Vocabulary, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("%w: empty term list", ErrEmptyVocabulary)
	}
	for i, term := range terms {
		if term == "" {
			return nil, fmt.Errorf("vocabulary: empty term at index %d", i)
		}
		if i > 0 && terms[i-1] >= term {
			return nil, fmt.Errorf("vocabulary: term list not sorted and distinct at index %d (%q, %q)", i, terms[i-1], term)
		}
	}
	copied := make([]string, len(terms))
	copy(copied, terms)
	return fromSortedTerms(copied), nil
}

func fromSortedTerms(terms []string) *Vocabulary {
	indexes := make(map[string]int, len(terms))
	for i, term := range terms {
		indexes[term] = i
	}
	return &Vocabulary{terms: terms, indexes: indexes}
}

// Len reports the number of indexed terms.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Terms returns the ordered term list as a copy, suitable for persisting.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Index returns the index assigned to term, if it is in the vocabulary.
func (v *Vocabulary) Index(term string) (int, bool) {
	i, ok := v.indexes[term]
	return i, ok
}

// Term returns the term at index i.
func (v *Vocabulary) Term(i int) string {
	return v.terms[i]
}

// Encode maps a token sequence to a sparse count vector over the
// vocabulary. Out-of-vocabulary tokens are dropped silently; a document
// with no in-vocabulary tokens encodes to a valid all-zero vector.
func (v *Vocabulary) Encode(tokens []string) Vector {
	counts := make(map[int]int)
	for _, token := range tokens {
		if i, ok := v.indexes[token]; ok {
			counts[i]++
		}
	}
	return Vector{N: len(v.terms), Counts: counts}
}

// Vector is a sparse document-term count vector. N is the vocabulary size
// the vector was encoded against; Counts holds only nonzero slots.
type Vector struct {
	N      int
	Counts map[int]int
}

// Sum returns the total token count across all slots.
func (vec Vector) Sum() int {
	total := 0
	for _, c := range vec.Counts {
		total += c
	}
	return total
}
