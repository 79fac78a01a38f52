package vocabulary

import (
	"errors"
	"reflect"
	"testing"
)

func TestBuildAssignsLexicographicIndices(t *testing.T) {
	docs := [][]string{
		{"fish", "cat"},
		{"dog", "cat", "bird"},
		{"bird", "fish", "dog"},
	}
	vocab, err := Build(docs, 0)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := []string{"bird", "cat", "dog", "fish"}
	if got := vocab.Terms(); !reflect.DeepEqual(got, want) {
		t.Fatalf("unexpected term order: got %v, want %v", got, want)
	}
	for i, term := range want {
		got, ok := vocab.Index(term)
		if !ok || got != i {
			t.Fatalf("unexpected index for %q: got %d (ok=%v), want %d", term, got, ok, i)
		}
		if vocab.Term(i) != term {
			t.Fatalf("unexpected term at %d: got %q, want %q", i, vocab.Term(i), term)
		}
	}
}

func TestBuildUsesDocumentFrequencyNotRawCount(t *testing.T) {
	// "loud" appears five times but only in one of four documents, so its
	// document frequency fraction is 0.25.
	docs := [][]string{
		{"loud", "loud", "loud", "loud", "loud"},
		{"quiet"},
		{"quiet"},
		{"quiet"},
	}
	vocab, err := Build(docs, 0.5)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if _, ok := vocab.Index("loud"); ok {
		t.Fatal("expected repeated single-document term to be pruned")
	}
	if _, ok := vocab.Index("quiet"); !ok {
		t.Fatal("expected frequent term to survive")
	}
}

func TestBuildPrunesRareTermAcrossLargeCorpus(t *testing.T) {
	docs := make([][]string, 1000)
	for i := range docs {
		docs[i] = []string{"common"}
	}
	docs[0] = []string{"common", "rare"}

	vocab, err := Build(docs, 0.01)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if _, ok := vocab.Index("rare"); ok {
		t.Fatal("expected 1-of-1000 term to be pruned at 1% threshold")
	}

	vec := vocab.Encode([]string{"rare", "common", "rare"})
	if vec.N != vocab.Len() {
		t.Fatalf("unexpected vector dimension: got %d, want %d", vec.N, vocab.Len())
	}
	i, _ := vocab.Index("common")
	if vec.Counts[i] != 1 {
		t.Fatalf("unexpected common count: got %d, want 1", vec.Counts[i])
	}
	if vec.Sum() != 1 {
		t.Fatalf("pruned term leaked into counts: sum %d, want 1", vec.Sum())
	}
}

func TestBuildKeepsTermAtExactThreshold(t *testing.T) {
	docs := make([][]string, 100)
	for i := range docs {
		docs[i] = []string{"common"}
	}
	docs[0] = append(docs[0], "edge")

	vocab, err := Build(docs, 0.01)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if _, ok := vocab.Index("edge"); !ok {
		t.Fatal("term at exactly the threshold fraction should be kept")
	}
}

func TestBuildEmptyVocabulary(t *testing.T) {
	tests := []struct {
		name string
		docs [][]string
		frac float64
	}{
		{name: "empty corpus", docs: nil, frac: 0.01},
		{name: "no tokens", docs: [][]string{nil, nil}, frac: 0.01},
		{name: "threshold prunes everything", docs: [][]string{{"a"}, {"b"}, {"c"}}, frac: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Build(tt.docs, tt.frac); !errors.Is(err, ErrEmptyVocabulary) {
				t.Fatalf("expected ErrEmptyVocabulary, got %v", err)
			}
		})
	}
}

func TestBuildInvalidFraction(t *testing.T) {
	for _, frac := range []float64{-0.1, 1.1} {
		if _, err := Build([][]string{{"a"}}, frac); !errors.Is(err, ErrInvalidFraction) {
			t.Fatalf("expected ErrInvalidFraction for %v, got %v", frac, err)
		}
	}
}

func TestEncodeCountsAndOOV(t *testing.T) {
	vocab, err := FromTerms([]string{"bird", "cat", "dog", "fish"})
	if err != nil {
		t.Fatalf("from terms failed: %v", err)
	}

	vec := vocab.Encode([]string{"cat", "dog", "cat", "unknown", "cat"})
	if vec.N != 4 {
		t.Fatalf("unexpected dimension: got %d, want 4", vec.N)
	}

	catIdx, _ := vocab.Index("cat")
	dogIdx, _ := vocab.Index("dog")
	if vec.Counts[catIdx] != 3 {
		t.Fatalf("unexpected cat count: got %d, want 3", vec.Counts[catIdx])
	}
	if vec.Counts[dogIdx] != 1 {
		t.Fatalf("unexpected dog count: got %d, want 1", vec.Counts[dogIdx])
	}
	if len(vec.Counts) != 2 {
		t.Fatalf("expected 2 nonzero slots, got %d", len(vec.Counts))
	}
}

func TestEncodeAllOOVYieldsZeroVector(t *testing.T) {
	vocab, err := FromTerms([]string{"cat", "dog"})
	if err != nil {
		t.Fatalf("from terms failed: %v", err)
	}

	vec := vocab.Encode([]string{"zebra", "yak"})
	if vec.N != 2 {
		t.Fatalf("unexpected dimension: got %d, want 2", vec.N)
	}
	if len(vec.Counts) != 0 || vec.Sum() != 0 {
		t.Fatalf("expected all-zero vector, got %v", vec.Counts)
	}
}

func TestFromTermsRejectsMalformedLists(t *testing.T) {
	tests := []struct {
		name  string
		terms []string
	}{
		{name: "empty", terms: nil},
		{name: "unsorted", terms: []string{"dog", "cat"}},
		{name: "duplicate", terms: []string{"cat", "cat"}},
		{name: "empty term", terms: []string{"", "cat"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromTerms(tt.terms); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestFromTermsMatchesBuildIndexing(t *testing.T) {
	docs := [][]string{{"cat", "dog"}, {"bird", "cat"}}
	built, err := Build(docs, 0)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	restored, err := FromTerms(built.Terms())
	if err != nil {
		t.Fatalf("from terms failed: %v", err)
	}
	if !reflect.DeepEqual(built.Terms(), restored.Terms()) {
		t.Fatalf("restored vocabulary differs: %v vs %v", built.Terms(), restored.Terms())
	}
}
