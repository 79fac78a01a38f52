package dataset

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/L-Martinell/AdvancedStatistics-Project/bayes"
)

const sampleTSV = "false\tThe economy shrank by half\textra\n" +
	"true\tUnemployment fell last year\textra\n" +
	"half-true\tCrime rose in some cities\textra\n"

func TestReadParsesLabelAndTextColumns(t *testing.T) {
	docs, labels, err := Read(strings.NewReader(sampleTSV), DefaultOptions())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}

	wantLabels := []string{"false", "true", "half-true"}
	if !reflect.DeepEqual(labels, wantLabels) {
		t.Fatalf("unexpected labels: got %v, want %v", labels, wantLabels)
	}
	if len(docs) != 3 {
		t.Fatalf("unexpected document count: got %d, want 3", len(docs))
	}
	if got, want := docs[0].Text(), "The economy shrank by half"; got != want {
		t.Fatalf("unexpected document text: got %q, want %q", got, want)
	}
}

func TestReadConcatenatesMultipleTextColumns(t *testing.T) {
	docs, _, err := Read(strings.NewReader(sampleTSV), Options{
		LabelColumn: 0,
		TextColumns: []int{1, 2},
	})
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if got, want := docs[1].Text(), "Unemployment fell last year extra"; got != want {
		t.Fatalf("unexpected concatenated text: got %q, want %q", got, want)
	}
}

func TestReadRejectsBadColumns(t *testing.T) {
	tests := []struct {
		name string
		opts Options
	}{
		{name: "label out of range", opts: Options{LabelColumn: 9, TextColumns: []int{1}}},
		{name: "text out of range", opts: Options{LabelColumn: 0, TextColumns: []int{9}}},
		{name: "no text columns", opts: Options{LabelColumn: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Read(strings.NewReader(sampleTSV), tt.opts); !errors.Is(err, ErrInvalidColumns) {
				t.Fatalf("expected ErrInvalidColumns, got %v", err)
			}
		})
	}
}

func TestReadRejectsEmptyLabel(t *testing.T) {
	input := "\tsome statement\n"
	if _, _, err := Read(strings.NewReader(input), DefaultOptions()); err == nil {
		t.Fatal("expected error for empty label")
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.tsv")
	if err := os.WriteFile(path, []byte(sampleTSV), 0o600); err != nil {
		t.Fatalf("write corpus: %v", err)
	}

	docs, labels, err := Load(path, DefaultOptions())
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(docs) != 3 || len(labels) != 3 {
		t.Fatalf("unexpected corpus size: %d docs, %d labels", len(docs), len(labels))
	}
}

func makeCorpus(n int) ([]bayes.Document, []string) {
	docs := make([]bayes.Document, n)
	labels := make([]string, n)
	for i := range docs {
		docs[i] = bayes.Doc("statement")
		if i%2 == 0 {
			labels[i] = "even"
		} else {
			labels[i] = "odd"
		}
	}
	return docs, labels
}

func TestPartitionDeterministicBySeed(t *testing.T) {
	docs, labels := makeCorpus(100)

	first, err := Partition(docs, labels, 0.2, 7)
	if err != nil {
		t.Fatalf("partition failed: %v", err)
	}
	second, err := Partition(docs, labels, 0.2, 7)
	if err != nil {
		t.Fatalf("partition failed: %v", err)
	}

	if !reflect.DeepEqual(first.TestLabels, second.TestLabels) {
		t.Fatal("same seed produced different partitions")
	}
	if len(first.TestDocs) != 20 || len(first.TrainDocs) != 80 {
		t.Fatalf("unexpected split sizes: %d test, %d train", len(first.TestDocs), len(first.TrainDocs))
	}
	if len(first.TrainDocs) != len(first.TrainLabels) || len(first.TestDocs) != len(first.TestLabels) {
		t.Fatal("documents and labels fell out of step")
	}
}

func TestPartitionValidation(t *testing.T) {
	docs, labels := makeCorpus(10)

	for _, frac := range []float64{0, 1, -0.5, 1.5} {
		if _, err := Partition(docs, labels, frac, 1); !errors.Is(err, ErrInvalidFraction) {
			t.Fatalf("expected ErrInvalidFraction for %v, got %v", frac, err)
		}
	}
	if _, err := Partition(docs, labels[:5], 0.2, 1); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}
