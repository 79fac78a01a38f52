// Package dataset loads labeled statement corpora from tab-separated
// flat files and produces seeded train/test partitions.
package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"

	"github.com/L-Martinell/AdvancedStatistics-Project/bayes"
)

var (
	// ErrInvalidColumns means a configured column index is out of range
	// for a record.
	ErrInvalidColumns = errors.New("dataset: column index out of range")
	// ErrInvalidFraction means the test fraction is outside (0, 1).
	ErrInvalidFraction = errors.New("dataset: test fraction must be in (0, 1)")
	// ErrSizeMismatch means the document and label slices disagree.
	ErrSizeMismatch = errors.New("dataset: document and label counts differ")
)

// Options selects which TSV columns hold the label and the text fields.
type Options struct {
	// LabelColumn is the zero-based label column index.
	LabelColumn int
	// TextColumns are the zero-based text columns, concatenated in order
	// into one Document.
	TextColumns []int
}

// DefaultOptions reads label from column 0 and text from column 1.
func DefaultOptions() Options {
	return Options{LabelColumn: 0, TextColumns: []int{1}}
}

// Load reads a tab-separated corpus file into documents and labels.
// Records are kept in file order; blank labels are rejected so a bad
// column choice fails loudly instead of training a garbage class.
func Load(path string, opts Options) ([]bayes.Document, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	return Read(f, opts)
}

// Read parses tab-separated records from r. Field quoting is lax because
// published statement corpora rarely quote consistently.
func Read(r io.Reader, opts Options) ([]bayes.Document, []string, error) {
	if len(opts.TextColumns) == 0 {
		return nil, nil, fmt.Errorf("%w: no text columns configured", ErrInvalidColumns)
	}

	reader := csv.NewReader(r)
	reader.Comma = '\t'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var docs []bayes.Document
	var labels []string
	row := 0
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("read corpus row %d: %w", row, err)
		}
		row++

		if opts.LabelColumn >= len(record) {
			return nil, nil, fmt.Errorf("%w: label column %d, row %d has %d fields", ErrInvalidColumns, opts.LabelColumn, row, len(record))
		}
		label := record[opts.LabelColumn]
		if label == "" {
			return nil, nil, fmt.Errorf("dataset: empty label at row %d", row)
		}

		fields := make([]string, 0, len(opts.TextColumns))
		for _, col := range opts.TextColumns {
			if col >= len(record) {
				return nil, nil, fmt.Errorf("%w: text column %d, row %d has %d fields", ErrInvalidColumns, col, row, len(record))
			}
			fields = append(fields, record[col])
		}

		docs = append(docs, bayes.Document{Fields: fields})
		labels = append(labels, label)
	}

	return docs, labels, nil
}

// Split is a seeded train/test partition of a corpus.
type Split struct {
	TrainDocs   []bayes.Document
	TrainLabels []string
	TestDocs    []bayes.Document
	TestLabels  []string
}

// Partition shuffles the corpus with the given seed and carves off
// testFraction of it. The same seed always yields the same partition;
// randomness never comes from process-wide state.
func Partition(docs []bayes.Document, labels []string, testFraction float64, seed int64) (Split, error) {
	if len(docs) != len(labels) {
		return Split{}, fmt.Errorf("%w: %d documents, %d labels", ErrSizeMismatch, len(docs), len(labels))
	}
	if !(testFraction > 0 && testFraction < 1) {
		return Split{}, fmt.Errorf("%w: got %v", ErrInvalidFraction, testFraction)
	}

	perm := rand.New(rand.NewSource(seed)).Perm(len(docs))
	testSize := int(testFraction * float64(len(docs)))
	if testSize == 0 && len(docs) > 1 {
		testSize = 1
	}

	var split Split
	for i, j := range perm {
		if i < testSize {
			split.TestDocs = append(split.TestDocs, docs[j])
			split.TestLabels = append(split.TestLabels, labels[j])
		} else {
			split.TrainDocs = append(split.TrainDocs, docs[j])
			split.TrainLabels = append(split.TrainLabels, labels[j])
		}
	}
	return split, nil
}
