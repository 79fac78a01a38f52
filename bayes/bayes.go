// Package bayes implements a multinomial Naive Bayes classifier over
// sparse word-count vectors, with additive smoothing and log-domain
// scoring. The Classifier type wires the tokenizer, vocabulary builder,
// and estimator into a single fit/predict pipeline over raw documents.
package bayes

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/L-Martinell/AdvancedStatistics-Project/bayes/vocabulary"
	"github.com/L-Martinell/AdvancedStatistics-Project/tokenizer"
)

// Document is one unit of input text: an ordered list of raw fields
// concatenated for tokenization. It is read-only input.
type Document struct {
	Fields []string
}

// Doc builds a Document from raw text fields.
func Doc(fields ...string) Document {
	return Document{Fields: fields}
}

// Text concatenates the document fields in order.
func (d Document) Text() string {
	return strings.Join(d.Fields, " ")
}

// Config collects the recognized pipeline options.
type Config struct {
	// Stopwords replaces the built-in English stopword set when non-nil.
	Stopwords []string
	// NormalizationMode selects the token reduction stages.
	NormalizationMode tokenizer.Mode
	// MinDocFrequency prunes vocabulary terms below this document
	// frequency fraction.
	MinDocFrequency float64
	// Alpha is the additive smoothing constant.
	Alpha float64
	// PriorOverride optionally replaces maximum-likelihood class priors.
	PriorOverride map[string]float64
}

// DefaultConfig returns the standard pipeline settings.
func DefaultConfig() Config {
	return Config{
		NormalizationMode: tokenizer.ModeLemmatizeStem,
		MinDocFrequency:   vocabulary.DefaultMinDocFrequency,
		Alpha:             DefaultAlpha,
	}
}

// Classifier is the document-level pipeline: tokenizer, training-derived
// vocabulary, and trained model. Fit is called once; afterwards the
// classifier is read-only and safe for concurrent prediction.
type Classifier struct {
	tok   *tokenizer.Tokenizer
	cfg   Config
	model *Model
}

// NewClassifier builds an untrained classifier from cfg.
func NewClassifier(cfg Config) (*Classifier, error) {
	if !(cfg.Alpha >= 0) {
		return nil, fmt.Errorf("%w: alpha must be >= 0, got %v", ErrInvalidConfig, cfg.Alpha)
	}
	tok, err := tokenizer.New(tokenizer.Options{
		Mode:      cfg.NormalizationMode,
		Stopwords: cfg.Stopwords,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return &Classifier{tok: tok, cfg: cfg}, nil
}

// Model returns the trained model, or nil before Fit.
func (c *Classifier) Model() *Model {
	return c.model
}

// Tokenizer returns the classifier's tokenizer.
func (c *Classifier) Tokenizer() *tokenizer.Tokenizer {
	return c.tok
}

// Fit tokenizes the corpus, builds the pruned vocabulary, encodes every
// document, and trains the model. Tokenization fans out across workers;
// per-document results land in pre-sized slices so no coordination is
// needed beyond the final wait.
func (c *Classifier) Fit(ctx context.Context, docs []Document, labels []string) error {
	if len(docs) == 0 || len(docs) != len(labels) {
		return fmt.Errorf("%w: %d documents, %d labels", ErrDimensionMismatch, len(docs), len(labels))
	}

	tokens, err := c.tokenizeAll(ctx, docs)
	if err != nil {
		return err
	}

	vocab, err := vocabulary.Build(tokens, c.cfg.MinDocFrequency)
	if err != nil {
		return err
	}

	vectors := make([]vocabulary.Vector, len(tokens))
	for i, seq := range tokens {
		vectors[i] = vocab.Encode(seq)
	}

	model, err := Fit(vocab, vectors, labels, FitOptions{
		Alpha:         c.cfg.Alpha,
		PriorOverride: c.cfg.PriorOverride,
	})
	if err != nil {
		return err
	}

	c.model = model
	return nil
}

// Predict tokenizes and encodes one document against the trained
// vocabulary and scores it. Out-of-vocabulary tokens contribute nothing;
// a document with no in-vocabulary tokens falls back to the priors.
func (c *Classifier) Predict(doc Document) (Prediction, error) {
	if c.model == nil {
		return Prediction{}, ErrUntrainedModel
	}
	vec := c.model.vocab.Encode(c.tok.Tokenize(doc.Text()))
	return c.model.PredictVector(vec)
}

// Score returns the per-class log scores for one document.
func (c *Classifier) Score(doc Document) (map[string]float64, error) {
	pred, err := c.Predict(doc)
	if err != nil {
		return nil, err
	}
	return pred.Scores, nil
}

// PredictBatch predicts every document independently across a bounded
// worker pool. Results keep input order.
func (c *Classifier) PredictBatch(ctx context.Context, docs []Document) ([]Prediction, error) {
	if c.model == nil {
		return nil, ErrUntrainedModel
	}

	preds := make([]Prediction, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range docs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			pred, err := c.Predict(docs[i])
			if err != nil {
				return fmt.Errorf("document %d: %w", i, err)
			}
			preds[i] = pred
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return preds, nil
}

// tokenizeAll tokenizes every document concurrently, preserving order.
func (c *Classifier) tokenizeAll(ctx context.Context, docs []Document) ([][]string, error) {
	tokens := make([][]string, len(docs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range docs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			tokens[i] = c.tok.Tokenize(docs[i].Text())
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return tokens, nil
}
