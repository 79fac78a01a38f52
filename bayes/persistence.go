package bayes

import (
	"encoding/gob"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/L-Martinell/AdvancedStatistics-Project/bayes/vocabulary"
	"github.com/L-Martinell/AdvancedStatistics-Project/tokenizer"
)

const persistedModelVersion = 1

// stateSumTolerance bounds probability-sum drift allowed in a persisted
// model before it is rejected as corrupt.
const stateSumTolerance = 1e-9

var (
	errNilWriter          = errors.New("writer is nil")
	errNilReader          = errors.New("reader is nil")
	errEmptyPath          = errors.New("model path is empty")
	errUnsupportedVersion = errors.New("unsupported model version")
	errInvalidState       = errors.New("invalid persisted model state")
)

// modelState is the persisted layout: everything needed to reconstruct
// prediction behavior without retraining.
type modelState struct {
	Version       int
	Terms         []string
	Classes       []string
	LogPriors     []float64
	LogLikelihood [][]float64
	Alpha         float64
	Mode          string
	Stopwords     []string
}

// Save writes the trained model and tokenizer settings to w using gob
// encoding. Saving an untrained classifier fails with ErrUntrainedModel.
func (c *Classifier) Save(w io.Writer) error {
	if w == nil {
		return errNilWriter
	}
	if c.model == nil {
		return ErrUntrainedModel
	}

	stopwords := c.tok.Stopwords()
	sort.Strings(stopwords)

	state := modelState{
		Version:       persistedModelVersion,
		Terms:         c.model.vocab.Terms(),
		Classes:       c.model.Classes(),
		LogPriors:     c.model.logPriors,
		LogLikelihood: c.model.logLikelihood,
		Alpha:         c.model.alpha,
		Mode:          string(c.tok.Mode()),
		Stopwords:     stopwords,
	}

	if err := gob.NewEncoder(w).Encode(state); err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	return nil
}

// Load reads a gob-encoded model from r, validates it, and replaces the
// classifier's tokenizer and model with the persisted state.
func (c *Classifier) Load(r io.Reader) error {
	if r == nil {
		return errNilReader
	}

	var state modelState
	if err := gob.NewDecoder(r).Decode(&state); err != nil {
		return fmt.Errorf("decode model: %w", err)
	}

	if err := validateModelState(state); err != nil {
		return err
	}

	vocab, err := vocabulary.FromTerms(state.Terms)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidState, err)
	}

	tok, err := tokenizer.New(tokenizer.Options{
		Mode:      tokenizer.Mode(state.Mode),
		Stopwords: state.Stopwords,
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidState, err)
	}

	c.tok = tok
	c.cfg.NormalizationMode = tokenizer.Mode(state.Mode)
	c.cfg.Stopwords = state.Stopwords
	c.cfg.Alpha = state.Alpha
	c.model = &Model{
		classes:       state.Classes,
		logPriors:     state.LogPriors,
		logLikelihood: state.LogLikelihood,
		vocab:         vocab,
		alpha:         state.Alpha,
		trained:       true,
	}
	return nil
}

// SaveToFile writes the model to path atomically: a temp file in the
// target directory is synced, closed, then renamed over path.
func (c *Classifier) SaveToFile(path string) error {
	if path == "" {
		return errEmptyPath
	}

	dir := filepath.Dir(path)
	tempFile, err := os.CreateTemp(dir, ".veracity-model-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tempPath := tempFile.Name()
	defer os.Remove(tempPath)

	if err := c.Save(tempFile); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Sync(); err != nil {
		tempFile.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// LoadFromFile reads a gob-encoded model file.
func (c *Classifier) LoadFromFile(path string) error {
	if path == "" {
		return errEmptyPath
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open model file: %w", err)
	}
	defer f.Close()

	return c.Load(f)
}

// validateModelState rejects malformed or inconsistent persisted models
// before any of it replaces live classifier state.
func validateModelState(state modelState) error {
	if state.Version != persistedModelVersion {
		return fmt.Errorf("%w: %d", errUnsupportedVersion, state.Version)
	}
	if len(state.Classes) == 0 {
		return fmt.Errorf("%w: no classes", errInvalidState)
	}
	for i, class := range state.Classes {
		if class == "" {
			return fmt.Errorf("%w: empty class name at index %d", errInvalidState, i)
		}
		if i > 0 && state.Classes[i-1] >= class {
			return fmt.Errorf("%w: class list not sorted and distinct at index %d", errInvalidState, i)
		}
	}
	if len(state.LogPriors) != len(state.Classes) {
		return fmt.Errorf("%w: %d log-priors for %d classes", errInvalidState, len(state.LogPriors), len(state.Classes))
	}
	if len(state.LogLikelihood) != len(state.Classes) {
		return fmt.Errorf("%w: %d likelihood rows for %d classes", errInvalidState, len(state.LogLikelihood), len(state.Classes))
	}
	if !(state.Alpha >= 0) {
		return fmt.Errorf("%w: alpha %v", errInvalidState, state.Alpha)
	}
	if _, err := tokenizer.ParseMode(state.Mode); err != nil {
		return fmt.Errorf("%w: %v", errInvalidState, err)
	}

	priorSum := 0.0
	for _, lp := range state.LogPriors {
		if math.IsNaN(lp) || lp > 0 {
			return fmt.Errorf("%w: log-prior %v", errInvalidState, lp)
		}
		priorSum += math.Exp(lp)
	}
	if math.Abs(priorSum-1) > stateSumTolerance {
		return fmt.Errorf("%w: priors sum to %v", errInvalidState, priorSum)
	}

	for ci, row := range state.LogLikelihood {
		if len(row) != len(state.Terms) {
			return fmt.Errorf("%w: likelihood row %d has %d terms, vocabulary has %d", errInvalidState, ci, len(row), len(state.Terms))
		}
		rowSum := 0.0
		for _, ll := range row {
			if math.IsNaN(ll) || ll > 0 {
				return fmt.Errorf("%w: log-likelihood %v in row %d", errInvalidState, ll, ci)
			}
			rowSum += math.Exp(ll)
		}
		// Rows are proper distributions whenever smoothing was applied.
		// With alpha zero a class trained on all-zero vectors can have an
		// all -Inf row, so only the smoothed case is checked.
		if state.Alpha > 0 && math.Abs(rowSum-1) > stateSumTolerance {
			return fmt.Errorf("%w: likelihood row %d sums to %v", errInvalidState, ci, rowSum)
		}
	}

	return nil
}
