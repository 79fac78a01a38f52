package bayes

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/L-Martinell/AdvancedStatistics-Project/bayes/vocabulary"
)

// DefaultAlpha is the standard Laplace smoothing constant.
const DefaultAlpha = 1.0

// priorSumTolerance bounds the allowed drift of an explicit prior from 1.
const priorSumTolerance = 1e-9

var (
	// ErrInvalidConfig means a malformed prior override or a negative
	// smoothing constant.
	ErrInvalidConfig = errors.New("bayes: invalid configuration")
	// ErrDimensionMismatch means the label and vector counts disagree, or
	// a vector's dimension disagrees with the model's vocabulary.
	ErrDimensionMismatch = errors.New("bayes: dimension mismatch")
	// ErrUntrainedModel means prediction was attempted on a model that
	// never completed a fit.
	ErrUntrainedModel = errors.New("bayes: model has not been trained")
)

// FitOptions tunes the estimator.
type FitOptions struct {
	// Alpha is the additive smoothing constant, >= 0. Zero is permitted:
	// any term unseen in a class then has likelihood exactly zero, and
	// documents containing it score -Inf for that class.
	Alpha float64
	// PriorOverride replaces the maximum-likelihood class priors. When
	// set it must cover exactly the classes observed in the training
	// labels and sum to 1.
	PriorOverride map[string]float64
}

// DefaultFitOptions returns Laplace smoothing with ML priors.
func DefaultFitOptions() FitOptions {
	return FitOptions{Alpha: DefaultAlpha}
}

// Model is an immutable trained multinomial Naive Bayes artifact: sorted
// class labels, per-class log-priors, a class-by-term log-likelihood
// table, and the vocabulary it was fit on. A Model is built once by Fit
// and only ever read afterwards, so it is safe for concurrent prediction.
type Model struct {
	classes       []string
	logPriors     []float64
	logLikelihood [][]float64
	vocab         *vocabulary.Vocabulary
	alpha         float64
	trained       bool
}

// Prediction is the outcome of scoring one document: the arg-max class
// and the raw log-domain score per class.
type Prediction struct {
	Label  string
	Scores map[string]float64
}

// Fit trains a model from encoded count vectors and their labels.
//
// Classes are the distinct labels observed, ordered lexicographically.
// Priors are maximum-likelihood unless overridden. Likelihoods are
// additively smoothed and stored as logs so scoring sums logs instead of
// multiplying vanishing probabilities. All validation happens before any
// counting, so a failed Fit never leaks a partially trained model.
func Fit(vocab *vocabulary.Vocabulary, vectors []vocabulary.Vector, labels []string, opts FitOptions) (*Model, error) {
	if vocab == nil || vocab.Len() == 0 {
		return nil, fmt.Errorf("%w: nil or empty vocabulary", ErrInvalidConfig)
	}
	if !(opts.Alpha >= 0) {
		return nil, fmt.Errorf("%w: alpha must be >= 0, got %v", ErrInvalidConfig, opts.Alpha)
	}
	if len(vectors) == 0 || len(vectors) != len(labels) {
		return nil, fmt.Errorf("%w: %d vectors, %d labels", ErrDimensionMismatch, len(vectors), len(labels))
	}
	for i, vec := range vectors {
		if vec.N != vocab.Len() {
			return nil, fmt.Errorf("%w: vector %d has dimension %d, vocabulary size is %d", ErrDimensionMismatch, i, vec.N, vocab.Len())
		}
		for t := range vec.Counts {
			if t < 0 || t >= vec.N {
				return nil, fmt.Errorf("%w: vector %d has out-of-range index %d", ErrDimensionMismatch, i, t)
			}
		}
	}

	classes := distinctSorted(labels)
	classIndex := make(map[string]int, len(classes))
	for i, c := range classes {
		classIndex[c] = i
	}

	logPriors, err := resolvePriors(classes, labels, opts.PriorOverride)
	if err != nil {
		return nil, err
	}

	termCount := vocab.Len()
	totals := make([][]float64, len(classes))
	for i := range totals {
		totals[i] = make([]float64, termCount)
	}
	classTotals := make([]float64, len(classes))
	for i, vec := range vectors {
		ci := classIndex[labels[i]]
		for t, count := range vec.Counts {
			totals[ci][t] += float64(count)
			classTotals[ci] += float64(count)
		}
	}

	logLikelihood := make([][]float64, len(classes))
	for ci := range classes {
		row := make([]float64, termCount)
		denom := classTotals[ci] + opts.Alpha*float64(termCount)
		for t := 0; t < termCount; t++ {
			if denom == 0 {
				// Alpha zero and no observed tokens for this class.
				row[t] = math.Inf(-1)
				continue
			}
			row[t] = math.Log((totals[ci][t] + opts.Alpha) / denom)
		}
		logLikelihood[ci] = row
	}

	return &Model{
		classes:       classes,
		logPriors:     logPriors,
		logLikelihood: logLikelihood,
		vocab:         vocab,
		alpha:         opts.Alpha,
		trained:       true,
	}, nil
}

// resolvePriors returns per-class log-priors in class order, either from a
// validated override or as maximum-likelihood label frequencies.
func resolvePriors(classes []string, labels []string, override map[string]float64) ([]float64, error) {
	logPriors := make([]float64, len(classes))

	if override != nil {
		if len(override) != len(classes) {
			return nil, fmt.Errorf("%w: prior override has %d classes, training labels have %d", ErrInvalidConfig, len(override), len(classes))
		}
		sum := 0.0
		for i, c := range classes {
			p, ok := override[c]
			if !ok {
				return nil, fmt.Errorf("%w: prior override missing class %q", ErrInvalidConfig, c)
			}
			if p < 0 || p > 1 || math.IsNaN(p) {
				return nil, fmt.Errorf("%w: prior override for %q is %v", ErrInvalidConfig, c, p)
			}
			logPriors[i] = math.Log(p)
			sum += p
		}
		if math.Abs(sum-1) > priorSumTolerance {
			return nil, fmt.Errorf("%w: prior override sums to %v, want 1", ErrInvalidConfig, sum)
		}
		return logPriors, nil
	}

	counts := make(map[string]int, len(classes))
	for _, label := range labels {
		counts[label]++
	}
	total := float64(len(labels))
	for i, c := range classes {
		logPriors[i] = math.Log(float64(counts[c]) / total)
	}
	return logPriors, nil
}

func distinctSorted(labels []string) []string {
	seen := make(map[string]struct{}, len(labels))
	var out []string
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	sort.Strings(out)
	return out
}

// PredictVector scores an encoded document against the model and returns
// the arg-max class with per-class log scores. Ties break to the
// lexicographically smallest class. An all-zero vector is valid and
// scores equal to the priors alone.
func (m *Model) PredictVector(vec vocabulary.Vector) (Prediction, error) {
	if m == nil || !m.trained {
		return Prediction{}, ErrUntrainedModel
	}
	if vec.N != m.vocab.Len() {
		return Prediction{}, fmt.Errorf("%w: vector dimension %d, model vocabulary size %d", ErrDimensionMismatch, vec.N, m.vocab.Len())
	}
	for t := range vec.Counts {
		if t < 0 || t >= vec.N {
			return Prediction{}, fmt.Errorf("%w: vector has out-of-range index %d", ErrDimensionMismatch, t)
		}
	}

	scores := make(map[string]float64, len(m.classes))
	best := 0
	bestScore := math.Inf(-1)
	for ci, class := range m.classes {
		score := m.logPriors[ci]
		for t, count := range vec.Counts {
			if count <= 0 {
				continue
			}
			score += float64(count) * m.logLikelihood[ci][t]
		}
		scores[class] = score
		// Classes are sorted, so strict comparison keeps the smallest
		// label on ties.
		if ci == 0 || score > bestScore {
			best = ci
			bestScore = score
		}
	}

	return Prediction{Label: m.classes[best], Scores: scores}, nil
}

// Classes returns the sorted class labels discovered at training time.
func (m *Model) Classes() []string {
	out := make([]string, len(m.classes))
	copy(out, m.classes)
	return out
}

// Vocabulary returns the vocabulary the model was fit on.
func (m *Model) Vocabulary() *vocabulary.Vocabulary {
	return m.vocab
}

// Alpha returns the smoothing constant the model was fit with.
func (m *Model) Alpha() float64 {
	return m.alpha
}

// Trained reports whether the model completed a fit.
func (m *Model) Trained() bool {
	return m != nil && m.trained
}
