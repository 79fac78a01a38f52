// Package tokenizer turns raw statement text into normalized word tokens.
// The pipeline is fixed: Unicode normalization, lowercasing, splitting on
// non-letter runes (which discards punctuation and digit runs), stopword
// removal, then dictionary lemmatization and/or suffix stemming. Token
// order and repetition are preserved so downstream word counts stay
// multinomial.
package tokenizer

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/kljensen/snowball/english"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Mode selects how surviving tokens are reduced to their root form.
type Mode string

const (
	// ModeLemmatizeStem lemmatizes to a dictionary root, then stems the lemma.
	ModeLemmatizeStem Mode = "lemmatize-stem"
	// ModeStemOnly applies the snowball stemmer directly.
	ModeStemOnly Mode = "stem"
	// ModeLemmatizeOnly stops after dictionary lemmatization.
	ModeLemmatizeOnly Mode = "lemmatize"
)

// ParseMode validates a mode string from configuration.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeLemmatizeStem, ModeStemOnly, ModeLemmatizeOnly:
		return Mode(s), nil
	}
	return "", fmt.Errorf("unknown normalization mode %q", s)
}

// Options configures a Tokenizer.
type Options struct {
	// Mode defaults to ModeLemmatizeStem when empty.
	Mode Mode
	// Stopwords replaces the built-in English stopword set when non-nil.
	Stopwords []string
}

// Tokenizer is an immutable text-to-token pipeline. It is safe for
// concurrent use: every stage is a pure function over read-only state.
type Tokenizer struct {
	mode       Mode
	stopwords  map[string]struct{}
	lemmatizer *golem.Lemmatizer
}

// New builds a Tokenizer from opts, loading the English lemma dictionary.
func New(opts Options) (*Tokenizer, error) {
	mode := opts.Mode
	if mode == "" {
		mode = ModeLemmatizeStem
	}
	if _, err := ParseMode(string(mode)); err != nil {
		return nil, err
	}

	words := opts.Stopwords
	if words == nil {
		words = DefaultStopwords()
	}
	stopwords := make(map[string]struct{}, len(words))
	for _, w := range words {
		stopwords[strings.ToLower(w)] = struct{}{}
	}

	var lemmatizer *golem.Lemmatizer
	if mode != ModeStemOnly {
		var err error
		lemmatizer, err = golem.New(en.New())
		if err != nil {
			return nil, fmt.Errorf("load lemma dictionary: %w", err)
		}
	}

	return &Tokenizer{
		mode:       mode,
		stopwords:  stopwords,
		lemmatizer: lemmatizer,
	}, nil
}

// Mode reports the reduction mode this tokenizer was built with.
func (t *Tokenizer) Mode() Mode {
	return t.mode
}

// Stopwords returns the stopword set as a sorted-independent slice copy,
// suitable for persisting alongside a trained model.
func (t *Tokenizer) Stopwords() []string {
	out := make([]string, 0, len(t.stopwords))
	for w := range t.stopwords {
		out = append(out, w)
	}
	return out
}

// Tokenize normalizes raw text into an ordered token multiset. Identical
// input always yields identical output. Empty input yields nil.
func (t *Tokenizer) Tokenize(raw string) []string {
	if raw == "" {
		return nil
	}

	text := strings.ToLower(foldMarks(raw))
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r)
	})

	var tokens []string
	for _, word := range words {
		if _, stop := t.stopwords[word]; stop {
			continue
		}
		reduced := t.reduce(word)
		if reduced == "" {
			continue
		}
		tokens = append(tokens, reduced)
	}
	return tokens
}

// reduce maps a surviving word to its root form per the configured mode.
func (t *Tokenizer) reduce(word string) string {
	switch t.mode {
	case ModeStemOnly:
		return english.Stem(word, false)
	case ModeLemmatizeOnly:
		return t.lemmatizer.Lemma(word)
	default:
		return english.Stem(t.lemmatizer.Lemma(word), false)
	}
}

// foldMarks decomposes the text and strips combining marks so accented
// characters compare equal to their base letters.
func foldMarks(s string) string {
	chain := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(chain, s)
	if err != nil {
		return s
	}
	return out
}
