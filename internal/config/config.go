// Package config loads CLI configuration by merging defaults, an
// optional config file, environment variables, and command-line flags.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config is the top-level application configuration.
type Config struct {
	Data     DataConfig     `mapstructure:"data"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Model    ModelConfig    `mapstructure:"model"`
	Server   ServerConfig   `mapstructure:"server"`
	LogLevel string         `mapstructure:"log_level"`
}

// DataConfig locates the corpus and controls evaluation splits.
type DataConfig struct {
	LabelColumn  int     `mapstructure:"label_column"`
	TextColumns  []int   `mapstructure:"text_columns"`
	TestFraction float64 `mapstructure:"test_fraction"`
	SplitSeed    int64   `mapstructure:"split_seed"`
}

// PipelineConfig controls tokenization and vocabulary construction.
type PipelineConfig struct {
	StopwordsFile     string  `mapstructure:"stopwords_file"`
	NormalizationMode string  `mapstructure:"normalization_mode"`
	MinDocFrequency   float64 `mapstructure:"min_doc_frequency"`
}

// ModelConfig controls the estimator and model persistence.
type ModelConfig struct {
	Path  string  `mapstructure:"path"`
	Alpha float64 `mapstructure:"alpha"`
}

// ServerConfig holds classification API settings.
type ServerConfig struct {
	ListenAddr string `mapstructure:"listen_addr"`
}

// LoadOptions parameterizes Load.
type LoadOptions struct {
	Cmd        flagBinder
	ConfigFile string
	Defaults   Config
}

type flagBinder interface {
	Flags() *pflag.FlagSet
}

// DefaultConfig returns the standard settings.
func DefaultConfig() Config {
	return Config{
		Data: DataConfig{
			LabelColumn:  0,
			TextColumns:  []int{1},
			TestFraction: 0.2,
			SplitSeed:    42,
		},
		Pipeline: PipelineConfig{
			StopwordsFile:     "",
			NormalizationMode: "lemmatize-stem",
			MinDocFrequency:   0.01,
		},
		Model: ModelConfig{
			Path:  "veracity-model.gob",
			Alpha: 1,
		},
		Server: ServerConfig{
			ListenAddr: ":8000",
		},
		LogLevel: "info",
	}
}

// RegisterFlags declares the persistent flags mirroring every config key.
func RegisterFlags(fs *pflag.FlagSet, defaults Config) {
	fs.Int("data-label-column", defaults.Data.LabelColumn, "Zero-based TSV column holding the class label")
	fs.IntSlice("data-text-columns", defaults.Data.TextColumns, "Zero-based TSV columns holding statement text")
	fs.Float64("data-test-fraction", defaults.Data.TestFraction, "Held-out fraction for evaluate")
	fs.Int64("data-split-seed", defaults.Data.SplitSeed, "Seed for the evaluate train/test shuffle")
	fs.String("pipeline-stopwords-file", defaults.Pipeline.StopwordsFile, "Optional stopword list file (whitespace separated)")
	fs.String("pipeline-normalization-mode", defaults.Pipeline.NormalizationMode, "Token reduction: lemmatize-stem, stem, or lemmatize")
	fs.Float64("pipeline-min-doc-frequency", defaults.Pipeline.MinDocFrequency, "Vocabulary pruning threshold as a document frequency fraction")
	fs.String("model-path", defaults.Model.Path, "Path of the persisted model file")
	fs.Float64("model-alpha", defaults.Model.Alpha, "Additive smoothing constant (>= 0)")
	fs.String("server-listen-addr", defaults.Server.ListenAddr, "HTTP listen address for serve")
	fs.String("log-level", defaults.LogLevel, "Log level: debug, info, warn, error")
}

// Load merges defaults, the config file, VERACITY_* environment
// variables, and flags, in increasing precedence.
func Load(opts LoadOptions) (Config, error) {
	v := viper.New()

	setDefaults(v, opts.Defaults)
	if opts.Cmd != nil {
		if err := bindFlags(v, opts.Cmd.Flags()); err != nil {
			return Config{}, fmt.Errorf("bind flags: %w", err)
		}
	}

	v.SetEnvPrefix("VERACITY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	} else {
		v.SetConfigName("veracity")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return Config{}, fmt.Errorf("read config file: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, c Config) {
	v.SetDefault("data.label_column", c.Data.LabelColumn)
	v.SetDefault("data.text_columns", c.Data.TextColumns)
	v.SetDefault("data.test_fraction", c.Data.TestFraction)
	v.SetDefault("data.split_seed", c.Data.SplitSeed)
	v.SetDefault("pipeline.stopwords_file", c.Pipeline.StopwordsFile)
	v.SetDefault("pipeline.normalization_mode", c.Pipeline.NormalizationMode)
	v.SetDefault("pipeline.min_doc_frequency", c.Pipeline.MinDocFrequency)
	v.SetDefault("model.path", c.Model.Path)
	v.SetDefault("model.alpha", c.Model.Alpha)
	v.SetDefault("server.listen_addr", c.Server.ListenAddr)
	v.SetDefault("log_level", c.LogLevel)
}

// bindFlags maps each dashed flag name onto its dotted config key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	bindings := map[string]string{
		"data.label_column":           "data-label-column",
		"data.text_columns":           "data-text-columns",
		"data.test_fraction":          "data-test-fraction",
		"data.split_seed":             "data-split-seed",
		"pipeline.stopwords_file":     "pipeline-stopwords-file",
		"pipeline.normalization_mode": "pipeline-normalization-mode",
		"pipeline.min_doc_frequency":  "pipeline-min-doc-frequency",
		"model.path":                  "model-path",
		"model.alpha":                 "model-alpha",
		"server.listen_addr":          "server-listen-addr",
		"log_level":                   "log-level",
	}
	for key, flagName := range bindings {
		flag := fs.Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}
