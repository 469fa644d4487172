// Package config loads the jokeqa YAML configuration, applies defaults and
// JOKEQA_* environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/viant/jokeqa/artifact"
	"github.com/viant/jokeqa/classify"
	"github.com/viant/jokeqa/corpus"
	"github.com/viant/jokeqa/embed"
	"github.com/viant/jokeqa/retrieval"
	"github.com/viant/jokeqa/subword"
	"github.com/viant/jokeqa/tfidf"
	"github.com/viant/jokeqa/train"
	"gopkg.in/yaml.v3"
)

// ArtifactsConfig locates the artifact set.
type ArtifactsConfig struct {
	Dir           string `yaml:"dir"`
	SkipChecksums bool   `yaml:"skip_checksums"`
}

// RetrievalConfig selects the serving variant.
type RetrievalConfig struct {
	Variant string   `yaml:"variant"`
	K       int      `yaml:"k"`
	// Cutoff is the largest accepted angular distance; unset means the
	// default and zero accepts exact matches only.
	Cutoff  *float64 `yaml:"cutoff,omitempty"`
}

// IndexConfig selects the nearest-neighbor index.
type IndexConfig struct {
	Kind      string  `yaml:"kind"`
	CoverBase float32 `yaml:"cover_base"`
}

// TrainConfig tunes the offline training pass.
type TrainConfig struct {
	Embedding   string  `yaml:"embedding"`
	Dim         int     `yaml:"dim"`
	Epochs      int     `yaml:"epochs"`
	Window      int     `yaml:"window"`
	MaxFeatures int     `yaml:"max_features"`
	C           float64 `yaml:"c"`
	MaxIter     int     `yaml:"max_iter"`
	Seed        int64   `yaml:"seed"`
	Workers     int     `yaml:"workers"`
}

// EncoderConfig configures the OpenAI-compatible sentence encoder.
type EncoderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
}

// StoreConfig tunes the corpus database pool.
type StoreConfig struct {
	BusyTimeoutMs int `yaml:"busy_timeout_ms"`
	MaxOpenConns  int `yaml:"max_open_conns"`
}

// AppConfig is the root configuration.
type AppConfig struct {
	Artifacts ArtifactsConfig `yaml:"artifacts"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Index     IndexConfig     `yaml:"index"`
	Train     TrainConfig     `yaml:"train"`
	Encoder   EncoderConfig   `yaml:"encoder"`
	Store     StoreConfig     `yaml:"store"`
}

// Load reads the config at path. A missing file yields defaults. Environment
// overrides apply in both cases.
func Load(path string) (*AppConfig, error) {
	cfg := &AppConfig{}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	applyDefaults(cfg)
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	if *cfg.Retrieval.Cutoff < 0 {
		return nil, fmt.Errorf("config: negative retrieval cutoff %v", *cfg.Retrieval.Cutoff)
	}
	return cfg, nil
}

// Default returns the default configuration.
func Default() *AppConfig {
	cfg := &AppConfig{}
	applyDefaults(cfg)
	return cfg
}

// Save writes cfg to path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Artifacts.Dir == "" {
		cfg.Artifacts.Dir = "model"
	}
	if cfg.Retrieval.Variant == "" {
		cfg.Retrieval.Variant = retrieval.VariantJoke
	}
	if cfg.Retrieval.Cutoff == nil {
		cutoff := retrieval.DefaultCutoff
		cfg.Retrieval.Cutoff = &cutoff
	}
	if cfg.Index.Kind == "" {
		cfg.Index.Kind = "auto"
	}
	d := subword.DefaultOptions()
	if cfg.Train.Embedding == "" {
		cfg.Train.Embedding = artifact.VariantSubword
	}
	if cfg.Train.Dim <= 0 {
		cfg.Train.Dim = d.Dim
	}
	if cfg.Train.Epochs <= 0 {
		cfg.Train.Epochs = d.Epochs
	}
	if cfg.Train.Window <= 0 {
		cfg.Train.Window = d.Window
	}
	if cfg.Train.MaxFeatures <= 0 {
		cfg.Train.MaxFeatures = tfidf.DefaultMaxFeatures
	}
	svm := classify.DefaultTrainOptions()
	if cfg.Train.C <= 0 {
		cfg.Train.C = svm.C
	}
	if cfg.Train.MaxIter <= 0 {
		cfg.Train.MaxIter = svm.MaxIter
	}
	if cfg.Train.Seed == 0 {
		cfg.Train.Seed = d.Seed
	}
	if cfg.Encoder.APIKeyEnv == "" {
		cfg.Encoder.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Encoder.Model == "" {
		cfg.Encoder.Model = "text-embedding-3-small"
	}
	if cfg.Encoder.TimeoutSecs <= 0 {
		cfg.Encoder.TimeoutSecs = 10
	}
	if cfg.Store.BusyTimeoutMs <= 0 {
		cfg.Store.BusyTimeoutMs = 5000
	}
	if cfg.Store.MaxOpenConns <= 0 {
		cfg.Store.MaxOpenConns = 4
	}
}

func applyEnv(cfg *AppConfig) error {
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
	str("JOKEQA_ARTIFACTS_DIR", &cfg.Artifacts.Dir)
	str("JOKEQA_VARIANT", &cfg.Retrieval.Variant)
	str("JOKEQA_INDEX_KIND", &cfg.Index.Kind)
	str("JOKEQA_ENCODER_BASE_URL", &cfg.Encoder.BaseURL)
	str("JOKEQA_ENCODER_MODEL", &cfg.Encoder.Model)
	if v, ok := os.LookupEnv("JOKEQA_CUTOFF"); ok && v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("config: invalid JOKEQA_CUTOFF %q", v)
		}
		cfg.Retrieval.Cutoff = &f
	}
	if v, ok := os.LookupEnv("JOKEQA_K"); ok && v != "" {
		k, err := strconv.Atoi(v)
		if err != nil || k <= 0 {
			return fmt.Errorf("config: invalid JOKEQA_K %q", v)
		}
		cfg.Retrieval.K = k
	}
	return nil
}

// Strategy returns the strategy configuration.
func (c *AppConfig) Strategy() retrieval.Config {
	return retrieval.Config{Variant: c.Retrieval.Variant, K: c.Retrieval.K, Cutoff: c.Retrieval.Cutoff}
}

// CorpusStore returns the corpus store pool settings.
func (c *AppConfig) CorpusStore() corpus.StoreConfig {
	return corpus.StoreConfig{
		MaxOpenConns: c.Store.MaxOpenConns,
		BusyTimeout:  time.Duration(c.Store.BusyTimeoutMs) * time.Millisecond,
	}
}

// LoadOptions returns the artifact loading options.
func (c *AppConfig) LoadOptions() artifact.LoadOptions {
	return artifact.LoadOptions{Store: c.CorpusStore(), IndexBase: c.Index.CoverBase, SkipChecksums: c.Artifacts.SkipChecksums}
}

// OpenAI returns the encoder client settings.
func (c *AppConfig) OpenAI() embed.OpenAIConfig {
	return embed.OpenAIConfig{
		BaseURL:   c.Encoder.BaseURL,
		APIKeyEnv: c.Encoder.APIKeyEnv,
		Model:     c.Encoder.Model,
		Timeout:   time.Duration(c.Encoder.TimeoutSecs) * time.Second,
	}
}

// TrainOptions returns the training pass options.
func (c *AppConfig) TrainOptions() train.Options {
	sw := subword.DefaultOptions()
	sw.Dim = c.Train.Dim
	sw.Epochs = c.Train.Epochs
	sw.Window = c.Train.Window
	sw.Seed = c.Train.Seed
	return train.Options{
		Variant:   c.Train.Embedding,
		IndexKind: c.Index.Kind,
		IndexBase: c.Index.CoverBase,
		Subword:   sw,
		Classifier: classify.Options{
			TFIDF: tfidf.Options{MaxFeatures: c.Train.MaxFeatures},
			SVM:   classify.TrainOptions{C: c.Train.C, MaxIter: c.Train.MaxIter},
		},
		Workers: c.Train.Workers,
	}
}
