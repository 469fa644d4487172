package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/viant/jokeqa/retrieval"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Retrieval.Variant != retrieval.VariantJoke || *cfg.Retrieval.Cutoff != retrieval.DefaultCutoff {
		t.Fatalf("unexpected retrieval defaults %+v", cfg.Retrieval)
	}
	if cfg.Train.Dim != 30 || cfg.Train.Window != 5 || cfg.Train.MaxIter != 1000 {
		t.Fatalf("unexpected train defaults %+v", cfg.Train)
	}
	if got := cfg.CorpusStore().BusyTimeout; got != 5*time.Second {
		t.Fatalf("busy timeout = %v", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := Default()
	cfg.Retrieval.Variant = retrieval.VariantAnswer
	cfg.Index.Kind = "cover"
	cfg.Encoder.BaseURL = "http://localhost:8080/v1"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.Retrieval.Variant != retrieval.VariantAnswer || got.Index.Kind != "cover" || got.OpenAI().BaseURL != cfg.Encoder.BaseURL {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if got.TrainOptions().IndexKind != "cover" {
		t.Fatalf("train options should carry the index kind")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JOKEQA_CUTOFF", "0.3")
	t.Setenv("JOKEQA_VARIANT", retrieval.VariantAnswer)
	t.Setenv("JOKEQA_ARTIFACTS_DIR", "/srv/model")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	s := cfg.Strategy()
	if *s.Cutoff != 0.3 || s.Variant != retrieval.VariantAnswer || cfg.Artifacts.Dir != "/srv/model" {
		t.Fatalf("env overrides not applied: %+v %+v", s, cfg.Artifacts)
	}

	t.Setenv("JOKEQA_CUTOFF", "wide")
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("invalid cutoff should fail")
	}
}

func TestZeroCutoffIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("retrieval:\n  cutoff: 0\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c := cfg.Strategy().Cutoff; c == nil || *c != 0 {
		t.Fatalf("yaml cutoff 0 = %v, want 0", c)
	}

	t.Setenv("JOKEQA_CUTOFF", "0")
	cfg, err = Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("env cutoff 0 rejected: %v", err)
	}
	if *cfg.Retrieval.Cutoff != 0 {
		t.Fatalf("env cutoff = %v, want 0", *cfg.Retrieval.Cutoff)
	}

	if err := os.WriteFile(path, []byte("retrieval:\n  cutoff: -1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("JOKEQA_CUTOFF", "")
	if _, err := Load(path); err == nil {
		t.Fatal("negative cutoff should fail")
	}
}
