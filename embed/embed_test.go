package embed

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
)

type fakeVectors map[string][]float32

func (f fakeVectors) Vector(word string) ([]float32, bool) {
	v, ok := f[word]
	return v, ok
}

func (f fakeVectors) Dimension() int { return 2 }

type fakeWeights map[string]float64

func (f fakeWeights) Weight(lemma string) float64 {
	if w, ok := f[lemma]; ok {
		return w
	}
	return 1
}

func TestWeightedAverage(t *testing.T) {
	b := NewWeightedAverage(
		fakeVectors{"a": {1, 0}, "b": {0, 1}},
		fakeWeights{"a": 3, "b": 1},
	)
	got, err := b.Embed(context.Background(), []string{"a", "b", "missing"})
	if err != nil {
		t.Fatalf("Embed failed: %v", err)
	}
	want := []float32{0.75, 0.25}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 1e-6 {
			t.Fatalf("Embed = %v, want %v", got, want)
		}
	}
	again, _ := b.Embed(context.Background(), []string{"a", "b", "missing"})
	for i := range got {
		if got[i] != again[i] {
			t.Fatalf("Embed not deterministic: %v vs %v", got, again)
		}
	}
}

func TestWeightedAverage_Empty(t *testing.T) {
	b := NewWeightedAverage(fakeVectors{"a": {1, 0}}, fakeWeights{})
	for _, lemmas := range [][]string{nil, {"zzz"}} {
		if _, err := b.Embed(context.Background(), lemmas); !errors.Is(err, ErrEmptyEmbedding) {
			t.Fatalf("Embed(%v) err = %v, want ErrEmptyEmbedding", lemmas, err)
		}
	}
}

type encoderFunc func(ctx context.Context, text string) ([]float32, error)

func (f encoderFunc) Encode(ctx context.Context, text string) ([]float32, error) { return f(ctx, text) }

func TestPassthrough(t *testing.T) {
	var seen string
	p := NewPassthrough(encoderFunc(func(_ context.Context, text string) ([]float32, error) {
		seen = text
		if strings.Contains(text, "fail") {
			return nil, errors.New("boom")
		}
		if strings.Contains(text, "blank") {
			return nil, nil
		}
		return []float32{1, 2, 3}, nil
	}))
	vec, err := p.Embed(context.Background(), []string{"hello", "world"})
	if err != nil || len(vec) != 3 {
		t.Fatalf("Embed = %v, %v", vec, err)
	}
	if seen != "hello world" {
		t.Fatalf("encoder saw %q, want %q", seen, "hello world")
	}
	if _, err := p.Embed(context.Background(), nil); !errors.Is(err, ErrEmptyEmbedding) {
		t.Fatalf("empty input err = %v", err)
	}
	if _, err := p.Embed(context.Background(), []string{"blank"}); !errors.Is(err, ErrEmptyEmbedding) {
		t.Fatalf("empty vector err = %v", err)
	}
	_, err = p.Embed(context.Background(), []string{"fail"})
	if err == nil || errors.Is(err, ErrEmptyEmbedding) {
		t.Fatalf("encoder failure err = %v, want wrapped encoder error", err)
	}
}

func TestLazy_ConstructsOnce(t *testing.T) {
	calls := 0
	enc := Lazy(func() (Encoder, error) {
		calls++
		return encoderFunc(func(context.Context, string) ([]float32, error) { return []float32{1}, nil }), nil
	})
	for i := 0; i < 3; i++ {
		if _, err := enc.Encode(context.Background(), "x"); err != nil {
			t.Fatalf("Encode failed: %v", err)
		}
	}
	if calls != 1 {
		t.Fatalf("constructor called %d times, want 1", calls)
	}
	failing := Lazy(func() (Encoder, error) { return nil, errors.New("no key") })
	if _, err := failing.Encode(context.Background(), "x"); err == nil {
		t.Fatalf("expected construction error")
	}
}

func TestNewOpenAIEncoder_RequiresKey(t *testing.T) {
	t.Setenv("JOKEQA_TEST_EMPTY_KEY", "")
	if _, err := NewOpenAIEncoder(OpenAIConfig{APIKeyEnv: "JOKEQA_TEST_EMPTY_KEY"}); err == nil {
		t.Fatalf("expected missing key error")
	}
	t.Setenv("JOKEQA_TEST_KEY", "sk-test")
	if _, err := NewOpenAIEncoder(OpenAIConfig{APIKeyEnv: "JOKEQA_TEST_KEY", BaseURL: "http://127.0.0.1:1/v1"}); err != nil {
		t.Fatalf("NewOpenAIEncoder failed: %v", err)
	}
}
