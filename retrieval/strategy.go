package retrieval

import (
	"context"
	"errors"
	"fmt"
)

const (
	// DefaultCutoff is the largest angular distance accepted as a direct hit.
	DefaultCutoff = 0.25

	// VariantJoke selects ThresholdedANN with classifier fallback.
	VariantJoke = "joke"
	// VariantAnswer selects PlainANN over the top two neighbors.
	VariantAnswer = "answer"
)

// TopicPredictor predicts a topic label for lemmas.
type TopicPredictor interface {
	PredictTopic(lemmas []string) (string, error)
}

// TopicSampler returns a random item text of a topic.
type TopicSampler interface {
	RandomForTopic(ctx context.Context, topic string) (string, bool, error)
}

// Strategy decides the answer from the resolved neighbors of a query.
type Strategy interface {
	// Name identifies the strategy in logs.
	Name() string
	// Neighbors is the k used for the index query.
	Neighbors() int
	// Decide picks the result for lemmas given the candidates.
	Decide(ctx context.Context, lemmas []string, candidates []Candidate) (*Result, error)
}

// Fallback answers with a random item of the predicted topic.
type Fallback struct {
	Classifier TopicPredictor
	Sampler    TopicSampler
}

// Answer predicts the topic of lemmas and samples an item of it.
func (f *Fallback) Answer(ctx context.Context, lemmas []string) (*Result, error) {
	topic, err := f.Classifier.PredictTopic(lemmas)
	if err != nil {
		return nil, newError(KindInternal, "classify", err)
	}
	text, ok, err := f.Sampler.RandomForTopic(ctx, topic)
	if err != nil {
		return nil, newError(KindNoFallbackMatch, "sample", err)
	}
	if !ok {
		return nil, newError(KindNoFallbackMatch, "sample", fmt.Errorf("no item for topic %q", topic))
	}
	return &Result{Text: text, Source: SourceFallback, Topic: topic}, nil
}

// ThresholdedANN accepts the nearest neighbor when its distance is at most
// Cutoff and falls back to the classifier otherwise.
type ThresholdedANN struct {
	K        int
	Cutoff   float64
	Fallback *Fallback
}

// Name returns "thresholded".
func (t *ThresholdedANN) Name() string { return "thresholded" }

// Neighbors returns K, at least 1.
func (t *ThresholdedANN) Neighbors() int { return max(t.K, 1) }

// Decide applies the cutoff to the best candidate.
func (t *ThresholdedANN) Decide(ctx context.Context, lemmas []string, candidates []Candidate) (*Result, error) {
	if len(candidates) > 0 && candidates[0].Distance <= t.Cutoff {
		best := candidates[0]
		return &Result{Text: best.Text, Source: SourceDirect, Topic: best.Topic, Distance: best.Distance, Candidates: candidates}, nil
	}
	if t.Fallback == nil {
		return nil, newError(KindNoFallbackMatch, "fallback", errors.New("no fallback configured"))
	}
	res, err := t.Fallback.Answer(ctx, lemmas)
	if err != nil {
		return nil, err
	}
	if len(candidates) > 0 {
		res.Distance = candidates[0].Distance
	}
	res.Candidates = candidates
	return res, nil
}

// PlainANN returns the nearest neighbor unconditionally and exposes the
// others as candidates.
type PlainANN struct {
	K int
}

// Name returns "plain".
func (p *PlainANN) Name() string { return "plain" }

// Neighbors returns K, at least 1.
func (p *PlainANN) Neighbors() int { return max(p.K, 1) }

// Decide returns the first candidate.
func (p *PlainANN) Decide(_ context.Context, _ []string, candidates []Candidate) (*Result, error) {
	if len(candidates) == 0 {
		return nil, newError(KindInternal, "decide", errors.New("index returned no candidates"))
	}
	best := candidates[0]
	return &Result{Text: best.Text, Source: SourceDirect, Topic: best.Topic, Distance: best.Distance, Candidates: candidates}, nil
}

// Config selects and tunes a strategy. A nil Cutoff selects DefaultCutoff;
// zero accepts exact matches only.
type Config struct {
	Variant string
	K       int
	Cutoff  *float64
}

// NewStrategy builds the strategy named by cfg.Variant: "joke" (k=1,
// cutoff, fallback) or "answer" (k=2, no fallback). Zero K and a nil Cutoff
// take the variant defaults.
func NewStrategy(cfg Config, fallback *Fallback) (Strategy, error) {
	switch cfg.Variant {
	case "", VariantJoke:
		k := cfg.K
		if k <= 0 {
			k = 1
		}
		cutoff := DefaultCutoff
		if cfg.Cutoff != nil {
			if *cfg.Cutoff < 0 {
				return nil, fmt.Errorf("retrieval: negative cutoff %v", *cfg.Cutoff)
			}
			cutoff = *cfg.Cutoff
		}
		if fallback == nil {
			return nil, errors.New("retrieval: joke variant requires a fallback")
		}
		return &ThresholdedANN{K: k, Cutoff: cutoff, Fallback: fallback}, nil
	case VariantAnswer:
		k := cfg.K
		if k <= 0 {
			k = 2
		}
		return &PlainANN{K: k}, nil
	default:
		return nil, fmt.Errorf("retrieval: unknown variant %q", cfg.Variant)
	}
}
