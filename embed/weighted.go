package embed

import (
	"context"
	"fmt"
	"math"
)

// WeightedAverage averages word vectors weighted by idf:
// sum(v(t)*w(t)) / sum(w(t)) over tokens that have a vector.
type WeightedAverage struct {
	vectors VectorSource
	weights Weighter
}

// NewWeightedAverage constructs the trained-path builder.
func NewWeightedAverage(vectors VectorSource, weights Weighter) *WeightedAverage {
	return &WeightedAverage{vectors: vectors, weights: weights}
}

// Dimension returns the vector size.
func (w *WeightedAverage) Dimension() int { return w.vectors.Dimension() }

// Embed returns ErrEmptyEmbedding when no lemma has a vector.
func (w *WeightedAverage) Embed(_ context.Context, lemmas []string) ([]float32, error) {
	dim := w.vectors.Dimension()
	sum := make([]float64, dim)
	var total float64
	for _, lemma := range lemmas {
		vec, ok := w.vectors.Vector(lemma)
		if !ok {
			continue
		}
		if len(vec) != dim {
			return nil, fmt.Errorf("embed: vector of %q has dim %d, want %d", lemma, len(vec), dim)
		}
		weight := w.weights.Weight(lemma)
		for i, v := range vec {
			sum[i] += float64(v) * weight
		}
		total += weight
	}
	if total == 0 || math.IsNaN(total) {
		return nil, ErrEmptyEmbedding
	}
	out := make([]float32, dim)
	for i := range sum {
		out[i] = float32(sum[i] / total)
	}
	return out, nil
}
