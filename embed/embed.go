// Package embed turns lemma sequences into query vectors, either by
// idf-weighted averaging of trained subword vectors or by delegating to an
// opaque sentence encoder.
package embed

import (
	"context"
	"errors"
)

// ErrEmptyEmbedding reports that no token of the input produced a vector.
var ErrEmptyEmbedding = errors.New("embed: empty embedding")

// Builder produces a fixed-dimension vector for a lemma sequence.
type Builder interface {
	Embed(ctx context.Context, lemmas []string) ([]float32, error)
}

// VectorSource looks up per-word vectors.
type VectorSource interface {
	Vector(word string) ([]float32, bool)
	Dimension() int
}

// Weighter returns the weight of a lemma.
type Weighter interface {
	Weight(lemma string) float64
}

// Encoder maps text to a vector; implementations are opaque models.
type Encoder interface {
	Encode(ctx context.Context, text string) ([]float32, error)
}
