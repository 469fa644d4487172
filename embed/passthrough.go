package embed

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Passthrough joins lemmas with spaces and returns the encoder's vector.
type Passthrough struct {
	encoder Encoder
}

// NewPassthrough constructs the encoder-path builder.
func NewPassthrough(encoder Encoder) *Passthrough {
	return &Passthrough{encoder: encoder}
}

// Embed returns ErrEmptyEmbedding for empty input or an empty encoder result.
func (p *Passthrough) Embed(ctx context.Context, lemmas []string) ([]float32, error) {
	text := strings.Join(lemmas, " ")
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyEmbedding
	}
	vec, err := p.encoder.Encode(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: encode: %w", err)
	}
	if len(vec) == 0 {
		return nil, ErrEmptyEmbedding
	}
	return vec, nil
}

// Lazy defers encoder construction to the first Encode call and shares the
// result, including a construction error, for the life of the process.
func Lazy(newEncoder func() (Encoder, error)) Encoder {
	return &lazyEncoder{newEncoder: newEncoder}
}

type lazyEncoder struct {
	once       sync.Once
	newEncoder func() (Encoder, error)
	encoder    Encoder
	err        error
}

func (l *lazyEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	l.once.Do(func() {
		l.encoder, l.err = l.newEncoder()
	})
	if l.err != nil {
		return nil, l.err
	}
	return l.encoder.Encode(ctx, text)
}
