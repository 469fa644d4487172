package retrieval

import (
	"errors"
	"fmt"

	"github.com/viant/jokeqa/artifact"
	"github.com/viant/jokeqa/embed"
)

// FromSet wires a Service over a loaded artifact set. encoder is only
// consulted for the encoder variant and may be nil otherwise.
func FromSet(set *artifact.Set, normalizer Normalizer, encoder embed.Encoder, cfg Config, opts ...Option) (*Service, error) {
	if set == nil {
		return nil, errors.New("retrieval: nil artifact set")
	}
	var builder embed.Builder
	switch set.Manifest.Variant {
	case artifact.VariantSubword:
		builder = embed.NewWeightedAverage(set.Subword, set.IDF)
	case artifact.VariantEncoder:
		if encoder == nil {
			return nil, errors.New("retrieval: encoder variant requires an encoder")
		}
		builder = embed.NewPassthrough(encoder)
	default:
		return nil, fmt.Errorf("retrieval: unknown embedding variant %q", set.Manifest.Variant)
	}
	strategy, err := NewStrategy(cfg, &Fallback{Classifier: set.Classifier, Sampler: set.Corpus})
	if err != nil {
		return nil, err
	}
	return NewService(normalizer, builder, set.Index, set.Items, strategy, opts...), nil
}
