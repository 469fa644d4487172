// Package train runs the offline pass that turns a topic-labelled corpus
// into an artifact set: normalized items, the idf table, the topic
// classifier, the embedding model and the nearest-neighbor index.
package train

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/viant/jokeqa/artifact"
	"github.com/viant/jokeqa/classify"
	"github.com/viant/jokeqa/corpus"
	"github.com/viant/jokeqa/embed"
	"github.com/viant/jokeqa/index"
	"github.com/viant/jokeqa/internal/logging"
	"github.com/viant/jokeqa/subword"
	"golang.org/x/sync/errgroup"
)

// Normalizer turns text into lemmas.
type Normalizer interface {
	Normalize(text string) []string
}

// Options configures a training run.
type Options struct {
	// Variant is artifact.VariantSubword or artifact.VariantEncoder.
	Variant string
	// IndexKind is "auto", "brute" or "cover".
	IndexKind  string
	IndexBase  float32
	Subword    subword.Options
	Classifier classify.Options
	// Workers bounds concurrent embedding calls; zero uses GOMAXPROCS.
	Workers int
}

// Artifacts is the in-memory result of a training run.
type Artifacts struct {
	artifact.Parts
	// Empty counts items whose embedding was empty and stored as zero.
	Empty int
}

// Trainer fits all models from a corpus.
type Trainer struct {
	normalizer Normalizer
	encoder    embed.Encoder
	opts       Options
	logger     *slog.Logger
}

// New constructs a Trainer. encoder is required for the encoder variant.
func New(normalizer Normalizer, opts Options, encoder embed.Encoder) (*Trainer, error) {
	if opts.Variant == "" {
		opts.Variant = artifact.VariantSubword
	}
	switch opts.Variant {
	case artifact.VariantSubword:
	case artifact.VariantEncoder:
		if encoder == nil {
			return nil, errors.New("train: encoder variant requires an encoder")
		}
	default:
		return nil, fmt.Errorf("train: unknown variant %q", opts.Variant)
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Trainer{normalizer: normalizer, encoder: encoder, opts: opts, logger: logging.Component("train")}, nil
}

// Train fits every model over samples. Item ids follow input order.
func (t *Trainer) Train(ctx context.Context, samples []corpus.Sample) (*Artifacts, error) {
	if len(samples) == 0 {
		return nil, errors.New("train: empty corpus")
	}
	started := time.Now()
	runID := uuid.NewString()
	logger := t.logger.With("run_id", runID)

	items := make([]corpus.Item, len(samples))
	docs := make([][]string, len(samples))
	topics := make([]string, len(samples))
	for i, s := range samples {
		docs[i] = t.normalizer.Normalize(s.Text)
		topics[i] = s.Topic
		items[i] = corpus.Item{ID: i, Topic: s.Topic, Text: s.Text, Tokens: docs[i]}
	}
	logger.Info("corpus normalized", "items", len(items))

	classifier, err := classify.Train(docs, topics, t.opts.Classifier)
	if err != nil {
		return nil, fmt.Errorf("train: classifier: %w", err)
	}
	// Embedding weights share the classifier's 1-2 gram vocabulary, so lemmas
	// outside the feature cap weigh the table mean.
	idf := classifier.Vectorizer.IdfTable()
	logger.Info("classifier fitted", "topics", len(classifier.Topics()), "features", classifier.Vectorizer.Features(), "idf_terms", idf.Len())

	out := &Artifacts{Parts: artifact.Parts{
		RunID:      runID,
		Variant:    t.opts.Variant,
		IDF:        idf,
		Classifier: classifier,
		Items:      items,
	}}
	var builder embed.Builder
	if t.opts.Variant == artifact.VariantSubword {
		model, err := subword.Train(ctx, docs, t.opts.Subword)
		if err != nil {
			return nil, fmt.Errorf("train: subword: %w", err)
		}
		out.Subword = model
		builder = embed.NewWeightedAverage(model, idf)
		logger.Info("subword model trained", "words", model.Words(), "dim", model.Dimension())
	} else {
		builder = embed.NewPassthrough(t.encoder)
	}

	vectors, empty, err := t.embedAll(ctx, builder, docs)
	if err != nil {
		return nil, err
	}
	out.Vectors, out.Empty = vectors, empty
	if empty > 0 {
		logger.Warn("items without embedding", "count", empty)
	}

	kind, err := artifact.ResolveIndexKind(t.opts.IndexKind, len(items))
	if err != nil {
		return nil, err
	}
	idx, err := artifact.NewIndex(kind, index.Options{RunID: runID, Base: t.opts.IndexBase})
	if err != nil {
		return nil, err
	}
	for i, vec := range vectors {
		if err := idx.Add(i, vec); err != nil {
			return nil, fmt.Errorf("train: index item %d: %w", i, err)
		}
	}
	if err := idx.Build(); err != nil {
		return nil, fmt.Errorf("train: build index: %w", err)
	}
	out.Index = idx
	logger.Info("training finished", "index", kind, "dim", idx.Dim(), "elapsed", time.Since(started))
	return out, nil
}

// embedAll embeds every document concurrently. Empty embeddings become zero
// vectors; they are an error only when every document is empty.
func (t *Trainer) embedAll(ctx context.Context, builder embed.Builder, docs [][]string) ([][]float32, int, error) {
	vectors := make([][]float32, len(docs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.Workers)
	for i, doc := range docs {
		g.Go(func() error {
			vec, err := builder.Embed(gctx, doc)
			if errors.Is(err, embed.ErrEmptyEmbedding) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("train: embed item %d: %w", i, err)
			}
			vectors[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, 0, err
	}
	dim := 0
	for _, vec := range vectors {
		if len(vec) > 0 {
			if dim == 0 {
				dim = len(vec)
			} else if len(vec) != dim {
				return nil, 0, fmt.Errorf("train: inconsistent embedding dimension %d, want %d", len(vec), dim)
			}
		}
	}
	if dim == 0 {
		return nil, 0, errors.New("train: no item produced an embedding")
	}
	empty := 0
	for i := range vectors {
		if vectors[i] == nil {
			vectors[i] = make([]float32, dim)
			empty++
		}
	}
	return vectors, empty, nil
}

// Save writes the artifacts to a staging directory next to dir and then
// publishes it over dir.
func (a *Artifacts) Save(ctx context.Context, dir string) (*artifact.Manifest, error) {
	dir = filepath.Clean(dir)
	staging := dir + ".staging-" + a.RunID
	if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
		return nil, err
	}
	m, err := artifact.Save(ctx, staging, &a.Parts)
	if err != nil {
		os.RemoveAll(staging)
		return nil, err
	}
	if err := artifact.Publish(staging, dir); err != nil {
		os.RemoveAll(staging)
		return nil, err
	}
	return m, nil
}
