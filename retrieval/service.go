// Package retrieval answers free-text queries by nearest-neighbor lookup over
// the embedded corpus, with a topic-classifier fallback when no item is close
// enough.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/viant/jokeqa/corpus"
	"github.com/viant/jokeqa/embed"
	"github.com/viant/jokeqa/index"
	"github.com/viant/jokeqa/internal/logging"
)

// Normalizer turns text into lemmas.
type Normalizer interface {
	Normalize(text string) []string
}

// Searcher runs k-NN queries.
type Searcher interface {
	Query(vector []float32, k int) ([]index.Neighbor, error)
}

// ItemSource resolves index ids to corpus items.
type ItemSource interface {
	Get(id int) (*corpus.Item, error)
}

// Service is the query orchestrator. Its collaborators are read-only after
// construction, so one Service serves concurrent queries.
type Service struct {
	normalizer Normalizer
	embedder   embed.Builder
	searcher   Searcher
	items      ItemSource
	strategy   Strategy
	logger     *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger overrides the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService wires the pipeline.
func NewService(normalizer Normalizer, embedder embed.Builder, searcher Searcher, items ItemSource, strategy Strategy, opts ...Option) *Service {
	s := &Service{
		normalizer: normalizer,
		embedder:   embedder,
		searcher:   searcher,
		items:      items,
		strategy:   strategy,
		logger:     logging.Component("retrieval"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Strategy returns the configured strategy.
func (s *Service) Strategy() Strategy { return s.strategy }

// SubmitQuery answers text. Every failure is returned as an *Error.
func (s *Service) SubmitQuery(ctx context.Context, text string) (res *Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, newError(KindInternal, "submit", fmt.Errorf("panic: %v", r))
		}
		if err != nil {
			level := slog.LevelError
			if KindOf(err).Malformed() {
				level = slog.LevelDebug
			}
			s.logger.Log(ctx, level, "query failed", "kind", KindOf(err).String(), "err", err)
		}
	}()
	if strings.TrimSpace(text) == "" {
		return nil, newError(KindMalformedRequest, "normalize", errors.New("empty query"))
	}
	lemmas := s.normalizer.Normalize(text)
	if len(lemmas) == 0 {
		return nil, newError(KindMalformedRequest, "normalize", errors.New("query has no usable tokens"))
	}
	vec, err := s.embedder.Embed(ctx, lemmas)
	switch {
	case errors.Is(err, embed.ErrEmptyEmbedding):
		return nil, newError(KindNoUsableEmbedding, "embed", err)
	case err != nil:
		return nil, newError(KindInternal, "embed", err)
	}
	neighbors, err := s.searcher.Query(vec, s.strategy.Neighbors())
	switch {
	case errors.Is(err, index.ErrZeroQuery):
		return nil, newError(KindNoUsableEmbedding, "search", err)
	case err != nil:
		return nil, newError(KindInternal, "search", err)
	}
	candidates := make([]Candidate, 0, len(neighbors))
	for _, n := range neighbors {
		item, err := s.items.Get(n.ID)
		if err != nil {
			return nil, newError(KindInternal, "resolve", err)
		}
		candidates = append(candidates, Candidate{ID: item.ID, Topic: item.Topic, Text: item.Text, Distance: n.Distance})
	}
	res, err = s.strategy.Decide(ctx, lemmas, candidates)
	if err != nil {
		var re *Error
		if !errors.As(err, &re) {
			err = newError(KindInternal, "decide", err)
		}
		return nil, err
	}
	if res.Source == SourceFallback {
		s.logger.Warn("answered by fallback", "topic", res.Topic, "distance", res.Distance)
	} else {
		s.logger.Debug("answered directly", "strategy", s.strategy.Name(), "distance", res.Distance)
	}
	return res, nil
}
