package artifact

import (
	"context"
	"fmt"

	"github.com/viant/jokeqa/vector"
)

// RecallReport summarizes how well the index agrees with an exact scan of
// the corpus store.
type RecallReport struct {
	Queries int     `json:"queries"`
	K       int     `json:"k"`
	Hits    int     `json:"hits"`
	Total   int     `json:"total"`
	Recall  float64 `json:"recall"`
}

// Recall queries the index with the stored embeddings of up to sample
// evenly spaced items and compares the top-k ids with Store.Nearest. Items
// with a zero embedding are skipped.
func (s *Set) Recall(ctx context.Context, sample, k int) (*RecallReport, error) {
	n := s.Index.Len()
	if sample <= 0 || sample > n {
		sample = n
	}
	if k <= 0 {
		k = 1
	}
	report := &RecallReport{K: k}
	step := n / sample
	for i := 0; i < sample; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		id := i * step
		vec, err := s.Corpus.Embedding(ctx, id)
		if err != nil {
			return nil, err
		}
		if vector.IsZero(vec) {
			continue
		}
		got, err := s.Index.Query(vec, k)
		if err != nil {
			return nil, fmt.Errorf("artifact: query item %d: %w", id, err)
		}
		want, err := s.Corpus.Nearest(ctx, vec, k)
		if err != nil {
			return nil, err
		}
		expected := make(map[int]bool, len(want))
		for _, m := range want {
			expected[m.ID] = true
		}
		for _, nb := range got {
			if expected[nb.ID] {
				report.Hits++
			}
		}
		report.Total += len(want)
		report.Queries++
	}
	if report.Total > 0 {
		report.Recall = float64(report.Hits) / float64(report.Total)
	}
	return report, nil
}
