// Package classify predicts the topic of a lemma sequence with a TF-IDF
// representation and a linear squared-hinge SVM. It backs the retrieval
// fallback when no indexed item is close enough to the query.
package classify

import (
	"errors"
	"fmt"

	"github.com/viant/jokeqa/tfidf"
)

// Options configures Train.
type Options struct {
	TFIDF tfidf.Options
	SVM   TrainOptions
}

// Model bundles the vectorizer, classifier and label encoder so they are
// always persisted and loaded together.
type Model struct {
	Vectorizer *tfidf.Vectorizer `json:"vectorizer"`
	Labels     *LabelEncoder     `json:"labels"`
	SVM        *SVM              `json:"svm"`
}

// Train fits the model on tokenized documents and their topics.
func Train(docs [][]string, topics []string, opts Options) (*Model, error) {
	if len(docs) != len(topics) {
		return nil, fmt.Errorf("classify: %d documents but %d topics", len(docs), len(topics))
	}
	vectorizer, err := tfidf.Fit(docs, opts.TFIDF)
	if err != nil {
		return nil, fmt.Errorf("classify: %w", err)
	}
	labels := FitLabels(topics)
	x := make([]tfidf.SparseVector, len(docs))
	y := make([]int, len(docs))
	for i, doc := range docs {
		x[i] = vectorizer.Transform(doc)
		if y[i], err = labels.Encode(topics[i]); err != nil {
			return nil, err
		}
	}
	svm, err := TrainSVM(x, y, vectorizer.Features(), labels.Len(), opts.SVM)
	if err != nil {
		return nil, err
	}
	return &Model{Vectorizer: vectorizer, Labels: labels, SVM: svm}, nil
}

// PredictTopic returns the topic label for lemmas.
func (m *Model) PredictTopic(lemmas []string) (string, error) {
	return m.Labels.Decode(m.SVM.Predict(m.Vectorizer.Transform(lemmas)))
}

// Topics returns the known topic labels in class order.
func (m *Model) Topics() []string { return append([]string(nil), m.Labels.Classes...) }

// Validate checks that the parts agree with each other.
func (m *Model) Validate() error {
	if m.Vectorizer == nil || m.Labels == nil || m.SVM == nil {
		return errors.New("classify: incomplete model")
	}
	if err := m.Vectorizer.Validate(); err != nil {
		return err
	}
	if err := m.SVM.Validate(); err != nil {
		return err
	}
	if m.SVM.Features != m.Vectorizer.Features() {
		return fmt.Errorf("classify: svm has %d features, vectorizer %d", m.SVM.Features, m.Vectorizer.Features())
	}
	if m.SVM.Classes != m.Labels.Len() {
		return fmt.Errorf("classify: svm has %d classes, labels %d", m.SVM.Classes, m.Labels.Len())
	}
	return nil
}
