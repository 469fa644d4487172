// Package tfidf fits the term-frequency / inverse-document-frequency model
// shared by the topic classifier and the embedding weights.
package tfidf

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// DefaultMaxFeatures caps the vocabulary size.
	DefaultMaxFeatures = 10000
	// DefaultMaxN is the largest n-gram length.
	DefaultMaxN = 2
	minTermRunes = 2
)

// Options configures Fit.
type Options struct {
	MaxFeatures int
	MaxN        int
}

// Vectorizer maps lemma sequences to sparse L2-normalized TF-IDF vectors.
type Vectorizer struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
	MaxN       int            `json:"max_n"`
}

// SparseVector holds non-zero components ordered by index.
type SparseVector struct {
	Indices []int
	Values  []float64
}

// Dot returns the inner product with a dense weight vector.
func (s SparseVector) Dot(dense []float64) float64 {
	var sum float64
	for i, idx := range s.Indices {
		sum += s.Values[i] * dense[idx]
	}
	return sum
}

// Fit learns the vocabulary and idf weights from tokenized documents. Terms
// are unigrams up to MaxN-grams of consecutive tokens; tokens shorter than two
// runes are ignored. When the vocabulary exceeds MaxFeatures, the most
// frequent terms across the corpus are kept, ties broken lexicographically.
func Fit(docs [][]string, opts Options) (*Vectorizer, error) {
	if len(docs) == 0 {
		return nil, errors.New("tfidf: no documents")
	}
	if opts.MaxFeatures <= 0 {
		opts.MaxFeatures = DefaultMaxFeatures
	}
	if opts.MaxN <= 0 {
		opts.MaxN = DefaultMaxN
	}
	termFreq := map[string]int{}
	docFreq := map[string]int{}
	for _, doc := range docs {
		seen := map[string]struct{}{}
		for _, term := range analyze(doc, opts.MaxN) {
			termFreq[term]++
			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}
	if len(termFreq) == 0 {
		return nil, errors.New("tfidf: empty vocabulary")
	}
	terms := make([]string, 0, len(termFreq))
	for term := range termFreq {
		terms = append(terms, term)
	}
	if len(terms) > opts.MaxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if termFreq[terms[i]] != termFreq[terms[j]] {
				return termFreq[terms[i]] > termFreq[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:opts.MaxFeatures]
	}
	sort.Strings(terms)
	n := float64(len(docs))
	v := &Vectorizer{Vocabulary: make(map[string]int, len(terms)), IDF: make([]float64, len(terms)), MaxN: opts.MaxN}
	for i, term := range terms {
		v.Vocabulary[term] = i
		v.IDF[i] = math.Log((1+n)/(1+float64(docFreq[term]))) + 1
	}
	return v, nil
}

// Features returns the vocabulary size.
func (v *Vectorizer) Features() int { return len(v.IDF) }

// Validate checks the vocabulary and idf slice agree.
func (v *Vectorizer) Validate() error {
	if len(v.Vocabulary) != len(v.IDF) {
		return fmt.Errorf("tfidf: vocabulary size %d != idf size %d", len(v.Vocabulary), len(v.IDF))
	}
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("tfidf: term %q has index %d out of range", term, idx)
		}
	}
	return nil
}

// Transform returns the L2-normalized TF-IDF vector of tokens. Unknown terms
// are ignored; a document with no known terms yields an empty vector.
func (v *Vectorizer) Transform(tokens []string) SparseVector {
	counts := map[int]float64{}
	for _, term := range analyze(tokens, v.maxN()) {
		if idx, ok := v.Vocabulary[term]; ok {
			counts[idx]++
		}
	}
	out := SparseVector{Indices: make([]int, 0, len(counts)), Values: make([]float64, 0, len(counts))}
	for idx := range counts {
		out.Indices = append(out.Indices, idx)
	}
	sort.Ints(out.Indices)
	var norm float64
	for _, idx := range out.Indices {
		w := counts[idx] * v.IDF[idx]
		out.Values = append(out.Values, w)
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range out.Values {
			out.Values[i] /= norm
		}
	}
	return out
}

// IdfTable exposes the fitted idf weights keyed by term.
func (v *Vectorizer) IdfTable() *IdfTable {
	terms := make([]string, len(v.IDF))
	for term, idx := range v.Vocabulary {
		terms[idx] = term
	}
	weights := make(map[string]float64, len(terms))
	var sum float64
	for idx, term := range terms {
		weights[term] = v.IDF[idx]
		sum += v.IDF[idx]
	}
	mean := 0.0
	if len(terms) > 0 {
		mean = sum / float64(len(terms))
	}
	return &IdfTable{Weights: weights, Mean: mean}
}

func (v *Vectorizer) maxN() int {
	if v.MaxN <= 0 {
		return DefaultMaxN
	}
	return v.MaxN
}

func analyze(tokens []string, maxN int) []string {
	kept := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if utf8.RuneCountInString(token) >= minTermRunes {
			kept = append(kept, token)
		}
	}
	terms := make([]string, 0, len(kept)*maxN)
	for n := 1; n <= maxN; n++ {
		for i := 0; i+n <= len(kept); i++ {
			terms = append(terms, strings.Join(kept[i:i+n], " "))
		}
	}
	return terms
}
