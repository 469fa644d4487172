package subword

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
)

// Options configures training.
type Options struct {
	Dim          int
	Window       int
	Epochs       int
	Negative     int
	MinCount     int
	MinN         int
	MaxN         int
	Buckets      uint32
	LearningRate float64
	Seed         int64
}

// DefaultOptions mirrors the reference training setup: 30 dimensions, window
// 5, min count 1 and n-grams of 3 to 6 characters.
func DefaultOptions() Options {
	return Options{
		Dim:          30,
		Window:       5,
		Epochs:       5,
		Negative:     5,
		MinCount:     1,
		MinN:         3,
		MaxN:         6,
		Buckets:      2000000,
		LearningRate: 0.05,
		Seed:         1,
	}
}

func (o *Options) applyDefaults() {
	d := DefaultOptions()
	if o.Dim <= 0 {
		o.Dim = d.Dim
	}
	if o.Window <= 0 {
		o.Window = d.Window
	}
	if o.Epochs <= 0 {
		o.Epochs = d.Epochs
	}
	if o.Negative < 0 {
		o.Negative = d.Negative
	}
	if o.MinCount <= 0 {
		o.MinCount = d.MinCount
	}
	if o.MinN <= 0 {
		o.MinN = d.MinN
	}
	if o.MaxN < o.MinN {
		o.MaxN = max(d.MaxN, o.MinN)
	}
	if o.Buckets == 0 {
		o.Buckets = d.Buckets
	}
	if o.LearningRate <= 0 {
		o.LearningRate = d.LearningRate
	}
}

// Model holds word and n-gram input vectors. Only n-gram buckets observed in
// training are stored. A Model is immutable after Train and safe for
// concurrent reads.
type Model struct {
	dim       int
	minN      int
	maxN      int
	buckets   uint32
	words     []string
	index     map[string]int
	wordVecs  [][]float32
	ngramVecs map[uint32][]float32
}

// Dimension returns the vector size.
func (m *Model) Dimension() int { return m.dim }

// Words returns the vocabulary size.
func (m *Model) Words() int { return len(m.words) }

// Vector returns the average of the word's own vector (when in vocabulary)
// and the vectors of its observed n-grams. It reports false when the word
// has neither.
func (m *Model) Vector(word string) ([]float32, bool) {
	rows := m.rows(word)
	if len(rows) == 0 {
		return nil, false
	}
	out := make([]float32, m.dim)
	for _, row := range rows {
		for i, v := range row {
			out[i] += v
		}
	}
	scale := 1 / float32(len(rows))
	for i := range out {
		out[i] *= scale
	}
	return out, true
}

func (m *Model) rows(word string) [][]float32 {
	var rows [][]float32
	if idx, ok := m.index[word]; ok {
		rows = append(rows, m.wordVecs[idx])
	}
	for _, b := range ngramBuckets(word, m.minN, m.maxN, m.buckets) {
		if vec, ok := m.ngramVecs[b]; ok {
			rows = append(rows, vec)
		}
	}
	return rows
}

// Train fits a skip-gram model with negative sampling over sentences of
// lemmas. Training is single-threaded and fully determined by opts.Seed.
func Train(ctx context.Context, sentences [][]string, opts Options) (*Model, error) {
	opts.applyDefaults()
	counts := map[string]int{}
	var total int
	for _, sentence := range sentences {
		for _, w := range sentence {
			counts[w]++
			total++
		}
	}
	words := make([]string, 0, len(counts))
	for w, c := range counts {
		if c >= opts.MinCount {
			words = append(words, w)
		}
	}
	if len(words) == 0 {
		return nil, errors.New("subword: empty vocabulary")
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})

	rng := rand.New(rand.NewSource(opts.Seed))
	m := &Model{
		dim:       opts.Dim,
		minN:      opts.MinN,
		maxN:      opts.MaxN,
		buckets:   opts.Buckets,
		words:     words,
		index:     make(map[string]int, len(words)),
		wordVecs:  make([][]float32, len(words)),
		ngramVecs: map[uint32][]float32{},
	}
	bound := 1 / float64(opts.Dim)
	uniform := func() []float32 {
		v := make([]float32, opts.Dim)
		for i := range v {
			v[i] = float32((rng.Float64()*2 - 1) * bound)
		}
		return v
	}
	inputs := make([][][]float32, len(words))
	for i, w := range words {
		m.index[w] = i
		m.wordVecs[i] = uniform()
		rows := [][]float32{m.wordVecs[i]}
		for _, b := range ngramBuckets(w, opts.MinN, opts.MaxN, opts.Buckets) {
			vec, ok := m.ngramVecs[b]
			if !ok {
				vec = uniform()
				m.ngramVecs[b] = vec
			}
			rows = append(rows, vec)
		}
		inputs[i] = rows
	}

	t := &trainer{
		opts:    opts,
		rng:     rng,
		inputs:  inputs,
		output:  make([][]float32, len(words)),
		hidden:  make([]float32, opts.Dim),
		grad:    make([]float32, opts.Dim),
		sampler: newUnigramSampler(words, counts),
	}
	for i := range t.output {
		t.output[i] = make([]float32, opts.Dim)
	}
	budget := float64(opts.Epochs * total)
	var processed float64
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		for _, sentence := range sentences {
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("subword: training interrupted: %w", err)
			}
			ids := make([]int, 0, len(sentence))
			for _, w := range sentence {
				if idx, ok := m.index[w]; ok {
					ids = append(ids, idx)
				}
			}
			lr := opts.LearningRate * (1 - processed/budget)
			t.skipgram(ids, lr)
			processed += float64(len(sentence))
		}
	}
	return m, nil
}

type trainer struct {
	opts    Options
	rng     *rand.Rand
	inputs  [][][]float32
	output  [][]float32
	hidden  []float32
	grad    []float32
	sampler *unigramSampler
}

func (t *trainer) skipgram(ids []int, lr float64) {
	for i, center := range ids {
		span := 1 + t.rng.Intn(t.opts.Window)
		for j := i - span; j <= i+span; j++ {
			if j < 0 || j >= len(ids) || j == i {
				continue
			}
			t.update(t.inputs[center], ids[j], lr)
		}
	}
}

func (t *trainer) update(rows [][]float32, target int, lr float64) {
	for i := range t.hidden {
		t.hidden[i] = 0
		t.grad[i] = 0
	}
	for _, row := range rows {
		for i, v := range row {
			t.hidden[i] += v
		}
	}
	scale := 1 / float32(len(rows))
	for i := range t.hidden {
		t.hidden[i] *= scale
	}
	t.binaryLogistic(target, true, lr)
	if len(t.output) > 1 {
		for n := 0; n < t.opts.Negative; n++ {
			neg := t.sampler.sample(t.rng)
			for neg == target {
				neg = t.sampler.sample(t.rng)
			}
			t.binaryLogistic(neg, false, lr)
		}
	}
	// The hidden layer averaged the rows, so each row gets its share.
	for _, row := range rows {
		for i := range row {
			row[i] += t.grad[i] * scale
		}
	}
}

func (t *trainer) binaryLogistic(target int, positive bool, lr float64) {
	out := t.output[target]
	var dot float64
	for i := range out {
		dot += float64(out[i]) * float64(t.hidden[i])
	}
	label := 0.0
	if positive {
		label = 1
	}
	g := float32(lr * (label - sigmoid(dot)))
	for i := range out {
		t.grad[i] += g * out[i]
		out[i] += g * t.hidden[i]
	}
}

func sigmoid(x float64) float64 {
	if x < -8 {
		return 0
	}
	if x > 8 {
		return 1
	}
	return 1 / (1 + math.Exp(-x))
}

// unigramSampler draws negatives proportionally to count^0.75.
type unigramSampler struct {
	cumulative []float64
}

func newUnigramSampler(words []string, counts map[string]int) *unigramSampler {
	s := &unigramSampler{cumulative: make([]float64, len(words))}
	var sum float64
	for i, w := range words {
		sum += math.Pow(float64(counts[w]), 0.75)
		s.cumulative[i] = sum
	}
	for i := range s.cumulative {
		s.cumulative[i] /= sum
	}
	return s
}

func (s *unigramSampler) sample(rng *rand.Rand) int {
	r := rng.Float64()
	idx := sort.SearchFloat64s(s.cumulative, r)
	if idx >= len(s.cumulative) {
		idx = len(s.cumulative) - 1
	}
	return idx
}
