package classify

import (
	"errors"
	"fmt"
	"math"

	"github.com/viant/jokeqa/tfidf"
)

// TrainOptions configures the linear SVM.
type TrainOptions struct {
	C       float64
	MaxIter int
	Tol     float64
}

// DefaultTrainOptions returns C=1, 1000 iterations and tolerance 1e-4.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{C: 1, MaxIter: 1000, Tol: 1e-4}
}

func (o *TrainOptions) applyDefaults() {
	d := DefaultTrainOptions()
	if o.C <= 0 {
		o.C = d.C
	}
	if o.MaxIter <= 0 {
		o.MaxIter = d.MaxIter
	}
	if o.Tol <= 0 {
		o.Tol = d.Tol
	}
}

// SVM is a one-vs-rest linear classifier trained on the L2-regularized
// squared hinge loss in the primal. Each weight row carries the bias as its
// last component. Two classes share a single row whose positive side is
// class 1; a single class has no rows.
type SVM struct {
	Classes  int         `json:"classes"`
	Features int         `json:"features"`
	Weights  [][]float64 `json:"weights"`
}

// TrainSVM fits the classifier on sparse rows x with class labels y.
func TrainSVM(x []tfidf.SparseVector, y []int, features, classes int, opts TrainOptions) (*SVM, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf("classify: %d rows but %d labels", len(x), len(y))
	}
	if len(x) == 0 || classes == 0 {
		return nil, errors.New("classify: no training data")
	}
	opts.applyDefaults()
	s := &SVM{Classes: classes, Features: features}
	switch {
	case classes == 1:
		return s, nil
	case classes == 2:
		s.Weights = [][]float64{fitBinary(x, signs(y, 1), features, opts)}
	default:
		s.Weights = make([][]float64, classes)
		for c := 0; c < classes; c++ {
			s.Weights[c] = fitBinary(x, signs(y, c), features, opts)
		}
	}
	return s, nil
}

// Decision returns one score per weight row.
func (s *SVM) Decision(x tfidf.SparseVector) []float64 {
	out := make([]float64, len(s.Weights))
	for c, w := range s.Weights {
		out[c] = x.Dot(w) + w[s.Features]
	}
	return out
}

// Predict returns the class index with the highest decision value, ties to
// the lowest index.
func (s *SVM) Predict(x tfidf.SparseVector) int {
	scores := s.Decision(x)
	switch len(scores) {
	case 0:
		return 0
	case 1:
		if scores[0] > 0 {
			return 1
		}
		return 0
	}
	best := 0
	for c := 1; c < len(scores); c++ {
		if scores[c] > scores[best] {
			best = c
		}
	}
	return best
}

// Validate checks the weight shape.
func (s *SVM) Validate() error {
	want := s.Classes
	switch {
	case s.Classes == 1:
		want = 0
	case s.Classes == 2:
		want = 1
	}
	if len(s.Weights) != want {
		return fmt.Errorf("classify: %d weight rows for %d classes", len(s.Weights), s.Classes)
	}
	for _, w := range s.Weights {
		if len(w) != s.Features+1 {
			return fmt.Errorf("classify: weight row of %d, want %d", len(w), s.Features+1)
		}
	}
	return nil
}

func signs(y []int, positive int) []float64 {
	out := make([]float64, len(y))
	for i, label := range y {
		out[i] = -1
		if label == positive {
			out[i] = 1
		}
	}
	return out
}

// fitBinary minimizes 0.5*|w|^2 + C*sum(max(0, 1 - y*w.x)^2) by gradient
// descent with Armijo backtracking; the bias is w[features] and is
// regularized like any other weight.
func fitBinary(x []tfidf.SparseVector, y []float64, features int, opts TrainOptions) []float64 {
	w := make([]float64, features+1)
	margins := make([]float64, len(x))
	grad := make([]float64, features+1)
	candidate := make([]float64, features+1)

	objective := func(w []float64, margins []float64) float64 {
		var f float64
		for _, v := range w {
			f += v * v
		}
		f *= 0.5
		for i := range x {
			margins[i] = x[i].Dot(w) + w[features]
			if slack := 1 - y[i]*margins[i]; slack > 0 {
				f += opts.C * slack * slack
			}
		}
		return f
	}
	gradient := func() float64 {
		copy(grad, w)
		for i := range x {
			slack := 1 - y[i]*margins[i]
			if slack <= 0 {
				continue
			}
			coef := -2 * opts.C * slack * y[i]
			for j, idx := range x[i].Indices {
				grad[idx] += coef * x[i].Values[j]
			}
			grad[features] += coef
		}
		var norm float64
		for _, g := range grad {
			norm += g * g
		}
		return math.Sqrt(norm)
	}

	f := objective(w, margins)
	g0 := gradient()
	if g0 == 0 {
		return w
	}
	trial := make([]float64, len(x))
	step := 1.0
	gnorm := g0
	for iter := 0; iter < opts.MaxIter && gnorm > opts.Tol*g0; iter++ {
		accepted := false
		for attempt := 0; attempt < 60; attempt++ {
			for j := range w {
				candidate[j] = w[j] - step*grad[j]
			}
			fc := objective(candidate, trial)
			if fc <= f-1e-4*step*gnorm*gnorm {
				copy(w, candidate)
				copy(margins, trial)
				f = fc
				accepted = true
				break
			}
			step /= 2
		}
		if !accepted {
			break
		}
		gnorm = gradient()
		step *= 2
	}
	return w
}
