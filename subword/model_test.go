package subword

import (
	"context"
	"math"
	"reflect"
	"testing"
)

var sentences = [][]string{
	{"кот", "сидел", "на", "окне"},
	{"кошка", "спала", "на", "окне"},
	{"собака", "лаяла", "во", "дворе"},
	{"кот", "и", "собака", "дружили"},
}

func smallOptions() Options {
	opts := DefaultOptions()
	opts.Dim = 8
	opts.Epochs = 3
	return opts
}

func TestTrain_Deterministic(t *testing.T) {
	a, err := Train(context.Background(), sentences, smallOptions())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	b, err := Train(context.Background(), sentences, smallOptions())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	for _, w := range []string{"кот", "окне", "котик"} {
		va, okA := a.Vector(w)
		vb, okB := b.Vector(w)
		if okA != okB || !reflect.DeepEqual(va, vb) {
			t.Fatalf("Vector(%q) differs between identical runs", w)
		}
	}
}

func TestVector_Coverage(t *testing.T) {
	m, err := Train(context.Background(), sentences, smallOptions())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if m.Dimension() != 8 || m.Words() != 12 {
		t.Fatalf("Dimension/Words = %d/%d, want 8/12", m.Dimension(), m.Words())
	}
	if v, ok := m.Vector("кот"); !ok || len(v) != 8 {
		t.Fatalf("in-vocabulary word must have a vector")
	}
	// shares "<ко" and "кот" n-grams with the vocabulary
	if _, ok := m.Vector("котик"); !ok {
		t.Fatalf("out-of-vocabulary word with known n-grams must have a vector")
	}
	if _, ok := m.Vector("qwzx"); ok {
		t.Fatalf("word with no observed n-grams must not have a vector")
	}
}

func TestTrain_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Train(ctx, sentences, smallOptions()); err == nil {
		t.Fatalf("expected error for cancelled context")
	}
}

func TestMarshalBinary(t *testing.T) {
	m, err := Train(context.Background(), sentences, smallOptions())
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	data, err := m.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	var restored Model
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	for _, w := range []string{"собака", "собачка", "qwzx"} {
		want, okWant := m.Vector(w)
		got, okGot := restored.Vector(w)
		if okWant != okGot || !reflect.DeepEqual(want, got) {
			t.Fatalf("Vector(%q) changed after round trip", w)
		}
	}
	if err := restored.UnmarshalBinary(data[:len(data)-3]); err == nil {
		t.Fatalf("expected error for truncated data")
	}
}

func TestUpdate_SplitsGradientAcrossRows(t *testing.T) {
	const lr = 0.1
	for _, n := range []int{1, 4} {
		rows := make([][]float32, n)
		for i := range rows {
			rows[i] = []float32{0.1, 0.1}
		}
		tr := &trainer{
			opts:   Options{Dim: 2},
			output: [][]float32{{0.5, 0.5}},
			hidden: make([]float32, 2),
			grad:   make([]float32, 2),
		}
		tr.update(rows, 0, lr)

		g := float32(lr * (1 - sigmoid(0.1)))
		want := 0.1 + g*0.5/float32(n)
		for i, row := range rows {
			for j, v := range row {
				if math.Abs(float64(v-want)) > 1e-7 {
					t.Fatalf("n=%d row %d[%d] = %v, want %v", n, i, j, v, want)
				}
			}
		}
	}
}
