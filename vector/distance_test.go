package vector

import (
	"math"
	"testing"

	"github.com/viant/vec/search"
)

func TestCosineSimilarity(t *testing.T) {
	a := []float32{1, 0}
	b := []float32{0, 1}
	c := []float32{1, 0}

	// Orthogonal vectors -> similarity 0
	if sim, err := CosineSimilarity(a, b); err != nil || sim != 0 {
		t.Fatalf("CosineSimilarity(a,b) = %v, %v; want 0, nil", sim, err)
	}

	// Identical vectors -> similarity 1
	if sim, err := CosineSimilarity(a, c); err != nil || sim != 1 {
		t.Fatalf("CosineSimilarity(a,c) = %v, %v; want 1, nil", sim, err)
	}
}

func TestAngularDistance(t *testing.T) {
	testCases := []struct {
		name string
		a, b []float32
		want float64
	}{
		{name: "identical", a: []float32{2, 0}, b: []float32{5, 0}, want: 0},
		{name: "orthogonal", a: []float32{1, 0}, b: []float32{0, 3}, want: math.Sqrt2},
		{name: "opposite", a: []float32{1, 0}, b: []float32{-1, 0}, want: 2},
		{name: "zero side", a: []float32{0, 0}, b: []float32{1, 0}, want: MaxAngularDistance},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := AngularDistance(tc.a, tc.b)
			if err != nil {
				t.Fatalf("AngularDistance failed: %v", err)
			}
			if math.Abs(got-tc.want) > 1e-9 {
				t.Fatalf("AngularDistance = %v, want %v", got, tc.want)
			}
		})
	}
	if _, err := AngularDistance([]float32{1}, []float32{1, 2}); err == nil {
		t.Fatalf("expected dimension mismatch error")
	}
}

func TestAngularDistanceMatchesNormalizedL2(t *testing.T) {
	a := []float32{0.3, -1.2, 4}
	b := []float32{2, 0.5, -0.7}
	ang, err := AngularDistance(a, b)
	if err != nil {
		t.Fatalf("AngularDistance failed: %v", err)
	}
	l2, err := L2Distance(Normalize(a), Normalize(b))
	if err != nil {
		t.Fatalf("L2Distance failed: %v", err)
	}
	if math.Abs(ang-l2) > 1e-5 {
		t.Fatalf("angular %v != normalized l2 %v", ang, l2)
	}
}

func TestNormalize(t *testing.T) {
	u := Normalize([]float32{3, 4})
	if math.Abs(Magnitude(u)-1) > 1e-6 {
		t.Fatalf("Normalize magnitude = %v, want 1", Magnitude(u))
	}
	z := Normalize([]float32{0, 0, 0})
	if !IsZero(z) || len(z) != 3 {
		t.Fatalf("Normalize(zero) = %v, want zero vector of len 3", z)
	}
}

func TestL2Distance(t *testing.T) {
	a := []float32{0, 0}
	b := []float32{3, 4}

	d, err := L2Distance(a, b)
	if err != nil {
		t.Fatalf("L2Distance failed: %v", err)
	}
	if d != 5 {
		t.Fatalf("L2Distance(0,0)-(3,4) = %v, want 5", d)
	}
}

func TestMagnitudeAgreesWithSearch(t *testing.T) {
	for _, v := range [][]float32{{1, 2, 2}, {0.3, -1.2, 4}, {0, 0}} {
		want := float64(search.Float32s(v).Magnitude())
		if got := Magnitude(v); got != want {
			t.Fatalf("Magnitude(%v) = %v, want %v", v, got, want)
		}
	}
	if got := Magnitude([]float32{1, 2, 2}); got != 3 {
		t.Fatalf("Magnitude(1,2,2) = %v, want 3", got)
	}
	u := Normalize([]float32{0.3, -1.2, 4})
	if m := search.Float32s(u).Magnitude(); math.Abs(float64(m)-1) > 1e-6 {
		t.Fatalf("normalized magnitude = %v, want 1", m)
	}
}
