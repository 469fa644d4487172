package vector

import (
	"fmt"
	"math"

	"github.com/viant/vec/search"
)

// MaxAngularDistance is the angular distance reported when either side has
// zero magnitude: the distance between two opposite unit vectors.
const MaxAngularDistance = 2.0

// CosineSimilarity computes the cosine similarity between two vectors. It
// returns an error if the vectors have different lengths or if either vector
// has zero magnitude.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: cosine similarity dimension mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("vector: cosine similarity on empty vectors")
	}
	var dot, na2, nb2 float64
	for i := range a {
		va := float64(a[i])
		vb := float64(b[i])
		dot += va * vb
		na2 += va * va
		nb2 += vb * vb
	}
	if na2 == 0 || nb2 == 0 {
		return 0, fmt.Errorf("vector: cosine similarity with zero-magnitude vector")
	}
	return dot / (math.Sqrt(na2) * math.Sqrt(nb2)), nil
}

// AngularDistance returns sqrt(2 - 2*cos(a, b)), the Euclidean distance
// between the unit-normalized inputs. The value lies in [0, 2]. A
// zero-magnitude input yields MaxAngularDistance.
func AngularDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: angular distance dimension mismatch: %d vs %d", len(a), len(b))
	}
	if Magnitude(a) == 0 || Magnitude(b) == 0 {
		return MaxAngularDistance, nil
	}
	cos, err := CosineSimilarity(a, b)
	if err != nil {
		return 0, err
	}
	d := 2 - 2*cos
	if d < 0 {
		d = 0
	}
	return math.Sqrt(d), nil
}

// L2Distance computes the Euclidean (L2) distance between two vectors. It
// returns an error if the vectors have different lengths.
func L2Distance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector: L2 distance dimension mismatch: %d vs %d", len(a), len(b))
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// Magnitude returns the Euclidean norm of v.
func Magnitude(v []float32) float64 {
	return float64(search.Float32s(v).Magnitude())
}

// Normalize returns a unit-length copy of v. A zero vector is returned as a
// zero copy; callers check IsZero before relying on the direction.
func Normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	m := search.Float32s(v).Magnitude()
	if m == 0 {
		return out
	}
	for i, x := range v {
		out[i] = x / m
	}
	return out
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float32) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
