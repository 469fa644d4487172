package cover

import (
	"math/rand"
	"testing"

	"github.com/viant/jokeqa/index"
	"github.com/viant/jokeqa/index/bruteforce"
)

func randomVectors(rng *rand.Rand, n, dim int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = float32(rng.NormFloat64())
		}
		out[i] = vec
	}
	return out
}

func fill(t *testing.T, idx index.Index, vectors [][]float32) {
	t.Helper()
	for id, vec := range vectors {
		if err := idx.Add(id, vec); err != nil {
			t.Fatalf("Add(%d) failed: %v", id, err)
		}
	}
	if err := idx.Build(); err != nil {
		t.Fatalf("Build failed: %v", err)
	}
}

func TestQuery_AgreesWithBruteForce(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	vectors := randomVectors(rng, 300, 12)
	vectors[17] = make([]float32, 12)

	cv := New(index.Options{RunID: "r"})
	bf := bruteforce.New(index.Options{RunID: "r"})
	fill(t, cv, vectors)
	fill(t, bf, vectors)

	for _, k := range []int{1, 2, 10} {
		for q := 0; q < 25; q++ {
			query := randomVectors(rng, 1, 12)[0]
			want, err := bf.Query(query, k)
			if err != nil {
				t.Fatalf("brute Query failed: %v", err)
			}
			got, err := cv.Query(query, k)
			if err != nil {
				t.Fatalf("cover Query failed: %v", err)
			}
			if len(got) != len(want) {
				t.Fatalf("k=%d: got %d neighbors, want %d", k, len(got), len(want))
			}
			for n := range want {
				if got[n].ID != want[n].ID {
					t.Fatalf("k=%d neighbor %d: got %+v, want %+v", k, n, got[n], want[n])
				}
			}
		}
	}
}

func TestQuery_ZeroVectorsRankLast(t *testing.T) {
	cv := New(index.Options{})
	fill(t, cv, [][]float32{{0, 0}, {1, 0}, {0, 1}})
	got, err := cv.Query([]float32{1, 1}, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(got) != 3 || got[2].ID != 0 || got[2].Distance != 2 {
		t.Fatalf("zero vector must rank last at distance 2, got %+v", got)
	}
	if got[0].ID != 1 || got[1].ID != 2 {
		t.Fatalf("equidistant items must be ordered by id, got %+v", got)
	}
}

func TestMarshalBinary(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	vectors := randomVectors(rng, 50, 4)
	cv := New(index.Options{RunID: "run-7"})
	fill(t, cv, vectors)
	data, err := cv.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary failed: %v", err)
	}
	restored := New(index.Options{})
	if err := restored.UnmarshalBinary(data); err != nil {
		t.Fatalf("UnmarshalBinary failed: %v", err)
	}
	if restored.RunID() != "run-7" || restored.Len() != 50 || restored.Kind() != Kind {
		t.Fatalf("restored = %q/%d/%q", restored.RunID(), restored.Len(), restored.Kind())
	}
	bf := bruteforce.New(index.Options{})
	if err := bf.UnmarshalBinary(data); err == nil {
		t.Fatalf("brute force must reject a cover index file")
	}
	for id := 0; id < 50; id += 7 {
		got, err := restored.Query(vectors[id], 1)
		if err != nil || got[0].ID != id || got[0].Distance > 1e-6 {
			t.Fatalf("self query %d = %+v, %v", id, got, err)
		}
	}
}
