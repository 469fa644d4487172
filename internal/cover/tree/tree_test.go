package tree

import (
	"math"
	"math/rand"
	"sort"
	"testing"
)

func unit(v []float32) []float32 {
	var s float64
	for _, x := range v {
		s += float64(x) * float64(x)
	}
	if s == 0 {
		return v
	}
	n := float32(1 / math.Sqrt(s))
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = x * n
	}
	return out
}

func TestKNearestNeighbors_MatchesExhaustive(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	tr := NewTree(1.3, nil)
	var points []*Point
	for id := 0; id < 500; id++ {
		vec := make([]float32, 8)
		for j := range vec {
			vec[j] = float32(rng.NormFloat64())
		}
		p := NewPoint(id, unit(vec))
		points = append(points, p)
		if err := tr.Insert(p); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	tr.Freeze()
	if tr.Len() != 500 {
		t.Fatalf("Len = %d, want 500", tr.Len())
	}
	if err := tr.Insert(NewPoint(500, points[0].Vector)); err != ErrFrozen {
		t.Fatalf("Insert after Freeze err = %v, want ErrFrozen", err)
	}
	for q := 0; q < 20; q++ {
		vec := make([]float32, 8)
		for j := range vec {
			vec[j] = float32(rng.NormFloat64())
		}
		query := NewPoint(-1, unit(vec))
		got := tr.KNearestNeighbors(query, 5)

		type pair struct {
			id int
			d  float32
		}
		all := make([]pair, len(points))
		for i, p := range points {
			all[i] = pair{id: p.ID, d: EuclideanDistance(query, p)}
		}
		sort.Slice(all, func(i, j int) bool {
			if all[i].d != all[j].d {
				return all[i].d < all[j].d
			}
			return all[i].id < all[j].id
		})
		if len(got) != 5 {
			t.Fatalf("got %d neighbors, want 5", len(got))
		}
		for n := range got {
			if got[n].Point.ID != all[n].id {
				t.Fatalf("query %d neighbor %d = %d (%v), want %d (%v)", q, n, got[n].Point.ID, got[n].Distance, all[n].id, all[n].d)
			}
		}
	}
}

func TestKNearestNeighbors_Duplicates(t *testing.T) {
	tr := NewTree(2, nil)
	for id := 0; id < 4; id++ {
		if err := tr.Insert(NewPoint(id, []float32{1, 0})); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}
	tr.Freeze()
	got := tr.KNearestNeighbors(NewPoint(-1, []float32{1, 0}), 2)
	if len(got) != 2 || got[0].Point.ID != 0 || got[1].Point.ID != 1 {
		t.Fatalf("duplicates must resolve to lowest ids, got %+v", got)
	}
	if tr.KNearestNeighbors(NewPoint(-1, []float32{1, 0}), 0) != nil {
		t.Fatalf("k=0 must return nil")
	}
}
