package index

import "fmt"

// Staging collects (id, vector) pairs before Build and checks that the ids
// form the dense range [0, n).
type Staging struct {
	dim     int
	vectors [][]float32
	present []bool
}

// Add stages a copy of vector under id.
func (s *Staging) Add(id int, vector []float32) error {
	if id < 0 {
		return fmt.Errorf("index: negative id %d", id)
	}
	if len(vector) == 0 {
		return fmt.Errorf("index: empty vector for id %d", id)
	}
	if s.dim == 0 {
		s.dim = len(vector)
	} else if len(vector) != s.dim {
		return fmt.Errorf("index: vector dim %d for id %d, want %d", len(vector), id, s.dim)
	}
	for id >= len(s.vectors) {
		s.vectors = append(s.vectors, nil)
		s.present = append(s.present, false)
	}
	if s.present[id] {
		return fmt.Errorf("index: duplicate id %d", id)
	}
	s.vectors[id] = append([]float32(nil), vector...)
	s.present[id] = true
	return nil
}

// Dim returns the dimension of the staged vectors.
func (s *Staging) Dim() int { return s.dim }

// Seal returns the staged vectors ordered by id.
func (s *Staging) Seal() ([][]float32, error) {
	if len(s.vectors) == 0 {
		return nil, fmt.Errorf("index: no vectors staged")
	}
	for id, ok := range s.present {
		if !ok {
			return nil, fmt.Errorf("index: id %d missing, ids must be dense in [0, %d)", id, len(s.vectors))
		}
	}
	out := s.vectors
	s.vectors, s.present = nil, nil
	return out, nil
}
