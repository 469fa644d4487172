package bruteforce

import (
	"fmt"

	"github.com/viant/jokeqa/index"
	"github.com/viant/jokeqa/vector"
	"github.com/viant/vec/search"
)

// Kind names this implementation in index headers and configuration.
const Kind = "brute"

// Index is an exact angular-distance index that scans every item.
type Index struct {
	staging index.Staging
	runID   string
	dim     int
	units   [][]float32
	zero    []bool
	raw     [][]float32
	built   bool
}

// New constructs an empty brute-force index.
func New(opts index.Options) *Index {
	return &Index{runID: opts.RunID}
}

// Add stages a vector.
func (i *Index) Add(id int, vec []float32) error {
	if i.built {
		return index.ErrBuilt
	}
	return i.staging.Add(id, vec)
}

// Build normalizes staged vectors.
func (i *Index) Build() error {
	if i.built {
		return index.ErrBuilt
	}
	vectors, err := i.staging.Seal()
	if err != nil {
		return fmt.Errorf("bruteforce: %w", err)
	}
	i.load(vectors)
	return nil
}

func (i *Index) load(vectors [][]float32) {
	i.raw = vectors
	i.dim = len(vectors[0])
	i.units = make([][]float32, len(vectors))
	i.zero = make([]bool, len(vectors))
	for id, vec := range vectors {
		i.zero[id] = vector.IsZero(vec)
		i.units[id] = vector.Normalize(vec)
	}
	i.built = true
}

// Query returns the k nearest items by angular distance.
func (i *Index) Query(query []float32, k int) ([]index.Neighbor, error) {
	if !i.built {
		return nil, index.ErrNotBuilt
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("bruteforce: query dim %d != index dim %d", len(query), i.dim)
	}
	if vector.IsZero(query) {
		return nil, index.ErrZeroQuery
	}
	q := search.Float32s(vector.Normalize(query))
	out := make([]index.Neighbor, len(i.units))
	for id, unit := range i.units {
		d := vector.MaxAngularDistance
		if !i.zero[id] {
			d = float64(q.EuclideanDistance(unit))
		}
		out[id] = index.Neighbor{ID: id, Distance: d}
	}
	index.SortNeighbors(out)
	if k > 0 && k < len(out) {
		out = out[:k]
	}
	return out, nil
}

// Len returns the number of items.
func (i *Index) Len() int { return len(i.units) }

// Dim returns the vector dimension.
func (i *Index) Dim() int { return i.dim }

// Kind returns "brute".
func (i *Index) Kind() string { return Kind }

// RunID returns the training run id.
func (i *Index) RunID() string { return i.runID }

// MarshalBinary serializes the raw vectors with the shared index header.
func (i *Index) MarshalBinary() ([]byte, error) {
	if !i.built {
		return nil, index.ErrNotBuilt
	}
	return index.Encode(index.Header{Kind: Kind, Dim: i.dim, Count: len(i.raw), RunID: i.runID}, i.raw), nil
}

// UnmarshalBinary restores a built index.
func (i *Index) UnmarshalBinary(data []byte) error {
	h, vectors, err := index.Decode(data)
	if err != nil {
		return err
	}
	if h.Kind != Kind {
		return fmt.Errorf("bruteforce: cannot load %q index", h.Kind)
	}
	if h.Count == 0 {
		return fmt.Errorf("bruteforce: empty index")
	}
	i.runID = h.RunID
	i.load(vectors)
	return nil
}
