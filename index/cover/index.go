package cover

import (
	"fmt"

	"github.com/viant/jokeqa/index"
	"github.com/viant/jokeqa/internal/cover/tree"
	"github.com/viant/jokeqa/vector"
)

// Kind names this implementation in index headers and configuration.
const Kind = "cover"

// DefaultBase is the cover-tree expansion base.
const DefaultBase float32 = 1.3

// Index is an exact angular-distance index backed by a cover tree over
// unit-normalized vectors. Zero vectors are kept outside the tree and
// appended at distance 2 when a query asks for more neighbors than the tree
// holds.
type Index struct {
	staging index.Staging
	runID   string
	base    float32
	dim     int
	raw     [][]float32
	zeroIDs []int
	tree    *tree.Tree
	built   bool
}

// New constructs an empty cover-tree index.
func New(opts index.Options) *Index {
	base := opts.Base
	if base <= 1 {
		base = DefaultBase
	}
	return &Index{runID: opts.RunID, base: base}
}

// Add stages a vector.
func (i *Index) Add(id int, vec []float32) error {
	if i.built {
		return index.ErrBuilt
	}
	return i.staging.Add(id, vec)
}

// Build inserts staged vectors in id order and freezes the tree.
func (i *Index) Build() error {
	if i.built {
		return index.ErrBuilt
	}
	vectors, err := i.staging.Seal()
	if err != nil {
		return fmt.Errorf("cover: %w", err)
	}
	return i.load(vectors)
}

func (i *Index) load(vectors [][]float32) error {
	t := tree.NewTree(i.base, tree.EuclideanDistance)
	var zeroIDs []int
	for id, vec := range vectors {
		if vector.IsZero(vec) {
			zeroIDs = append(zeroIDs, id)
			continue
		}
		if err := t.Insert(tree.NewPoint(id, vector.Normalize(vec))); err != nil {
			return fmt.Errorf("cover: insert %d: %w", id, err)
		}
	}
	t.Freeze()
	i.raw = vectors
	i.dim = len(vectors[0])
	i.zeroIDs = zeroIDs
	i.tree = t
	i.built = true
	return nil
}

// Query returns the k nearest items by angular distance.
func (i *Index) Query(query []float32, k int) ([]index.Neighbor, error) {
	if !i.built {
		return nil, index.ErrNotBuilt
	}
	if len(query) != i.dim {
		return nil, fmt.Errorf("cover: query dim %d != index dim %d", len(query), i.dim)
	}
	if vector.IsZero(query) {
		return nil, index.ErrZeroQuery
	}
	if k <= 0 || k > len(i.raw) {
		k = len(i.raw)
	}
	found := i.tree.KNearestNeighbors(tree.NewPoint(-1, vector.Normalize(query)), k)
	out := make([]index.Neighbor, 0, k)
	for _, n := range found {
		out = append(out, index.Neighbor{ID: n.Point.ID, Distance: float64(n.Distance)})
	}
	for _, id := range i.zeroIDs {
		if len(out) == k {
			break
		}
		out = append(out, index.Neighbor{ID: id, Distance: vector.MaxAngularDistance})
	}
	index.SortNeighbors(out)
	return out, nil
}

// Len returns the number of items.
func (i *Index) Len() int { return len(i.raw) }

// Dim returns the vector dimension.
func (i *Index) Dim() int { return i.dim }

// Kind returns "cover".
func (i *Index) Kind() string { return Kind }

// RunID returns the training run id.
func (i *Index) RunID() string { return i.runID }

// MarshalBinary serializes the raw vectors; the tree is rebuilt on load.
func (i *Index) MarshalBinary() ([]byte, error) {
	if !i.built {
		return nil, index.ErrNotBuilt
	}
	return index.Encode(index.Header{Kind: Kind, Dim: i.dim, Count: len(i.raw), RunID: i.runID}, i.raw), nil
}

// UnmarshalBinary restores the vectors and rebuilds the tree.
func (i *Index) UnmarshalBinary(data []byte) error {
	h, vectors, err := index.Decode(data)
	if err != nil {
		return err
	}
	if h.Kind != Kind {
		return fmt.Errorf("cover: cannot load %q index", h.Kind)
	}
	if h.Count == 0 {
		return fmt.Errorf("cover: empty index")
	}
	if i.base <= 1 {
		i.base = DefaultBase
	}
	i.runID = h.RunID
	return i.load(vectors)
}
