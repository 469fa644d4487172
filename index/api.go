package index

import (
	"errors"
	"sort"
)

var (
	// ErrBuilt is returned by Add after Build.
	ErrBuilt = errors.New("index: already built")
	// ErrNotBuilt is returned by Query before Build.
	ErrNotBuilt = errors.New("index: not built")
	// ErrZeroQuery is returned when the query vector has zero magnitude.
	ErrZeroQuery = errors.New("index: zero-magnitude query")
)

// Neighbor is a query match: the item id and its angular distance.
type Neighbor struct {
	ID       int
	Distance float64
}

// Options configures an index implementation.
type Options struct {
	// RunID identifies the training run that produced the vectors.
	RunID string
	// Base is the cover-tree expansion base; ignored by brute force.
	Base float32
}

// Index is an angular-distance nearest-neighbor index over dense integer
// ids. It is additive until Build and read-only afterwards; a built index is
// safe for concurrent queries.
type Index interface {
	// Add stages the vector for id. Ids must end up dense in [0, n).
	Add(id int, vector []float32) error

	// Build freezes the staged vectors.
	Build() error

	// Query returns up to k neighbors ordered by ascending angular distance,
	// ties broken by ascending id. k <= 0 returns every item.
	Query(query []float32, k int) ([]Neighbor, error)

	// Len returns the number of items.
	Len() int

	// Dim returns the vector dimension.
	Dim() int

	// Kind names the implementation ("brute" or "cover").
	Kind() string

	// RunID returns the training run id carried by the index.
	RunID() string

	// MarshalBinary serializes the index into a byte slice.
	MarshalBinary() ([]byte, error)

	// UnmarshalBinary reconstructs a built index from a serialized byte slice.
	UnmarshalBinary(data []byte) error
}

// SortNeighbors orders neighbors by distance then id.
func SortNeighbors(neighbors []Neighbor) {
	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].ID < neighbors[j].ID
	})
}
