package tree

import "github.com/viant/vec/search"

// DistanceFunc computes the distance between two points. It must be a metric
// for KNearestNeighbors pruning to be exact.
type DistanceFunc func(p1, p2 *Point) float32

// EuclideanDistance returns the Euclidean distance between two points. On
// unit-normalized vectors it equals the angular distance sqrt(2 - 2cos).
func EuclideanDistance(p1, p2 *Point) float32 {
	return search.Float32s(p1.Vector).EuclideanDistance(p2.Vector)
}
