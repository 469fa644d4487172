// Package index defines the nearest-neighbor index contract used by the
// retrieval pipeline together with the pieces shared by its implementations:
// id staging, the binary file layout and result ordering.
//
// Distances are angular, sqrt(2 - 2*cos), which equals the Euclidean
// distance between unit-normalized vectors and therefore satisfies the
// triangle inequality. Items with zero vectors keep their ids and rank last
// at distance 2.
package index
