package tree

// This implementation is adapted from github.com/viant/gds/tree/cover.

import (
	"container/heap"
	"errors"
	"math"
	"sort"
)

// pruneSlack absorbs float32 rounding in triangle-inequality bounds.
const pruneSlack = 1e-6

// ErrFrozen is returned by Insert after Freeze.
var ErrFrozen = errors.New("tree: frozen")

// Tree is a cover tree for exact kNN queries under a metric distance. Inserts
// are single-threaded; after Freeze the tree is read-only and safe for
// concurrent queries.
type Tree struct {
	root     *Node
	base     float32
	distance DistanceFunc
	size     int
	frozen   bool
}

// NewTree constructs a cover tree with the provided base and distance. A
// base <= 1 falls back to 1.3; a nil distance to EuclideanDistance.
func NewTree(base float32, distance DistanceFunc) *Tree {
	if base <= 1 {
		base = 1.3
	}
	if distance == nil {
		distance = EuclideanDistance
	}
	return &Tree{base: base, distance: distance}
}

// Len returns the number of inserted points.
func (t *Tree) Len() int { return t.size }

// Insert adds a point to the tree.
func (t *Tree) Insert(point *Point) error {
	if t.frozen {
		return ErrFrozen
	}
	t.size++
	if t.root == nil {
		t.root = &Node{point: point}
		return nil
	}
	d := t.distance(point, t.root.point)
	for d >= t.cover(t.root.level) {
		t.root.level++
	}
	node, level := t.root, t.root.level
	for {
		cover := t.cover(level - 1)
		var next *Node
		for _, child := range node.children {
			if t.distance(point, child.point) < cover {
				next = child
				break
			}
		}
		if next == nil {
			node.children = append(node.children, &Node{level: level - 1, point: point})
			return nil
		}
		node, level = next, level-1
	}
}

// Freeze computes subtree radii used for pruning and stops further inserts.
func (t *Tree) Freeze() {
	if t.frozen {
		return
	}
	t.frozen = true
	if t.root != nil {
		t.computeRadius(t.root)
	}
}

func (t *Tree) computeRadius(n *Node) float32 {
	var maxR float32
	for _, child := range n.children {
		if r := t.distance(n.point, child.point) + t.computeRadius(child); r > maxR {
			maxR = r
		}
	}
	n.radius = maxR
	return maxR
}

func (t *Tree) cover(level int32) float32 {
	return float32(math.Pow(float64(t.base), float64(level)))
}

// KNearestNeighbors runs a depth-first kNN search and returns up to k
// neighbors ordered by ascending (distance, id). Before Freeze no pruning is
// applied.
func (t *Tree) KNearestNeighbors(point *Point, k int) []Neighbor {
	if t.root == nil || k <= 0 {
		return nil
	}
	h := &Neighbors{}
	heap.Init(h)
	t.kNearestNeighbors(t.root, t.distance(point, t.root.point), point, k, h)
	result := make([]Neighbor, h.Len())
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = heap.Pop(h).(Neighbor)
	}
	return result
}

func (t *Tree) kNearestNeighbors(node *Node, dc float32, point *Point, k int, h *Neighbors) {
	candidate := Neighbor{Point: node.point, Distance: dc}
	if h.Len() < k {
		heap.Push(h, candidate)
	} else if h.improves(candidate) {
		heap.Pop(h)
		heap.Push(h, candidate)
	}
	if len(node.children) == 0 {
		return
	}
	type childDist struct {
		child *Node
		dist  float32
	}
	cds := make([]childDist, 0, len(node.children))
	for _, child := range node.children {
		cds = append(cds, childDist{child: child, dist: t.distance(point, child.point)})
	}
	sort.Slice(cds, func(i, j int) bool { return cds[i].dist < cds[j].dist })
	for _, cd := range cds {
		if t.frozen && h.Len() == k && cd.dist-cd.child.radius > (*h)[0].Distance+pruneSlack {
			continue
		}
		t.kNearestNeighbors(cd.child, cd.dist, point, k, h)
	}
}
