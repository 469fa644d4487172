package tree

// Node represents a cover-tree node. radius bounds the distance from point
// to any point in the subtree and is computed by Tree.Freeze.
type Node struct {
	level    int32
	point    *Point
	children []*Node
	radius   float32
}
