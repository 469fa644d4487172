package tree

// Point is a vector stored in the tree under a caller-assigned id.
type Point struct {
	ID     int
	Vector []float32
}

// NewPoint constructs a point for the given id and vector.
func NewPoint(id int, vector []float32) *Point {
	return &Point{ID: id, Vector: vector}
}
