package tree

// Neighbor describes a candidate returned by a kNN search.
type Neighbor struct {
	Point    *Point
	Distance float32
}

// Neighbors implements heap.Interface as a max-heap on (distance, id), so the
// root is the worst kept candidate.
type Neighbors []Neighbor

func (h Neighbors) Len() int { return len(h) }
func (h Neighbors) Less(i, j int) bool {
	if h[i].Distance != h[j].Distance {
		return h[i].Distance > h[j].Distance
	}
	return h[i].Point.ID > h[j].Point.ID
}
func (h Neighbors) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *Neighbors) Push(x interface{}) {
	*h = append(*h, x.(Neighbor))
}

func (h *Neighbors) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// improves reports whether candidate c would be evicted before the current
// worst kept neighbor.
func (h Neighbors) improves(c Neighbor) bool {
	w := h[0]
	if c.Distance != w.Distance {
		return c.Distance < w.Distance
	}
	return c.Point.ID < w.Point.ID
}
