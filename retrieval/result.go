package retrieval

// Source tells where the answer came from.
type Source string

const (
	// SourceDirect is a nearest-neighbor hit.
	SourceDirect Source = "direct"
	// SourceFallback is a random item of the classifier's topic.
	SourceFallback Source = "fallback"
)

// Candidate is a resolved nearest neighbor.
type Candidate struct {
	ID       int     `json:"id"`
	Topic    string  `json:"topic"`
	Text     string  `json:"text"`
	Distance float64 `json:"distance"`
}

// Result is the answer to one query. Distance is the distance of the best
// candidate when one exists. Candidates lists every neighbor returned by the
// index in ascending distance.
type Result struct {
	Text       string      `json:"text"`
	Source     Source      `json:"source"`
	Topic      string      `json:"topic"`
	Distance   float64     `json:"distance"`
	Candidates []Candidate `json:"candidates,omitempty"`
}
