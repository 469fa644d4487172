package tfidf

// IdfTable maps lemmas to idf weights. Lookups of absent lemmas return the
// arithmetic mean of all weights.
type IdfTable struct {
	Weights map[string]float64 `json:"weights"`
	Mean    float64            `json:"mean"`
}

// Weight returns the idf of lemma or MeanWeight when the lemma is unknown.
func (t *IdfTable) Weight(lemma string) float64 {
	if w, ok := t.Weights[lemma]; ok {
		return w
	}
	return t.Mean
}

// MeanWeight returns the default weight for unknown lemmas.
func (t *IdfTable) MeanWeight() float64 { return t.Mean }

// Len returns the number of known terms.
func (t *IdfTable) Len() int { return len(t.Weights) }
