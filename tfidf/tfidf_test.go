package tfidf

import (
	"math"
	"testing"
)

func TestFit_IDF(t *testing.T) {
	docs := [][]string{
		{"cat", "sat"},
		{"cat", "ran"},
		{"dog", "ran", "x"},
	}
	v, err := Fit(docs, Options{})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if _, ok := v.Vocabulary["x"]; ok {
		t.Fatalf("single-rune token must be ignored")
	}
	if _, ok := v.Vocabulary["cat sat"]; !ok {
		t.Fatalf("expected bigram in vocabulary: %v", v.Vocabulary)
	}
	// cat: df=2 of N=3
	want := math.Log(4.0/3.0) + 1
	if got := v.IDF[v.Vocabulary["cat"]]; math.Abs(got-want) > 1e-12 {
		t.Fatalf("idf(cat) = %v, want %v", got, want)
	}
	// dog: df=1
	want = math.Log(4.0/2.0) + 1
	if got := v.IDF[v.Vocabulary["dog"]]; math.Abs(got-want) > 1e-12 {
		t.Fatalf("idf(dog) = %v, want %v", got, want)
	}
	if err := v.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
}

func TestFit_MaxFeatures(t *testing.T) {
	docs := [][]string{{"aa", "bb", "aa"}, {"aa", "cc"}, {"bb"}}
	v, err := Fit(docs, Options{MaxFeatures: 2, MaxN: 1})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if len(v.Vocabulary) != 2 {
		t.Fatalf("vocabulary size = %d, want 2", len(v.Vocabulary))
	}
	if _, ok := v.Vocabulary["cc"]; ok {
		t.Fatalf("least frequent term kept: %v", v.Vocabulary)
	}
	if v.Vocabulary["aa"] != 0 || v.Vocabulary["bb"] != 1 {
		t.Fatalf("indices must follow term order: %v", v.Vocabulary)
	}
}

func TestTransform_Normalized(t *testing.T) {
	v, err := Fit([][]string{{"aa", "bb"}, {"bb", "cc"}}, Options{})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	vec := v.Transform([]string{"aa", "bb", "unknown"})
	var norm float64
	for _, x := range vec.Values {
		norm += x * x
	}
	if math.Abs(norm-1) > 1e-12 {
		t.Fatalf("norm^2 = %v, want 1", norm)
	}
	for i := 1; i < len(vec.Indices); i++ {
		if vec.Indices[i-1] >= vec.Indices[i] {
			t.Fatalf("indices not sorted: %v", vec.Indices)
		}
	}
	if empty := v.Transform([]string{"zz"}); len(empty.Indices) != 0 {
		t.Fatalf("expected empty vector, got %v", empty)
	}
}

func TestIdfTable_UnknownIsMean(t *testing.T) {
	v, err := Fit([][]string{{"aa", "bb"}, {"bb", "cc"}, {"dd"}}, Options{})
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	table := v.IdfTable()
	var sum float64
	for _, w := range v.IDF {
		sum += w
	}
	if table.MeanWeight() != sum/float64(len(v.IDF)) {
		t.Fatalf("mean = %v, want %v", table.MeanWeight(), sum/float64(len(v.IDF)))
	}
	if got := table.Weight("never-seen"); got != table.MeanWeight() {
		t.Fatalf("Weight(unknown) = %v, want exactly %v", got, table.MeanWeight())
	}
	if got := table.Weight("bb"); got != v.IDF[v.Vocabulary["bb"]] {
		t.Fatalf("Weight(bb) = %v, want %v", got, v.IDF[v.Vocabulary["bb"]])
	}
}
