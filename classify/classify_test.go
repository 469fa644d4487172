package classify

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestLabelEncoder(t *testing.T) {
	l := FitLabels([]string{"work", "animals", "work", "family"})
	if want := []string{"animals", "family", "work"}; !reflect.DeepEqual(l.Classes, want) {
		t.Fatalf("Classes = %v, want %v", l.Classes, want)
	}
	if idx, err := l.Encode("family"); err != nil || idx != 1 {
		t.Fatalf("Encode(family) = %d, %v", idx, err)
	}
	if _, err := l.Encode("sports"); err == nil {
		t.Fatalf("expected unknown topic error")
	}
	if topic, err := l.Decode(2); err != nil || topic != "work" {
		t.Fatalf("Decode(2) = %q, %v", topic, err)
	}
	if _, err := l.Decode(3); err == nil {
		t.Fatalf("expected out of range error")
	}
}

var (
	docs = [][]string{
		{"кот", "мышь", "хвост"},
		{"кот", "собака", "лапа"},
		{"собака", "хвост", "будка"},
		{"начальник", "офис", "зарплата"},
		{"офис", "отпуск", "начальник"},
		{"зарплата", "премия", "отпуск"},
		{"теща", "зять", "блины"},
		{"жена", "теща", "дача"},
		{"зять", "дача", "жена"},
	}
	topics = []string{"animals", "animals", "animals", "work", "work", "work", "family", "family", "family"}
)

func TestTrain_PredictsTrainingTopics(t *testing.T) {
	m, err := Train(docs, topics, Options{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	for i, doc := range docs {
		got, err := m.PredictTopic(doc)
		if err != nil {
			t.Fatalf("PredictTopic failed: %v", err)
		}
		if got != topics[i] {
			t.Fatalf("PredictTopic(%v) = %q, want %q", doc, got, topics[i])
		}
	}
	if got, _ := m.PredictTopic([]string{"начальник", "премия"}); got != "work" {
		t.Fatalf("PredictTopic(work words) = %q, want work", got)
	}
	// no known terms: still a valid label
	got, err := m.PredictTopic([]string{"неизвестное"})
	if err != nil {
		t.Fatalf("PredictTopic failed: %v", err)
	}
	if _, err := m.Labels.Encode(got); err != nil {
		t.Fatalf("prediction %q is not a known label", got)
	}
}

func TestTrain_BinaryAndSingleClass(t *testing.T) {
	m, err := Train(docs[:6], topics[:6], Options{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if len(m.SVM.Weights) != 1 {
		t.Fatalf("binary problem must have one weight row, got %d", len(m.SVM.Weights))
	}
	if got, _ := m.PredictTopic(docs[4]); got != "work" {
		t.Fatalf("PredictTopic = %q, want work", got)
	}
	if got, _ := m.PredictTopic(docs[0]); got != "animals" {
		t.Fatalf("PredictTopic = %q, want animals", got)
	}

	single, err := Train(docs[:3], topics[:3], Options{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	if got, _ := single.PredictTopic([]string{"офис"}); got != "animals" {
		t.Fatalf("single class must always predict it, got %q", got)
	}
}

func TestModel_JSONRoundTrip(t *testing.T) {
	m, err := Train(docs, topics, Options{})
	if err != nil {
		t.Fatalf("Train failed: %v", err)
	}
	data, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var restored Model
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if err := restored.Validate(); err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	for _, doc := range docs {
		want, _ := m.PredictTopic(doc)
		got, _ := restored.PredictTopic(doc)
		if got != want {
			t.Fatalf("restored PredictTopic(%v) = %q, want %q", doc, got, want)
		}
	}
}
