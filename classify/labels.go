package classify

import (
	"fmt"
	"sort"
)

// LabelEncoder maps topic strings to stable class indices in sorted order.
type LabelEncoder struct {
	Classes []string `json:"classes"`
}

// FitLabels returns the encoder over the distinct topics.
func FitLabels(topics []string) *LabelEncoder {
	seen := map[string]struct{}{}
	classes := make([]string, 0)
	for _, t := range topics {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		classes = append(classes, t)
	}
	sort.Strings(classes)
	return &LabelEncoder{Classes: classes}
}

// Encode returns the class index of topic.
func (l *LabelEncoder) Encode(topic string) (int, error) {
	idx := sort.SearchStrings(l.Classes, topic)
	if idx < len(l.Classes) && l.Classes[idx] == topic {
		return idx, nil
	}
	return 0, fmt.Errorf("classify: unknown topic %q", topic)
}

// Decode returns the topic of class index i.
func (l *LabelEncoder) Decode(i int) (string, error) {
	if i < 0 || i >= len(l.Classes) {
		return "", fmt.Errorf("classify: class index %d out of range [0, %d)", i, len(l.Classes))
	}
	return l.Classes[i], nil
}

// Len returns the number of classes.
func (l *LabelEncoder) Len() int { return len(l.Classes) }
