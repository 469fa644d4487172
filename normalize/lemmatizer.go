package normalize

import (
	"fmt"

	"github.com/kljensen/snowball"
)

// Lemmatizer reduces a lowercased word to its base form.
type Lemmatizer interface {
	Lemma(word string) (string, error)
}

// LemmatizerFunc adapts a function to the Lemmatizer interface.
type LemmatizerFunc func(word string) (string, error)

// Lemma calls f(word).
func (f LemmatizerFunc) Lemma(word string) (string, error) { return f(word) }

// Snowball reduces words with the snowball stemmer of the given language.
type Snowball struct {
	Language string
}

// Lemma stems word; stop-words are stemmed as well so that both forms can be
// matched against the stop-word list.
func (s Snowball) Lemma(word string) (string, error) {
	lang := s.Language
	if lang == "" {
		lang = "russian"
	}
	stem, err := snowball.Stem(word, lang, true)
	if err != nil {
		return "", fmt.Errorf("normalize: stem %q: %w", word, err)
	}
	return stem, nil
}

// Identity returns words unchanged.
var Identity = LemmatizerFunc(func(word string) (string, error) { return word, nil })
