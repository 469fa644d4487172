package normalize

import (
	_ "embed"
	"strings"
	"unicode"
)

//go:embed stopwords_ru.txt
var russianStopWords string

// punctuation holds ASCII punctuation plus the typographic marks common in
// Russian text.
const punctuation = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~«»—–…“”„’‘"

// Normalizer is immutable after construction and safe for concurrent use.
type Normalizer struct {
	lemmatizer Lemmatizer
	stopWords  map[string]struct{}
	punct      map[rune]struct{}
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLemmatizer replaces the default snowball lemmatizer.
func WithLemmatizer(l Lemmatizer) Option {
	return func(n *Normalizer) { n.lemmatizer = l }
}

// WithStopWords replaces the embedded stop-word list.
func WithStopWords(words []string) Option {
	return func(n *Normalizer) { n.stopWords = wordSet(words) }
}

// New constructs a Normalizer; by default it stems Russian and drops the
// embedded Russian stop-words.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		lemmatizer: Snowball{Language: "russian"},
		stopWords:  wordSet(strings.Split(russianStopWords, "\n")),
		punct:      make(map[rune]struct{}, len(punctuation)),
	}
	for _, r := range punctuation {
		n.punct[r] = struct{}{}
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// StopWords returns the number of configured stop-words.
func (n *Normalizer) StopWords() int { return len(n.stopWords) }

// Normalize returns the lemma sequence of text. Punctuation is removed before
// splitting, so "hello,world" becomes one token. Words the lemmatizer cannot
// handle and pure symbols are dropped silently. The result may be empty.
func (n *Normalizer) Normalize(text string) []string {
	stripped := strings.Map(func(r rune) rune {
		if _, ok := n.punct[r]; ok {
			return -1
		}
		return r
	}, text)
	fields := strings.Fields(stripped)
	lemmas := make([]string, 0, len(fields))
	for _, field := range fields {
		word := strings.ToLower(field)
		if !hasLetterOrDigit(word) || n.isStopWord(word) {
			continue
		}
		lemma, err := n.lemmatizer.Lemma(word)
		if err != nil {
			continue
		}
		lemma = strings.TrimSpace(lemma)
		if lemma == "" || n.isStopWord(lemma) {
			continue
		}
		lemmas = append(lemmas, lemma)
	}
	return lemmas
}

func (n *Normalizer) isStopWord(word string) bool {
	_, ok := n.stopWords[word]
	return ok
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

func wordSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		w = strings.ToLower(strings.TrimSpace(w))
		if w == "" {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}
