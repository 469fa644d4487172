package normalize

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
)

func TestNormalize(t *testing.T) {
	suffix := LemmatizerFunc(func(word string) (string, error) {
		return strings.TrimSuffix(word, "s"), nil
	})
	n := New(WithLemmatizer(suffix), WithStopWords([]string{"the", "a"}))

	testCases := []struct {
		name string
		text string
		want []string
	}{
		{name: "basic", text: "The Cats and a Dogs", want: []string{"cat", "and", "dog"}},
		{name: "punctuation removed not split", text: "hello,world!", want: []string{"helloworld"}},
		{name: "only punctuation", text: "   !!!", want: []string{}},
		{name: "empty", text: "", want: []string{}},
		{name: "symbols dropped", text: "№ §§ cats", want: []string{"cat"}},
		{name: "lemma is stop-word", text: "thes", want: []string{}},
		{name: "digits kept", text: "42 cats", want: []string{"42", "cat"}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := n.Normalize(tc.text)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Normalize(%q) = %#v, want %#v", tc.text, got, tc.want)
			}
		})
	}
}

func TestNormalize_LemmatizerErrorDropsToken(t *testing.T) {
	failing := LemmatizerFunc(func(word string) (string, error) {
		if word == "bad" {
			return "", errors.New("cannot lemmatize")
		}
		return word, nil
	})
	n := New(WithLemmatizer(failing), WithStopWords(nil))
	got := n.Normalize("good bad ugly")
	if want := []string{"good", "ugly"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Normalize = %v, want %v", got, want)
	}
}

func TestNormalize_RussianDefaults(t *testing.T) {
	n := New()
	if n.StopWords() == 0 {
		t.Fatalf("expected embedded stop-words")
	}
	got := n.Normalize("И в лесу, и в поле!")
	for _, lemma := range got {
		if lemma == "и" || lemma == "в" {
			t.Fatalf("stop-word %q survived: %v", lemma, got)
		}
	}
	if len(got) != 2 {
		t.Fatalf("Normalize = %v, want two lemmas", got)
	}
}

func TestNormalize_DeterministicAndConcurrent(t *testing.T) {
	n := New()
	text := "Расскажи мне смешной анекдот про программистов!"
	want := n.Normalize(text)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := n.Normalize(text); !reflect.DeepEqual(got, want) {
				t.Errorf("Normalize not deterministic: %v vs %v", got, want)
			}
		}()
	}
	wg.Wait()
}
