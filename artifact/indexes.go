package artifact

import (
	"fmt"
	"strings"

	"github.com/viant/jokeqa/index"
	"github.com/viant/jokeqa/index/bruteforce"
	"github.com/viant/jokeqa/index/cover"
)

// AutoCoverThreshold is the item count from which "auto" picks the cover tree.
const AutoCoverThreshold = 4000

// ResolveIndexKind maps a configured kind to a concrete one: "brute",
// "cover", or "auto" (cover for at least AutoCoverThreshold items).
func ResolveIndexKind(kind string, items int) (string, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "auto":
		if items >= AutoCoverThreshold {
			return cover.Kind, nil
		}
		return bruteforce.Kind, nil
	case bruteforce.Kind, "bruteforce":
		return bruteforce.Kind, nil
	case cover.Kind, "covertree":
		return cover.Kind, nil
	default:
		return "", fmt.Errorf("artifact: unknown index kind %q", kind)
	}
}

// NewIndex constructs an empty index of a concrete kind.
func NewIndex(kind string, opts index.Options) (index.Index, error) {
	switch kind {
	case bruteforce.Kind:
		return bruteforce.New(opts), nil
	case cover.Kind:
		return cover.New(opts), nil
	default:
		return nil, fmt.Errorf("artifact: unknown index kind %q", kind)
	}
}
