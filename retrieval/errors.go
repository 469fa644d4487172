package retrieval

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies retrieval failures. Every error returned by
// Service.SubmitQuery is an *Error carrying exactly one Kind.
type Kind int

const (
	// KindInternal covers unexpected failures inside the pipeline.
	KindInternal Kind = iota
	// KindMalformedRequest reports an empty query or one that normalizes to
	// no tokens.
	KindMalformedRequest
	// KindNoUsableEmbedding reports a query whose tokens have no vectors.
	KindNoUsableEmbedding
	// KindNoFallbackMatch reports that the fallback found no item for the
	// predicted topic or could not reach the store.
	KindNoFallbackMatch
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindMalformedRequest:
		return "malformed_request"
	case KindNoUsableEmbedding:
		return "no_usable_embedding"
	case KindNoFallbackMatch:
		return "no_fallback_match"
	default:
		return "internal"
	}
}

// Malformed reports whether the caller's request is at fault.
func (k Kind) Malformed() bool {
	return k == KindMalformedRequest || k == KindNoUsableEmbedding
}

// Status maps the kind to an HTTP status code.
func (k Kind) Status() int {
	if k.Malformed() {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Error is the typed retrieval error.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("retrieval: %s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("retrieval: %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindInternal
}

func newError(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}
