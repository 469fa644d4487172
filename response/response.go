// Package response renders retrieval outcomes into the JSON envelopes
// returned to clients:
//
//	{"message": {"answer": "..."}, "status_code": 200}
//	{"message": {"errors": ["..."]}, "status_code": 400}
package response

import (
	"errors"
	"net/http"

	"github.com/viant/jokeqa/retrieval"
)

// Message is the envelope payload. Exactly one of Answer or Errors is set.
type Message struct {
	Answer string   `json:"answer,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// Envelope is the wire response.
type Envelope struct {
	Message    Message `json:"message"`
	StatusCode int     `json:"status_code"`
}

// Success wraps an answer with status 200.
func Success(answer string) Envelope {
	return Envelope{Message: Message{Answer: answer}, StatusCode: http.StatusOK}
}

// Failure wraps error messages with status.
func Failure(status int, messages ...string) Envelope {
	if len(messages) == 0 {
		messages = []string{http.StatusText(status)}
	}
	return Envelope{Message: Message{Errors: messages}, StatusCode: status}
}

// Render maps a SubmitQuery outcome to its status code and envelope.
// Internal details are not exposed: server-side failures report a generic
// message, caller errors report the error kind.
func Render(res *retrieval.Result, err error) (int, Envelope) {
	if err == nil && res != nil {
		return http.StatusOK, Success(res.Text)
	}
	if err == nil {
		err = errors.New("empty result")
	}
	kind := retrieval.KindOf(err)
	status := kind.Status()
	return status, Failure(status, messageFor(kind))
}

func messageFor(kind retrieval.Kind) string {
	switch kind {
	case retrieval.KindMalformedRequest:
		return "Bad request: the question is empty or has no meaningful words"
	case retrieval.KindNoUsableEmbedding:
		return "Bad request: none of the question words are known"
	case retrieval.KindNoFallbackMatch:
		return "No answer is available for this topic"
	default:
		return http.StatusText(http.StatusInternalServerError)
	}
}
