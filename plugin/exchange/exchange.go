package exchange

import (
	"time"

	"github.com/google/uuid"
)

// SearchStep is one retrieval action taken while answering a query.
type SearchStep struct {
	Kind    string `json:"kind"`  // "code" | "path" | "proc"
	Query   string `json:"query"` // what was searched for
	Content string `json:"content,omitempty"`
}

// CodeChunk is a span of a file the answer focused on.
type CodeChunk struct {
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Code      string `json:"code,omitempty"`
}

// Exchange is a single question/answer turn of a conversation.
type Exchange struct {
	ID                uuid.UUID    `json:"id"`
	UserQuery         string       `json:"query,omitempty"`
	Answer            string       `json:"answer,omitempty"`
	Conclusion        string       `json:"conclusion,omitempty"`
	Paths             []string     `json:"paths"`
	SearchSteps       []SearchStep `json:"search_steps"`
	FocusedChunk      *CodeChunk   `json:"focused_chunk,omitempty"`
	QueryTimestamp    *time.Time   `json:"query_timestamp,omitempty"`
	ResponseTimestamp *time.Time   `json:"response_timestamp,omitempty"`
}

// New returns an exchange for the given query with a fresh ID.
func New(query string) Exchange {
	now := time.Now().UTC()
	return Exchange{
		ID:             uuid.New(),
		UserQuery:      query,
		QueryTimestamp: &now,
	}
}

// Query returns the user's query text and whether the exchange has one.
func (e Exchange) Query() (string, bool) {
	return e.UserQuery, e.UserQuery != ""
}

// Compressed returns a copy suitable for sending to clients: search steps keep
// their kind and query but drop retrieved content, and the focused chunk is removed.
// The receiver is left untouched.
func (e Exchange) Compressed() Exchange {
	out := e
	out.FocusedChunk = nil
	if e.SearchSteps != nil {
		out.SearchSteps = make([]SearchStep, len(e.SearchSteps))
		for i, step := range e.SearchSteps {
			out.SearchSteps[i] = SearchStep{Kind: step.Kind, Query: step.Query}
		}
	}
	if e.Paths != nil {
		out.Paths = append([]string(nil), e.Paths...)
	}
	return out
}
