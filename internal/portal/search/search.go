// Package search defines the contract between the portal routes and the search backend.
package search

import (
	"bytes"
	"context"
	"encoding/json"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/dsl"
)

// Searcher runs one search request against index.
type Searcher interface {
	Search(ctx context.Context, index string, body dsl.Body) (*Response, error)
}

// Hit is one matched document. A hit decoded from the backend re-encodes to
// the exact bytes it was decoded from, so metadata such as highlight or
// fields passes through untouched. Numbers in Source decode as json.Number.
type Hit struct {
	Index  string                 `json:"_index"`
	ID     string                 `json:"_id"`
	Score  *float64               `json:"_score"`
	Source map[string]interface{} `json:"_source"`
	Sort   []interface{}          `json:"sort,omitempty"`

	raw json.RawMessage
}

type hitFields Hit

func (h *Hit) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var fields hitFields
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	*h = Hit(fields)
	h.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (h Hit) MarshalJSON() ([]byte, error) {
	if len(h.raw) > 0 {
		return h.raw, nil
	}
	return json.Marshal(hitFields(h))
}

// Response is one page of results.
type Response struct {
	Total        int64           `json:"total"`
	Hits         []Hit           `json:"hits"`
	Aggregations json.RawMessage `json:"aggregations,omitempty"`
}

// SearcherFunc adapts a function to Searcher.
type SearcherFunc func(ctx context.Context, index string, body dsl.Body) (*Response, error)

func (f SearcherFunc) Search(ctx context.Context, index string, body dsl.Body) (*Response, error) {
	return f(ctx, index, body)
}
