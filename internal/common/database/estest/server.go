// Package estest runs an in-process stand-in for an Elasticsearch cluster in tests.
package estest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// SearchFunc answers one _search call with a status and a JSON-encodable body.
type SearchFunc func(index string, body map[string]interface{}) (int, interface{})

// Server records the search bodies it receives.
type Server struct {
	*httptest.Server

	mu       sync.Mutex
	requests []Request
}

type Request struct {
	Index string
	Body  map[string]interface{}
}

// NewServer starts a fake cluster. GET / and HEAD / answer the client's product
// check; POST/GET /<index>/_search is delegated to fn.
func NewServer(t testing.TB, fn SearchFunc) *Server {
	t.Helper()
	s := &Server{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path == "/" {
			if r.Method == http.MethodHead {
				w.WriteHeader(http.StatusOK)
				return
			}
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"cluster_name": "estest",
				"version":      map[string]interface{}{"number": "8.11.0"},
				"tagline":      "You Know, for Search",
			})
			return
		}

		index, ok := strings.CutSuffix(strings.TrimPrefix(r.URL.Path, "/"), "/_search")
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var body map[string]interface{}
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
		}

		s.mu.Lock()
		s.requests = append(s.requests, Request{Index: index, Body: body})
		s.mu.Unlock()

		status, resp := fn(index, body)
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(s.Close)
	return s
}

func (s *Server) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Hit renders one hit in the cluster's response shape.
func Hit(index, id string, source map[string]interface{}) map[string]interface{} {
	return map[string]interface{}{
		"_index":  index,
		"_id":     id,
		"_score":  1.0,
		"_source": source,
	}
}

// SearchResponse renders a _search response body.
func SearchResponse(total int, hits []map[string]interface{}, aggs map[string]interface{}) map[string]interface{} {
	if hits == nil {
		hits = []map[string]interface{}{}
	}
	resp := map[string]interface{}{
		"took":      1,
		"timed_out": false,
		"hits": map[string]interface{}{
			"total": map[string]interface{}{"value": total, "relation": "eq"},
			"hits":  hits,
		},
	}
	if aggs != nil {
		resp["aggregations"] = aggs
	}
	return resp
}

// Paged serves docs page by page, honouring the body's from and size.
func Paged(docs []map[string]interface{}) SearchFunc {
	return func(index string, body map[string]interface{}) (int, interface{}) {
		from, size := intField(body, "from", 0), intField(body, "size", 10)
		if from > len(docs) {
			from = len(docs)
		}
		end := from + size
		if end > len(docs) {
			end = len(docs)
		}
		return http.StatusOK, SearchResponse(len(docs), docs[from:end], nil)
	}
}

func intField(body map[string]interface{}, key string, def int) int {
	if v, ok := body[key].(float64); ok {
		return int(v)
	}
	return def
}
