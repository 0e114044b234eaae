package summary

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/config"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/database"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/database/estest"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/paginate"
)

func summaryDocs(n int) []map[string]interface{} {
	docs := make([]map[string]interface{}, n)
	for i := range docs {
		docs[i] = estest.Hit("summary", fmt.Sprintf("s%d", i), map[string]interface{}{"name": fmt.Sprintf("row %d", i)})
	}
	return docs
}

func createTestHandler(t *testing.T, srv *estest.Server, cache database.ResponseCache) *Handler {
	t.Helper()
	es, err := database.NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	p := paginate.New(es, paginate.Config{PageSize: 4, MaxIterations: 10}, log)
	return NewHandler(&Config{Index: "summary"}, p, cache, log)
}

func TestHandler_ReturnsEveryDocument(t *testing.T) {
	srv := estest.NewServer(t, estest.Paged(summaryDocs(10)))
	h := createTestHandler(t, srv, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var out struct {
		Results []map[string]interface{} `json:"results"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out.Results, 10)
	assert.Equal(t, "s0", out.Results[0]["_id"])
	assert.Equal(t, "s9", out.Results[9]["_id"])

	reqs := srv.Requests()
	require.Len(t, reqs, 3)
	for _, r := range reqs {
		assert.Equal(t, "summary", r.Index)
		assert.NotContains(t, r.Body, "query")
	}
}

func TestHandler_EmptyIndex(t *testing.T) {
	srv := estest.NewServer(t, estest.Paged(nil))
	h := createTestHandler(t, srv, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"results":[]}`, rec.Body.String())
}

func TestHandler_UpstreamFailure(t *testing.T) {
	srv := estest.NewServer(t, func(string, map[string]interface{}) (int, interface{}) {
		return http.StatusInternalServerError, map[string]interface{}{
			"error": map[string]interface{}{"type": "search_phase_execution_exception", "reason": "all shards failed"},
		}
	})
	h := createTestHandler(t, srv, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestHandler_CachedSecondCall(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	cache := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}), time.Minute)

	srv := estest.NewServer(t, estest.Paged(summaryDocs(3)))
	h := createTestHandler(t, srv, cache)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/summary", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}
	assert.Len(t, srv.Requests(), 1)
}
