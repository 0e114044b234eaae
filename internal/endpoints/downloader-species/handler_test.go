package downloaderspecies

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/config"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/database"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/database/estest"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/paginate"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/querybuilder"
)

// byID answers with one hit per known id and fails for "broken".
func byID(known map[string]bool) estest.SearchFunc {
	return func(index string, body map[string]interface{}) (int, interface{}) {
		id := requestedID(body)
		if id == "broken" {
			return http.StatusInternalServerError, map[string]interface{}{
				"error": map[string]interface{}{"type": "exception", "reason": "boom"},
			}
		}
		if !known[id] {
			return http.StatusOK, estest.SearchResponse(0, nil, nil)
		}
		return http.StatusOK, estest.SearchResponse(1, []map[string]interface{}{
			estest.Hit(index, id, map[string]interface{}{"organism": id}),
		}, nil)
	}
}

func requestedID(body map[string]interface{}) string {
	q, _ := body["query"].(map[string]interface{})
	b, _ := q["bool"].(map[string]interface{})
	filters, _ := b["filter"].([]interface{})
	for _, f := range filters {
		term, _ := f.(map[string]interface{})["term"].(map[string]interface{})
		if id, ok := term["_id"].(string); ok {
			return id
		}
	}
	return ""
}

func createTestHandler(t *testing.T, srv *estest.Server) *Handler {
	t.Helper()
	es, err := database.NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	p := paginate.New(es, paginate.Config{PageSize: 10, MaxIterations: 5}, log)
	return NewHandler(&Config{Index: "data_portal", Concurrency: 2}, querybuilder.NewBuilder(nil), p, log)
}

func TestInputFromQuery(t *testing.T) {
	in := InputFromQuery(url.Values{
		"species_list": {" Felis catus, ,Lynx lynx,"},
		"project_name": {" ERGA "},
	})
	assert.Equal(t, []string{"Felis catus", "Lynx lynx"}, in.Species)
	assert.Equal(t, "ERGA", in.ProjectName)

	assert.Empty(t, InputFromQuery(url.Values{}).Species)
}

func TestHandler_PreservesInputOrder(t *testing.T) {
	srv := estest.NewServer(t, byID(map[string]bool{"a": true, "b": true, "c": true, "d": true}))
	h := createTestHandler(t, srv)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/downloader_utility_data_with_species/?species_list=d,b,missing,a,c&project_name=ERGA", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var hits []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hits))
	ids := make([]string, len(hits))
	for i, hit := range hits {
		ids[i] = hit["_id"].(string)
	}
	assert.Equal(t, []string{"d", "b", "a", "c"}, ids)

	reqs := srv.Requests()
	require.Len(t, reqs, 5)
	for _, r := range reqs {
		b, err := json.Marshal(r.Body["query"])
		require.NoError(t, err)
		assert.Contains(t, string(b), `{"term":{"project_name":"ERGA"}}`)
	}
}

func TestHandler_WithoutProject(t *testing.T) {
	srv := estest.NewServer(t, byID(map[string]bool{"a": true}))
	h := createTestHandler(t, srv)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/downloader_utility_data_with_species/?species_list=a", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	b, err := json.Marshal(reqs[0].Body["query"])
	require.NoError(t, err)
	assert.JSONEq(t, `{"bool":{"filter":[{"term":{"_id":"a"}}]}}`, string(b))
}

func TestHandler_EmptyList(t *testing.T) {
	srv := estest.NewServer(t, byID(nil))
	h := createTestHandler(t, srv)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/downloader_utility_data_with_species/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
	assert.Empty(t, srv.Requests())
}

func TestHandler_LookupFailure(t *testing.T) {
	srv := estest.NewServer(t, byID(map[string]bool{"a": true}))
	h := createTestHandler(t, srv)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/downloader_utility_data_with_species/?species_list=a,broken", nil))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "UPSTREAM_ERROR")
}
