package downloaderutility

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
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

func createTestHandler(t *testing.T, srv *estest.Server, maxIterations int) *Handler {
	t.Helper()
	es, err := database.NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{srv.URL}})
	require.NoError(t, err)

	log := logger.NewTestLogger(t)
	p := paginate.New(es, paginate.Config{PageSize: 2, MaxIterations: maxIterations}, log)
	return NewHandler(&Config{Index: "data_portal"}, querybuilder.NewBuilder(nil), p, log)
}

func portalDocs(n int) []map[string]interface{} {
	docs := make([]map[string]interface{}, n)
	for i := range docs {
		docs[i] = estest.Hit("data_portal", fmt.Sprintf("d%d", i), map[string]interface{}{"organism": fmt.Sprintf("Species %d", i)})
	}
	return docs
}

func queryJSON(t *testing.T, body map[string]interface{}) string {
	t.Helper()
	b, err := json.Marshal(body["query"])
	require.NoError(t, err)
	return string(b)
}

func TestHandler_AllFilters(t *testing.T) {
	srv := estest.NewServer(t, estest.Paged(portalDocs(5)))
	h := createTestHandler(t, srv, 10)

	target := "/downloader_utility_data/?taxonomy_filter=Aves&data_status=Biosamples-Done" +
		"&experiment_type=PacBio&project_name=ERGA"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var hits []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hits))
	require.Len(t, hits, 5)
	assert.Equal(t, "d4", hits[4]["_id"])

	reqs := srv.Requests()
	require.Len(t, reqs, 3)
	assert.JSONEq(t, `{"bool":{"filter":[
		{"nested":{"path":"taxonomies.class","query":{"bool":{"filter":[{"term":{"taxonomies.class.scientificName":"Aves"}}]}}}},
		{"term":{"biosamples":"Done"}},
		{"nested":{"path":"experiment","query":{"bool":{"must":[{"term":{"experiment.library_construction_protocol.keyword":"PacBio"}}]}}}},
		{"term":{"project_name":"ERGA"}}
	]}}`, queryJSON(t, reqs[0].Body))
	assert.NotContains(t, reqs[0].Body, "sort")
	assert.NotContains(t, reqs[0].Body, "aggs")
	assert.EqualValues(t, 4, reqs[2].Body["from"])
}

func TestHandler_GenomeNotes(t *testing.T) {
	srv := estest.NewServer(t, estest.Paged(portalDocs(1)))
	h := createTestHandler(t, srv, 10)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/downloader_utility_data/?data_status=Genome%20Notes-Submitted", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	reqs := srv.Requests()
	require.Len(t, reqs, 1)
	assert.JSONEq(t, `{"bool":{"filter":[
		{"nested":{"path":"genome_notes","query":{"bool":{"must":[{"exists":{"field":"genome_notes.url"}}]}}}}
	]}}`, queryJSON(t, reqs[0].Body))
}

func TestHandler_NoFiltersMatchesEverything(t *testing.T) {
	srv := estest.NewServer(t, estest.Paged(portalDocs(3)))
	h := createTestHandler(t, srv, 10)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/downloader_utility_data/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	reqs := srv.Requests()
	require.NotEmpty(t, reqs)
	assert.NotContains(t, reqs[0].Body, "query")
}

func TestHandler_UnknownDataStatus(t *testing.T) {
	srv := estest.NewServer(t, estest.Paged(portalDocs(1)))
	h := createTestHandler(t, srv, 10)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/downloader_utility_data/?data_status=Sequencing-Done", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MALFORMED_FILTER")
	assert.Empty(t, srv.Requests())
}

func TestHandler_IncompleteExport(t *testing.T) {
	srv := estest.NewServer(t, estest.Paged(portalDocs(9)))
	h := createTestHandler(t, srv, 2)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/downloader_utility_data/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "INCOMPLETE_EXPORT")
}
