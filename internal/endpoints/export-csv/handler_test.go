package exportcsv

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/criteria"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/dsl"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/querybuilder"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/search"
)

func createTestConfig() *Config {
	return &Config{
		Index:    "data_portal",
		Columns:  []string{"organism", "commonName", "commonNameSource", "currentStatus"},
		Filename: "data_portal.csv",
		Defaults: criteria.DefaultDefaults,
	}
}

func TestHandler_WritesCSV(t *testing.T) {
	var gotBody dsl.Body
	s := search.SearcherFunc(func(_ context.Context, index string, body dsl.Body) (*search.Response, error) {
		assert.Equal(t, "data_portal", index)
		gotBody = body
		return &search.Response{Total: 2, Hits: []search.Hit{
			{ID: "1", Source: map[string]interface{}{"organism": "Felis catus", "commonName": "cat", "commonNameSource": "NCBI_taxon", "currentStatus": "Done"}},
			{ID: "2", Source: map[string]interface{}{"organism": "Lynx lynx"}},
		}}, nil
	})
	h := NewHandler(createTestConfig(), s, querybuilder.NewBuilder([]string{"organism"}), nil, logger.NewTestLogger(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export-csv/?filter=biosamples:Done&limit=2", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="data_portal.csv"`, rec.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(strings.NewReader(rec.Body.String())).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, []string{"Organism", "Common Name", "Common Name Source", "Current Status"}, records[0])
	assert.Equal(t, []string{"Lynx lynx", "", "", ""}, records[2])

	assert.Empty(t, gotBody.Aggregations())
	size, ok := gotBody.Size()
	assert.True(t, ok)
	assert.Equal(t, 2, size)
	assert.Equal(t, []dsl.SortField{{Field: "rank", Order: "desc"}}, gotBody.Sort())
}

func TestHandler_NoData(t *testing.T) {
	s := search.SearcherFunc(func(context.Context, string, dsl.Body) (*search.Response, error) {
		return &search.Response{Hits: []search.Hit{}}, nil
	})
	h := NewHandler(createTestConfig(), s, querybuilder.NewBuilder(nil), nil, logger.NewTestLogger(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export-csv/?search=nothing", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "No data found.", body["message"])
}

func TestHandler_MalformedSort(t *testing.T) {
	called := false
	s := search.SearcherFunc(func(context.Context, string, dsl.Body) (*search.Response, error) {
		called = true
		return &search.Response{}, nil
	})
	h := NewHandler(createTestConfig(), s, querybuilder.NewBuilder(nil), nil, logger.NewTestLogger(t))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/export-csv/?sort=rank", nil))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "MALFORMED_SORT")
	assert.False(t, called)
}
