// Package server assembles the portal API's HTTP routes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/config"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/database"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/httpx"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/metrics"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/validation"
	dls "github.com/TreeOfLifeDCC/erga-back-end/internal/endpoints/downloader-species"
	dlu "github.com/TreeOfLifeDCC/erga-back-end/internal/endpoints/downloader-utility"
	csv "github.com/TreeOfLifeDCC/erga-back-end/internal/endpoints/export-csv"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/endpoints/listing"
	rd "github.com/TreeOfLifeDCC/erga-back-end/internal/endpoints/record-details"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/endpoints/summary"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/criteria"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/paginate"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/querybuilder"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/search"
)

const readyTimeout = 2 * time.Second

// Backend is the search cluster the routes read from.
type Backend interface {
	search.Searcher
	Ping(ctx context.Context) error
}

type healthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
}

// NewRouter wires every route onto a chi router. A nil cache disables
// response caching.
func NewRouter(cfg *config.Config, backend Backend, cache database.ResponseCache, log logger.Logger) (http.Handler, error) {
	if cache == nil {
		cache = database.NopCache{}
	}

	ranks := make([]string, len(criteria.Ranks))
	for i, r := range criteria.Ranks {
		ranks[i] = string(r)
	}
	validator, err := validation.NewParamValidator(validation.ListingSchema(cfg.Portal.MaxLimit, ranks))
	if err != nil {
		return nil, fmt.Errorf("listing validator: %w", err)
	}

	builder := querybuilder.NewBuilder(cfg.Portal.SearchFields)
	paginator := paginate.New(backend, paginate.Config{
		PageSize:        cfg.Portal.ExportPageSize,
		MaxIterations:   cfg.Portal.ExportMaxIterations,
		MaxResultWindow: cfg.Portal.MaxResultWindow,
	}, log)

	listingHandler := listing.NewHandler(listing.LoadConfig(cfg.Portal), backend, builder, validator, cache, log)
	detailsHandler := rd.NewHandler(rd.LoadConfig(cfg.Portal), backend, builder, cache, log)
	summaryHandler := summary.NewHandler(summary.LoadConfig(cfg.Portal), paginator, cache, log)
	exportHandler := csv.NewHandler(csv.LoadConfig(cfg.Portal), backend, builder, validator, log)
	utilityHandler := dlu.NewHandler(dlu.LoadConfig(cfg.Portal), builder, paginator, log)
	speciesHandler := dls.NewHandler(dls.LoadConfig(cfg.Portal), builder, paginator, log)

	r := chi.NewRouter()
	r.Use(httpx.RequestID)
	r.Use(httpx.RequestLogger(log))
	r.Use(httpx.Recoverer(log))
	r.Use(httpx.CORS(cfg.HTTP.AllowedOrigins))
	r.Use(metrics.Middleware())

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: "healthy", Time: time.Now().Format(time.RFC3339)})
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := backend.Ping(ctx); err != nil {
			log.Warn("readiness check failed", map[string]interface{}{"error": err})
			httpx.WriteJSON(w, http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Time: time.Now().Format(time.RFC3339)})
			return
		}
		httpx.WriteJSON(w, http.StatusOK, healthResponse{Status: "ready", Time: time.Now().Format(time.RFC3339)})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Method(http.MethodGet, "/summary", summaryHandler)
	r.Method(http.MethodGet, "/export-csv", exportHandler)
	r.Method(http.MethodGet, "/export-csv/", exportHandler)
	r.Method(http.MethodGet, "/downloader_utility_data", utilityHandler)
	r.Method(http.MethodGet, "/downloader_utility_data/", utilityHandler)
	r.Method(http.MethodGet, "/downloader_utility_data_with_species", speciesHandler)
	r.Method(http.MethodGet, "/downloader_utility_data_with_species/", speciesHandler)
	r.Method(http.MethodGet, "/{index}", listingHandler)
	r.Method(http.MethodGet, "/{index}/{record_id}", detailsHandler)

	return r, nil
}
