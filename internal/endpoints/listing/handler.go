package listing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/database"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/errors"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/httpx"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/validation"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/criteria"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/querybuilder"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/search"
)

const Endpoint = "listing"

var emptyAggregations = json.RawMessage(`{}`)

type Handler struct {
	config    *Config
	searcher  search.Searcher
	builder   *querybuilder.Builder
	validator *validation.ParamValidator
	cache     database.ResponseCache
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(
	cfg *Config,
	searcher search.Searcher,
	builder *querybuilder.Builder,
	validator *validation.ParamValidator,
	cache database.ResponseCache,
	log logger.Logger,
) *Handler {
	if cache == nil {
		cache = database.NopCache{}
	}
	log = log.WithFields(map[string]interface{}{"endpoint": Endpoint})
	return &Handler{
		config:    cfg,
		searcher:  searcher,
		builder:   builder,
		validator: validator,
		cache:     cache,
		errors:    errors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")
	key := database.CacheKey(Endpoint, r.URL.Path, r.URL.Query())

	var cached Output
	if hit, err := h.cache.GetJSON(r.Context(), Endpoint, key, &cached); err != nil {
		h.logger.Warn("cache lookup failed", map[string]interface{}{"error": err})
	} else if hit {
		httpx.WriteJSON(w, http.StatusOK, cached)
		return
	}

	out, err := h.Execute(r.Context(), index, r.URL.Query())
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	if err := h.cache.SetJSON(r.Context(), Endpoint, key, out); err != nil {
		h.logger.Warn("cache store failed", map[string]interface{}{"error": err})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Execute runs one listing page with facets against index.
func (h *Handler) Execute(ctx context.Context, index string, q url.Values) (*Output, error) {
	if h.validator != nil {
		if err := h.validator.Validate(q); err != nil {
			return nil, err
		}
	}

	c, err := criteria.FromQuery(q, h.config.Defaults)
	if err != nil {
		return nil, err
	}

	body := h.builder.Build(c, querybuilder.WithAggregations(h.config.AggregationFields(index)))

	resp, err := h.searcher.Search(ctx, index, body)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", index, err)
	}

	logger.FromContext(ctx, h.logger).Debug("listing served", map[string]interface{}{
		"endpoint": Endpoint,
		"index":    index,
		"total":    resp.Total,
		"returned": len(resp.Hits),
	})

	aggs := resp.Aggregations
	if len(aggs) == 0 {
		aggs = emptyAggregations
	}
	return &Output{
		Count:        resp.Total,
		Results:      resp.Hits,
		Aggregations: aggs,
	}, nil
}
