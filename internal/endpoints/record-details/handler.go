package recorddetails

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/database"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/errors"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/httpx"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/dsl"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/querybuilder"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/search"
)

const Endpoint = "record-details"

type Handler struct {
	config   *Config
	searcher search.Searcher
	builder  *querybuilder.Builder
	cache    database.ResponseCache
	errors   *errors.ErrorHandler
	logger   logger.Logger
}

func NewHandler(cfg *Config, searcher search.Searcher, builder *querybuilder.Builder, cache database.ResponseCache, log logger.Logger) *Handler {
	if cache == nil {
		cache = database.NopCache{}
	}
	log = log.WithFields(map[string]interface{}{"endpoint": Endpoint})
	return &Handler{
		config:   cfg,
		searcher: searcher,
		builder:  builder,
		cache:    cache,
		errors:   errors.NewErrorHandler(log),
		logger:   log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	index := chi.URLParam(r, "index")
	recordID := chi.URLParam(r, "record_id")
	key := database.CacheKey(Endpoint, r.URL.Path, nil)

	var cached Output
	if hit, err := h.cache.GetJSON(r.Context(), Endpoint, key, &cached); err != nil {
		h.logger.Warn("cache lookup failed", map[string]interface{}{"error": err})
	} else if hit {
		httpx.WriteJSON(w, http.StatusOK, cached)
		return
	}

	out, err := h.Execute(r.Context(), index, recordID)
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	if err := h.cache.SetJSON(r.Context(), Endpoint, key, out); err != nil {
		h.logger.Warn("cache store failed", map[string]interface{}{"error": err})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// Execute looks a single record up. An unknown id is an empty result, not an error.
func (h *Handler) Execute(ctx context.Context, index, recordID string) (*Output, error) {
	resp, err := h.searcher.Search(ctx, index, h.builder.Build(nil, querybuilder.WithFilters(h.lookup(index, recordID))))
	if err != nil {
		return nil, fmt.Errorf("details %s/%s: %w", index, recordID, err)
	}
	return &Output{Count: resp.Total, Results: resp.Hits}, nil
}

func (h *Handler) lookup(index, recordID string) dsl.Clause {
	if index == h.config.PrimaryIndex {
		return dsl.Term{Field: h.config.LookupField, Value: recordID}
	}
	return dsl.Term{Field: "_id", Value: recordID}
}
