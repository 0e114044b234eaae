package summary

import (
	"context"
	"fmt"
	"net/http"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/database"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/errors"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/httpx"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/dsl"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/paginate"
)

const Endpoint = "summary"

// Handler returns every document of the summary index.
type Handler struct {
	config    *Config
	paginator *paginate.Paginator
	cache     database.ResponseCache
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(cfg *Config, paginator *paginate.Paginator, cache database.ResponseCache, log logger.Logger) *Handler {
	if cache == nil {
		cache = database.NopCache{}
	}
	log = log.WithFields(map[string]interface{}{"endpoint": Endpoint})
	return &Handler{
		config:    cfg,
		paginator: paginator,
		cache:     cache,
		errors:    errors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := database.CacheKey(Endpoint, h.config.Index, nil)

	var cached Output
	if hit, err := h.cache.GetJSON(r.Context(), Endpoint, key, &cached); err != nil {
		h.logger.Warn("cache lookup failed", map[string]interface{}{"error": err})
	} else if hit {
		httpx.WriteJSON(w, http.StatusOK, cached)
		return
	}

	out, err := h.Execute(r.Context())
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}

	if err := h.cache.SetJSON(r.Context(), Endpoint, key, out); err != nil {
		h.logger.Warn("cache store failed", map[string]interface{}{"error": err})
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Execute(ctx context.Context) (*Output, error) {
	hits, err := h.paginator.All(ctx, h.config.Index, dsl.NewBody().WithTrackTotalHits(true))
	if err != nil {
		return nil, fmt.Errorf("summary: %w", err)
	}
	return &Output{Results: hits}, nil
}
