package downloaderutility

import (
	"context"
	"fmt"
	"net/http"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/errors"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/httpx"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/paginate"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/querybuilder"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/search"
)

const Endpoint = "downloader-utility"

type Handler struct {
	config    *Config
	builder   *querybuilder.Builder
	paginator *paginate.Paginator
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(cfg *Config, builder *querybuilder.Builder, paginator *paginate.Paginator, log logger.Logger) *Handler {
	log = log.WithFields(map[string]interface{}{"endpoint": Endpoint})
	return &Handler{
		config:    cfg,
		builder:   builder,
		paginator: paginator,
		errors:    errors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	hits, err := h.Execute(r.Context(), InputFromQuery(r.URL.Query()))
	if err != nil {
		h.errors.WriteError(w, r, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, hits)
}

// Execute returns every primary-index hit matching the shortcut filters.
func (h *Handler) Execute(ctx context.Context, in Input) ([]search.Hit, error) {
	filters, err := querybuilder.DownloaderFilters(in.TaxonomyFilter, in.DataStatus, in.ExperimentType, in.ProjectName)
	if err != nil {
		return nil, err
	}

	body := h.builder.Build(nil, querybuilder.WithFilters(filters...))
	hits, err := h.paginator.All(ctx, h.config.Index, body)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", h.config.Index, err)
	}

	logger.FromContext(ctx, h.logger).Debug("download assembled", map[string]interface{}{
		"filters": len(filters),
		"hits":    len(hits),
	})
	return hits, nil
}
