package downloaderspecies

import (
	"context"
	"fmt"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/errors"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/httpx"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/paginate"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/querybuilder"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/search"
)

const Endpoint = "downloader-species"

const defaultConcurrency = 4

type Handler struct {
	config    *Config
	builder   *querybuilder.Builder
	paginator *paginate.Paginator
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(cfg *Config, builder *querybuilder.Builder, paginator *paginate.Paginator, log logger.Logger) *Handler {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
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

// Execute looks every species up by id and concatenates the results in input
// order. The first failed lookup cancels the rest.
func (h *Handler) Execute(ctx context.Context, in Input) ([]search.Hit, error) {
	perSpecies := make([][]search.Hit, len(in.Species))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(h.config.Concurrency)
	for i, id := range in.Species {
		g.Go(func() error {
			body := h.builder.Build(nil, querybuilder.WithFilters(querybuilder.SpeciesFilters(id, in.ProjectName)...))
			hits, err := h.paginator.All(gctx, h.config.Index, body)
			if err != nil {
				return fmt.Errorf("species %s: %w", id, err)
			}
			perSpecies[i] = hits
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := []search.Hit{}
	for _, hits := range perSpecies {
		out = append(out, hits...)
	}

	logger.FromContext(ctx, h.logger).Debug("species download assembled", map[string]interface{}{
		"species": len(in.Species),
		"hits":    len(out),
	})
	return out, nil
}
