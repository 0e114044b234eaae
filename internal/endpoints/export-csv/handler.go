package exportcsv

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/errors"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/httpx"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/validation"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/criteria"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/csvexport"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/querybuilder"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/search"
)

const Endpoint = "export-csv"

// Handler exports the requested listing page of the primary index as CSV.
type Handler struct {
	config    *Config
	searcher  search.Searcher
	builder   *querybuilder.Builder
	validator *validation.ParamValidator
	errors    *errors.ErrorHandler
	logger    logger.Logger
}

func NewHandler(
	cfg *Config,
	searcher search.Searcher,
	builder *querybuilder.Builder,
	validator *validation.ParamValidator,
	log logger.Logger,
) *Handler {
	log = log.WithFields(map[string]interface{}{"endpoint": Endpoint})
	return &Handler{
		config:    cfg,
		searcher:  searcher,
		builder:   builder,
		validator: validator,
		errors:    errors.NewErrorHandler(log),
		logger:    log,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	err := h.Execute(r.Context(), r.URL.Query(), &buf)
	switch {
	case stderrors.Is(err, csvexport.ErrNoData):
		httpx.WriteJSON(w, http.StatusOK, httpx.MessageResponse{Message: noDataMessage})
		return
	case err != nil:
		h.errors.WriteError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.config.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// Execute writes the CSV for the listing page described by q into out. It
// returns csvexport.ErrNoData when nothing matched.
func (h *Handler) Execute(ctx context.Context, q url.Values, out *bytes.Buffer) error {
	if h.validator != nil {
		if err := h.validator.Validate(q); err != nil {
			return err
		}
	}

	c, err := criteria.FromQuery(q, h.config.Defaults)
	if err != nil {
		return err
	}

	resp, err := h.searcher.Search(ctx, h.config.Index, h.builder.Build(c))
	if err != nil {
		return fmt.Errorf("export %s: %w", h.config.Index, err)
	}

	if err := csvexport.Write(out, h.config.Columns, resp.Hits); err != nil {
		return err
	}

	logger.FromContext(ctx, h.logger).Info("csv exported", map[string]interface{}{
		"endpoint": Endpoint,
		"rows":     len(resp.Hits),
		"bytes":    out.Len(),
	})
	return nil
}
