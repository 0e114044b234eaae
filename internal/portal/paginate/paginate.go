// Package paginate retrieves every hit matching a query by walking pages sequentially.
package paginate

import (
	"context"
	"fmt"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/errors"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/logger"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/metrics"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/dsl"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/search"
)

const (
	DefaultPageSize      = 10000
	DefaultMaxIterations = 100
	// DefaultMaxResultWindow is the backend's index.max_result_window default.
	DefaultMaxResultWindow = 10000
)

type Config struct {
	PageSize      int
	MaxIterations int
	// MaxResultWindow caps from+size on every page request.
	MaxResultWindow int
}

type Paginator struct {
	searcher search.Searcher
	config   Config
	logger   logger.Logger
}

func New(searcher search.Searcher, cfg Config, log logger.Logger) *Paginator {
	if cfg.PageSize <= 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = DefaultMaxIterations
	}
	if cfg.MaxResultWindow <= 0 {
		cfg.MaxResultWindow = DefaultMaxResultWindow
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Paginator{searcher: searcher, config: cfg, logger: log}
}

// All returns every hit for body, in backend order. The total is the one
// reported by the first page. Each page's offset is the number of hits
// already retrieved, so pages are never requested concurrently.
//
// from+size never exceeds MaxResultWindow: the last page is shrunk to fit and
// a match set larger than the window fails with INCOMPLETE_EXPORT instead of
// a backend rejection.
func (p *Paginator) All(ctx context.Context, index string, body dsl.Body) ([]search.Hit, error) {
	hits := []search.Hit{}
	var total int64

	for page := 0; ; page++ {
		if page >= p.config.MaxIterations {
			return nil, errors.NewIncompleteExportError(int64(len(hits)), total,
				fmt.Sprintf("stopped after %d pages", p.config.MaxIterations)).
				WithMetadata("index", index)
		}

		size := p.config.PageSize
		if room := p.config.MaxResultWindow - len(hits); room < size {
			size = room
		}
		if size <= 0 {
			return nil, errors.NewIncompleteExportError(int64(len(hits)), total,
				fmt.Sprintf("result window of %d reached", p.config.MaxResultWindow)).
				WithMetadata("index", index)
		}

		resp, err := p.searcher.Search(ctx, index, body.WithPage(len(hits), size))
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", page, index, err)
		}
		metrics.ExportPagesTotal.WithLabelValues(index).Inc()

		if page == 0 {
			total = resp.Total
		}
		hits = append(hits, resp.Hits...)

		if int64(len(hits)) >= total {
			p.logger.Debug("Pagination complete", map[string]interface{}{
				"index": index,
				"pages": page + 1,
				"total": total,
			})
			return hits, nil
		}

		if len(resp.Hits) == 0 {
			return nil, errors.NewIncompleteExportError(int64(len(hits)), total,
				fmt.Sprintf("page %d came back empty", page)).
				WithMetadata("index", index)
		}
	}
}
