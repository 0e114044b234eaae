// Package querybuilder turns parsed listing criteria into search request bodies.
package querybuilder

import (
	"strings"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/criteria"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/dsl"
)

// Builder is shared by every route; it holds no per-request state.
type Builder struct {
	searchFields []string
}

// NewBuilder returns a Builder whose free-text search matches searchFields.
func NewBuilder(searchFields []string) *Builder {
	return &Builder{searchFields: append([]string(nil), searchFields...)}
}

type buildOptions struct {
	aggFields []string
	withAggs  bool
	extra     []dsl.Clause
	from      *int
	size      *int
	noSort    bool
}

// Option adjusts one Build call.
type Option func(*buildOptions)

// WithAggregations adds the status facets over fields and the taxonomy facet
// for the criteria's current rank.
func WithAggregations(fields []string) Option {
	return func(o *buildOptions) {
		o.withAggs = true
		o.aggFields = fields
	}
}

// WithFilters appends pre-built clauses to the filter list.
func WithFilters(clauses ...dsl.Clause) Option {
	return func(o *buildOptions) {
		o.extra = append(o.extra, clauses...)
	}
}

// WithPage overrides the criteria's offset and limit.
func WithPage(from, size int) Option {
	return func(o *buildOptions) {
		o.from = &from
		o.size = &size
	}
}

// WithoutSort drops the criteria's sort fields.
func WithoutSort() Option {
	return func(o *buildOptions) {
		o.noSort = true
	}
}

// Build composes the request body. A nil c is treated as empty criteria with
// no paging and no sort, which is what the bulk shortcut routes need. Parsed
// criteria always carry their offset and limit, so limit=0 asks for facets
// and the total only.
func (b *Builder) Build(c *criteria.Criteria, opts ...Option) dsl.Body {
	o := buildOptions{}
	for _, opt := range opts {
		opt(&o)
	}

	paged := c != nil
	if c == nil {
		c = &criteria.Criteria{CurrentRank: criteria.Kingdom}
	}

	body := dsl.NewBody().WithTrackTotalHits(true)

	if o.withAggs {
		body = body.WithAggregations(Aggregations(o.aggFields, c.CurrentRank)...)
	}

	if q := b.query(c, o.extra); !q.IsEmpty() {
		body = body.WithQuery(q)
	}

	if !o.noSort {
		for _, s := range c.Sort {
			body = body.WithSort(dsl.SortField{Field: s.Field, Order: s.Order})
		}
	}

	switch {
	case o.from != nil:
		body = body.WithPage(*o.from, *o.size)
	case paged:
		body = body.WithPage(c.Offset, c.Limit)
	}

	return body
}

func (b *Builder) query(c *criteria.Criteria, extra []dsl.Clause) dsl.Bool {
	q := dsl.NewBool()

	for _, tok := range c.Filters {
		if c.IsRankFilter(tok) {
			q = q.Filter(TaxonomyFilter(c.CurrentRank, tok.Value))
			continue
		}
		q = q.Filter(dsl.Term{Field: tok.Field, Value: tok.Value})
	}

	for _, tok := range c.Phylogeny {
		q = q.Filter(TaxonomyFilter(tok.Rank, tok.Value))
	}

	q = q.Filter(extra...)

	if c.Search != "" && len(b.searchFields) > 0 {
		pattern := "*" + escapeWildcard(c.Search) + "*"
		text := dsl.NewBool()
		for _, f := range b.searchFields {
			text = text.Should(dsl.Wildcard{Field: f, Pattern: pattern, CaseInsensitive: true})
		}
		q = q.Must(text)
	}

	return q
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func escapeWildcard(s string) string {
	return wildcardEscaper.Replace(s)
}
