package dsl

import "encoding/json"

// SortField orders hits by Field in Order ("asc" or "desc").
type SortField struct {
	Field string
	Order string
}

// Body is a complete search request body.
type Body struct {
	query          Clause
	aggs           []NamedAggregation
	sort           []SortField
	from           *int
	size           *int
	trackTotalHits bool
}

func NewBody() Body { return Body{} }

func (b Body) WithQuery(q Clause) Body {
	b.query = q
	return b
}

func (b Body) WithAggregations(aggs ...NamedAggregation) Body {
	b.aggs = append(append([]NamedAggregation(nil), b.aggs...), aggs...)
	return b
}

func (b Body) WithSort(fields ...SortField) Body {
	b.sort = append(append([]SortField(nil), b.sort...), fields...)
	return b
}

// WithoutSort drops any sort fields.
func (b Body) WithoutSort() Body {
	b.sort = nil
	return b
}

// WithPage sets from and size.
func (b Body) WithPage(from, size int) Body {
	b.from = &from
	b.size = &size
	return b
}

// WithTrackTotalHits asks the cluster for an exact total beyond 10,000 hits.
func (b Body) WithTrackTotalHits(track bool) Body {
	b.trackTotalHits = track
	return b
}

func (b Body) Query() Clause                    { return b.query }
func (b Body) Aggregations() []NamedAggregation { return append([]NamedAggregation(nil), b.aggs...) }
func (b Body) Sort() []SortField                { return append([]SortField(nil), b.sort...) }

// From returns the offset, or 0 when unset.
func (b Body) From() int {
	if b.from == nil {
		return 0
	}
	return *b.from
}

// Size returns the page size and whether one was set.
func (b Body) Size() (int, bool) {
	if b.size == nil {
		return 0, false
	}
	return *b.size, true
}

func (b Body) Source() map[string]interface{} {
	out := map[string]interface{}{}
	if b.query != nil {
		out["query"] = b.query.Source()
	}
	if len(b.aggs) > 0 {
		out["aggs"] = aggregationSources(b.aggs)
	}
	if len(b.sort) > 0 {
		sort := make([]interface{}, len(b.sort))
		for i, s := range b.sort {
			sort[i] = map[string]interface{}{
				s.Field: map[string]interface{}{"order": s.Order},
			}
		}
		out["sort"] = sort
	}
	if b.from != nil {
		out["from"] = *b.from
	}
	if b.size != nil {
		out["size"] = *b.size
	}
	if b.trackTotalHits {
		out["track_total_hits"] = true
	}
	return out
}

func (b Body) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Source())
}
