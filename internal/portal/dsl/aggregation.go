package dsl

// Aggregation is a bucket aggregation.
type Aggregation interface {
	Source() map[string]interface{}
}

// NamedAggregation pairs an aggregation with the key it is reported under.
type NamedAggregation struct {
	Name string
	Agg  Aggregation
}

// TermsAgg buckets documents by the distinct values of Field. A zero Size
// leaves the cluster default in place.
type TermsAgg struct {
	Field string
	Size  int
}

func (t TermsAgg) Source() map[string]interface{} {
	inner := map[string]interface{}{"field": t.Field}
	if t.Size > 0 {
		inner["size"] = t.Size
	}
	return map[string]interface{}{"terms": inner}
}

// NestedAgg runs Aggs over the sub-documents under Path.
type NestedAgg struct {
	Path string
	Aggs []NamedAggregation
}

func (n NestedAgg) Source() map[string]interface{} {
	out := map[string]interface{}{
		"nested": map[string]interface{}{"path": n.Path},
	}
	if len(n.Aggs) > 0 {
		out["aggs"] = aggregationSources(n.Aggs)
	}
	return out
}

func aggregationSources(aggs []NamedAggregation) map[string]interface{} {
	out := make(map[string]interface{}, len(aggs))
	for _, a := range aggs {
		out[a.Name] = a.Agg.Source()
	}
	return out
}
