package querybuilder

import (
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/criteria"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/dsl"
)

// TaxonomyAggregationName is the key of the rank-dependent nested aggregation.
const TaxonomyAggregationName = "taxonomies"

// DataPortalAggregations are the status facets of the primary catalog.
var DataPortalAggregations = []string{
	"biosamples",
	"raw_data",
	"mapped_reads",
	"assemblies_status",
	"annotation_status",
	"annotation_complete",
	"project_name",
	"symbionts_assemblies_status",
	"symbionts_biosamples_status",
	"symbionts_raw_data_status",
	"metagenomes_assemblies_status",
	"metagenomes_biosamples_status",
	"metagenomes_raw_data_status",
	"images_available",
}

// ArticlesAggregations are the facets of the articles index.
var ArticlesAggregations = []string{
	"pubYear",
	"journalTitle",
	"articleType",
}

// Aggregations returns one terms aggregation per field, in order, followed by
// the nested taxonomy aggregation for rank.
func Aggregations(fields []string, rank criteria.Rank) []dsl.NamedAggregation {
	out := make([]dsl.NamedAggregation, 0, len(fields)+1)
	for _, f := range fields {
		out = append(out, dsl.NamedAggregation{Name: f, Agg: dsl.TermsAgg{Field: f}})
	}

	path := TaxonomyPath(rank)
	out = append(out, dsl.NamedAggregation{
		Name: TaxonomyAggregationName,
		Agg: dsl.NestedAgg{
			Path: path,
			Aggs: []dsl.NamedAggregation{{
				Name: string(rank),
				Agg:  dsl.TermsAgg{Field: path + ".scientificName"},
			}},
		},
	})
	return out
}
