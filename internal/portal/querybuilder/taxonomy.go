package querybuilder

import (
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/criteria"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/dsl"
)

// TaxonomyPath is the nested document path holding the lineage entries of rank.
func TaxonomyPath(rank criteria.Rank) string {
	return "taxonomies." + string(rank)
}

// TaxonomyFilter restricts matches to documents with a rank entry named value.
//
// Constraints on several ranks become independent nested clauses, so they are
// not required to match along the same lineage chain.
func TaxonomyFilter(rank criteria.Rank, value string) dsl.Clause {
	path := TaxonomyPath(rank)
	return dsl.Nested{
		Path: path,
		Query: dsl.NewBool().Filter(dsl.Term{
			Field: path + ".scientificName",
			Value: value,
		}),
	}
}
