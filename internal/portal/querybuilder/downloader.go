package querybuilder

import (
	"fmt"
	"strings"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/errors"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/criteria"
	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/dsl"
)

const genomeNotesLabel = "Genome Notes"

// dataStatusFields maps the downloader's status labels to document fields.
var dataStatusFields = map[string]string{
	"Biosamples":          "biosamples",
	"Raw Data":            "raw_data",
	"Mapped Reads":        "mapped_reads",
	"Assemblies":          "assemblies_status",
	"Annotation Complete": "annotation_complete",
	"Annotation":          "annotation_status",
}

// DataStatusFilter parses a "<Label>-<Value>" status selector.
// "Genome Notes" ignores its value and matches records that have a genome note.
func DataStatusFilter(status string) (dsl.Clause, error) {
	label, value, hasValue := strings.Cut(status, "-")
	label = strings.TrimSpace(label)
	value = strings.TrimSpace(value)

	if label == genomeNotesLabel {
		return dsl.Nested{
			Path:  "genome_notes",
			Query: dsl.NewBool().Must(dsl.Exists{Field: "genome_notes.url"}),
		}, nil
	}

	field, ok := dataStatusFields[label]
	if !ok {
		return nil, errors.NewMalformedFilterError(fmt.Sprintf("unknown data_status label %q", label))
	}
	if !hasValue || value == "" {
		return nil, errors.NewMalformedFilterError(fmt.Sprintf("data_status %q has no value", status))
	}
	return dsl.Term{Field: field, Value: value}, nil
}

// ExperimentTypeFilter matches records with an experiment built by protocol.
func ExperimentTypeFilter(protocol string) dsl.Clause {
	return dsl.Nested{
		Path: "experiment",
		Query: dsl.NewBool().Must(dsl.Term{
			Field: "experiment.library_construction_protocol.keyword",
			Value: protocol,
		}),
	}
}

// ProjectFilter matches records of one project exactly.
func ProjectFilter(project string) dsl.Clause {
	return dsl.Term{Field: "project_name", Value: project}
}

// DownloaderFilters builds the filter list of the bulk download route. Empty
// parameters add nothing.
func DownloaderFilters(taxonomy, dataStatus, experimentType, project string) ([]dsl.Clause, error) {
	var out []dsl.Clause
	if taxonomy = strings.TrimSpace(taxonomy); taxonomy != "" {
		out = append(out, TaxonomyFilter(criteria.Class, taxonomy))
	}
	if strings.TrimSpace(dataStatus) != "" {
		c, err := DataStatusFilter(dataStatus)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if experimentType = strings.TrimSpace(experimentType); experimentType != "" {
		out = append(out, ExperimentTypeFilter(experimentType))
	}
	if project = strings.TrimSpace(project); project != "" {
		out = append(out, ProjectFilter(project))
	}
	return out, nil
}

// SpeciesFilters selects one catalog record by id, optionally within a project.
func SpeciesFilters(id, project string) []dsl.Clause {
	out := []dsl.Clause{dsl.Term{Field: "_id", Value: id}}
	if project != "" {
		out = append(out, ProjectFilter(project))
	}
	return out
}
