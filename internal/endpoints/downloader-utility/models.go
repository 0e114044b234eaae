package downloaderutility

import "net/url"

// Input holds the bulk download shortcut parameters. Empty fields add no
// filter.
type Input struct {
	TaxonomyFilter string
	DataStatus     string
	ExperimentType string
	ProjectName    string
}

func InputFromQuery(q url.Values) Input {
	return Input{
		TaxonomyFilter: q.Get("taxonomy_filter"),
		DataStatus:     q.Get("data_status"),
		ExperimentType: q.Get("experiment_type"),
		ProjectName:    q.Get("project_name"),
	}
}
