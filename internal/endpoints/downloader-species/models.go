package downloaderspecies

import (
	"net/url"
	"strings"
)

type Input struct {
	Species     []string
	ProjectName string
}

// InputFromQuery splits species_list on commas. Blank entries are dropped.
func InputFromQuery(q url.Values) Input {
	in := Input{ProjectName: strings.TrimSpace(q.Get("project_name"))}
	for _, s := range strings.Split(q.Get("species_list"), ",") {
		if s = strings.TrimSpace(s); s != "" {
			in.Species = append(in.Species, s)
		}
	}
	return in
}
