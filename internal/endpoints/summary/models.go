package summary

import "github.com/TreeOfLifeDCC/erga-back-end/internal/portal/search"

type Output struct {
	Results []search.Hit `json:"results"`
}
