package recorddetails

import "github.com/TreeOfLifeDCC/erga-back-end/internal/portal/search"

type Output struct {
	Count   int64        `json:"count"`
	Results []search.Hit `json:"results"`
}
