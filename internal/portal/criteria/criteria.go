// Package criteria parses the listing query parameters of the portal API
// into structured, request-scoped search criteria.
package criteria

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/errors"
)

// Rank is one level of the fixed taxonomic hierarchy.
type Rank string

const (
	Kingdom Rank = "kingdom"
	Phylum  Rank = "phylum"
	Class   Rank = "class"
	Order   Rank = "order"
	Family  Rank = "family"
	Genus   Rank = "genus"
	Species Rank = "species"
)

// Ranks lists the hierarchy from coarsest to finest.
var Ranks = []Rank{Kingdom, Phylum, Class, Order, Family, Genus, Species}

// ParseRank accepts only members of Ranks. Matching is exact.
func ParseRank(s string) (Rank, bool) {
	for _, r := range Ranks {
		if string(r) == s {
			return r, true
		}
	}
	return "", false
}

// FilterToken is one field:value segment of a filter string.
type FilterToken struct {
	Field string
	Value string
}

func (t FilterToken) String() string {
	return t.Field + ":" + t.Value
}

// PhylogenyToken is one rank:value segment of a phylogeny string.
type PhylogenyToken struct {
	Rank  Rank
	Value string
}

// Sort directions accepted in the sort parameter.
const (
	OrderAsc  = "asc"
	OrderDesc = "desc"
)

// SortField is one field:direction pair of the sort parameter, in request order.
type SortField struct {
	Field string
	Order string
}

// Criteria is the parsed form of a listing request.
type Criteria struct {
	Filters     []FilterToken
	Phylogeny   []PhylogenyToken
	Search      string
	CurrentRank Rank
	Offset      int
	Limit       int
	Sort        []SortField
}

// IsRankFilter reports whether the token constrains the current rank.
func (c *Criteria) IsRankFilter(t FilterToken) bool {
	return t.Field == string(c.CurrentRank)
}

// HasConstraints reports whether any filter, phylogeny or search term is present.
func (c *Criteria) HasConstraints() bool {
	return len(c.Filters) > 0 || len(c.Phylogeny) > 0 || c.Search != ""
}

// Defaults are applied for parameters absent from the request.
type Defaults struct {
	Limit int
	Sort  string
}

// DefaultDefaults returns 15 hits sorted by rank, highest first.
var DefaultDefaults = Defaults{Limit: 15, Sort: "rank:desc"}

// ParseFilters splits s on ',' and each segment on its first ':'.
func ParseFilters(s string) ([]FilterToken, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	segments := strings.Split(s, ",")
	tokens := make([]FilterToken, 0, len(segments))
	for _, seg := range segments {
		field, value, err := splitSegment(seg)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, FilterToken{Field: field, Value: value})
	}
	return tokens, nil
}

// ParsePhylogeny splits s on '-' and each segment on its first ':'.
// The field part of every segment must name a known rank.
func ParsePhylogeny(s string) ([]PhylogenyToken, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	segments := strings.Split(s, "-")
	tokens := make([]PhylogenyToken, 0, len(segments))
	for _, seg := range segments {
		field, value, err := splitSegment(seg)
		if err != nil {
			return nil, err
		}
		rank, ok := ParseRank(field)
		if !ok {
			return nil, errors.NewMalformedFilterError(fmt.Sprintf("unknown taxonomic rank %q in phylogeny filter", field))
		}
		tokens = append(tokens, PhylogenyToken{Rank: rank, Value: value})
	}
	return tokens, nil
}

func splitSegment(seg string) (string, string, error) {
	field, value, ok := strings.Cut(seg, ":")
	if !ok {
		return "", "", errors.NewMalformedFilterError(fmt.Sprintf("segment %q has no ':' separator", seg))
	}
	field = strings.TrimSpace(field)
	if field == "" {
		return "", "", errors.NewMalformedFilterError(fmt.Sprintf("segment %q has an empty field name", seg))
	}
	return field, strings.TrimSpace(value), nil
}

// ParseSort parses a comma-separated list of field:direction pairs.
func ParseSort(s string) ([]SortField, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	out := make([]SortField, 0, len(parts))
	for _, part := range parts {
		field, dir, ok := strings.Cut(part, ":")
		field = strings.TrimSpace(field)
		dir = strings.ToLower(strings.TrimSpace(dir))
		if !ok || field == "" {
			return nil, errors.NewMalformedSortError(fmt.Sprintf("sort %q is not of the form field:direction", part))
		}
		if dir != OrderAsc && dir != OrderDesc {
			return nil, errors.NewMalformedSortError(fmt.Sprintf("sort direction %q must be asc or desc", dir))
		}
		out = append(out, SortField{Field: field, Order: dir})
	}
	return out, nil
}

// FromQuery builds Criteria from the listing parameters offset, limit, sort,
// filter, search, current_class and phylogeny_filters.
func FromQuery(q url.Values, d Defaults) (*Criteria, error) {
	c := &Criteria{
		CurrentRank: Kingdom,
		Limit:       d.Limit,
		Search:      strings.TrimSpace(q.Get("search")),
	}

	var err error
	if c.Offset, err = intParam(q, "offset", 0); err != nil {
		return nil, err
	}
	if c.Limit, err = intParam(q, "limit", d.Limit); err != nil {
		return nil, err
	}

	if cc := q.Get("current_class"); cc != "" {
		rank, ok := ParseRank(cc)
		if !ok {
			return nil, errors.NewMalformedFilterError(fmt.Sprintf("current_class %q is not a taxonomic rank", cc))
		}
		c.CurrentRank = rank
	}

	sort := q.Get("sort")
	if sort == "" {
		sort = d.Sort
	}
	if c.Sort, err = ParseSort(sort); err != nil {
		return nil, err
	}

	if c.Filters, err = ParseFilters(q.Get("filter")); err != nil {
		return nil, err
	}
	if c.Phylogeny, err = ParsePhylogeny(q.Get("phylogeny_filters")); err != nil {
		return nil, err
	}

	return c, nil
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.NewMalformedFilterError(fmt.Sprintf("%s must be a non-negative integer, got %q", name, raw))
	}
	return n, nil
}
