package criteria

import (
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/errors"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []FilterToken
		wantErr bool
	}{
		{name: "empty", input: "", want: nil},
		{name: "blank", input: "   ", want: nil},
		{
			name:  "single",
			input: "biosamples:Done",
			want:  []FilterToken{{Field: "biosamples", Value: "Done"}},
		},
		{
			name:  "multiple trimmed",
			input: " biosamples : Done , kingdom:Animalia",
			want: []FilterToken{
				{Field: "biosamples", Value: "Done"},
				{Field: "kingdom", Value: "Animalia"},
			},
		},
		{
			name:  "value keeps later colons",
			input: "project_name:DToL:phase1",
			want:  []FilterToken{{Field: "project_name", Value: "DToL:phase1"}},
		},
		{
			name:  "empty value allowed",
			input: "annotation_status:",
			want:  []FilterToken{{Field: "annotation_status", Value: ""}},
		},
		{name: "missing separator", input: "biosamples", wantErr: true},
		{name: "empty field", input: ":Done", wantErr: true},
		{name: "trailing comma", input: "biosamples:Done,", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseFilters(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedFilter))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFilters_RoundTripMultiset(t *testing.T) {
	inputs := []string{
		"biosamples:Done,kingdom:Animalia,raw_data:Submitted",
		"kingdom:Animalia,raw_data:Submitted,biosamples:Done",
		"raw_data:Submitted,biosamples:Done,kingdom:Animalia",
	}

	var want []string
	for i, in := range inputs {
		tokens, err := ParseFilters(in)
		require.NoError(t, err)

		parts := make([]string, len(tokens))
		for j, tok := range tokens {
			parts[j] = tok.String()
		}

		reparsed, err := ParseFilters(strings.Join(parts, ","))
		require.NoError(t, err)
		assert.Equal(t, tokens, reparsed)

		sort.Strings(parts)
		if i == 0 {
			want = parts
			continue
		}
		assert.Equal(t, want, parts)
	}
}

func TestParsePhylogeny(t *testing.T) {
	got, err := ParsePhylogeny("kingdom:Animalia-phylum:Chordata")
	require.NoError(t, err)
	assert.Equal(t, []PhylogenyToken{
		{Rank: Kingdom, Value: "Animalia"},
		{Rank: Phylum, Value: "Chordata"},
	}, got)

	_, err = ParsePhylogeny("kingdom:Animalia-subphylum:Vertebrata")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedFilter))

	_, err = ParsePhylogeny("kingdom")
	require.Error(t, err)

	got, err = ParsePhylogeny("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseRank_ExactMatchOnly(t *testing.T) {
	for _, r := range Ranks {
		got, ok := ParseRank(string(r))
		assert.True(t, ok)
		assert.Equal(t, r, got)
	}

	for _, s := range []string{"Kingdom", "subclass", "order_name", "classification", ""} {
		_, ok := ParseRank(s)
		assert.False(t, ok, s)
	}
}

func TestParseSort(t *testing.T) {
	got, err := ParseSort("rank:desc")
	require.NoError(t, err)
	assert.Equal(t, []SortField{{Field: "rank", Order: OrderDesc}}, got)

	got, err = ParseSort("organism:ASC, rank:desc")
	require.NoError(t, err)
	assert.Equal(t, []SortField{
		{Field: "organism", Order: OrderAsc},
		{Field: "rank", Order: OrderDesc},
	}, got)

	for _, bad := range []string{"rank", "rank:up", ":asc", "rank:desc,"} {
		_, err := ParseSort(bad)
		require.Error(t, err, bad)
		assert.True(t, errors.IsCode(err, errors.ErrCodeMalformedSort), bad)
	}
}

func TestFromQuery_Defaults(t *testing.T) {
	c, err := FromQuery(url.Values{}, DefaultDefaults)
	require.NoError(t, err)

	assert.Equal(t, Kingdom, c.CurrentRank)
	assert.Equal(t, 0, c.Offset)
	assert.Equal(t, 15, c.Limit)
	assert.Equal(t, []SortField{{Field: "rank", Order: OrderDesc}}, c.Sort)
	assert.False(t, c.HasConstraints())
}

func TestFromQuery_AllParameters(t *testing.T) {
	q := url.Values{}
	q.Set("offset", "30")
	q.Set("limit", "10")
	q.Set("sort", "organism:asc")
	q.Set("filter", "biosamples:Done,class:Mammalia")
	q.Set("search", "  felis ")
	q.Set("current_class", "class")
	q.Set("phylogeny_filters", "kingdom:Animalia")

	c, err := FromQuery(q, DefaultDefaults)
	require.NoError(t, err)

	assert.Equal(t, 30, c.Offset)
	assert.Equal(t, 10, c.Limit)
	assert.Equal(t, "felis", c.Search)
	assert.Equal(t, Class, c.CurrentRank)
	assert.True(t, c.HasConstraints())
	require.Len(t, c.Filters, 2)
	assert.False(t, c.IsRankFilter(c.Filters[0]))
	assert.True(t, c.IsRankFilter(c.Filters[1]))
	assert.Equal(t, []PhylogenyToken{{Rank: Kingdom, Value: "Animalia"}}, c.Phylogeny)
}

func TestFromQuery_Rejects(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		code  errors.ErrorCode
	}{
		{"negative offset", "offset", "-1", errors.ErrCodeMalformedFilter},
		{"non numeric limit", "limit", "ten", errors.ErrCodeMalformedFilter},
		{"unknown current class", "current_class", "tribe", errors.ErrCodeMalformedFilter},
		{"bad sort", "sort", "rank:sideways", errors.ErrCodeMalformedSort},
		{"bad filter", "filter", "biosamples", errors.ErrCodeMalformedFilter},
		{"bad phylogeny", "phylogeny_filters", "clade:Amniota", errors.ErrCodeMalformedFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := url.Values{}
			q.Set(tt.key, tt.value)

			_, err := FromQuery(q, DefaultDefaults)
			require.Error(t, err)
			assert.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}
