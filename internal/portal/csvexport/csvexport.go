// Package csvexport renders search hits as CSV.
package csvexport

import (
	"encoding/csv"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/portal/search"
)

// ErrNoData is returned by Write when there is nothing to export.
var ErrNoData = stderrors.New("no data found")

// TitleCase turns a camelCase column name into a header: "commonNameSource"
// becomes "Common Name Source".
func TitleCase(column string) string {
	var spaced strings.Builder
	for _, r := range column {
		if unicode.IsUpper(r) {
			spaced.WriteRune(' ')
		}
		spaced.WriteRune(r)
	}

	// A Caser keeps state, so one per call.
	caser := cases.Title(language.Und)
	words := strings.Fields(spaced.String())
	for i, w := range words {
		words[i] = caser.String(w)
	}
	return strings.Join(words, " ")
}

// Headers returns the title-cased header row for columns.
func Headers(columns []string) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = TitleCase(c)
	}
	return out
}

// Write writes a header row and one row per hit, in hit order. Missing
// fields are written as empty strings.
func Write(w io.Writer, columns []string, hits []search.Hit) error {
	if len(hits) == 0 {
		return ErrNoData
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Headers(columns)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	row := make([]string, len(columns))
	for _, hit := range hits {
		for i, col := range columns {
			row[i] = cell(hit.Source[col])
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", hit.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// cell renders one field. Numbers are written in plain decimal notation.
func cell(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool, int, int64:
		return fmt.Sprint(val)
	default:
		raw, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(raw)
	}
}
