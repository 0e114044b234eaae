package validation

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"github.com/TreeOfLifeDCC/erga-back-end/internal/common/errors"
)

// ParamValidator checks the scalar listing parameters against a JSON schema
// before they are parsed.
type ParamValidator struct {
	schema      *gojsonschema.Schema
	integerKeys map[string]bool
}

// ListingSchema describes offset, limit and current_class.
func ListingSchema(maxLimit int, ranks []string) map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"offset": map[string]interface{}{
				"type":    "integer",
				"minimum": 0,
			},
			"limit": map[string]interface{}{
				"type":    "integer",
				"minimum": 0,
				"maximum": maxLimit,
			},
			"current_class": map[string]interface{}{
				"type": "string",
				"enum": toInterfaces(ranks),
			},
		},
	}
}

func NewParamValidator(schema map[string]interface{}) (*ParamValidator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile parameter schema: %w", err)
	}

	integerKeys := map[string]bool{}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		for name, p := range props {
			if pm, ok := p.(map[string]interface{}); ok && pm["type"] == "integer" {
				integerKeys[name] = true
			}
		}
	}
	return &ParamValidator{schema: compiled, integerKeys: integerKeys}, nil
}

// Validate returns a MALFORMED_FILTER error for malformed values and an
// INVALID_PARAMETERS error for well-formed values outside the allowed range.
func (v *ParamValidator) Validate(q url.Values) error {
	doc := map[string]interface{}{}
	for key := range q {
		raw := strings.TrimSpace(q.Get(key))
		if raw == "" {
			continue
		}
		if v.integerKeys[key] {
			if n, err := strconv.Atoi(raw); err == nil {
				doc[key] = n
				continue
			}
		}
		doc[key] = raw
	}

	result, err := v.schema.Validate(gojsonschema.NewGoLoader(doc))
	if err != nil {
		return errors.NewInternalError(fmt.Errorf("validation error: %w", err))
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, len(result.Errors()))
	rangeOnly := true
	for i, desc := range result.Errors() {
		msgs[i] = desc.String()
		if desc.Type() != "number_lte" {
			rangeOnly = false
		}
	}
	details := strings.Join(msgs, "; ")
	if rangeOnly {
		return errors.NewInvalidParamsError(details)
	}
	return errors.NewMalformedFilterError(details)
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
