// Package dsl is a small, immutable, typed subset of the Elasticsearch query DSL.
//
// Every value is built once and never mutated; methods that add to a value
// return a copy. Source renders the JSON-ready map sent to the cluster.
package dsl

// Clause is a query clause.
type Clause interface {
	Source() map[string]interface{}
}

// Term is an exact-match constraint on a flat field.
type Term struct {
	Field string
	Value interface{}
}

func (t Term) Source() map[string]interface{} {
	return map[string]interface{}{
		"term": map[string]interface{}{t.Field: t.Value},
	}
}

// Wildcard matches Pattern against Field. Pattern is used verbatim.
type Wildcard struct {
	Field           string
	Pattern         string
	CaseInsensitive bool
}

func (w Wildcard) Source() map[string]interface{} {
	inner := map[string]interface{}{"value": w.Pattern}
	if w.CaseInsensitive {
		inner["case_insensitive"] = true
	}
	return map[string]interface{}{
		"wildcard": map[string]interface{}{w.Field: inner},
	}
}

// Exists matches documents with any value indexed for Field.
type Exists struct {
	Field string
}

func (e Exists) Source() map[string]interface{} {
	return map[string]interface{}{
		"exists": map[string]interface{}{"field": e.Field},
	}
}

// Nested scopes Query to the sub-documents under Path.
type Nested struct {
	Path  string
	Query Clause
}

func (n Nested) Source() map[string]interface{} {
	return map[string]interface{}{
		"nested": map[string]interface{}{
			"path":  n.Path,
			"query": n.Query.Source(),
		},
	}
}

// Bool is a boolean compound clause. The zero value is an empty bool query.
type Bool struct {
	filter []Clause
	must   []Clause
	should []Clause
}

func NewBool() Bool { return Bool{} }

// Filter returns a copy of b with clauses appended to its filter list.
func (b Bool) Filter(clauses ...Clause) Bool {
	b.filter = appendCopy(b.filter, clauses)
	return b
}

// Must returns a copy of b with clauses appended to its must list.
func (b Bool) Must(clauses ...Clause) Bool {
	b.must = appendCopy(b.must, clauses)
	return b
}

// Should returns a copy of b with clauses appended to its should list.
func (b Bool) Should(clauses ...Clause) Bool {
	b.should = appendCopy(b.should, clauses)
	return b
}

func (b Bool) FilterClauses() []Clause { return append([]Clause(nil), b.filter...) }
func (b Bool) MustClauses() []Clause   { return append([]Clause(nil), b.must...) }
func (b Bool) ShouldClauses() []Clause { return append([]Clause(nil), b.should...) }

func (b Bool) IsEmpty() bool {
	return len(b.filter) == 0 && len(b.must) == 0 && len(b.should) == 0
}

func (b Bool) Source() map[string]interface{} {
	inner := map[string]interface{}{}
	if len(b.filter) > 0 {
		inner["filter"] = sources(b.filter)
	}
	if len(b.must) > 0 {
		inner["must"] = sources(b.must)
	}
	if len(b.should) > 0 {
		inner["should"] = sources(b.should)
	}
	return map[string]interface{}{"bool": inner}
}

func appendCopy(dst, src []Clause) []Clause {
	out := make([]Clause, 0, len(dst)+len(src))
	out = append(out, dst...)
	return append(out, src...)
}

func sources(clauses []Clause) []interface{} {
	out := make([]interface{}, len(clauses))
	for i, c := range clauses {
		out[i] = c.Source()
	}
	return out
}
