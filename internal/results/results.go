package results

//
// Wikiprovenance, provenance statistics for Wikidata items
// Copyright (C) 2026 Wikiprovenance contributors

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.

// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.
//

import (
	"fmt"

	"github.com/knakk/rdf"
	"github.com/knakk/sparql"
)

// Kind is the type of a bound value.
type Kind string

// Value kinds as reported by the SPARQL JSON results format.
const (
	KindURI     Kind = "uri"
	KindLiteral Kind = "literal"
	KindBlank   Kind = "bnode"
)

// Value is a single bound value in a row.
type Value struct {
	Value string `json:"value"`
	Kind  Kind   `json:"type"`
	Lang  string `json:"lang,omitempty"`
}

// Row maps variable names to their bound values. Unbound variables
// (OPTIONAL clauses that didn't match) are absent from the map.
type Row map[string]Value

// ResultSet is a decoded, validated query result. Treat it as read-only.
type ResultSet struct {
	Variables []string `json:"variables"`
	Rows      []Row    `json:"rows"`
}

// Len returns the number of rows.
func (rs *ResultSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.Rows)
}

// Declares reports whether variable is one of the projected variables.
func (rs *ResultSet) Declares(variable string) bool {
	if rs == nil {
		return false
	}
	for _, v := range rs.Variables {
		if v == variable {
			return true
		}
	}
	return false
}

// Bound returns the value of variable in row i, if bound.
func (rs *ResultSet) Bound(i int, variable string) (Value, bool) {
	v, ok := rs.Rows[i][variable]
	return v, ok
}

// FromSPARQL converts a parsed application/sparql-results+json document.
// A binding for a variable missing from the head, or a term that can't be
// read, fails the whole conversion.
func FromSPARQL(res *sparql.Results) (*ResultSet, error) {
	if res == nil {
		return nil, fmt.Errorf("no results document")
	}

	rs := &ResultSet{
		Variables: append([]string(nil), res.Head.Vars...),
		Rows:      make([]Row, 0, len(res.Results.Bindings)),
	}

	declared := make(map[string]bool, len(rs.Variables))
	for _, v := range rs.Variables {
		declared[v] = true
	}

	solutions := res.Solutions()
	if len(solutions) != len(res.Results.Bindings) {
		return nil, fmt.Errorf("got %d solutions for %d bindings", len(solutions), len(res.Results.Bindings))
	}

	for i, binding := range res.Results.Bindings {
		row := make(Row, len(binding))
		for name := range binding {
			if !declared[name] {
				return nil, fmt.Errorf("row %d binds undeclared variable %q", i, name)
			}
			term, ok := solutions[i][name]
			if !ok {
				return nil, fmt.Errorf("row %d: unreadable %s term for %q", i, binding[name].Type, name)
			}
			row[name] = valueFromTerm(term)
		}
		rs.Rows = append(rs.Rows, row)
	}

	return rs, nil
}

func valueFromTerm(term rdf.Term) Value {
	switch term.Type() {
	case rdf.TermIRI:
		return Value{Value: term.String(), Kind: KindURI}
	case rdf.TermBlank:
		return Value{Value: term.String(), Kind: KindBlank}
	default:
		v := Value{Value: term.String(), Kind: KindLiteral}
		if lit, ok := term.(rdf.Literal); ok {
			v.Lang = lit.Lang()
		}
		return v
	}
}
