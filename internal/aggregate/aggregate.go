package aggregate

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
	"math"
	"strconv"

	"wikiprovenance/internal/results"
)

// SchemaMismatchError means an aggregation asked for a variable the result
// set can't supply. It points at a query/aggregator mismatch, not bad data.
type SchemaMismatchError struct {
	Variable string
	Row      int // -1 when the variable isn't declared at all
}

func (e *SchemaMismatchError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("result set does not declare variable %q", e.Variable)
	}
	return fmt.Sprintf("row %d: variable %q is unbound", e.Row, e.Variable)
}

func requireDeclared(rs *results.ResultSet, variables ...string) error {
	for _, v := range variables {
		if !rs.Declares(v) {
			return &SchemaMismatchError{Variable: v, Row: -1}
		}
	}
	return nil
}

// CountGroups counts, per value of groupKey, the rows in which presence is
// bound. Rows without presence are skipped.
func CountGroups(rs *results.ResultSet, groupKey, presence string) (map[string]int, error) {
	if err := requireDeclared(rs, groupKey, presence); err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for i, row := range rs.Rows {
		if _, ok := row[presence]; !ok {
			continue
		}
		key, ok := row[groupKey]
		if !ok {
			return nil, &SchemaMismatchError{Variable: groupKey, Row: i}
		}
		counts[key.Value]++
	}
	return counts, nil
}

// ClassifyAndCount tallies the categories classifier assigns to variable's
// values. Unbound and unclassifiable values are dropped.
func ClassifyAndCount(rs *results.ResultSet, variable string, classifier func(results.Value) (string, bool)) (map[string]int, error) {
	if err := requireDeclared(rs, variable); err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, row := range rs.Rows {
		v, ok := row[variable]
		if !ok {
			continue
		}
		if category, ok := classifier(v); ok {
			counts[category]++
		}
	}
	return counts, nil
}

// PercentageReferenced is 100 * distinct referenced groups / rows, rounded
// to two decimals. An empty result set gives 0.
func PercentageReferenced(rs *results.ResultSet, groupKey, presence string) (float64, error) {
	groups, err := CountGroups(rs, groupKey, presence)
	if err != nil {
		return 0, err
	}
	return Percentage(len(groups), rs.Len()), nil
}

// Percentage returns 100*part/total rounded to two decimals, 0 when total is 0.
func Percentage(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return math.Round(float64(part)*100*100/float64(total)) / 100
}

// FormatPercentage renders p with exactly two decimals.
func FormatPercentage(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

// ExtractScalar returns variable's value in the first row. Later rows are
// ignored.
func ExtractScalar(rs *results.ResultSet, variable string) (string, bool, error) {
	if err := requireDeclared(rs, variable); err != nil {
		return "", false, err
	}
	if rs.Len() == 0 {
		return "", false, nil
	}
	v, ok := rs.Rows[0][variable]
	if !ok {
		return "", false, nil
	}
	return v.Value, true, nil
}

// DistinctCount returns how many different values variable takes.
func DistinctCount(rs *results.ResultSet, variable string) (int, error) {
	if err := requireDeclared(rs, variable); err != nil {
		return 0, err
	}
	seen := map[string]bool{}
	for _, row := range rs.Rows {
		if v, ok := row[variable]; ok {
			seen[v.Value] = true
		}
	}
	return len(seen), nil
}

// Column returns variable's bound values in row order.
func Column(rs *results.ResultSet, variable string) ([]string, error) {
	if err := requireDeclared(rs, variable); err != nil {
		return nil, err
	}
	values := make([]string, 0, rs.Len())
	for _, row := range rs.Rows {
		if v, ok := row[variable]; ok {
			values = append(values, v.Value)
		}
	}
	return values, nil
}
