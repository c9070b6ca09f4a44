package query

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
	"regexp"
	"strings"
)

var (
	placeholderRegex = regexp.MustCompile(`\{\{\s*(\w+)\s*\}\}`)
	itemIDRegex      = regexp.MustCompile(`^[QPL][0-9]+$`)
	languageRegex    = regexp.MustCompile(`^[a-z]{2,3}(-[a-z0-9]+)*$`)
)

// ValidItemID reports whether id is a Wikidata entity id (Q, P or L followed
// by digits) and so safe to substitute into a query.
func ValidItemID(id string) bool {
	return itemIDRegex.MatchString(id)
}

// ValidLanguage reports whether lang looks like a language code ("en",
// "zh-hans", "be-tarask"). Labels are filtered on it inside a string literal.
func ValidLanguage(lang string) bool {
	return languageRegex.MatchString(lang)
}

// MissingParameterError is returned when a template refers to a parameter
// that was not supplied.
type MissingParameterError struct {
	Query string
	Key   string
}

func (e *MissingParameterError) Error() string {
	if e.Query == "" {
		return fmt.Sprintf("missing query parameter %q", e.Key)
	}
	return fmt.Sprintf("query %s: missing parameter %q", e.Query, e.Key)
}

// Spec is a named query template.
type Spec struct {
	Name           string   `json:"name"`
	Template       string   `json:"template"`
	ParameterNames []string `json:"parameterNames"`
}

// NewSpec builds a Spec, collecting the parameter names from the template's
// {{name}} markers in order of first appearance.
func NewSpec(name, template string) Spec {
	return Spec{
		Name:           name,
		Template:       template,
		ParameterNames: Placeholders(template),
	}
}

// Render substitutes params into the template. Parameters that the template
// doesn't use are ignored.
func (s Spec) Render(params map[string]string) (string, error) {
	out, err := Substitute(s.Template, params)
	if err != nil {
		if missing, ok := err.(*MissingParameterError); ok {
			missing.Query = s.Name
		}
		return "", err
	}
	return out, nil
}

// Placeholders lists the distinct marker names in template.
func Placeholders(template string) []string {
	var names []string
	seen := map[string]bool{}
	for _, match := range placeholderRegex.FindAllStringSubmatch(template, -1) {
		if seen[match[1]] {
			continue
		}
		seen[match[1]] = true
		names = append(names, match[1])
	}
	return names
}

// Substitute replaces every {{key}} marker in template with params[key].
// The first marker with no matching entry in params fails the whole
// substitution with a *MissingParameterError; nothing is left half-filled.
func Substitute(template string, params map[string]string) (string, error) {
	matches := placeholderRegex.FindAllStringSubmatchIndex(template, -1)
	if len(matches) == 0 {
		return template, nil
	}

	var builder strings.Builder
	last := 0
	for _, m := range matches {
		key := template[m[2]:m[3]]
		value, ok := params[key]
		if !ok {
			return "", &MissingParameterError{Key: key}
		}
		builder.WriteString(template[last:m[0]])
		builder.WriteString(value)
		last = m[1]
	}
	builder.WriteString(template[last:])
	return builder.String(), nil
}
