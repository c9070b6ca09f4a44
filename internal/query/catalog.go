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

import "sort"

// Names of the queries in the catalog.
const (
	AllWikiLinks       = "allWikiLinks"
	WikiLinks          = "wikiLinks"
	ExternalLinks      = "externalLinks"
	ExternalLinksCount = "externalLinksCount"
	Label              = "label"
	ReferenceCount     = "referenceCount"
	References         = "references"
	SearchEntities     = "searchEntities"
)

// Every statement of an item, with the provenance node where one exists.
// Rows without ?reference are unreferenced statements.
const statementsQuery = `SELECT ?statement ?prop ?reference {
  wd:{{item}} ?prop ?statement.
  OPTIONAL { ?statement prov:wasDerivedFrom ?reference }
  FILTER (REGEX(STR(?statement), "http://www.wikidata.org/entity/statement/"))
} ORDER BY ?statement`

const externalIDQuery = `SELECT ?property ?value {
  ?qualifier rdf:type owl:DatatypeProperty.
  ?property rdf:type wikibase:Property;
    wikibase:propertyType wikibase:ExternalId.
  ?property wikibase:claim ?propertyclaim.
  wd:{{item}} ?propertyclaim [?qualifier ?value].
} ORDER BY ?property`

var catalog = map[string]Spec{
	AllWikiLinks: NewSpec(AllWikiLinks,
		`SELECT ?wikilink WHERE { ?wikilink schema:about wd:{{item}}. } ORDER BY ?wikilink`),
	WikiLinks: NewSpec(WikiLinks,
		`SELECT ?wikilink WHERE {
  ?wikilink schema:about wd:{{item}}.
  FILTER(CONTAINS(STR(?wikilink), "{{domain}}/")).
} ORDER BY ?wikilink`),
	ExternalLinks:      NewSpec(ExternalLinks, externalIDQuery),
	ExternalLinksCount: NewSpec(ExternalLinksCount, externalIDQuery),
	Label: NewSpec(Label,
		`SELECT DISTINCT ?label WHERE {
  wd:{{item}} rdfs:label ?label;
  FILTER(lang(?label) = "{{lang}}").
}`),
	ReferenceCount: NewSpec(ReferenceCount, statementsQuery),
	References:     NewSpec(References, statementsQuery),
	// MediaWiki action API, not SPARQL. Values must be query-escaped by the caller.
	SearchEntities: NewSpec(SearchEntities,
		`action=wbsearchentities&search={{search}}&language={{language}}&limit={{limit}}&props=url`),
}

// Lookup returns the named query.
func Lookup(name string) (Spec, bool) {
	s, ok := catalog[name]
	return s, ok
}

// MustLookup is Lookup for names known at compile time; an unknown name is a
// programming error and panics.
func MustLookup(name string) Spec {
	s, ok := catalog[name]
	if !ok {
		panic("query: unknown query " + name)
	}
	return s
}

// Names returns the catalog's query names, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build renders the named query with params.
func Build(name string, params map[string]string) (string, error) {
	return MustLookup(name).Render(params)
}
