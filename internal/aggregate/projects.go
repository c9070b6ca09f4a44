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
	"net/url"
	"strings"

	"wikiprovenance/internal/results"
)

// Project is a Wikimedia sister project that items link to.
type Project struct {
	Name string `json:"name"`
	Host string `json:"host"`
}

// Projects in display order. Hosts are disjoint; if a URI ever matched two,
// the earlier entry would win.
var Projects = []Project{
	{Name: "wikipedia", Host: "wikipedia.org"},
	{Name: "commons.wikimedia", Host: "commons.wikimedia.org"},
	{Name: "wikivoyage", Host: "wikivoyage.org"},
	{Name: "wikinews", Host: "wikinews.org"},
	{Name: "wikisource", Host: "wikisource.org"},
	{Name: "wiktionary", Host: "wiktionary.org"},
	{Name: "wikiversity", Host: "wikiversity.org"},
	{Name: "wikibooks", Host: "wikibooks.org"},
	{Name: "wikiquote", Host: "wikiquote.org"},
	{Name: "wikispecies", Host: "species.wikimedia.org"},
}

// LookupProject finds a project by name.
func LookupProject(name string) (Project, bool) {
	for _, p := range Projects {
		if p.Name == name {
			return p, true
		}
	}
	return Project{}, false
}

// ProjectOf returns the name of the project serving uri.
func ProjectOf(uri string) (string, bool) {
	u, err := url.Parse(uri)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range Projects {
		if host == p.Host || strings.HasSuffix(host, "."+p.Host) {
			return p.Name, true
		}
	}
	return "", false
}

// ProjectClassifier adapts ProjectOf for ClassifyAndCount.
func ProjectClassifier(v results.Value) (string, bool) {
	if v.Kind != results.KindURI {
		return "", false
	}
	return ProjectOf(v.Value)
}

// LocalName returns the last path segment of uri, e.g. P31 for
// http://www.wikidata.org/prop/P31.
func LocalName(uri string) string {
	if idx := strings.LastIndex(uri, "/"); idx >= 0 {
		return uri[idx+1:]
	}
	return uri
}

// SitelinkLanguage returns the subdomain of a sitelink, which for most
// projects is the language code ("https://de.wikipedia.org/wiki/X" -> "de").
func SitelinkLanguage(uri string) string {
	s := strings.TrimPrefix(strings.TrimPrefix(uri, "https://"), "http://")
	if idx := strings.Index(s, "."); idx >= 0 {
		return s[:idx]
	}
	return s
}
