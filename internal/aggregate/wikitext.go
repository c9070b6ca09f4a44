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
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	// Self-closing <ref name="x" /> first, then <ref ...>...</ref>. <references/> never matches.
	refRegex = regexp.MustCompile(`(?is)<ref(?:\s[^>]*)?/>|<ref(?:\s[^>]*)?>.*?</ref>`)
	tagRegex = regexp.MustCompile(`<[^>]*>`)
)

// WikitextReferences returns every <ref> in text, in order.
func WikitextReferences(text string) []string {
	return refRegex.FindAllString(text, -1)
}

// CountWikitextReferences counts the <ref> tags in text.
func CountWikitextReferences(text string) int {
	return len(WikitextReferences(text))
}

// ReferencePreview strips markup from a <ref> and cuts it to max runes.
func ReferencePreview(ref string, max int) string {
	preview := strings.TrimSpace(tagRegex.ReplaceAllString(ref, ""))
	if utf8.RuneCountInString(preview) <= max {
		return preview
	}
	return string([]rune(preview)[:max])
}
