package report

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
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"wikiprovenance/internal/aggregate"
	"wikiprovenance/internal/wikidata"
)

const (
	maxPreviews   = 10
	previewLength = 100
)

// ErrEmptySearch is returned for a blank search term.
var ErrEmptySearch = errors.New("empty search term")

var articleURLRegex = regexp.MustCompile(`^https://([a-z]{2,3})\.wikipedia\.org/wiki/(.+)$`)

// WikitextSource fetches the wikitext of a Wikipedia article.
type WikitextSource interface {
	Wikitext(ctx context.Context, lang, title string) (string, error)
}

// Searcher finds Wikidata entities by text.
type Searcher interface {
	Search(ctx context.Context, term, language string, limit int) ([]wikidata.SearchHit, error)
}

// Article identifies a Wikipedia article.
type Article struct {
	URL      string `json:"url"`
	Language string `json:"language"`
	Title    string `json:"title"`
}

// DisplayTitle is the title with underscores as spaces.
func (a Article) DisplayTitle() string {
	return strings.ReplaceAll(a.Title, "_", " ")
}

// ParseArticleURL accepts https://xx.wikipedia.org/wiki/Title URLs.
func ParseArticleURL(raw string) (Article, error) {
	m := articleURLRegex.FindStringSubmatch(raw)
	if m == nil {
		return Article{}, fmt.Errorf("not a Wikipedia article URL: %q", raw)
	}
	title, err := url.PathUnescape(m[2])
	if err != nil {
		return Article{}, fmt.Errorf("bad title in %q: %w", raw, err)
	}
	return Article{URL: raw, Language: m[1], Title: title}, nil
}

// ArticleReferences is the reference count of a Wikipedia article.
type ArticleReferences struct {
	Article  Article  `json:"article"`
	Count    int      `json:"count"`
	Previews []string `json:"previews,omitempty"`
}

// CountArticleReferences counts the <ref> tags of the article at rawURL.
// Previews are only given for articles with at most ten references.
func CountArticleReferences(ctx context.Context, src WikitextSource, rawURL string) (*ArticleReferences, error) {
	a, err := ParseArticleURL(rawURL)
	if err != nil {
		return nil, err
	}
	text, err := src.Wikitext(ctx, a.Language, a.Title)
	if err != nil {
		return nil, err
	}

	refs := aggregate.WikitextReferences(text)
	out := &ArticleReferences{Article: a, Count: len(refs)}
	if len(refs) > 0 && len(refs) <= maxPreviews {
		for _, ref := range refs {
			out.Previews = append(out.Previews, aggregate.ReferencePreview(ref, previewLength))
		}
	}
	return out, nil
}

// Search looks up entities, defaulting to English and ten results.
func Search(ctx context.Context, s Searcher, term, language string, limit int) ([]wikidata.SearchHit, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrEmptySearch
	}
	if language == "" {
		language = "en"
	}
	if limit <= 0 {
		limit = 10
	}
	return s.Search(ctx, term, language, limit)
}
