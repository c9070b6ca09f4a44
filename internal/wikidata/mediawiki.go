package wikidata

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
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"sync"

	"cgt.name/pkg/go-mwclient"
	"cgt.name/pkg/go-mwclient/params"
	"github.com/antonholmquist/jason"

	"wikiprovenance/internal/query"
)

// DefaultAPIEndpoint is the Wikidata MediaWiki action API.
const DefaultAPIEndpoint = "https://www.wikidata.org/w/api.php"

// DefaultWikipediaAPI is the action API of a language edition; %s is the
// language code.
const DefaultWikipediaAPI = "https://%s.wikipedia.org/w/api.php"

// SearchHit is one entity returned by wbsearchentities.
type SearchHit struct {
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description"`
	ConceptURI  string `json:"concepturi"`
}

// MediaWikiClient talks to the Wikidata action API.
type MediaWikiClient struct {
	endpoint string
	w        *mwclient.Client
	opts     Options
	logger   *slog.Logger
}

// NewMediaWikiClient creates a client for the action API at endpoint.
func NewMediaWikiClient(endpoint string, opts Options) (*MediaWikiClient, error) {
	opts = opts.withDefaults()
	w, err := mwclient.New(endpoint, opts.UserAgent)
	if err != nil {
		return nil, fmt.Errorf("creating MediaWiki client for %s: %w", endpoint, err)
	}
	return &MediaWikiClient{
		endpoint: endpoint,
		w:        w,
		opts:     opts,
		logger:   opts.Logger.With(slog.String("client", "mediawiki")),
	}, nil
}

// Search finds entities whose label or alias matches term.
func (c *MediaWikiClient) Search(ctx context.Context, term, language string, limit int) ([]SearchHit, error) {
	action, err := query.Build(query.SearchEntities, map[string]string{
		"search":   url.QueryEscape(term),
		"language": url.QueryEscape(language),
		"limit":    strconv.Itoa(limit),
	})
	if err != nil {
		return nil, err
	}
	p, err := actionParams(action)
	if err != nil {
		return nil, err
	}

	var resp *jason.Object
	err = c.opts.attempt(ctx, c.endpoint, func() error {
		var err error
		resp, err = c.w.Get(p)
		if err != nil {
			return &TransportError{Endpoint: c.endpoint, Err: err}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return decodeSearch(c.endpoint, resp)
}

func decodeSearch(endpoint string, resp *jason.Object) ([]SearchHit, error) {
	entries, err := resp.GetObjectArray("search")
	if err != nil {
		return nil, &DecodeError{Endpoint: endpoint, Err: fmt.Errorf("search: %w", err)}
	}

	hits := make([]SearchHit, 0, len(entries))
	for i, entry := range entries {
		id, err := entry.GetString("id")
		if err != nil {
			return nil, &DecodeError{Endpoint: endpoint, Err: fmt.Errorf("search[%d].id: %w", i, err)}
		}
		hit := SearchHit{ID: id}
		// the rest are missing when the entity has no label in the language
		hit.Label, _ = entry.GetString("label")
		hit.Description, _ = entry.GetString("description")
		hit.ConceptURI, _ = entry.GetString("concepturi")
		hits = append(hits, hit)
	}
	return hits, nil
}

// actionParams turns a rendered action template into request parameters.
func actionParams(action string) (params.Values, error) {
	values, err := url.ParseQuery(action)
	if err != nil {
		return nil, fmt.Errorf("parsing action %q: %w", action, err)
	}
	p := params.Values{}
	for k, v := range values {
		p[k] = v[len(v)-1]
	}
	return p, nil
}

// WikitextFetcher reads page wikitext from Wikipedia language editions,
// keeping one API client per language.
type WikitextFetcher struct {
	apiPattern string
	opts       Options
	logger     *slog.Logger

	mu      sync.Mutex
	clients map[string]*mwclient.Client
}

// NewWikitextFetcher creates a fetcher; apiPattern is a format string taking
// the language code, such as DefaultWikipediaAPI.
func NewWikitextFetcher(apiPattern string, opts Options) *WikitextFetcher {
	opts = opts.withDefaults()
	return &WikitextFetcher{
		apiPattern: apiPattern,
		opts:       opts,
		logger:     opts.Logger.With(slog.String("client", "wikitext")),
		clients:    map[string]*mwclient.Client{},
	}
}

func (f *WikitextFetcher) client(lang string) (*mwclient.Client, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w, ok := f.clients[lang]; ok {
		return w, nil
	}
	w, err := mwclient.New(fmt.Sprintf(f.apiPattern, lang), f.opts.UserAgent)
	if err != nil {
		return nil, err
	}
	f.clients[lang] = w
	return w, nil
}

// Wikitext returns the current wikitext of title on the lang Wikipedia.
func (f *WikitextFetcher) Wikitext(ctx context.Context, lang, title string) (string, error) {
	endpoint := fmt.Sprintf(f.apiPattern, lang)
	w, err := f.client(lang)
	if err != nil {
		return "", fmt.Errorf("creating MediaWiki client for %s: %w", endpoint, err)
	}

	var text string
	err = f.opts.attempt(ctx, endpoint, func() error {
		var err error
		text, _, err = w.GetPageByName(title)
		if err != nil {
			return &TransportError{Endpoint: endpoint, Err: err}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	f.logger.Debug("fetched wikitext", slog.String("lang", lang), slog.String("title", title), slog.Int("bytes", len(text)))
	return text, nil
}
