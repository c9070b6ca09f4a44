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
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/knakk/sparql"

	"wikiprovenance/internal/results"
)

// DefaultSPARQLEndpoint is the Wikidata Query Service.
const DefaultSPARQLEndpoint = "https://query.wikidata.org/sparql"

// SPARQLClient runs queries against a SPARQL endpoint.
type SPARQLClient struct {
	endpoint string
	client   *http.Client
	opts     Options
	logger   *slog.Logger
}

// NewSPARQLClient creates a client for endpoint.
func NewSPARQLClient(endpoint string, opts Options) *SPARQLClient {
	opts = opts.withDefaults()
	return &SPARQLClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: opts.Timeout},
		opts:     opts,
		logger:   opts.Logger.With(slog.String("client", "sparql")),
	}
}

// Execute runs query and returns its decoded result set. Failures are
// *TransportError or *DecodeError.
func (c *SPARQLClient) Execute(ctx context.Context, query string) (*results.ResultSet, error) {
	var rs *results.ResultSet
	err := c.opts.attempt(ctx, c.endpoint, func() error {
		var err error
		rs, err = c.execute(ctx, query)
		return err
	})
	if err != nil {
		return nil, err
	}
	return rs, nil
}

func (c *SPARQLClient) execute(ctx context.Context, query string) (*results.ResultSet, error) {
	params := url.Values{
		"query":  {query},
		"format": {"json"},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "application/sparql-results+json")

	c.logger.Debug("executing SPARQL query", slog.Int("length", len(query)))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{Endpoint: c.endpoint, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// the body is usually a Java stack trace; keep the first line or so
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, &TransportError{
			Endpoint:   c.endpoint,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("%s", snippet),
		}
	}

	res, err := sparql.ParseJSON(resp.Body)
	if err != nil {
		return nil, &DecodeError{Endpoint: c.endpoint, Err: err}
	}

	rs, err := results.FromSPARQL(res)
	if err != nil {
		return nil, &DecodeError{Endpoint: c.endpoint, Err: err}
	}
	return rs, nil
}
