package config

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
	"strings"

	"wikiprovenance/internal/query"
)

// Validate checks values the tags can't express. Load calls it.
func (c *Config) Validate() error {
	if c.Wikidata.SPARQLEndpoint == "" {
		return fmt.Errorf("wikidata.sparql_endpoint must be set")
	}
	if c.Wikidata.APIEndpoint == "" {
		return fmt.Errorf("wikidata.api_endpoint must be set")
	}
	if strings.Count(c.Wikidata.WikipediaAPI, "%s") != 1 {
		return fmt.Errorf("wikidata.wikipedia_api must contain exactly one %%s (got %q)", c.Wikidata.WikipediaAPI)
	}
	if c.Wikidata.Retries == 0 {
		return fmt.Errorf("wikidata.retries must be >= 1")
	}
	if c.Wikidata.RequestsPerSecond < 0 {
		return fmt.Errorf("wikidata.requests_per_second must be >= 0 (got %v)", c.Wikidata.RequestsPerSecond)
	}
	if !query.ValidLanguage(c.Compare.Language) {
		return fmt.Errorf("compare.language must be a language code (got %q)", c.Compare.Language)
	}
	if !query.ValidItemID(c.Compare.DefaultItem) {
		return fmt.Errorf("compare.default_item must be an item id (got %q)", c.Compare.DefaultItem)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range (got %d)", c.Server.Port)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json (got %q)", c.Log.Format)
	}
	return nil
}

// Addr is the server listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
