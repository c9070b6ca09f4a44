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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeYAML(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validYAML = `
wikidata:
  sparql_endpoint: "http://localhost:9999/sparql"
  timeout: "5s"
  retries: 2
  requests_per_second: 1.5

compare:
  concurrency: 4
  language: "de"

server:
  port: 9090

log:
  level: "debug"
  format: "json"
`

func TestLoad_ValidYAML(t *testing.T) {
	cfg, err := Load(writeYAML(t, validYAML))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:9999/sparql", cfg.Wikidata.SPARQLEndpoint)
	assert.Equal(t, 5*time.Second, cfg.Wikidata.Timeout)
	assert.Equal(t, uint(2), cfg.Wikidata.Retries)
	assert.Equal(t, 1.5, cfg.Wikidata.RequestsPerSecond)
	assert.Equal(t, 4, cfg.Compare.Concurrency)
	assert.Equal(t, "de", cfg.Compare.Language)
	assert.Equal(t, "0.0.0.0:9090", cfg.Server.Addr())
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	// untouched keys keep their defaults
	assert.Equal(t, "https://www.wikidata.org/w/api.php", cfg.Wikidata.APIEndpoint)
	assert.Equal(t, "Q1339, Q254", cfg.Compare.DefaultItems)
	assert.Equal(t, 500*time.Millisecond, cfg.Wikidata.RetryDelay)
}

func TestLoad_ENVOverridesYAML(t *testing.T) {
	path := writeYAML(t, validYAML)
	t.Setenv("COMPARE_LANGUAGE", "fr")
	t.Setenv("SERVER_PORT", "7000")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "fr", cfg.Compare.Language)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_PathFromEnv(t *testing.T) {
	t.Setenv(PathEnv, writeYAML(t, validYAML))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "de", cfg.Compare.Language)
}

func TestLoad_NoFile_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv(PathEnv, "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "https://query.wikidata.org/sparql", cfg.Wikidata.SPARQLEndpoint)
	assert.Equal(t, 8, cfg.Compare.Concurrency)
	assert.Equal(t, "en", cfg.Compare.Language)
	assert.Equal(t, "Q1339", cfg.Compare.DefaultItem)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_ExplicitPathNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeYAML(t, "wikidata: [unclosed"))
	assert.Error(t, err)
}

func validConfig() Config {
	return Config{
		Wikidata: WikidataConfig{
			SPARQLEndpoint: "https://query.wikidata.org/sparql",
			APIEndpoint:    "https://www.wikidata.org/w/api.php",
			WikipediaAPI:   "https://%s.wikipedia.org/w/api.php",
			Retries:        3,
		},
		Compare: CompareConfig{Language: "en", DefaultItem: "Q1339"},
		Server:  ServerConfig{Port: 8080},
		Log:     LogConfig{Format: "text"},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"wikipedia api without placeholder", func(c *Config) { c.Wikidata.WikipediaAPI = "https://en.wikipedia.org/w/api.php" }},
		{"no sparql endpoint", func(c *Config) { c.Wikidata.SPARQLEndpoint = "" }},
		{"zero retries", func(c *Config) { c.Wikidata.Retries = 0 }},
		{"negative rate", func(c *Config) { c.Wikidata.RequestsPerSecond = -1 }},
		{"no language", func(c *Config) { c.Compare.Language = "" }},
		{"quoted language", func(c *Config) { c.Compare.Language = `en"` }},
		{"bad default item", func(c *Config) { c.Compare.DefaultItem = "Bach" }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"bad log format", func(c *Config) { c.Log.Format = "xml" }},
	}

	ok := validConfig()
	require.NoError(t, ok.Validate())

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
