package main

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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"wikiprovenance/internal/config"
)

// fakeQueryService answers the catalog queries with small fixed results.
func fakeQueryService(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query().Get("query")
		w.Header().Set("Content-Type", "application/sparql-results+json")
		switch {
		case strings.Contains(q, "rdfs:label"):
			w.Write([]byte(`{"head":{"vars":["label"]},"results":{"bindings":[
				{"label":{"type":"literal","value":"Johann Sebastian Bach","xml:lang":"en"}}]}}`)) //nolint:errcheck
		case strings.Contains(q, "wikibase:ExternalId"):
			w.Write([]byte(`{"head":{"vars":["property","value"]},"results":{"bindings":[
				{"property":{"type":"uri","value":"http://www.wikidata.org/entity/P214"},"value":{"type":"literal","value":"12304462"}},
				{"property":{"type":"uri","value":"http://www.wikidata.org/entity/P227"},"value":{"type":"literal","value":"11850553X"}}]}}`)) //nolint:errcheck
		case strings.Contains(q, "prov:wasDerivedFrom"):
			w.Write([]byte(`{"head":{"vars":["statement","prop","reference"]},"results":{"bindings":[
				{"statement":{"type":"uri","value":"s1"},"prop":{"type":"uri","value":"http://www.wikidata.org/prop/P31"},"reference":{"type":"uri","value":"r1"}},
				{"statement":{"type":"uri","value":"s2"},"prop":{"type":"uri","value":"http://www.wikidata.org/prop/P19"}}]}}`)) //nolint:errcheck
		default:
			w.Write([]byte(`{"head":{"vars":["wikilink"]},"results":{"bindings":[
				{"wikilink":{"type":"uri","value":"https://en.wikipedia.org/wiki/Johann_Sebastian_Bach"}}]}}`)) //nolint:errcheck
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv(config.PathEnv, "")
	t.Setenv("WIKIDATA_SPARQL_ENDPOINT", fakeQueryService(t).URL)
	t.Setenv("WIKIDATA_RETRY_DELAY", "1ms")
	t.Setenv("LOG_LEVEL", "error")

	var out bytes.Buffer
	cmd := newRootCmd(&app{out: &out})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCompareCommandJSON(t *testing.T) {
	out, err := run(t, "compare", "Q1339", "Q254", "--format", "json")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "Q1339", records[0]["identifier"])
	assert.Equal(t, "Johann Sebastian Bach", records[0]["label"])
	assert.Equal(t, 2.0, records[0]["externalIdentifierCount"])
	assert.Equal(t, 50.0, records[0]["referencedPercentage"])
	assert.Equal(t, "Q254", records[1]["identifier"])
}

func TestCompareCommandText(t *testing.T) {
	out, err := run(t, "compare", "--items", "Q1339")
	require.NoError(t, err)
	assert.Contains(t, out, "External IDs")
	assert.Contains(t, out, "50.00%")
	assert.Contains(t, out, "Johann Sebastian Bach")
}

func TestItemCommandYAML(t *testing.T) {
	out, err := run(t, "item", "Q1339", "--format", "yaml")
	require.NoError(t, err)

	var r map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &r))
	assert.Equal(t, "Q1339", r["item"])
	assert.Equal(t, "Johann Sebastian Bach", r["label"])
	assert.Len(t, r["externalIdentifiers"], 2)
}

func TestItemCommandText(t *testing.T) {
	out, err := run(t, "item")
	require.NoError(t, err)
	assert.Contains(t, out, "Q1339")
	assert.Contains(t, out, "Referenced properties: 1 of 2 statements (50.00%)")
	assert.Contains(t, out, "P214")
}

func TestProjectCommand(t *testing.T) {
	out, err := run(t, "project", "wikipedia", "Q1339")
	require.NoError(t, err)
	assert.Contains(t, out, "wikipedia: 1")
	assert.Contains(t, out, "https://en.wikipedia.org/wiki/Johann_Sebastian_Bach")
}

func TestQueriesCommand(t *testing.T) {
	out, err := run(t, "queries", "label")
	require.NoError(t, err)
	assert.Contains(t, out, "# label (item, lang)")
	assert.Contains(t, out, "rdfs:label")

	_, err = run(t, "queries", "nope")
	assert.Error(t, err)
}

func TestCommandValidation(t *testing.T) {
	_, err := run(t, "item", "Q1 } UNION {")
	assert.ErrorContains(t, err, "invalid item id")

	_, err = run(t, "compare", "Q1", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")

	_, err = run(t, "item", "Q1339", "--language", `en") || true || ("`)
	assert.ErrorContains(t, err, "invalid language")
}

func TestRunsFromDirectoryWithoutBotConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	assert.NoFileExists(t, filepath.Join(dir, "config.yml"))
	assert.NoFileExists(t, filepath.Join(dir, "botpassword"))

	out, err := run(t, "compare", "Q1339", "--format", "json")
	require.NoError(t, err)

	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 1)
	assert.Equal(t, "Johann Sebastian Bach", records[0]["label"])
}
