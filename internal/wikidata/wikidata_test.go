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
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/antonholmquist/jason"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const labelResponse = `{
  "head": {"vars": ["label"]},
  "results": {"bindings": [
    {"label": {"type": "literal", "value": "Johann Sebastian Bach", "xml:lang": "en"}}
  ]}
}`

func testOptions() Options {
	return Options{
		UserAgent:  "wikiprovenance-test",
		Attempts:   3,
		RetryDelay: time.Millisecond,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestSPARQLExecute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/sparql-results+json", r.Header.Get("Accept"))
		assert.Equal(t, "wikiprovenance-test", r.Header.Get("User-Agent"))
		assert.Contains(t, r.URL.Query().Get("query"), "wd:Q1339")
		w.Header().Set("Content-Type", "application/sparql-results+json")
		w.Write([]byte(labelResponse))
	}))
	defer srv.Close()

	c := NewSPARQLClient(srv.URL, testOptions())
	rs, err := c.Execute(context.Background(), `SELECT ?label WHERE { wd:Q1339 rdfs:label ?label }`)
	require.NoError(t, err)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, "Johann Sebastian Bach", rs.Rows[0]["label"].Value)
}

func TestSPARQLRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(labelResponse))
	}))
	defer srv.Close()

	c := NewSPARQLClient(srv.URL, testOptions())
	rs, err := c.Execute(context.Background(), "SELECT ?label {}")
	require.NoError(t, err)
	assert.Equal(t, 1, rs.Len())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestSPARQLTransportError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("MalformedQueryException: Encountered \" <EOF>"))
	}))
	defer srv.Close()

	c := NewSPARQLClient(srv.URL, testOptions())
	_, err := c.Execute(context.Background(), "SELECT")
	require.Error(t, err)

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, http.StatusBadRequest, transport.StatusCode)
	assert.False(t, transport.Temporary())
	assert.True(t, IsFetchError(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "client errors are not retried")
}

func TestSPARQLDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer srv.Close()

	c := NewSPARQLClient(srv.URL, testOptions())
	_, err := c.Execute(context.Background(), "SELECT ?x {}")

	var decode *DecodeError
	require.True(t, errors.As(err, &decode))
	assert.True(t, IsFetchError(err))
}

func TestSPARQLUndeclaredVariableIsDecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"head":{"vars":["a"]},"results":{"bindings":[{"b":{"type":"literal","value":"x"}}]}}`))
	}))
	defer srv.Close()

	_, err := NewSPARQLClient(srv.URL, testOptions()).Execute(context.Background(), "SELECT ?a {}")
	var decode *DecodeError
	assert.True(t, errors.As(err, &decode))
}

func TestSPARQLCanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(labelResponse))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := testOptions()
	opts.Limiter = NewLimiter(1, 1)
	_, err := NewSPARQLClient(srv.URL, opts).Execute(ctx, "SELECT ?label {}")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSPARQLLimiterDeadlineIsFetchError(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(labelResponse))
	}))
	defer srv.Close()

	opts := testOptions()
	opts.Limiter = NewLimiter(1, 1)
	c := NewSPARQLClient(srv.URL, opts)

	_, err := c.Execute(context.Background(), "SELECT ?label {}")
	require.NoError(t, err)

	// the next token is a second away, past the deadline
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()
	_, err = c.Execute(ctx, "SELECT ?label {}")
	require.Error(t, err)
	assert.NoError(t, ctx.Err())

	var transport *TransportError
	require.True(t, errors.As(err, &transport))
	assert.Equal(t, 0, transport.StatusCode)
	assert.True(t, IsFetchError(err))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestIsFetchError(t *testing.T) {
	assert.True(t, IsFetchError(&DecodeError{Endpoint: "x", Err: errors.New("bad")}))
	assert.True(t, IsFetchError(context.DeadlineExceeded))
	assert.True(t, IsFetchError(fmt.Errorf("label: %w", context.Canceled)))
	assert.False(t, IsFetchError(errors.New("missing variable")))
}

func TestDecodeSearch(t *testing.T) {
	resp, err := jason.NewObjectFromBytes([]byte(`{
  "searchinfo": {"search": "bach"},
  "search": [
    {"id": "Q1339", "concepturi": "http://www.wikidata.org/entity/Q1339",
     "label": "Johann Sebastian Bach", "description": "German composer (1685-1750)"},
    {"id": "Q123456", "concepturi": "http://www.wikidata.org/entity/Q123456"}
  ],
  "success": 1
}`))
	require.NoError(t, err)

	hits, err := decodeSearch("test", resp)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, SearchHit{
		ID:          "Q1339",
		Label:       "Johann Sebastian Bach",
		Description: "German composer (1685-1750)",
		ConceptURI:  "http://www.wikidata.org/entity/Q1339",
	}, hits[0])
	assert.Empty(t, hits[1].Label)
}

func TestDecodeSearchMalformed(t *testing.T) {
	for _, body := range []string{`{"error": "nope"}`, `{"search": [{"label": "no id"}]}`} {
		resp, err := jason.NewObjectFromBytes([]byte(body))
		require.NoError(t, err)
		_, err = decodeSearch("test", resp)
		var decode *DecodeError
		assert.True(t, errors.As(err, &decode), body)
	}
}

func TestActionParams(t *testing.T) {
	p, err := actionParams("action=wbsearchentities&search=johann+sebastian%26co&language=en&limit=10&props=url")
	require.NoError(t, err)
	assert.Equal(t, "wbsearchentities", p["action"])
	assert.Equal(t, "johann sebastian&co", p["search"])
	assert.Equal(t, "10", p["limit"])
}

func TestNewLimiter(t *testing.T) {
	assert.Nil(t, NewLimiter(0, 1))
	l := NewLimiter(5, 0)
	require.NotNil(t, l)
	assert.Equal(t, 1, l.Burst())
	assert.True(t, strings.HasPrefix(DefaultUserAgent, "wikiprovenance/"))
}
