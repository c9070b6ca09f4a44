package logging

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
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_TextToConsole(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := New(Config{Level: "info", Format: "text"}, &buf)
	defer closer.Close() //nolint:errcheck

	logger.Debug("hidden")
	logger.Info("comparison complete", slog.Int("items", 2))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "msg=\"comparison complete\"")
	assert.Contains(t, out, "items=2")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger, _ := New(Config{Level: "debug", Format: "json"}, &buf)

	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	logger.Debug("retrying request", slog.String("endpoint", "sparql"))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "retrying request", line["msg"])
	assert.Equal(t, "sparql", line["endpoint"])
}

func TestNew_FileOutput(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "wikiprovenance.log")
	var buf bytes.Buffer

	logger, closer := New(Config{
		Level:          "info",
		Format:         "json",
		FilePath:       logFile,
		FileMaxSizeMB:  1,
		FileMaxFiles:   1,
		FileMaxAgeDays: 1,
	}, &buf)
	logger.Info("hello from test")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(logFile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from test")
	assert.Contains(t, buf.String(), "hello from test")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in  string
		out slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},
		{"unknown", slog.LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.out, parseLevel(tt.in), tt.in)
	}
}
