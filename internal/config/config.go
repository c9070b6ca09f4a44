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

import "time"

// Config is the full application configuration.
type Config struct {
	Wikidata WikidataConfig `yaml:"wikidata"`
	Compare  CompareConfig  `yaml:"compare"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
}

// WikidataConfig configures the remote endpoints and how politely we call them.
type WikidataConfig struct {
	SPARQLEndpoint    string        `yaml:"sparql_endpoint"     env:"WIKIDATA_SPARQL_ENDPOINT"     env-default:"https://query.wikidata.org/sparql"`
	APIEndpoint       string        `yaml:"api_endpoint"        env:"WIKIDATA_API_ENDPOINT"        env-default:"https://www.wikidata.org/w/api.php"`
	WikipediaAPI      string        `yaml:"wikipedia_api"       env:"WIKIPEDIA_API"                env-default:"https://%s.wikipedia.org/w/api.php"`
	UserAgent         string        `yaml:"user_agent"          env:"WIKIDATA_USER_AGENT"`
	Timeout           time.Duration `yaml:"timeout"             env:"WIKIDATA_TIMEOUT"             env-default:"30s"`
	Retries           uint          `yaml:"retries"             env:"WIKIDATA_RETRIES"             env-default:"3"`
	RetryDelay        time.Duration `yaml:"retry_delay"         env:"WIKIDATA_RETRY_DELAY"         env-default:"500ms"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"WIKIDATA_REQUESTS_PER_SECOND" env-default:"5"`
	Burst             int           `yaml:"burst"               env:"WIKIDATA_BURST"               env-default:"5"`
}

// CompareConfig configures the comparison engine.
type CompareConfig struct {
	// Concurrency bounds in-flight queries per run; <= 0 is unbounded.
	Concurrency  int    `yaml:"concurrency"   env:"COMPARE_CONCURRENCY"   env-default:"8"`
	Language     string `yaml:"language"      env:"COMPARE_LANGUAGE"      env-default:"en"`
	DefaultItem  string `yaml:"default_item"  env:"COMPARE_DEFAULT_ITEM"  env-default:"Q1339"`
	DefaultItems string `yaml:"default_items" env:"COMPARE_DEFAULT_ITEMS" env-default:"Q1339, Q254"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"120s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level      string `yaml:"level"         env:"LOG_LEVEL"         env-default:"info"`
	Format     string `yaml:"format"        env:"LOG_FORMAT"        env-default:"text"`
	FilePath   string `yaml:"file_path"     env:"LOG_FILE_PATH"`
	MaxSizeMB  int    `yaml:"max_size_mb"   env:"LOG_MAX_SIZE_MB"   env-default:"100"`
	MaxFiles   int    `yaml:"max_files"     env:"LOG_MAX_FILES"     env-default:"3"`
	MaxAgeDays int    `yaml:"max_age_days"  env:"LOG_MAX_AGE_DAYS"  env-default:"30"`
}
