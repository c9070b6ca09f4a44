package compare

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
	"sync"

	"wikiprovenance/internal/aggregate"
	"wikiprovenance/internal/query"
	"wikiprovenance/internal/results"
)

// Metric names a compared statistic.
type Metric string

const (
	MetricLabel                = Metric("label")
	MetricExternalIdentifiers  = Metric("externalIdentifierCount")
	MetricReferencedPercentage = Metric("referencedPercentage")
	MetricWikiProjectCounts    = Metric("wikiProjectCounts")
)

// Failure records a metric that couldn't be fetched.
type Failure struct {
	Metric Metric `json:"metric"`
	Error  string `json:"error"`
}

// Record is the comparison result for one item. Each metric field is
// written by exactly one fetch.
type Record struct {
	Identifier              string         `json:"identifier"`
	Label                   string         `json:"label"`
	ExternalIdentifierCount int            `json:"externalIdentifierCount"`
	ReferencedPercentage    float64        `json:"referencedPercentage"`
	WikiProjectCounts       map[string]int `json:"wikiProjectCounts"`
	Failures                []Failure      `json:"failures,omitempty"`

	mu sync.Mutex
}

func newRecord(id string) *Record {
	return &Record{Identifier: id, WikiProjectCounts: map[string]int{}}
}

func (r *Record) fail(m Metric, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Failures = append(r.Failures, Failure{Metric: m, Error: err.Error()})
}

// Failed reports whether fetching m failed.
func (r *Record) Failed(m Metric) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.Failures {
		if f.Metric == m {
			return true
		}
	}
	return false
}

// Metrics returns the record keyed by metric name.
func (r *Record) Metrics() map[Metric]any {
	return map[Metric]any{
		MetricLabel:                r.Label,
		MetricExternalIdentifiers:  r.ExternalIdentifierCount,
		MetricReferencedPercentage: r.ReferencedPercentage,
		MetricWikiProjectCounts:    r.WikiProjectCounts,
	}
}

// metric binds a catalog query to the function that folds its result into a
// Record.
type metric struct {
	name  Metric
	query string
	apply func(*Record, *results.ResultSet) error
}

var metrics = []metric{
	{
		name:  MetricLabel,
		query: query.Label,
		apply: func(r *Record, rs *results.ResultSet) error {
			label, _, err := aggregate.ExtractScalar(rs, "label")
			r.Label = label
			return err
		},
	},
	{
		name:  MetricExternalIdentifiers,
		query: query.ExternalLinksCount,
		apply: func(r *Record, rs *results.ResultSet) error {
			r.ExternalIdentifierCount = rs.Len()
			return nil
		},
	},
	{
		name:  MetricReferencedPercentage,
		query: query.ReferenceCount,
		apply: func(r *Record, rs *results.ResultSet) error {
			pct, err := aggregate.PercentageReferenced(rs, "prop", "reference")
			r.ReferencedPercentage = pct
			return err
		},
	},
	{
		name:  MetricWikiProjectCounts,
		query: query.AllWikiLinks,
		apply: func(r *Record, rs *results.ResultSet) error {
			counts, err := aggregate.ClassifyAndCount(rs, "wikilink", aggregate.ProjectClassifier)
			if err != nil {
				return err
			}
			r.WikiProjectCounts = counts
			return nil
		},
	},
}

type job struct {
	identifier string
	metric     metric
	query      string
}

// plan renders every query up front so a template error fails the run
// before anything is sent.
func plan(ids []string, language string) ([]job, error) {
	jobs := make([]job, 0, len(ids)*len(metrics))
	for _, id := range ids {
		params := map[string]string{"item": id, "lang": language}
		for _, m := range metrics {
			q, err := query.Build(m.query, params)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, job{identifier: id, metric: m, query: q})
		}
	}
	return jobs, nil
}
