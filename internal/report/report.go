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
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"wikiprovenance/internal/aggregate"
	"wikiprovenance/internal/query"
	"wikiprovenance/internal/results"
	"wikiprovenance/internal/wikidata"
)

// Executor runs a SPARQL query string.
type Executor interface {
	Execute(ctx context.Context, query string) (*results.ResultSet, error)
}

// ExternalIdentifier is one external-id statement of an item.
type ExternalIdentifier struct {
	Property   string `json:"property"`
	PropertyID string `json:"propertyId"`
	Value      string `json:"value"`
}

// PropertyCount is the number of referenced statements for a property.
type PropertyCount struct {
	Property   string `json:"property"`
	PropertyID string `json:"propertyId"`
	Statements int    `json:"statements"`
}

// References summarizes an item's sourcing.
type References struct {
	Properties           []PropertyCount `json:"properties"`
	ReferencedProperties int             `json:"referencedProperties"`
	TotalStatements      int             `json:"totalStatements"`
	Percentage           float64         `json:"percentage"`
}

// Sitelink is a page about the item on a sister project.
type Sitelink struct {
	Language string `json:"language"`
	URL      string `json:"url"`
}

// ProjectLinks are an item's sitelinks on one project.
type ProjectLinks struct {
	Project string     `json:"project"`
	Count   int        `json:"count"`
	Links   []Sitelink `json:"links"`
}

// ItemReport is everything shown on an item's provenance page.
type ItemReport struct {
	Item                string               `json:"item"`
	Language            string               `json:"language"`
	Label               string               `json:"label"`
	ExternalIdentifiers []ExternalIdentifier `json:"externalIdentifiers"`
	References          References           `json:"references"`
	Projects            []ProjectLinks       `json:"projects"`
	Failures            []string             `json:"failures,omitempty"`
}

// Builder assembles reports from query results.
type Builder struct {
	exec   Executor
	logger *slog.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(exec Executor, logger *slog.Logger) *Builder {
	return &Builder{exec: exec, logger: logger.With(slog.String("component", "report"))}
}

type section struct {
	name  string
	query string
	fill  func(*ItemReport, *results.ResultSet) error
}

var sections = []section{
	{"label", query.Label, fillLabel},
	{"external identifiers", query.ExternalLinks, fillExternalIdentifiers},
	{"references", query.References, fillReferences},
	{"sitelinks", query.AllWikiLinks, fillProjects},
}

// Item builds the report for item. Sections are fetched concurrently; one
// that fails to fetch is left empty and named in Failures.
func (b *Builder) Item(ctx context.Context, item, language string) (*ItemReport, error) {
	params := map[string]string{"item": item, "lang": language}
	queries := make([]string, len(sections))
	for i, s := range sections {
		q, err := query.Build(s.query, params)
		if err != nil {
			return nil, err
		}
		queries[i] = q
	}

	r := &ItemReport{Item: item, Language: language}
	// each section writes its own fields; only Failures is shared
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range sections {
		g.Go(func() error {
			rs, err := b.exec.Execute(gctx, queries[i])
			if err == nil {
				if err = s.fill(r, rs); err != nil {
					return fmt.Errorf("%s: %w", s.name, err)
				}
				return nil
			}
			if !wikidata.IsFetchError(err) {
				return fmt.Errorf("%s: %w", s.name, err)
			}
			b.logger.Warn("report section failed",
				slog.String("item", item),
				slog.String("section", s.name),
				slog.String("error", err.Error()))
			mu.Lock()
			r.Failures = append(r.Failures, fmt.Sprintf("%s: %v", s.name, err))
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Strings(r.Failures)
	return r, nil
}

// UnknownProjectError names a project that isn't a Wikimedia sister project.
type UnknownProjectError struct {
	Project string
}

func (e *UnknownProjectError) Error() string {
	return fmt.Sprintf("unknown project %q", e.Project)
}

// Project lists item's sitelinks on a single project.
func (b *Builder) Project(ctx context.Context, item, project string) (*ProjectLinks, error) {
	p, ok := aggregate.LookupProject(project)
	if !ok {
		return nil, &UnknownProjectError{Project: project}
	}
	q, err := query.Build(query.WikiLinks, map[string]string{"item": item, "domain": p.Host})
	if err != nil {
		return nil, err
	}
	rs, err := b.exec.Execute(ctx, q)
	if err != nil {
		return nil, err
	}
	links, err := aggregate.Column(rs, "wikilink")
	if err != nil {
		return nil, err
	}
	out := &ProjectLinks{Project: p.Name, Count: len(links), Links: make([]Sitelink, 0, len(links))}
	for _, l := range links {
		out.Links = append(out.Links, Sitelink{Language: aggregate.SitelinkLanguage(l), URL: l})
	}
	return out, nil
}

func fillLabel(r *ItemReport, rs *results.ResultSet) error {
	label, _, err := aggregate.ExtractScalar(rs, "label")
	r.Label = label
	return err
}

func fillExternalIdentifiers(r *ItemReport, rs *results.ResultSet) error {
	for _, v := range []string{"property", "value"} {
		if !rs.Declares(v) {
			return &aggregate.SchemaMismatchError{Variable: v, Row: -1}
		}
	}
	ids := make([]ExternalIdentifier, 0, rs.Len())
	for _, row := range rs.Rows {
		prop, value := row["property"].Value, row["value"].Value
		ids = append(ids, ExternalIdentifier{
			Property:   prop,
			PropertyID: aggregate.LocalName(prop),
			Value:      value,
		})
	}
	r.ExternalIdentifiers = ids
	return nil
}

func fillReferences(r *ItemReport, rs *results.ResultSet) error {
	groups, err := aggregate.CountGroups(rs, "prop", "reference")
	if err != nil {
		return err
	}
	props := make([]PropertyCount, 0, len(groups))
	for prop, n := range groups {
		props = append(props, PropertyCount{Property: prop, PropertyID: aggregate.LocalName(prop), Statements: n})
	}
	sort.Slice(props, func(i, j int) bool {
		if props[i].Statements != props[j].Statements {
			return props[i].Statements > props[j].Statements
		}
		return props[i].Property < props[j].Property
	})
	r.References = References{
		Properties:           props,
		ReferencedProperties: len(groups),
		TotalStatements:      rs.Len(),
		Percentage:           aggregate.Percentage(len(groups), rs.Len()),
	}
	return nil
}

func fillProjects(r *ItemReport, rs *results.ResultSet) error {
	links, err := aggregate.Column(rs, "wikilink")
	if err != nil {
		return err
	}
	byProject := map[string][]Sitelink{}
	for _, l := range links {
		if p, ok := aggregate.ProjectOf(l); ok {
			byProject[p] = append(byProject[p], Sitelink{Language: aggregate.SitelinkLanguage(l), URL: l})
		}
	}
	projects := make([]ProjectLinks, 0, len(aggregate.Projects))
	for _, p := range aggregate.Projects {
		projects = append(projects, ProjectLinks{Project: p.Name, Count: len(byProject[p.Name]), Links: byProject[p.Name]})
	}
	r.Projects = projects
	return nil
}
