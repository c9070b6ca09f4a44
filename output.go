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
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"wikiprovenance/internal/aggregate"
	"wikiprovenance/internal/compare"
	"wikiprovenance/internal/query"
	"wikiprovenance/internal/report"
	"wikiprovenance/internal/wikidata"
)

func validFormat(f string) bool {
	switch f {
	case "text", "json", "yaml":
		return true
	}
	return false
}

// print writes v in the selected format; text uses the given renderer.
func (a *app) print(v any, text func(*printer)) error {
	switch a.format {
	case "json":
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		return writeYAML(a.out, v)
	default:
		p := &printer{tw: tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)}
		text(p)
		return p.tw.Flush()
	}
}

// writeYAML goes through JSON so the keys match the json tags.
func writeYAML(w io.Writer, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(generic); err != nil {
		return err
	}
	return enc.Close()
}

type printer struct {
	tw *tabwriter.Writer
}

func (p *printer) line(format string, args ...any) {
	fmt.Fprintf(p.tw, format+"\n", args...)
}

func (p *printer) itemReport(r *report.ItemReport) {
	p.line("%s\t%s", r.Item, r.Label)
	p.line("")

	p.line("External identifiers: %d", len(r.ExternalIdentifiers))
	for _, id := range r.ExternalIdentifiers {
		p.line("  %s\t%s", id.PropertyID, id.Value)
	}
	p.line("")

	refs := r.References
	p.line("Referenced properties: %d of %d statements (%s%%)",
		refs.ReferencedProperties, refs.TotalStatements, aggregate.FormatPercentage(refs.Percentage))
	for _, prop := range refs.Properties {
		p.line("  %s\t%d", prop.PropertyID, prop.Statements)
	}
	p.line("")

	p.line("Sister projects:")
	for _, proj := range r.Projects {
		p.line("  %s\t%d", proj.Project, proj.Count)
	}

	if len(r.Failures) > 0 {
		p.line("")
		p.line("Failed to load:")
		for _, f := range r.Failures {
			p.line("  %s", f)
		}
	}
}

func (p *printer) comparison(records []*compare.Record) {
	header := []string{"Item", "Label", "External IDs", "Referenced"}
	for _, proj := range aggregate.Projects {
		header = append(header, proj.Name)
	}
	p.line("%s", strings.Join(header, "\t"))

	for _, rec := range records {
		cells := []string{
			rec.Identifier,
			cell(rec, compare.MetricLabel, rec.Label),
			cell(rec, compare.MetricExternalIdentifiers, fmt.Sprint(rec.ExternalIdentifierCount)),
			cell(rec, compare.MetricReferencedPercentage, aggregate.FormatPercentage(rec.ReferencedPercentage)+"%"),
		}
		for _, proj := range aggregate.Projects {
			cells = append(cells, cell(rec, compare.MetricWikiProjectCounts, fmt.Sprint(rec.WikiProjectCounts[proj.Name])))
		}
		p.line("%s", strings.Join(cells, "\t"))
	}
}

func cell(rec *compare.Record, m compare.Metric, value string) string {
	if rec.Failed(m) {
		return "(failed)"
	}
	return value
}

func (p *printer) searchHits(hits []wikidata.SearchHit) {
	if len(hits) == 0 {
		p.line("no results")
		return
	}
	for _, h := range hits {
		p.line("%s\t%s\t%s", h.ID, h.Label, h.Description)
	}
}

func (p *printer) projectLinks(links *report.ProjectLinks) {
	p.line("%s: %d", links.Project, links.Count)
	for _, l := range links.Links {
		p.line("  %s\t%s", l.Language, l.URL)
	}
}

func (p *printer) articleReferences(refs *report.ArticleReferences) {
	p.line("%s (%s): %d references", refs.Article.DisplayTitle(), refs.Article.Language, refs.Count)
	for i, preview := range refs.Previews {
		p.line("  %d.\t%s", i+1, preview)
	}
}

func (p *printer) querySpec(spec query.Spec) {
	p.line("# %s (%s)", spec.Name, strings.Join(spec.ParameterNames, ", "))
	p.line("%s", spec.Template)
}

func (p *printer) querySpecs(specs []query.Spec) {
	for _, spec := range specs {
		p.line("%s\t%s", spec.Name, strings.Join(spec.ParameterNames, ", "))
	}
}

func projectNames() string {
	names := make([]string, 0, len(aggregate.Projects))
	for _, p := range aggregate.Projects {
		names = append(names, p.Name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}
