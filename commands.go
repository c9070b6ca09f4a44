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
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"wikiprovenance/internal/compare"
	"wikiprovenance/internal/query"
	"wikiprovenance/internal/report"
	"wikiprovenance/internal/server"
	"wikiprovenance/internal/wikidata"
)

func itemCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "item [id]",
		Short: "Show the provenance report of one item",
		Long: `Show the label, external identifiers, referenced properties and
sister project sitelinks of a Wikidata item.

Example:
  wikiprovenance item Q1339
  wikiprovenance item Q254 --language de --format json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := a.cfg.Compare.DefaultItem
			if len(args) > 0 {
				id = strings.TrimSpace(args[0])
			}
			if !query.ValidItemID(id) {
				return fmt.Errorf("invalid item id %q", id)
			}

			sparql := wikidata.NewSPARQLClient(a.cfg.Wikidata.SPARQLEndpoint, a.clientOptions())
			r, err := report.NewBuilder(sparql, a.logger).Item(cmd.Context(), id, a.language)
			if err != nil {
				return err
			}
			return a.print(r, func(p *printer) { p.itemReport(r) })
		},
	}
}

func compareCmd(a *app) *cobra.Command {
	var items string
	cmd := &cobra.Command{
		Use:   "compare [id...]",
		Short: "Compare provenance statistics of several items",
		Long: `Compare label, external identifier count, referenced percentage and
sister project sitelink counts across items. A metric that fails to load
is shown as failed; the other metrics are still reported.

Example:
  wikiprovenance compare Q1339 Q254
  wikiprovenance compare --items "Q1339, Q254, Q7349"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := compare.ParseIdentifiers(strings.Join(args, ","))
			if len(ids) == 0 {
				if items == "" {
					items = a.cfg.Compare.DefaultItems
				}
				ids = compare.ParseIdentifiers(items)
			}
			if len(ids) == 0 {
				return errors.New("no items to compare")
			}
			for _, id := range ids {
				if !query.ValidItemID(id) {
					return fmt.Errorf("invalid item id %q", id)
				}
			}

			sparql := wikidata.NewSPARQLClient(a.cfg.Wikidata.SPARQLEndpoint, a.clientOptions())
			engine := compare.NewEngine(sparql,
				compare.WithLanguage(a.language),
				compare.WithConcurrency(a.cfg.Compare.Concurrency),
				compare.WithLogger(a.logger))
			run, err := engine.CompareItems(cmd.Context(), ids)
			if err != nil {
				return err
			}
			records := run.Ordered()
			return a.print(records, func(p *printer) { p.comparison(records) })
		},
	}
	cmd.Flags().StringVar(&items, "items", "", "comma separated item ids (default from config)")
	return cmd
}

func searchCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <term>",
		Short: "Search Wikidata entities by label",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mw, err := wikidata.NewMediaWikiClient(a.cfg.Wikidata.APIEndpoint, a.clientOptions())
			if err != nil {
				return err
			}
			hits, err := report.Search(cmd.Context(), mw, strings.Join(args, " "), a.language, limit)
			if err != nil {
				return err
			}
			return a.print(hits, func(p *printer) { p.searchHits(hits) })
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 10, "maximum number of results")
	return cmd
}

func projectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "project <project> [id]",
		Short: "List an item's sitelinks on one sister project",
		Long: `List an item's sitelinks on one Wikimedia sister project.

Projects: ` + projectNames(),
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := a.cfg.Compare.DefaultItem
			if len(args) > 1 {
				id = args[1]
			}
			if !query.ValidItemID(id) {
				return fmt.Errorf("invalid item id %q", id)
			}

			sparql := wikidata.NewSPARQLClient(a.cfg.Wikidata.SPARQLEndpoint, a.clientOptions())
			links, err := report.NewBuilder(sparql, a.logger).Project(cmd.Context(), id, args[0])
			if err != nil {
				return err
			}
			return a.print(links, func(p *printer) { p.projectLinks(links) })
		},
	}
}

func articleRefsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "article-refs <url>",
		Short: "Count the <ref> tags of a Wikipedia article",
		Long: `Count the <ref> tags of a Wikipedia article. Articles with ten or fewer
references also get a short preview of each.

Example:
  wikiprovenance article-refs https://en.wikipedia.org/wiki/Johann_Sebastian_Bach`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fetcher := wikidata.NewWikitextFetcher(a.cfg.Wikidata.WikipediaAPI, a.clientOptions())
			refs, err := report.CountArticleReferences(cmd.Context(), fetcher, args[0])
			if err != nil {
				return err
			}
			return a.print(refs, func(p *printer) { p.articleReferences(refs) })
		},
	}
}

func queriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "queries [name]",
		Short: "List the query catalog, or print one query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				spec, ok := query.Lookup(args[0])
				if !ok {
					return fmt.Errorf("unknown query %q (have %s)", args[0], strings.Join(query.Names(), ", "))
				}
				return a.print(spec, func(p *printer) { p.querySpec(spec) })
			}
			specs := make([]query.Spec, 0)
			for _, name := range query.Names() {
				specs = append(specs, query.MustLookup(name))
			}
			return a.print(specs, func(p *printer) { p.querySpecs(specs) })
		},
	}
}

func serveCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := a.clientOptions()
			sparql := wikidata.NewSPARQLClient(a.cfg.Wikidata.SPARQLEndpoint, opts)
			mw, err := wikidata.NewMediaWikiClient(a.cfg.Wikidata.APIEndpoint, opts)
			if err != nil {
				return err
			}
			fetcher := wikidata.NewWikitextFetcher(a.cfg.Wikidata.WikipediaAPI, opts)

			srv := server.New(sparql, fetcher, mw, a.cfg.Compare, a.logger)
			httpServer := &http.Server{
				Addr:         a.cfg.Server.Addr(),
				Handler:      srv.SetupRouter(),
				ReadTimeout:  a.cfg.Server.ReadTimeout,
				WriteTimeout: a.cfg.Server.WriteTimeout,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("starting server", "addr", httpServer.Addr)
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		},
	}
}
