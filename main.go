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
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"wikiprovenance/internal/config"
	"wikiprovenance/internal/logging"
	"wikiprovenance/internal/query"
	"wikiprovenance/internal/wikidata"
)

var version = "1.0.0"

// app carries what every subcommand needs once the root command has set up.
type app struct {
	configPath string
	format     string
	language   string

	cfg    *config.Config
	logger *slog.Logger
	closer io.Closer
	out    io.Writer
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "loading .env:", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := newRootCmd(&app{out: os.Stdout}).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wikiprovenance",
		Short: "Provenance statistics for Wikidata items",
		Long: `Wikiprovenance reports how well Wikidata items are sourced.

It queries the Wikidata Query Service and the MediaWiki APIs for:
  - external identifiers of an item
  - the share of an item's properties backed by a reference
  - sitelinks to the Wikimedia sister projects
  - <ref> counts of Wikipedia articles`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if a.closer != nil {
				return a.closer.Close()
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default $"+config.PathEnv+" or ./config.yaml)")
	flags.StringVarP(&a.format, "format", "f", "text", "output format: text, json or yaml")
	flags.StringVarP(&a.language, "language", "l", "", "label language (default from config)")

	rootCmd.AddCommand(itemCmd(a))
	rootCmd.AddCommand(compareCmd(a))
	rootCmd.AddCommand(searchCmd(a))
	rootCmd.AddCommand(projectCmd(a))
	rootCmd.AddCommand(articleRefsCmd(a))
	rootCmd.AddCommand(queriesCmd(a))
	rootCmd.AddCommand(serveCmd(a))

	return rootCmd
}

func (a *app) setup() error {
	if !validFormat(a.format) {
		return fmt.Errorf("unknown format %q (want text, json or yaml)", a.format)
	}

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	a.cfg = cfg
	if a.language == "" {
		a.language = cfg.Compare.Language
	}
	if !query.ValidLanguage(a.language) {
		return fmt.Errorf("invalid language %q", a.language)
	}

	a.logger, a.closer = logging.New(logging.Config{
		Level:          cfg.Log.Level,
		Format:         cfg.Log.Format,
		FilePath:       cfg.Log.FilePath,
		FileMaxSizeMB:  cfg.Log.MaxSizeMB,
		FileMaxFiles:   cfg.Log.MaxFiles,
		FileMaxAgeDays: cfg.Log.MaxAgeDays,
	}, os.Stderr)
	slog.SetDefault(a.logger)
	return nil
}

// clientOptions configures the Wikimedia clients. Clients built from the same
// Options share its limiter.
func (a *app) clientOptions() wikidata.Options {
	w := a.cfg.Wikidata
	return wikidata.Options{
		UserAgent:  w.UserAgent,
		Timeout:    w.Timeout,
		Attempts:   w.Retries,
		RetryDelay: w.RetryDelay,
		Limiter:    wikidata.NewLimiter(w.RequestsPerSecond, w.Burst),
		Logger:     a.logger,
	}
}
