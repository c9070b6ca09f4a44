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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"wikiprovenance/internal/results"
	"wikiprovenance/internal/wikidata"
)

// ErrSuperseded is returned by a run that was overtaken by a newer one. Its
// results are discarded.
var ErrSuperseded = errors.New("comparison superseded by a newer run")

// Executor runs a query string and returns its result set.
type Executor interface {
	Execute(ctx context.Context, query string) (*results.ResultSet, error)
}

// State is the lifecycle of the engine's current run.
type State int

const (
	Idle State = iota
	Fetching
	Aggregating
	Complete
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Aggregating:
		return "aggregating"
	case Complete:
		return "complete"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Run is one completed comparison.
type Run struct {
	ID          uuid.UUID          `json:"id"`
	Generation  uint64             `json:"generation"`
	Language    string             `json:"language"`
	Identifiers []string           `json:"identifiers"`
	Records     map[string]*Record `json:"records"`
	Started     time.Time          `json:"started"`
	Finished    time.Time          `json:"finished"`
}

// Ordered returns the records in the order the identifiers were given.
func (r *Run) Ordered() []*Record {
	out := make([]*Record, 0, len(r.Identifiers))
	for _, id := range r.Identifiers {
		out = append(out, r.Records[id])
	}
	return out
}

// Engine compares items. Only the most recently started run may publish
// results; use one Engine per page or session.
type Engine struct {
	exec        Executor
	language    string
	concurrency int
	logger      *slog.Logger

	mu         sync.Mutex
	generation uint64
	state      State
	current    []string
	cancel     context.CancelFunc
	latest     *Run
}

// Option configures an Engine.
type Option func(*Engine)

// WithLanguage sets the label language (default "en").
func WithLanguage(lang string) Option {
	return func(e *Engine) { e.language = lang }
}

// WithConcurrency caps simultaneous sub-fetches across a run; n <= 0 means
// no cap.
func WithConcurrency(n int) Option {
	return func(e *Engine) { e.concurrency = n }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// NewEngine creates an idle engine.
func NewEngine(exec Executor, opts ...Option) *Engine {
	e := &Engine{
		exec:     exec,
		language: "en",
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = e.logger.With(slog.String("component", "compare"))
	return e
}

// State returns the state of the current run.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// Current returns the identifiers of the current run.
func (e *Engine) Current() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.current...)
}

// Latest returns the last completed run, if the current run is complete.
func (e *Engine) Latest() (*Run, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.state != Complete || e.latest == nil {
		return nil, false
	}
	return e.latest, true
}

// CompareItems fetches label, external identifier count, reference
// percentage and per-project sitelink counts for every identifier, all
// concurrently. A failed fetch leaves its metric at the zero value and is
// listed in the record's Failures. Starting another run cancels this one,
// which then returns ErrSuperseded.
func (e *Engine) CompareItems(ctx context.Context, identifiers []string) (*Run, error) {
	ids := dedupe(identifiers)
	jobs, err := plan(ids, e.language)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	gen := e.begin(ids, cancel)

	run := &Run{
		ID:          uuid.New(),
		Generation:  gen,
		Language:    e.language,
		Identifiers: ids,
		Records:     make(map[string]*Record, len(ids)),
		Started:     time.Now(),
	}
	for _, id := range ids {
		run.Records[id] = newRecord(id)
	}
	logger := e.logger.With(slog.String("run", run.ID.String()), slog.Uint64("generation", gen))
	logger.Info("comparison started", slog.String("items", strings.Join(ids, ",")), slog.Int("fetches", len(jobs)))

	g, gctx := errgroup.WithContext(ctx)
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}

	var once sync.Once
	for _, j := range jobs {
		g.Go(func() error {
			rs, err := e.exec.Execute(gctx, j.query)
			once.Do(func() { e.transition(gen, Aggregating) })
			rec := run.Records[j.identifier]
			if err == nil {
				err = j.metric.apply(rec, rs)
			}
			if err == nil {
				return nil
			}
			if !wikidata.IsFetchError(err) && gctx.Err() == nil {
				// schema mismatch: the query and the aggregation disagree
				return fmt.Errorf("%s %s: %w", j.identifier, j.metric.name, err)
			}
			logger.Warn("metric fetch failed",
				slog.String("item", j.identifier),
				slog.String("metric", string(j.metric.name)),
				slog.String("error", err.Error()))
			rec.fail(j.metric.name, err)
			return nil
		})
	}

	err = g.Wait()
	run.Finished = time.Now()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation != gen {
		logger.Info("comparison superseded, discarding results")
		return nil, ErrSuperseded
	}
	e.cancel = nil
	if err != nil {
		e.state = Failed
		e.latest = nil
		logger.Error("comparison failed", slog.String("error", err.Error()))
		return nil, err
	}
	if ctx.Err() != nil {
		// the caller gave up; records hold whatever settled before that
		logger.Warn("comparison context ended early", slog.String("error", ctx.Err().Error()))
	}
	e.state = Complete
	e.latest = run
	logger.Info("comparison complete", slog.Duration("took", run.Finished.Sub(run.Started)))
	return run, nil
}

func (e *Engine) begin(ids []string, cancel context.CancelFunc) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.cancel != nil {
		e.cancel()
	}
	e.generation++
	e.state = Fetching
	e.current = ids
	e.cancel = cancel
	e.latest = nil
	return e.generation
}

func (e *Engine) transition(gen uint64, s State) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.generation == gen {
		e.state = s
	}
}

// ParseIdentifiers splits a comma separated identifier list, dropping
// whitespace, '+' signs, empty entries and duplicates.
func ParseIdentifiers(list string) []string {
	var ids []string
	for _, part := range strings.Split(list, ",") {
		id := strings.Map(func(r rune) rune {
			if r == '+' || r == ' ' || r == '\t' || r == '\n' || r == '\r' {
				return -1
			}
			return r
		}, part)
		if id != "" {
			ids = append(ids, id)
		}
	}
	return dedupe(ids)
}

func dedupe(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
