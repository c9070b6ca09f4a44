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
	"log/slog"
	"time"

	"github.com/avast/retry-go"
	"golang.org/x/time/rate"
)

// DefaultUserAgent identifies us to the Wikimedia APIs, which reject
// anonymous clients.
const DefaultUserAgent = "wikiprovenance/1.0 (https://www.wikidata.org/wiki/User:Yapperbot)"

// Options are shared by the SPARQL and MediaWiki clients.
type Options struct {
	UserAgent  string
	Timeout    time.Duration
	Attempts   uint
	RetryDelay time.Duration
	// Limiter paces requests; nil means unlimited.
	Limiter *rate.Limiter
	Logger  *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.UserAgent == "" {
		o.UserAgent = DefaultUserAgent
	}
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Attempts == 0 {
		o.Attempts = 3
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = 500 * time.Millisecond
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// NewLimiter returns a limiter allowing rps requests per second, or nil
// (no limit) when rps <= 0.
func NewLimiter(rps float64, burst int) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

// attempt runs fn under the rate limiter, retrying temporary transport
// failures. The error returned is fn's last error, unwrapped from retry-go.
// A request that never went out because the limiter or ctx refused it is
// reported as a TransportError and not retried.
func (o Options) attempt(ctx context.Context, endpoint string, fn func() error) error {
	var err error
	var refused bool
	retry.Do(
		func() error {
			if o.Limiter != nil {
				err = o.Limiter.Wait(ctx)
			} else {
				err = ctx.Err()
			}
			if err != nil {
				refused = true
				return err
			}
			err = fn()
			return err
		},
		retry.Attempts(o.Attempts),
		retry.Delay(o.RetryDelay),
		retry.RetryIf(func(err error) bool {
			return !refused && ctx.Err() == nil && retryable(err)
		}),
		retry.OnRetry(func(n uint, err error) {
			o.Logger.Debug("retrying request",
				slog.String("endpoint", endpoint),
				slog.Uint64("attempt", uint64(n+1)),
				slog.String("error", err.Error()))
		}),
	)
	if refused {
		return &TransportError{Endpoint: endpoint, Err: err}
	}
	return err
}
