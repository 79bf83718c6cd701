// Copyright 2026 The Cayley Authors. All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package sparql

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/cayleygraph/sparqlschema/clog"
)

// HealthQuery is the trivial query used to check endpoint health.
const HealthQuery = "SELECT * WHERE { ?s ?p ?o } LIMIT 1"

// Options configures an Executor.
type Options struct {
	// Graph restricts queries to a named graph.
	Graph string
	// ClassificationProperty is the IRI of the class membership predicate.
	ClassificationProperty string

	LargeTimeout time.Duration
	SmallTimeout time.Duration

	// Retries is the number of times a failed query is sent again.
	Retries    int
	RetryDelay time.Duration

	// FirstWait and Wait are the health wait schedule; MaxWait is the
	// waiting budget for one outage (0 waits forever).
	FirstWait time.Duration
	Wait      time.Duration
	MaxWait   time.Duration

	// QueryRate limits dispatched queries per second (0 is unlimited).
	QueryRate float64

	// Overrides replace built-in templates by query name.
	Overrides map[string]string
}

// Stats counts executor activity over its lifetime.
type Stats struct {
	Queries   int64
	Failed    int64
	Retries   int64
	Fallbacks int64
	Waited    time.Duration
}

// Executor runs templated queries against an endpoint, retrying failures
// and waiting out endpoint outages. It is safe for concurrent use; all
// callers share one health state machine.
type Executor struct {
	q       Querier
	opts    Options
	limiter *rate.Limiter
	health  *health
	sleep   func(ctx context.Context, d time.Duration) error

	queries   int64
	failed    int64
	retries   int64
	fallbacks int64

	mu    sync.Mutex
	notes []string
}

// NewExecutor creates an executor sending queries through q.
func NewExecutor(q Querier, opts Options) *Executor {
	limit := rate.Inf
	if opts.QueryRate > 0 {
		limit = rate.Limit(opts.QueryRate)
	}
	e := &Executor{
		q:       q,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
	}
	e.health = &health{
		probe:  e.probe,
		first:  opts.FirstWait,
		next:   opts.Wait,
		budget: opts.MaxWait,
	}
	e.SetSleep(sleepContext)
	return e
}

// SetSleep replaces the function used for retry delays and health waits.
func (e *Executor) SetSleep(fn func(ctx context.Context, d time.Duration) error) {
	e.sleep = fn
	e.health.sleep = fn
}

// State returns the current endpoint health state.
func (e *Executor) State() State { return e.health.State() }

// Stats returns a snapshot of the executor counters.
func (e *Executor) Stats() Stats {
	return Stats{
		Queries:   atomic.LoadInt64(&e.queries),
		Failed:    atomic.LoadInt64(&e.failed),
		Retries:   atomic.LoadInt64(&e.retries),
		Fallbacks: atomic.LoadInt64(&e.fallbacks),
		Waited:    e.health.Waited(),
	}
}

// Diagnostics returns the notes recorded for template fallbacks and
// abandoned queries.
func (e *Executor) Diagnostics() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.notes...)
}

func (e *Executor) note(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	e.mu.Lock()
	e.notes = append(e.notes, msg)
	e.mu.Unlock()
}

func (e *Executor) timeout(t TimeoutClass) time.Duration {
	if t == Large {
		return e.opts.LargeTimeout
	}
	return e.opts.SmallTimeout
}

func (e *Executor) probe(ctx context.Context) error {
	_, err := e.q.Query(ctx, HealthQuery, e.opts.SmallTimeout)
	return err
}

func (e *Executor) fill(vars *Vars) {
	if vars.From == "" {
		vars.From = FromClause(e.opts.Graph)
	}
	if vars.ClassificationProperty == "" && e.opts.ClassificationProperty != "" {
		vars.ClassificationProperty = "<" + e.opts.ClassificationProperty + ">"
	}
}

// text renders the query, preferring a configured override. When the
// override is used, fallback holds the rendered built-in text.
func (e *Executor) text(q Query, vars Vars) (text, fallback string, err error) {
	def, err := q.Render(vars)
	if err != nil {
		return "", "", err
	}
	over, ok := e.opts.Overrides[q.Name]
	if !ok || over == "" {
		return def, "", nil
	}
	s, oerr := render(q.Name, over, vars)
	if oerr != nil {
		e.fallback(q, oerr)
		return def, "", nil
	}
	return s, def, nil
}

func (e *Executor) fallback(q Query, err error) {
	atomic.AddInt64(&e.fallbacks, 1)
	mTemplateFallbacks.Inc()
	clog.Warningf("query %q: cannot use configured template, falling back to built-in: %v", q.Name, err)
	e.note("query %q: configured template replaced by built-in: %v", q.Name, err)
}

// Run executes q with vars substituted. Failures that survive all retries
// yield an empty result with Failed set and a nil error; the error is only
// non-nil when the run must stop: ctx is done or the endpoint stayed
// unavailable for the whole waiting budget.
func (e *Executor) Run(ctx context.Context, q Query, vars Vars) (Result, error) {
	e.fill(&vars)
	text, fallback, err := e.text(q, vars)
	if err != nil {
		// built-in templates are fixed; this is a programming error
		clog.Errorf("%v", err)
		e.note("%v", err)
		atomic.AddInt64(&e.failed, 1)
		return Result{Failed: true}, nil
	}
	tier := q.Timeout.String()
	for attempt := 1; ; attempt++ {
		if err := e.limiter.Wait(ctx); err != nil {
			return Result{Failed: true}, ctxErr(ctx, err)
		}
		atomic.AddInt64(&e.queries, 1)
		mQueries.WithLabelValues(tier).Inc()
		clog.Debugf(2, "query %q attempt %d:\n%s", q.Name, attempt, text)
		start := time.Now()
		res, err := e.q.Query(ctx, text, e.timeout(q.Timeout))
		mQuerySeconds.WithLabelValues(tier).Observe(time.Since(start).Seconds())
		if err == nil {
			if attempt >= 2 {
				clog.Infof("query %q succeeded after %d attempts", q.Name, attempt)
			}
			return res, nil
		}
		if ctx.Err() != nil {
			return Result{Failed: true}, ctx.Err()
		}
		mQueryFailures.WithLabelValues(tier).Inc()
		if errors.Is(err, ErrMalformedQuery) {
			if fallback != "" {
				e.fallback(q, err)
				text, fallback = fallback, ""
				attempt--
				continue
			}
			clog.Errorf("query %q rejected by endpoint: %v", q.Name, err)
			e.note("query %q rejected by endpoint: %v", q.Name, err)
			atomic.AddInt64(&e.failed, 1)
			return Result{Failed: true}, nil
		}
		clog.Debugf(1, "query %q attempt %d failed: %v", q.Name, attempt, err)
		if attempt > e.opts.Retries {
			clog.Warningf("query %q failed after %d attempts: %v", q.Name, attempt, err)
			e.note("query %q failed after %d attempts: %v", q.Name, attempt, err)
			atomic.AddInt64(&e.failed, 1)
			return Result{Failed: true}, nil
		}
		if err := e.health.await(ctx, time.Now()); err != nil {
			return Result{Failed: true}, err
		}
		if err := e.sleep(ctx, e.opts.RetryDelay); err != nil {
			return Result{Failed: true}, err
		}
		atomic.AddInt64(&e.retries, 1)
		mQueryRetries.Inc()
	}
}

// ctxErr maps limiter errors to context errors. The limiter refuses to wait
// past the context deadline before the deadline actually passes.
func ctxErr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if _, ok := ctx.Deadline(); ok {
		return context.DeadlineExceeded
	}
	return err
}
