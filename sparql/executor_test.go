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
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDown = errors.New("connection refused")

// scripted is a Querier that fails queries and checks according to a script.
type scripted struct {
	mu        sync.Mutex
	queries   []string
	checks    int
	queryErrs []error
	checkErrs []error
	respond   func(text string) (Result, error)
}

func (s *scripted) Query(ctx context.Context, text string, timeout time.Duration) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if text == HealthQuery {
		s.checks++
		if len(s.checkErrs) > 0 {
			err := s.checkErrs[0]
			s.checkErrs = s.checkErrs[1:]
			return Result{}, err
		}
		return Result{}, nil
	}
	s.queries = append(s.queries, text)
	if len(s.queryErrs) > 0 {
		err := s.queryErrs[0]
		s.queryErrs = s.queryErrs[1:]
		if err != nil {
			return Result{}, err
		}
	}
	if s.respond != nil {
		return s.respond(text)
	}
	return Result{Rows: []Row{{"x": quad.IRI("http://example.org/x")}}}, nil
}

type sleepRecorder struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (r *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	r.mu.Lock()
	r.sleeps = append(r.sleeps, d)
	r.mu.Unlock()
	return ctx.Err()
}

var testQuery = Query{
	Name:     "members",
	Template: "SELECT ?x {{.From}} WHERE { ?x {{.ClassificationProperty}} {{.Class}} }",
	Timeout:  Small,
}

func newTestExecutor(q Querier, opts Options) (*Executor, *sleepRecorder) {
	if opts.FirstWait == 0 {
		opts.FirstWait = time.Minute
	}
	if opts.Wait == 0 {
		opts.Wait = 15 * time.Minute
	}
	e := NewExecutor(q, opts)
	rec := &sleepRecorder{}
	e.SetSleep(rec.sleep)
	return e, rec
}

func TestExecutorSubstitutesVars(t *testing.T) {
	q := &scripted{}
	e, _ := newTestExecutor(q, Options{
		Graph:                  "http://example.org/g",
		ClassificationProperty: "http://www.w3.org/1999/02/22-rdf-syntax-ns#type",
	})
	res, err := e.Run(context.Background(), testQuery, Vars{Class: Term(quad.IRI("http://example.org/C"))})
	require.NoError(t, err)
	require.False(t, res.Failed)
	require.Len(t, res.Rows, 1)
	require.Equal(t, []string{
		"SELECT ?x FROM <http://example.org/g> WHERE { ?x <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://example.org/C> }",
	}, q.queries)
}

func TestExecutorRecoversAfterHealthWaits(t *testing.T) {
	q := &scripted{
		queryErrs: []error{errDown, errDown},
		checkErrs: []error{errDown, errDown},
	}
	e, rec := newTestExecutor(q, Options{Retries: 2, RetryDelay: 2 * time.Second})

	res, err := e.Run(context.Background(), testQuery, Vars{Class: "<http://example.org/C>"})
	require.NoError(t, err)
	require.False(t, res.Failed)
	require.Len(t, res.Rows, 1)

	require.Len(t, q.queries, 3, "original query plus two retries")
	require.Equal(t, 4, q.checks)
	require.Equal(t, []time.Duration{
		time.Minute, 15 * time.Minute, 2 * time.Second,
		2 * time.Second,
	}, rec.sleeps)

	st := e.Stats()
	require.Equal(t, int64(2), st.Retries)
	require.Equal(t, 16*time.Minute, st.Waited)
	require.Equal(t, Healthy, e.State())
}

func TestExecutorAbortsWhenBudgetExhausted(t *testing.T) {
	q := &scripted{
		queryErrs: []error{errDown},
		checkErrs: []error{errDown, errDown, errDown, errDown, errDown},
	}
	e, rec := newTestExecutor(q, Options{Retries: 2, MaxWait: 20 * time.Minute})

	res, err := e.Run(context.Background(), testQuery, Vars{})
	require.True(t, errors.Is(err, ErrEndpointUnavailable))
	require.True(t, res.Failed)
	require.Equal(t, []time.Duration{time.Minute, 15 * time.Minute, 4 * time.Minute}, rec.sleeps)
	require.Equal(t, Aborted, e.State())

	// once aborted, other callers stop at their first failure
	q.queryErrs = []error{errDown}
	_, err = e.Run(context.Background(), testQuery, Vars{})
	require.True(t, errors.Is(err, ErrEndpointUnavailable))
}

func TestExecutorGivesUpAfterRetries(t *testing.T) {
	q := &scripted{queryErrs: []error{errDown, errDown, errDown}}
	e, _ := newTestExecutor(q, Options{Retries: 2})

	res, err := e.Run(context.Background(), testQuery, Vars{})
	require.NoError(t, err)
	require.True(t, res.Failed)
	require.True(t, res.Empty())
	require.Len(t, q.queries, 3)
	require.Equal(t, int64(1), e.Stats().Failed)
	require.NotEmpty(t, e.Diagnostics())
}

func TestExecutorTemplateFallback(t *testing.T) {
	respond := func(text string) (Result, error) {
		if strings.Contains(text, "NOT SPARQL") {
			return Result{}, &HTTPError{Status: "400 Bad Request", StatusCode: 400}
		}
		return Result{Vars: []string{"x"}, Rows: []Row{{"x": quad.IRI("http://example.org/a")}}}, nil
	}
	for _, c := range []struct {
		name     string
		override string
	}{
		{name: "unparsable template", override: "SELECT {{.Class"},
		{name: "unknown field", override: "SELECT {{.Nope}} WHERE {}"},
		{name: "rejected by endpoint", override: "NOT SPARQL {{.Class}}"},
	} {
		t.Run(c.name, func(t *testing.T) {
			q := &scripted{respond: respond}
			e, _ := newTestExecutor(q, Options{
				Overrides: map[string]string{testQuery.Name: c.override},
			})
			res, err := e.Run(context.Background(), testQuery, Vars{Class: "<http://example.org/C>"})
			require.NoError(t, err)
			require.False(t, res.Failed)
			require.Equal(t, []string{"x"}, res.Vars)
			require.Len(t, res.Rows, 1)
			iri, ok := res.Rows[0].IRI("x")
			require.True(t, ok)
			require.Equal(t, quad.IRI("http://example.org/a"), iri)
			require.Equal(t, int64(1), e.Stats().Fallbacks)
			require.Len(t, e.Diagnostics(), 1)
			require.Equal(t, 0, q.checks, "malformed queries do not trigger health checks")
		})
	}
}

func TestExecutorOverrideUsed(t *testing.T) {
	q := &scripted{}
	e, _ := newTestExecutor(q, Options{
		Overrides: map[string]string{testQuery.Name: "SELECT ?x WHERE { ?x a {{.Class}} } LIMIT 5"},
	})
	_, err := e.Run(context.Background(), testQuery, Vars{Class: "<http://example.org/C>"})
	require.NoError(t, err)
	require.Equal(t, []string{"SELECT ?x WHERE { ?x a <http://example.org/C> } LIMIT 5"}, q.queries)
	require.Zero(t, e.Stats().Fallbacks)
}

func TestExecutorCancelled(t *testing.T) {
	q := &scripted{}
	e, _ := newTestExecutor(q, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := e.Run(ctx, testQuery, Vars{})
	require.True(t, errors.Is(err, context.Canceled))
	require.True(t, res.Failed)
	require.Empty(t, q.queries)
}

func TestExecutorSharedHealth(t *testing.T) {
	// concurrent callers failing during the same outage wait on one health check sequence
	q := &scripted{
		queryErrs: []error{errDown, errDown, errDown, errDown},
		checkErrs: []error{errDown},
	}
	e, rec := newTestExecutor(q, Options{Retries: 4})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.Run(context.Background(), testQuery, Vars{})
			assert.NoError(t, err)
			assert.False(t, res.Failed)
		}()
	}
	wg.Wait()
	var waits int
	for _, d := range rec.sleeps {
		if d == time.Minute || d == 15*time.Minute {
			waits++
		}
	}
	require.Equal(t, 1, waits)
}

func TestExecutorStateDuringHealthWait(t *testing.T) {
	q := &scripted{queryErrs: []error{errDown}, checkErrs: []error{errDown}}
	e := NewExecutor(q, Options{Retries: 1, FirstWait: time.Minute, Wait: time.Minute})
	waiting := make(chan struct{})
	release := make(chan struct{})
	var once sync.Once
	e.SetSleep(func(ctx context.Context, d time.Duration) error {
		if d == time.Minute {
			once.Do(func() { close(waiting) })
			<-release
		}
		return ctx.Err()
	})

	done := make(chan error, 1)
	go func() {
		_, err := e.Run(context.Background(), testQuery, Vars{Class: "<http://example.org/C>"})
		done <- err
	}()
	<-waiting

	states := make(chan State, 1)
	go func() {
		states <- e.State()
		e.Stats()
	}()
	select {
	case s := <-states:
		require.Equal(t, Waiting, s)
	case <-time.After(2 * time.Second):
		t.Fatal("State() blocked while the executor waited for the endpoint")
	}

	close(release)
	require.NoError(t, <-done)
	require.Equal(t, Healthy, e.State())
	require.Equal(t, time.Minute, e.Stats().Waited)
}
