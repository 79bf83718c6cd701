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
	"sync"
	"sync/atomic"
	"time"

	"github.com/cayleygraph/sparqlschema/clog"
)

// ErrEndpointUnavailable is returned once the endpoint stayed unhealthy for
// longer than the configured waiting budget. It aborts the run.
var ErrEndpointUnavailable = errors.New("sparql: endpoint unavailable")

// State is the endpoint health as seen by the executor.
type State int

const (
	Healthy State = iota
	Probing
	Waiting
	Aborted
)

func (s State) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Probing:
		return "probing"
	case Waiting:
		return "waiting"
	case Aborted:
		return "aborted"
	}
	return "unknown"
}

// health is the endpoint availability state machine shared by every caller
// of an Executor. Only one caller probes or waits at a time; the others
// block on flight and reuse the outcome. State and Waited never wait for
// flight.
type health struct {
	probe func(ctx context.Context) error
	sleep func(ctx context.Context, d time.Duration) error

	first  time.Duration
	next   time.Duration
	budget time.Duration

	state  int32 // atomic State
	waited int64 // atomic time.Duration

	flight    sync.Mutex
	recovered time.Time // guarded by flight
}

func (h *health) setState(s State) {
	atomic.StoreInt32(&h.state, int32(s))
	mEndpointState.Set(float64(s))
}

func (h *health) State() State {
	return State(atomic.LoadInt32(&h.state))
}

// Waited returns the total time spent in the waiting state.
func (h *health) Waited() time.Duration {
	return time.Duration(atomic.LoadInt64(&h.waited))
}

// await blocks until the endpoint answers the health probe. failedAt is
// when the caller observed its failure; if a probe succeeded after that,
// the endpoint is considered healthy without probing again.
//
// The first wait lasts h.first and every following one h.next. With a
// positive budget, waiting stops once the budget is spent and the state
// machine moves to Aborted for good.
func (h *health) await(ctx context.Context, failedAt time.Time) error {
	h.flight.Lock()
	defer h.flight.Unlock()
	if h.State() == Aborted {
		return ErrEndpointUnavailable
	}
	if !h.recovered.IsZero() && h.recovered.After(failedAt) {
		return nil
	}
	var waited time.Duration
	for n := 0; ; n++ {
		h.setState(Probing)
		err := h.probe(ctx)
		if err == nil {
			h.setState(Healthy)
			h.recovered = time.Now()
			if waited > 0 {
				clog.Infof("endpoint recovered after waiting %v", waited)
			}
			return nil
		}
		if ctx.Err() != nil {
			h.setState(Healthy)
			return ctx.Err()
		}
		if h.budget > 0 && waited >= h.budget {
			h.setState(Aborted)
			clog.Errorf("endpoint still unhealthy after waiting %v: %v", waited, err)
			return ErrEndpointUnavailable
		}
		d := h.next
		if n == 0 {
			d = h.first
		}
		if h.budget > 0 && waited+d > h.budget {
			d = h.budget - waited
		}
		h.setState(Waiting)
		clog.Warningf("endpoint unhealthy (%v), waiting %v before probing again", err, d)
		if err = h.sleep(ctx, d); err != nil {
			h.setState(Healthy)
			return err
		}
		waited += d
		atomic.AddInt64(&h.waited, int64(d))
		mHealthWaitSeconds.Add(d.Seconds())
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
