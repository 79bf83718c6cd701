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

// Package extract runs a complete schema extraction against one endpoint.
package extract

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/cayleygraph/sparqlschema/clog"
	"github.com/cayleygraph/sparqlschema/config"
	"github.com/cayleygraph/sparqlschema/inference"
	"github.com/cayleygraph/sparqlschema/schema"
	"github.com/cayleygraph/sparqlschema/sparql"
)

// Options maps a configuration onto query executor options.
func Options(cfg *config.Config) sparql.Options {
	return sparql.Options{
		Graph:                  cfg.Graph,
		ClassificationProperty: cfg.ClassificationProperty,
		LargeTimeout:           cfg.LargeQueryTimeout,
		SmallTimeout:           cfg.SmallQueryTimeout,
		Retries:                cfg.Retries,
		RetryDelay:             cfg.RetryDelay,
		FirstWait:              cfg.FirstHealthWait,
		Wait:                   cfg.HealthWait,
		MaxWait:                cfg.MaxHealthWait,
		QueryRate:              cfg.QueryRate,
		Overrides:              cfg.Queries,
	}
}

// Extractor produces a schema document from live queries.
type Extractor struct {
	cfg    *config.Config
	runner inference.Runner
	exec   *sparql.Executor
}

// New creates an extractor querying cfg.Endpoint over HTTP. The
// configuration must have been validated.
func New(cfg *config.Config, cli *http.Client) *Extractor {
	c := sparql.NewClient(cfg.Endpoint, cfg.Method)
	if cli != nil {
		c.SetHTTPClient(cli)
	}
	exec := sparql.NewExecutor(c, Options(cfg))
	return &Extractor{cfg: cfg, runner: exec, exec: exec}
}

// NewWithRunner creates an extractor sending its queries to r.
func NewWithRunner(cfg *config.Config, r inference.Runner) *Extractor {
	e := &Extractor{cfg: cfg, runner: r}
	if exec, ok := r.(*sparql.Executor); ok {
		e.exec = exec
	}
	return e
}

// Executor returns the query executor, or nil when queries go to a custom
// runner.
func (e *Extractor) Executor() *sparql.Executor { return e.exec }

func (e *Extractor) filter() inference.Filter {
	c := e.cfg
	return inference.Filter{
		IncludedClasses:    c.IncludedClasses,
		ExcludedClasses:    c.ExcludedClasses,
		IncludedProperties: c.IncludedProperties,
		ExcludedProperties: c.ExcludedProperties,
		IncludedNamespaces: c.IncludedNamespaces,
		ExcludedNamespaces: c.ExcludedNamespaces,
	}
}

func (e *Extractor) neighbors() inference.NeighborDiscoverer {
	if e.cfg.NeighborStrategy == config.StrategyAll {
		return inference.AllIntersections{}
	}
	return inference.PerClassNeighbors{Workers: e.cfg.Workers}
}

// Run extracts the schema. It fails only when ctx is done or the endpoint
// stayed unavailable for the whole waiting budget. When the configured run
// timeout elapses, the schema built so far is returned with a warning.
func (e *Extractor) Run(ctx context.Context) (*schema.Schema, error) {
	cfg := e.cfg
	id := uuid.New()
	start := time.Now()
	clog.Infof("run %s: extracting schema of %s", id, cfg.Endpoint)

	runCtx := ctx
	if cfg.RunTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.RunTimeout)
		defer cancel()
	}

	store := inference.NewStore()
	notes := &inference.Notes{}
	h := &inference.Hierarchy{
		Store:               store,
		Runner:              e.runner,
		Notes:               notes,
		Filter:              e.filter(),
		Neighbors:           e.neighbors(),
		SubClassRelations:   cfg.CalculateSubClassRelations,
		MultipleInheritance: cfg.CalculateMultipleInheritance,
		InstanceNamespaces:  cfg.CalculateInstanceNamespaces,
		Sample:              cfg.InstanceNamespaceSample,
		Workers:             cfg.Workers,
	}
	_, err := h.Build(runCtx)
	partial, err := e.stopped(ctx, runCtx, err, notes)
	if err != nil {
		return nil, err
	}
	if !partial {
		p := &inference.Properties{
			Store:                      store,
			Runner:                     e.runner,
			Notes:                      notes,
			Filter:                     e.filter(),
			DomainAndRangePairs:        cfg.CalculateDomainAndRangePairs,
			Cardinalities:              cfg.CalculateCardinalities,
			DataTypes:                  cfg.CalculateDataTypes,
			DataTypesForObjectProperty: cfg.CalculateDataTypesForObjectProperty,
			PropertyRelations:          cfg.CalculatePropertyPropertyRelations,
			Workers:                    cfg.Workers,
		}
		if _, err = e.stopped(ctx, runCtx, p.Resolve(runCtx), notes); err != nil {
			return nil, err
		}
	}

	doc := Assemble(cfg.Name, store, cfg.Prefixes)
	doc.Parameters = e.parameters(id, start)
	doc.Warnings = append(doc.Warnings, notes.List()...)
	if e.exec != nil {
		for _, d := range e.exec.Diagnostics() {
			doc.Warnings = append(doc.Warnings, schema.Warning{Message: d})
		}
	}
	clog.Infof("run %s: %d classes, %d properties, %d warnings in %v",
		id, len(doc.Classes), len(doc.Properties), len(doc.Warnings), time.Since(start))
	return doc, nil
}

// stopped classifies the error of an inference step. A run timeout makes
// the run partial; anything else is fatal.
func (e *Extractor) stopped(ctx, runCtx context.Context, err error, notes *inference.Notes) (bool, error) {
	if err == nil {
		return false, nil
	}
	if ctx.Err() == nil && runCtx.Err() != nil && errors.Is(err, context.DeadlineExceeded) {
		clog.Warningf("run timeout of %v reached, returning a partial schema", e.cfg.RunTimeout)
		notes.Add("", "run timeout of %v reached; the schema is partial", e.cfg.RunTimeout)
		return true, nil
	}
	return false, fmt.Errorf("extract: %w", err)
}
