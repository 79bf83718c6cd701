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

package inference

import (
	"context"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/xsd"
	"golang.org/x/sync/errgroup"

	"github.com/cayleygraph/sparqlschema/clog"
	"github.com/cayleygraph/sparqlschema/queries"
	"github.com/cayleygraph/sparqlschema/schema"
	"github.com/cayleygraph/sparqlschema/sparql"
)

var (
	xsdString  = string(quad.IRI(xsd.String).Full())
	langString = string(quad.IRI(rdf.LangString).Full())
)

// Properties resolves the property model against a built class hierarchy.
type Properties struct {
	Store  *Store
	Runner Runner
	Notes  *Notes
	Filter Filter

	DomainAndRangePairs        bool
	Cardinalities              bool
	DataTypes                  bool
	DataTypesForObjectProperty bool
	PropertyRelations          bool

	Workers int
}

// Resolve discovers every property and resolves each of them, up to
// Workers properties at a time.
func (p *Properties) Resolve(ctx context.Context) error {
	res, err := p.Runner.Run(ctx, queries.Properties, sparql.Vars{})
	if err != nil {
		return err
	}
	if res.Failed {
		p.Notes.Add("", "property discovery failed; the schema has no properties")
		return nil
	}
	for _, row := range res.Rows {
		iri, ok := row.IRI("p")
		if !ok || !p.Filter.Property(string(iri)) {
			continue
		}
		p.Store.AddProperty(string(iri), row.Int("count"))
	}
	props := p.Store.Properties()
	clog.Infof("discovered %d properties", len(props))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(p.Workers))
	for _, prop := range props {
		prop := prop
		g.Go(func() error { return p.resolve(ctx, prop) })
	}
	return g.Wait()
}

// run executes q for the property. It reports ok=false when the query
// failed; the failure is recorded against the property.
func (p *Properties) run(ctx context.Context, prop *Property, q sparql.Query, vars sparql.Vars) (sparql.Result, bool, error) {
	vars.Property = "<" + prop.ID + ">"
	res, err := p.Runner.Run(ctx, q, vars)
	if err != nil {
		return res, false, err
	}
	if res.Failed {
		p.Notes.Add(prop.ID, "query %s failed", q.Name)
		return res, false, nil
	}
	return res, true, nil
}

func (p *Properties) resolve(ctx context.Context, prop *Property) error {
	res, ok, err := p.run(ctx, prop, queries.ObjectTriples, sparql.Vars{})
	if err != nil {
		return err
	}
	if ok && len(res.Rows) > 0 {
		prop.ObjectTripleCount = res.Rows[0].Int("count")
	}
	prop.IsObjectProperty = prop.TripleCount > 0 && prop.ObjectTripleCount == prop.TripleCount

	steps := []func(context.Context, *Property) error{p.domains, p.closedDomain}
	if prop.ObjectTripleCount > 0 {
		steps = append(steps, p.ranges)
		if p.DomainAndRangePairs {
			steps = append(steps, p.pairs)
		}
	}
	if prop.IsObjectProperty {
		steps = append(steps, p.closedRange)
	}
	if p.DataTypes && (!prop.IsObjectProperty || p.DataTypesForObjectProperty) {
		steps = append(steps, p.dataTypes)
	}
	if p.Cardinalities {
		steps = append(steps, p.cardinalities)
	}
	if p.PropertyRelations {
		steps = append(steps, p.relations)
	}
	for _, step := range steps {
		if err := step(ctx, prop); err != nil {
			return err
		}
	}
	if len(prop.ValidDomains()) == 0 {
		p.Notes.Add(prop.ID, "no domain known")
	}
	clog.Debugf(1, "property %s: %d triples, object=%v", prop.ID, prop.TripleCount, prop.IsObjectProperty)
	return nil
}

// classCounts reads restricted class counts from rows, ignoring classes
// not in the hierarchy.
func (p *Properties) classCounts(rows []sparql.Row) []*ClassCount {
	var out []*ClassCount
	for _, row := range rows {
		id, ok := ClassID(row.Value("c"))
		if !ok || p.Store.Class(id) == nil {
			continue
		}
		out = append(out, &ClassCount{
			ClassID:               id,
			Count:                 row.Int("count"),
			ObjectCount:           row.Int("objects"),
			MaxInverseCardinality: schema.Unbounded,
		})
	}
	sortClassCounts(out)
	p.Store.validateClasses(out)
	return out
}

func (p *Properties) domains(ctx context.Context, prop *Property) error {
	res, ok, err := p.run(ctx, prop, queries.Domains, sparql.Vars{})
	if err != nil || !ok {
		return err
	}
	prop.Domains = p.classCounts(res.Rows)
	return nil
}

func (p *Properties) ranges(ctx context.Context, prop *Property) error {
	res, ok, err := p.run(ctx, prop, queries.Ranges, sparql.Vars{})
	if err != nil || !ok {
		return err
	}
	prop.Ranges = p.classCounts(res.Rows)
	return nil
}

// pairs reads (domain, range) combinations from the grouped query and only
// probes every combination of valid candidates when it returns nothing.
func (p *Properties) pairs(ctx context.Context, prop *Property) error {
	res, _, err := p.run(ctx, prop, queries.Pairs, sparql.Vars{})
	if err != nil {
		return err
	}
	for _, row := range res.Rows {
		d, ok1 := ClassID(row.Value("c"))
		r, ok2 := ClassID(row.Value("c2"))
		if !ok1 || !ok2 || p.Store.Class(d) == nil || p.Store.Class(r) == nil {
			continue
		}
		prop.Pairs = append(prop.Pairs, &Pair{Domain: d, Range: r, Count: row.Int("count")})
	}
	if len(prop.Pairs) == 0 {
		for _, d := range prop.ValidDomains() {
			for _, r := range prop.ValidRanges() {
				res, ok, err := p.run(ctx, prop, queries.PairCount, sparql.Vars{
					Class: p.term(d.ClassID),
					Other: p.term(r.ClassID),
				})
				if err != nil {
					return err
				}
				if !ok || len(res.Rows) == 0 {
					continue
				}
				if n := res.Rows[0].Int("count"); n > 0 {
					prop.Pairs = append(prop.Pairs, &Pair{Domain: d.ClassID, Range: r.ClassID, Count: n})
				}
			}
		}
	}
	p.Store.validatePairs(prop.Pairs)
	return nil
}

func (p *Properties) term(class string) string {
	if c := p.Store.Class(class); c != nil {
		return sparql.Term(c.Term)
	}
	return "<" + class + ">"
}

// closedDomain and closedRange hold when no untyped subject or object is
// found. A failed probe leaves the flag unset.
func (p *Properties) closedDomain(ctx context.Context, prop *Property) error {
	res, ok, err := p.run(ctx, prop, queries.UntypedSubject, sparql.Vars{})
	if err != nil {
		return err
	}
	prop.ClosedDomain = ok && res.Empty()
	return nil
}

func (p *Properties) closedRange(ctx context.Context, prop *Property) error {
	res, ok, err := p.run(ctx, prop, queries.UntypedObject, sparql.Vars{})
	if err != nil {
		return err
	}
	prop.ClosedRange = ok && res.Empty()
	return nil
}

// dataTypes records literal datatypes with their counts. Language-tagged
// strings are counted apart instead of being listed as a datatype; plain
// literals without a datatype count as xsd:string.
func (p *Properties) dataTypes(ctx context.Context, prop *Property) error {
	res, ok, err := p.run(ctx, prop, queries.DataTypes, sparql.Vars{})
	if err != nil {
		return err
	}
	var lang int64
	if ok {
		counts := make(map[string]int64)
		for _, row := range res.Rows {
			dt := xsdString
			if iri, isIRI := row.IRI("dt"); isIRI {
				dt = string(iri.Full())
			}
			n := row.Int("count")
			if dt == langString {
				lang += n
				continue
			}
			counts[dt] += n
		}
		prop.DataTypes = prop.DataTypes[:0]
		for dt, n := range counts {
			prop.DataTypes = append(prop.DataTypes, TypeCount{ID: dt, Count: n})
		}
		sortTypeCounts(prop.DataTypes)
	}
	res, ok, err = p.run(ctx, prop, queries.LangStrings, sparql.Vars{})
	if err != nil {
		return err
	}
	if ok && len(res.Rows) > 0 {
		lang = res.Rows[0].Int("count")
	}
	prop.LangStringCount = lang
	return nil
}

// relations finds the properties used next to prop: on its objects, on its
// subjects and on its objects as values.
func (p *Properties) relations(ctx context.Context, prop *Property) error {
	collect := func(q sparql.Query) ([]TypeCount, error) {
		res, ok, err := p.run(ctx, prop, q, sparql.Vars{})
		if err != nil || !ok {
			return nil, err
		}
		var out []TypeCount
		for _, row := range res.Rows {
			iri, isIRI := row.IRI("p")
			if !isIRI || string(iri) == prop.ID || !p.Filter.Property(string(iri)) {
				continue
			}
			out = append(out, TypeCount{ID: string(iri), Count: row.Int("count")})
		}
		sortTypeCounts(out)
		return out, nil
	}
	var err error
	if prop.CommonSubjects, err = collect(queries.CommonSubject); err != nil {
		return err
	}
	if prop.ObjectTripleCount == 0 {
		return nil
	}
	if prop.FollowedBy, err = collect(queries.FollowedBy); err != nil {
		return err
	}
	prop.CommonObjects, err = collect(queries.CommonObject)
	return err
}
