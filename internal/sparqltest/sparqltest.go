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

// Package sparqltest answers the built-in catalog queries over an
// in-memory set of quads.
package sparqltest

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/xsd"

	"github.com/cayleygraph/sparqlschema/queries"
	"github.com/cayleygraph/sparqlschema/sparql"
)

// Call is a query received by an Endpoint.
type Call struct {
	Name string
	Vars sparql.Vars
	Rows int
}

// Endpoint evaluates catalog queries by name. Terms in sparql.Vars are
// matched against sparql.Term of the stored values.
type Endpoint struct {
	quads []quad.Quad

	// Fail is consulted before every query. Returning failed answers the
	// query with an empty failed result; a non-nil error is returned as is.
	Fail func(q sparql.Query, v sparql.Vars) (failed bool, err error)

	mu    sync.Mutex
	calls []Call
}

// New creates an endpoint serving quads.
func New(quads []quad.Quad) *Endpoint {
	return &Endpoint{quads: quads}
}

// Calls returns the queries answered so far, in arrival order.
func (e *Endpoint) Calls() []Call {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]Call(nil), e.calls...)
}

// CallsTo returns the queries with the given name.
func (e *Endpoint) CallsTo(name string) []Call {
	var out []Call
	for _, c := range e.Calls() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

// Run implements inference.Runner.
func (e *Endpoint) Run(ctx context.Context, q sparql.Query, v sparql.Vars) (sparql.Result, error) {
	if err := ctx.Err(); err != nil {
		return sparql.Result{Failed: true}, err
	}
	if e.Fail != nil {
		failed, err := e.Fail(q, v)
		if err != nil {
			return sparql.Result{Failed: true}, err
		}
		if failed {
			e.record(q, v, 0)
			return sparql.Result{Failed: true}, nil
		}
	}
	eval, ok := evaluators[q.Name]
	if !ok {
		return sparql.Result{Failed: true}, fmt.Errorf("sparqltest: unknown query %q", q.Name)
	}
	if v.ClassificationProperty == "" {
		v.ClassificationProperty = sparql.Term(quad.IRI(rdf.Type).Full())
	}
	g := newGraph(e.quads, v.ClassificationProperty)
	res := eval(g, v)
	e.record(q, v, len(res.Rows))
	return res, nil
}

func (e *Endpoint) record(q sparql.Query, v sparql.Vars, rows int) {
	e.mu.Lock()
	e.calls = append(e.calls, Call{Name: q.Name, Vars: v, Rows: rows})
	e.mu.Unlock()
}

// Type states that s is a member of class.
func Type(s, class string) quad.Quad {
	return quad.Quad{Subject: quad.IRI(s), Predicate: quad.IRI(rdf.Type).Full(), Object: quad.IRI(class)}
}

// Link is a resource-valued triple.
func Link(s, p, o string) quad.Quad {
	return quad.MakeIRI(s, p, o, "")
}

// Literal is a literal-valued triple.
func Literal(s, p string, o quad.Value) quad.Quad {
	return quad.Quad{Subject: quad.IRI(s), Predicate: quad.IRI(p), Object: o}
}

// graph indexes quads by rendered term.
type graph struct {
	// triples holds every distinct triple, typing triples included.
	triples []triple
	// types maps a subject term to its classes.
	types map[string][]quad.Value
	// members maps a class term to its members.
	members map[string][]quad.Value
}

type triple struct {
	s, p, o    quad.Value
	st, pt, ot string
}

func newGraph(quads []quad.Quad, cls string) *graph {
	g := &graph{
		types:   make(map[string][]quad.Value),
		members: make(map[string][]quad.Value),
	}
	seen := make(map[[3]string]bool)
	for _, q := range quads {
		q = quad.Quad{Subject: full(q.Subject), Predicate: full(q.Predicate), Object: full(q.Object)}
		t := triple{
			s: q.Subject, p: q.Predicate, o: q.Object,
			st: sparql.Term(q.Subject), pt: sparql.Term(q.Predicate), ot: sparql.Term(q.Object),
		}
		key := [3]string{t.st, t.pt, t.ot}
		if seen[key] {
			continue
		}
		seen[key] = true
		g.triples = append(g.triples, t)
		if t.pt == cls {
			g.types[t.st] = append(g.types[t.st], t.o)
			g.members[t.ot] = append(g.members[t.ot], t.s)
		}
	}
	return g
}

// full expands prefixed IRIs the way an endpoint stores them.
func full(v quad.Value) quad.Value {
	switch v := v.(type) {
	case quad.IRI:
		return v.Full()
	case quad.TypedString:
		v.Type = v.Type.Full()
		return v
	}
	return v
}

func (g *graph) hasType(subject, class string) bool {
	for _, c := range g.types[subject] {
		if sparql.Term(c) == class {
			return true
		}
	}
	return false
}

func (g *graph) with(pred string) []triple {
	var out []triple
	for _, t := range g.triples {
		if t.pt == pred {
			out = append(out, t)
		}
	}
	return out
}

func (g *graph) from(subject string) []triple {
	var out []triple
	for _, t := range g.triples {
		if t.st == subject {
			out = append(out, t)
		}
	}
	return out
}

func (g *graph) to(object string) []triple {
	var out []triple
	for _, t := range g.triples {
		if t.ot == object {
			out = append(out, t)
		}
	}
	return out
}

func isLiteral(v quad.Value) bool {
	switch v.(type) {
	case quad.IRI, quad.BNode:
		return false
	}
	return true
}

func count(n int) quad.Value {
	return quad.TypedString{Value: quad.String(strconv.Itoa(n)), Type: quad.IRI(xsd.NS + "integer")}
}

// counter groups rows by a key of bound values.
type counter struct {
	keys  []string
	vals  map[string][]quad.Value
	count map[string]int
	extra map[string]int
}

func newCounter() *counter {
	return &counter{vals: map[string][]quad.Value{}, count: map[string]int{}, extra: map[string]int{}}
}

func (c *counter) add(vals ...quad.Value) string {
	var key string
	for _, v := range vals {
		key += sparql.Term(v) + "\x00"
	}
	if _, ok := c.vals[key]; !ok {
		c.keys = append(c.keys, key)
		c.vals[key] = vals
	}
	c.count[key]++
	return key
}

func (c *counter) rows(names ...string) []sparql.Row {
	sort.Strings(c.keys)
	out := make([]sparql.Row, 0, len(c.keys))
	for _, k := range c.keys {
		row := sparql.Row{"count": count(c.count[k])}
		for i, v := range c.vals[k] {
			row[names[i]] = v
		}
		if n, ok := c.extra[k]; ok {
			row["objects"] = count(n)
		}
		out = append(out, row)
	}
	return out
}

func result(vars []string, rows []sparql.Row) sparql.Result {
	return sparql.Result{Vars: vars, Rows: rows}
}

func one(name string, v quad.Value) sparql.Result {
	return result([]string{name}, []sparql.Row{{name: v}})
}

func total(n int) sparql.Result {
	return result([]string{"count"}, []sparql.Row{{"count": count(n)}})
}

func none(name string) sparql.Result {
	return result([]string{name}, nil)
}

type evaluator func(g *graph, v sparql.Vars) sparql.Result

var evaluators = map[string]evaluator{
	queries.NameClasses: func(g *graph, v sparql.Vars) sparql.Result {
		c := newCounter()
		for _, t := range g.with(v.ClassificationProperty) {
			c.add(t.o)
		}
		return result([]string{"c", "count"}, c.rows("c"))
	},
	queries.NameClassNeighbors: func(g *graph, v sparql.Vars) sparql.Result {
		c := newCounter()
		for _, m := range g.members[v.Class] {
			for _, cls := range g.types[sparql.Term(m)] {
				if sparql.Term(cls) != v.Class {
					c.add(cls)
				}
			}
		}
		return result([]string{"c", "count"}, c.rows("c"))
	},
	queries.NameAllIntersections: func(g *graph, v sparql.Vars) sparql.Result {
		c := newCounter()
		for _, classes := range g.types {
			for _, a := range classes {
				for _, b := range classes {
					if sparql.Term(a) != sparql.Term(b) {
						c.add(a, b)
					}
				}
			}
		}
		rows := c.rows("c", "c2")
		for _, r := range rows {
			delete(r, "count")
		}
		return result([]string{"c", "c2"}, rows)
	},
	queries.NameNotContained: func(g *graph, v sparql.Vars) sparql.Result {
		for _, m := range g.members[v.Class] {
			if !g.hasType(sparql.Term(m), v.Other) {
				return one("x", m)
			}
		}
		return none("x")
	},
	queries.NameInstances: func(g *graph, v sparql.Vars) sparql.Result {
		var rows []sparql.Row
		for _, m := range g.members[v.Class] {
			if v.Limit > 0 && len(rows) >= v.Limit {
				break
			}
			if _, ok := m.(quad.IRI); ok {
				rows = append(rows, sparql.Row{"x": m})
			}
		}
		return result([]string{"x"}, rows)
	},
	queries.NameProperties: func(g *graph, v sparql.Vars) sparql.Result {
		c := newCounter()
		for _, t := range g.triples {
			c.add(t.p)
		}
		return result([]string{"p", "count"}, c.rows("p"))
	},
	queries.NameObjectTriples: func(g *graph, v sparql.Vars) sparql.Result {
		n := 0
		for _, t := range g.with(v.Property) {
			if !isLiteral(t.o) {
				n++
			}
		}
		return total(n)
	},
	queries.NameDomains: func(g *graph, v sparql.Vars) sparql.Result {
		c := newCounter()
		for _, t := range g.with(v.Property) {
			for _, cls := range g.types[t.st] {
				key := c.add(cls)
				if _, ok := c.extra[key]; !ok {
					c.extra[key] = 0
				}
				if !isLiteral(t.o) {
					c.extra[key]++
				}
			}
		}
		return result([]string{"c", "count", "objects"}, c.rows("c"))
	},
	queries.NameRanges: func(g *graph, v sparql.Vars) sparql.Result {
		c := newCounter()
		for _, t := range g.with(v.Property) {
			for _, cls := range g.types[t.ot] {
				c.add(cls)
			}
		}
		return result([]string{"c", "count"}, c.rows("c"))
	},
	queries.NamePairs: func(g *graph, v sparql.Vars) sparql.Result {
		c := newCounter()
		for _, t := range g.with(v.Property) {
			for _, d := range g.types[t.st] {
				for _, r := range g.types[t.ot] {
					c.add(d, r)
				}
			}
		}
		return result([]string{"c", "c2", "count"}, c.rows("c", "c2"))
	},
	queries.NamePairCount: func(g *graph, v sparql.Vars) sparql.Result {
		n := 0
		for _, t := range g.with(v.Property) {
			if g.hasType(t.st, v.Class) && g.hasType(t.ot, v.Other) {
				n++
			}
		}
		return total(n)
	},
	queries.NameUntypedSubject: func(g *graph, v sparql.Vars) sparql.Result {
		for _, t := range g.with(v.Property) {
			if len(g.types[t.st]) == 0 {
				return one("x", t.s)
			}
		}
		return none("x")
	},
	queries.NameUntypedObject: func(g *graph, v sparql.Vars) sparql.Result {
		for _, t := range g.with(v.Property) {
			if !isLiteral(t.o) && len(g.types[t.ot]) == 0 {
				return one("y", t.o)
			}
		}
		return none("y")
	},
	queries.NameDataTypes: func(g *graph, v sparql.Vars) sparql.Result {
		c := newCounter()
		for _, t := range g.with(v.Property) {
			switch o := t.o.(type) {
			case quad.TypedString:
				c.add(o.Type.Full())
			case quad.LangString:
				c.add(quad.IRI(rdf.LangString).Full())
			case quad.IRI, quad.BNode:
			default:
				c.add(quad.IRI(xsd.String).Full())
			}
		}
		return result([]string{"dt", "count"}, c.rows("dt"))
	},
	queries.NameLangStrings: func(g *graph, v sparql.Vars) sparql.Result {
		n := 0
		for _, t := range g.with(v.Property) {
			if _, ok := t.o.(quad.LangString); ok {
				n++
			}
		}
		return total(n)
	},
	queries.NameMultipleValues: func(g *graph, v sparql.Vars) sparql.Result {
		first := make(map[string]string)
		for _, t := range g.with(v.Property) {
			if o, ok := first[t.st]; ok && o != t.ot {
				return one("x", t.s)
			}
			first[t.st] = t.ot
		}
		return none("x")
	},
	queries.NameMissingValue: func(g *graph, v sparql.Vars) sparql.Result {
		has := make(map[string]bool)
		for _, t := range g.with(v.Property) {
			has[t.st] = true
		}
		for _, m := range g.members[v.Class] {
			if !has[sparql.Term(m)] {
				return one("x", m)
			}
		}
		return none("x")
	},
	queries.NameSharedObject: func(g *graph, v sparql.Vars) sparql.Result {
		return sharedObject(g, v, "")
	},
	queries.NameSharedObjectInClass: func(g *graph, v sparql.Vars) sparql.Result {
		return sharedObject(g, v, v.Class)
	},
	queries.NameFollowedBy: func(g *graph, v sparql.Vars) sparql.Result {
		c := newCounter()
		for _, t := range g.with(v.Property) {
			if isLiteral(t.o) {
				continue
			}
			for _, next := range g.from(t.ot) {
				c.add(next.p)
			}
		}
		return result([]string{"p", "count"}, c.rows("p"))
	},
	queries.NameCommonSubject: func(g *graph, v sparql.Vars) sparql.Result {
		c := newCounter()
		for _, t := range g.with(v.Property) {
			for _, other := range g.from(t.st) {
				if other.pt != v.Property {
					c.add(other.p)
				}
			}
		}
		return result([]string{"p", "count"}, c.rows("p"))
	},
	queries.NameCommonObject: func(g *graph, v sparql.Vars) sparql.Result {
		c := newCounter()
		for _, t := range g.with(v.Property) {
			if isLiteral(t.o) {
				continue
			}
			for _, other := range g.to(t.ot) {
				if other.pt != v.Property {
					c.add(other.p)
				}
			}
		}
		return result([]string{"p", "count"}, c.rows("p"))
	},
}

func sharedObject(g *graph, v sparql.Vars, class string) sparql.Result {
	first := make(map[string]string)
	for _, t := range g.with(v.Property) {
		if class != "" && !g.hasType(t.ot, class) {
			continue
		}
		if s, ok := first[t.ot]; ok && s != t.st {
			return one("y", t.o)
		}
		first[t.ot] = t.st
	}
	return none("y")
}
