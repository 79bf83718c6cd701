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
	"fmt"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/xsd"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/sparqlschema/internal/sparqltest"
	"github.com/cayleygraph/sparqlschema/queries"
	"github.com/cayleygraph/sparqlschema/schema"
	"github.com/cayleygraph/sparqlschema/sparql"
)

var rdfType = string(quad.IRI(rdf.Type).Full())

func person(i int) string  { return fmt.Sprintf("http://example.org/data/p%d", i) }
func company(i int) string { return fmt.Sprintf("http://example.org/data/c%d", i) }

// staff has 150 people, the first 100 of them employees working at one
// of 10 companies. Everyone has a name, the first 50 an age, and two
// people share a tagged nickname.
func staff() []quad.Quad {
	var out []quad.Quad
	for i := 0; i < 150; i++ {
		out = append(out, sparqltest.Type(person(i), ex+"Person"))
		out = append(out, sparqltest.Literal(person(i), ex+"name", quad.String(fmt.Sprintf("Person %d", i))))
		if i < 100 {
			out = append(out, sparqltest.Type(person(i), ex+"Employee"))
			out = append(out, sparqltest.Link(person(i), ex+"worksAt", company(i%10)))
		}
		if i < 50 {
			out = append(out, sparqltest.Literal(person(i), ex+"age",
				quad.TypedString{Value: quad.String(fmt.Sprint(20 + i)), Type: xsd.Int}))
		}
	}
	for i := 0; i < 10; i++ {
		out = append(out, sparqltest.Type(company(i), ex+"Company"))
	}
	out = append(out,
		sparqltest.Literal(person(0), ex+"nick", quad.LangString{Value: "Al", Lang: "en"}),
		sparqltest.Literal(person(1), ex+"nick", quad.LangString{Value: "Bo", Lang: "en"}),
		sparqltest.Literal(person(1), ex+"nick", quad.String("B")),
	)
	return out
}

func resolve(t *testing.T, ep *sparqltest.Endpoint, mod func(p *Properties)) (*Store, *Properties) {
	h := newHierarchy(ep)
	_, err := h.Build(context.Background())
	require.NoError(t, err)
	p := &Properties{
		Store:               h.Store,
		Runner:              ep,
		Notes:               h.Notes,
		DomainAndRangePairs: true,
		Cardinalities:       true,
		DataTypes:           true,
		PropertyRelations:   true,
		Workers:             3,
	}
	if mod != nil {
		mod(p)
	}
	require.NoError(t, p.Resolve(context.Background()))
	return h.Store, p
}

func ids(cs []*ClassCount) []string {
	var out []string
	for _, c := range cs {
		out = append(out, c.ClassID)
	}
	return out
}

func TestPropertiesScenarioB(t *testing.T) {
	s, _ := resolve(t, sparqltest.New(staff()), nil)
	require.Equal(t, []string{ex + "Person"}, s.SuperClasses(ex+"Employee"))

	p := s.Property(ex + "worksAt")
	require.NotNil(t, p)
	require.Equal(t, int64(100), p.TripleCount)
	require.Equal(t, int64(100), p.ObjectTripleCount)
	require.True(t, p.IsObjectProperty)
	require.True(t, p.ClosedDomain)
	require.True(t, p.ClosedRange)

	require.Equal(t, []string{ex + "Employee"}, ids(p.ValidDomains()))
	require.Equal(t, []string{ex + "Company"}, ids(p.ValidRanges()))
	var valid []Pair
	for _, pr := range p.Pairs {
		if pr.Valid {
			valid = append(valid, *pr)
		}
	}
	require.Equal(t, []Pair{{Domain: ex + "Employee", Range: ex + "Company", Count: 100, Valid: true}}, valid)

	require.Equal(t, 1, p.MaxCardinality)
	require.Equal(t, 1, p.MinCardinality)
	require.Equal(t, schema.Unbounded, p.MaxInverseCardinality)
	require.Equal(t, schema.Unbounded, p.ValidRanges()[0].MaxInverseCardinality)
	require.Empty(t, p.DataTypes, "object properties get no datatypes by default")

	require.Equal(t, []TypeCount{{ID: rdfType, Count: 100}}, p.FollowedBy)
	require.Empty(t, p.CommonObjects)
	require.Contains(t, p.CommonSubjects, TypeCount{ID: ex + "name", Count: 100})
}

func TestPropertiesDataTypes(t *testing.T) {
	s, _ := resolve(t, sparqltest.New(staff()), nil)

	name := s.Property(ex + "name")
	require.False(t, name.IsObjectProperty)
	require.Equal(t, int64(0), name.ObjectTripleCount)
	require.Equal(t, []TypeCount{{ID: xsdString, Count: 150}}, name.DataTypes)
	require.Equal(t, []string{ex + "Person", ex + "Employee"}, ids(name.ValidDomains()))
	require.Empty(t, name.Ranges)
	require.False(t, name.ClosedRange)

	age := s.Property(ex + "age")
	require.Equal(t, []TypeCount{{ID: xsd.NS + "int", Count: 50}}, age.DataTypes)

	nick := s.Property(ex + "nick")
	require.Equal(t, int64(2), nick.LangStringCount)
	require.Equal(t, []TypeCount{{ID: xsdString, Count: 1}}, nick.DataTypes)
	require.Equal(t, schema.Unbounded, nick.MaxCardinality)
	require.Equal(t, 0, nick.MinCardinality)
}

func TestPropertiesCardinalityRoundTrip(t *testing.T) {
	data := staff()
	s, _ := resolve(t, sparqltest.New(data), nil)

	values := make(map[string]map[string]map[string]struct{})
	typed := make(map[string]map[string]struct{})
	for _, q := range data {
		if q.Predicate == quad.IRI(rdfType) {
			c := sparql.Term(q.Object)
			if typed[c] == nil {
				typed[c] = map[string]struct{}{}
			}
			typed[c][sparql.Term(q.Subject)] = struct{}{}
			continue
		}
		p := string(q.Predicate.(quad.IRI))
		if values[p] == nil {
			values[p] = map[string]map[string]struct{}{}
		}
		subj := sparql.Term(q.Subject)
		if values[p][subj] == nil {
			values[p][subj] = map[string]struct{}{}
		}
		values[p][subj][sparql.Term(q.Object)] = struct{}{}
	}
	for _, p := range s.Properties() {
		if p.ID == rdfType {
			continue
		}
		if p.MaxCardinality == 1 {
			for subj, objs := range values[p.ID] {
				require.Len(t, objs, 1, "%s has several values for %s", subj, p.ID)
			}
		}
		for _, d := range p.ValidDomains() {
			if d.MinCardinality != 0 {
				continue
			}
			missing := false
			for m := range typed["<"+d.ClassID+">"] {
				if _, ok := values[p.ID][m]; !ok {
					missing = true
					break
				}
			}
			require.True(t, missing, "%s is optional on %s but every member has it", p.ID, d.ClassID)
		}
	}
	age := s.Property(ex + "age")
	require.Equal(t, 1, age.MaxCardinality)
	require.Equal(t, 0, age.MinCardinality)
}

func TestPropertiesPairFallback(t *testing.T) {
	ep := sparqltest.New(staff())
	ep.Fail = func(q sparql.Query, v sparql.Vars) (bool, error) {
		return q.Name == queries.NamePairs, nil
	}
	s, p := resolve(t, ep, nil)
	prop := s.Property(ex + "worksAt")
	require.Len(t, prop.Pairs, 1)
	require.Equal(t, Pair{Domain: ex + "Employee", Range: ex + "Company", Count: 100, Valid: true}, *prop.Pairs[0])
	require.NotEmpty(t, ep.CallsTo(queries.NamePairCount))
	require.NotEmpty(t, p.Notes.List())
}

func TestPropertiesOpenDomain(t *testing.T) {
	data := append(staff(), sparqltest.Link("http://example.org/data/stray", ex+"worksAt", company(0)))
	s, _ := resolve(t, sparqltest.New(data), func(p *Properties) {
		p.DataTypesForObjectProperty = true
		p.Filter = Filter{ExcludedProperties: []string{ex + "age"}}
	})
	prop := s.Property(ex + "worksAt")
	require.False(t, prop.ClosedDomain)
	require.True(t, prop.ClosedRange)
	require.Equal(t, int64(101), prop.TripleCount)
	require.Empty(t, prop.DataTypes)
	require.Nil(t, s.Property(ex+"age"))
}

func TestPropertiesToggles(t *testing.T) {
	s, _ := resolve(t, sparqltest.New(staff()), func(p *Properties) {
		p.Cardinalities = false
		p.DomainAndRangePairs = false
		p.PropertyRelations = false
		p.DataTypes = false
	})
	prop := s.Property(ex + "worksAt")
	require.Empty(t, prop.Pairs)
	require.Empty(t, prop.FollowedBy)
	require.Equal(t, schema.Unbounded, prop.MaxCardinality)
	require.Empty(t, s.Property(ex+"name").DataTypes)
}

// answering replaces the results of the named queries.
type answering struct {
	Runner
	results map[string]sparql.Result
}

func (a answering) Run(ctx context.Context, q sparql.Query, v sparql.Vars) (sparql.Result, error) {
	if res, ok := a.results[q.Name]; ok {
		return res, nil
	}
	return a.Runner.Run(ctx, q, v)
}

func TestPropertiesDataTypesFromEndpoint(t *testing.T) {
	count := func(n string) quad.Value {
		return quad.TypedString{Value: quad.String(n), Type: quad.IRI(xsd.NS + "integer")}
	}
	r := answering{
		Runner: sparqltest.New(staff()),
		results: map[string]sparql.Result{
			queries.NameDataTypes: {Vars: []string{"dt", "count"}, Rows: []sparql.Row{
				{"dt": quad.IRI(rdf.NS + "langString"), "count": count("2")},
				{"dt": quad.IRI(xsd.NS + "string"), "count": count("1")},
				{"count": count("3")},
			}},
			queries.NameLangStrings: {Vars: []string{"count"}, Rows: []sparql.Row{{"count": count("2")}}},
		},
	}
	h := newHierarchy(r.Runner.(*sparqltest.Endpoint))
	_, err := h.Build(context.Background())
	require.NoError(t, err)
	p := &Properties{Store: h.Store, Runner: r, Notes: h.Notes, DataTypes: true, Workers: 2}
	require.NoError(t, p.Resolve(context.Background()))

	nick := h.Store.Property(ex + "nick")
	require.Equal(t, []TypeCount{{ID: xsd.NS + "string", Count: 4}}, nick.DataTypes)
	require.Equal(t, int64(2), nick.LangStringCount)
}
