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
	"errors"
	"fmt"
	"testing"

	"github.com/cayleygraph/quad"
	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/sparqlschema/internal/sparqltest"
	"github.com/cayleygraph/sparqlschema/queries"
	"github.com/cayleygraph/sparqlschema/sparql"
)

const ex = "http://example.org/onto#"

// typed makes members prefix0..prefixN-1 of every class given.
func typed(prefix string, from, to int, classes ...string) []quad.Quad {
	var out []quad.Quad
	for i := from; i < to; i++ {
		s := fmt.Sprintf("http://example.org/data/%s%d", prefix, i)
		for _, c := range classes {
			out = append(out, sparqltest.Type(s, ex+c))
		}
	}
	return out
}

func join(parts ...[]quad.Quad) []quad.Quad {
	var out []quad.Quad
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func newHierarchy(ep *sparqltest.Endpoint) *Hierarchy {
	return &Hierarchy{
		Store:               NewStore(),
		Runner:              ep,
		Notes:               &Notes{},
		SubClassRelations:   true,
		MultipleInheritance: true,
		Workers:             4,
	}
}

// checkInvariants asserts acyclicity, count monotonicity and that every
// edge was backed by an empty containment query.
func checkInvariants(t *testing.T, h *Hierarchy, ep *sparqltest.Endpoint) {
	asked := make(map[[2]string]int)
	for _, c := range ep.CallsTo(queries.NameNotContained) {
		asked[[2]string{c.Vars.Class, c.Vars.Other}] = c.Rows + 1
	}
	for _, c := range h.Store.Classes() {
		require.False(t, h.Store.ReachableFromSuperclasses(c.ID, c.ID), "cycle through %s", c.ID)
		for _, sup := range h.Store.SuperClasses(c.ID) {
			s := h.Store.Class(sup)
			require.LessOrEqual(t, c.Count, s.Count, "%s below %s", c.ID, sup)
			n := asked[[2]string{sparql.Term(c.Term), sparql.Term(s.Term)}]
			require.Equal(t, 1, n, "edge %s -> %s without an empty containment query", c.ID, sup)
		}
	}
}

func TestHierarchyScenarioA(t *testing.T) {
	ep := sparqltest.New(join(
		typed("e", 0, 100, "Employee", "Person"),
		typed("p", 0, 50, "Person"),
	))
	h := newHierarchy(ep)
	nodes, err := h.Build(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	require.Equal(t, []string{ex + "Person"}, h.Store.SuperClasses(ex+"Employee"))
	require.Empty(t, h.Store.SuperClasses(ex+"Person"))
	require.Equal(t, int64(100), h.Store.Class(ex+"Employee").Count)
	require.Equal(t, int64(150), h.Store.Class(ex+"Person").Count)
	checkInvariants(t, h, ep)
}

func multipleInheritance() []quad.Quad {
	return join(
		typed("w", 0, 3, "WorkingStudent", "Employee", "Person", "Agent"),
		typed("e", 0, 5, "Employee", "Agent"),
		typed("p", 0, 7, "Person", "Agent"),
	)
}

func TestHierarchyMultipleInheritance(t *testing.T) {
	ep := sparqltest.New(multipleInheritance())
	h := newHierarchy(ep)
	_, err := h.Build(context.Background())
	require.NoError(t, err)

	require.Equal(t, []string{ex + "Employee", ex + "Person"}, h.Store.SuperClasses(ex+"WorkingStudent"))
	require.Equal(t, []string{ex + "Agent"}, h.Store.SuperClasses(ex+"Employee"))
	require.Equal(t, []string{ex + "Agent"}, h.Store.SuperClasses(ex+"Person"))
	require.Empty(t, h.Store.SuperClasses(ex+"Agent"))
	checkInvariants(t, h, ep)

	h = newHierarchy(sparqltest.New(multipleInheritance()))
	h.MultipleInheritance = false
	_, err = h.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{ex + "Employee"}, h.Store.SuperClasses(ex+"WorkingStudent"))
}

func TestHierarchyStrategiesAgree(t *testing.T) {
	data := join(
		multipleInheritance(),
		typed("x", 0, 4, "Vehicle"),
		typed("x", 0, 2, "Car"),
		typed("x", 1, 3, "Red"),
	)
	build := func(nd NeighborDiscoverer) *Store {
		ep := sparqltest.New(data)
		h := newHierarchy(ep)
		h.Neighbors = nd
		_, err := h.Build(context.Background())
		require.NoError(t, err)
		checkInvariants(t, h, ep)
		return h.Store
	}
	a := build(PerClassNeighbors{Workers: 2})
	b := build(AllIntersections{})
	for _, c := range a.Classes() {
		require.Equal(t, a.SuperClasses(c.ID), b.SuperClasses(c.ID), c.ID)
	}
	require.Equal(t, []string{ex + "Vehicle"}, a.SuperClasses(ex+"Car"))
	require.Equal(t, []string{ex + "Vehicle"}, a.SuperClasses(ex+"Red"))
}

func TestHierarchyEqualClasses(t *testing.T) {
	ep := sparqltest.New(typed("x", 0, 5, "A", "B"))
	h := newHierarchy(ep)
	_, err := h.Build(context.Background())
	require.NoError(t, err)
	require.Equal(t, []string{ex + "B"}, h.Store.SuperClasses(ex+"A"))
	require.Empty(t, h.Store.SuperClasses(ex+"B"))
	checkInvariants(t, h, ep)
}

func TestHierarchyFailedContainment(t *testing.T) {
	ep := sparqltest.New(join(
		typed("e", 0, 10, "Employee", "Person"),
		typed("p", 0, 5, "Person"),
	))
	ep.Fail = func(q sparql.Query, v sparql.Vars) (bool, error) {
		return q.Name == queries.NameNotContained, nil
	}
	h := newHierarchy(ep)
	_, err := h.Build(context.Background())
	require.NoError(t, err)
	require.Empty(t, h.Store.SuperClasses(ex+"Employee"), "a failed query is not proof of containment")
	require.NotEmpty(t, h.Notes.List())
}

func TestHierarchyFatalError(t *testing.T) {
	ep := sparqltest.New(typed("e", 0, 10, "Employee", "Person"))
	fatal := errors.New("endpoint gone")
	ep.Fail = func(q sparql.Query, v sparql.Vars) (bool, error) {
		if q.Name == queries.NameClassNeighbors {
			return false, fatal
		}
		return false, nil
	}
	_, err := newHierarchy(ep).Build(context.Background())
	require.Equal(t, fatal, err)
}

func TestHierarchyFilterAndLiterals(t *testing.T) {
	data := join(
		typed("e", 0, 3, "Employee", "Hidden"),
		[]quad.Quad{
			sparqltest.Literal("http://example.org/data/e0", "http://www.w3.org/1999/02/22-rdf-syntax-ns#type",
				quad.TypedString{Value: "gold", Type: ex + "Level"}),
			{Subject: quad.IRI("http://example.org/data/e1"), Predicate: quad.IRI("http://www.w3.org/1999/02/22-rdf-syntax-ns#type"), Object: quad.BNode("anon")},
		},
	)
	ep := sparqltest.New(data)
	h := newHierarchy(ep)
	h.Filter = Filter{ExcludedClasses: []string{ex + "Hidden"}}
	h.InstanceNamespaces = true
	h.Sample = 10
	_, err := h.Build(context.Background())
	require.NoError(t, err)

	var ids []string
	for _, c := range h.Store.Classes() {
		ids = append(ids, c.ID)
	}
	level := `"gold"^^<` + ex + `Level>`
	require.Equal(t, []string{level, ex + "Employee"}, ids)
	require.Equal(t, ex+"Level", h.Store.Class(level).DataType)
	require.Equal(t, "http://example.org/data/", h.Store.Class(ex+"Employee").InstanceNamespace)
	require.Equal(t, []string{ex + "Employee"}, h.Store.SuperClasses(level))
}
