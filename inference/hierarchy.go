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
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/cayleygraph/sparqlschema/clog"
	"github.com/cayleygraph/sparqlschema/queries"
	"github.com/cayleygraph/sparqlschema/schema"
	"github.com/cayleygraph/sparqlschema/sparql"
)

// Hierarchy builds the class set and the superclass relation of a Store.
type Hierarchy struct {
	Store  *Store
	Runner Runner
	Notes  *Notes
	Filter Filter

	// Neighbors finds intersecting classes; PerClassNeighbors by default.
	Neighbors NeighborDiscoverer

	SubClassRelations   bool
	MultipleInheritance bool
	InstanceNamespaces  bool
	// Sample is the number of members inspected per class for its
	// instance namespace.
	Sample  int
	Workers int
}

// Build discovers the classes and links every class to its superclasses.
// The returned nodes are in assignment order.
func (h *Hierarchy) Build(ctx context.Context) ([]*GraphNode, error) {
	nodes, err := h.discover(ctx)
	if err != nil || len(nodes) == 0 {
		return nodes, err
	}
	if h.InstanceNamespaces {
		if err = h.instanceNamespaces(ctx); err != nil {
			return nodes, err
		}
	}
	if !h.SubClassRelations {
		return nodes, nil
	}
	nd := h.Neighbors
	if nd == nil {
		nd = PerClassNeighbors{Workers: h.Workers}
	}
	if err = nd.DiscoverNeighbors(ctx, h.Runner, nodes, h.Notes); err != nil {
		return nodes, err
	}
	SortGraph(nodes)
	for _, n := range nodes {
		if _, err = h.assign(ctx, n, h.candidates(n, n.Neighbors), nil); err != nil {
			return nodes, err
		}
	}
	if h.MultipleInheritance {
		if err = h.repair(ctx, nodes); err != nil {
			return nodes, err
		}
	}
	return nodes, nil
}

func (h *Hierarchy) discover(ctx context.Context) ([]*GraphNode, error) {
	res, err := h.Runner.Run(ctx, queries.Classes, sparql.Vars{})
	if err != nil {
		return nil, err
	}
	if res.Failed {
		h.Notes.Add("", "class discovery failed; the schema has no classes")
		return nil, nil
	}
	var nodes []*GraphNode
	for _, row := range res.Rows {
		v := row.Value("c")
		id, ok := ClassID(v)
		if !ok || id == Root || !h.Filter.Class(id) {
			continue
		}
		if h.Store.Class(id) != nil {
			continue
		}
		c := h.Store.AddClass(id, v, row.Int("count"))
		if _, isIRI := row.IRI("c"); !isIRI {
			c.DataType = string(row.Datatype("c"))
		}
		nodes = append(nodes, &GraphNode{ID: id, Term: sparql.Term(v), Count: c.Count})
	}
	clog.Infof("discovered %d classes", len(nodes))
	return nodes, nil
}

// candidates returns the neighbors of n as nodes ordered by ascending
// member count, then id.
func (h *Hierarchy) candidates(n *GraphNode, ids []string) []*Class {
	out := make([]*Class, 0, len(ids))
	for _, id := range ids {
		if c := h.Store.Class(id); c != nil && id != n.ID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count < out[j].Count
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// assign links n to the first candidate that contains all of its members.
// Candidates with fewer members, existing ancestors and candidates that
// would close a cycle are skipped without a query. Probed candidates are
// added to tried when it is not nil.
func (h *Hierarchy) assign(ctx context.Context, n *GraphNode, cands []*Class, tried map[string]struct{}) (bool, error) {
	for _, c := range cands {
		if c.Count < n.Count {
			continue
		}
		if h.Store.ReachableFromSuperclasses(n.ID, c.ID) || h.Store.HasCyclicDependency(n.ID, c.ID) {
			continue
		}
		if tried != nil {
			tried[c.ID] = struct{}{}
		}
		res, err := h.Runner.Run(ctx, queries.NotContained, sparql.Vars{
			Class: n.Term,
			Other: sparql.Term(c.Term),
		})
		if err != nil {
			return false, err
		}
		if res.Failed {
			h.Notes.Add(n.ID, "containment check against %s failed; candidate skipped", c.ID)
			continue
		}
		if !res.Empty() {
			continue
		}
		if h.Store.Link(n.ID, c.ID) {
			clog.Debugf(2, "class %s: superclass %s", n.ID, c.ID)
			return true, nil
		}
	}
	return false, nil
}

// repair revisits classes with a superclass and more than two neighbors,
// largest first. Neighbors reachable neither upwards nor downwards are
// offered to assign again, until none is left or no new link is made.
func (h *Hierarchy) repair(ctx context.Context, nodes []*GraphNode) error {
	order := append([]*GraphNode(nil), nodes...)
	sort.SliceStable(order, func(i, j int) bool {
		if order[i].Count != order[j].Count {
			return order[i].Count > order[j].Count
		}
		return order[i].ID < order[j].ID
	})
	for _, n := range order {
		// Counting the implicit root, a class without SuperClasses entries
		// has exactly one superclass.
		if len(h.Store.SuperClasses(n.ID)) == 0 || len(n.Neighbors) <= 2 {
			continue
		}
		tried := make(map[string]struct{})
		for i := 0; i <= len(n.Neighbors); i++ {
			var open []string
			for _, id := range n.Neighbors {
				if _, ok := tried[id]; ok {
					continue
				}
				if h.Store.ReachableFromSuperclasses(n.ID, id) || h.Store.ReachableFromSubclasses(n.ID, id) {
					continue
				}
				open = append(open, id)
			}
			if len(open) == 0 {
				break
			}
			linked, err := h.assign(ctx, n, h.candidates(n, open), tried)
			if err != nil {
				return err
			}
			if !linked {
				break
			}
		}
		if len(h.Store.SuperClasses(n.ID)) > 1 {
			clog.Debugf(1, "class %s: superclasses %v", n.ID, h.Store.SuperClasses(n.ID))
		}
	}
	return nil
}

// instanceNamespaces samples members of every class and records their most
// common namespace.
func (h *Hierarchy) instanceNamespaces(ctx context.Context) error {
	classes := h.Store.Classes()
	found := make([]string, len(classes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(h.Workers))
	for i, c := range classes {
		i, c := i, c
		if c.DataType != "" {
			continue
		}
		g.Go(func() error {
			res, err := h.Runner.Run(ctx, queries.Instances, sparql.Vars{Class: sparql.Term(c.Term), Limit: h.Sample})
			if err != nil {
				return err
			}
			if res.Failed {
				h.Notes.Add(c.ID, "instance sampling failed")
				return nil
			}
			iris := make([]string, 0, len(res.Rows))
			for _, row := range res.Rows {
				if iri, ok := row.IRI("x"); ok {
					iris = append(iris, string(iri))
				}
			}
			found[i] = schema.MostCommonNamespace(iris)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for i, c := range classes {
		c.InstanceNamespace = found[i]
	}
	return nil
}
