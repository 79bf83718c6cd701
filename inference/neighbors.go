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
	"github.com/cayleygraph/sparqlschema/sparql"
)

// GraphNode is the working state of one class during hierarchy inference.
type GraphNode struct {
	ID    string
	Term  string
	Count int64
	// Neighbors are the classes sharing at least one member with this one,
	// in discovery order.
	Neighbors []string
}

// NeighborDiscoverer fills the Neighbors of every node. Neighbors unknown
// to nodes are dropped.
type NeighborDiscoverer interface {
	DiscoverNeighbors(ctx context.Context, r Runner, nodes []*GraphNode, notes *Notes) error
}

// PerClassNeighbors issues one query per class, running up to Workers
// queries at a time.
type PerClassNeighbors struct {
	Workers int
}

func (d PerClassNeighbors) DiscoverNeighbors(ctx context.Context, r Runner, nodes []*GraphNode, notes *Notes) error {
	known := indexNodes(nodes)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers(d.Workers))
	for _, n := range nodes {
		n := n
		g.Go(func() error {
			res, err := r.Run(ctx, queries.ClassNeighbors, sparql.Vars{Class: n.Term})
			if err != nil {
				return err
			}
			if res.Failed {
				notes.Add(n.ID, "neighbor discovery failed; class is treated as unrelated")
				return nil
			}
			seen := make(map[string]struct{})
			for _, row := range res.Rows {
				id, ok := ClassID(row.Value("c"))
				if !ok || id == n.ID {
					continue
				}
				if _, ok := known[id]; !ok {
					continue
				}
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				n.Neighbors = append(n.Neighbors, id)
			}
			clog.Debugf(2, "class %s: %d neighbors", n.ID, len(n.Neighbors))
			return nil
		})
	}
	return g.Wait()
}

// AllIntersections enumerates every intersecting pair with a single query.
type AllIntersections struct{}

func (AllIntersections) DiscoverNeighbors(ctx context.Context, r Runner, nodes []*GraphNode, notes *Notes) error {
	known := indexNodes(nodes)
	res, err := r.Run(ctx, queries.AllIntersections, sparql.Vars{})
	if err != nil {
		return err
	}
	if res.Failed {
		notes.Add("", "class intersection query failed; classes are treated as unrelated")
		return nil
	}
	seen := make(map[[2]string]struct{})
	for _, row := range res.Rows {
		a, ok1 := ClassID(row.Value("c"))
		b, ok2 := ClassID(row.Value("c2"))
		if !ok1 || !ok2 || a == b {
			continue
		}
		na, nb := known[a], known[b]
		if na == nil || nb == nil {
			continue
		}
		// endpoints may return only one order of each pair
		for _, e := range [][2]*GraphNode{{na, nb}, {nb, na}} {
			key := [2]string{e[0].ID, e[1].ID}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			e[0].Neighbors = append(e[0].Neighbors, e[1].ID)
		}
	}
	return nil
}

func indexNodes(nodes []*GraphNode) map[string]*GraphNode {
	m := make(map[string]*GraphNode, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return m
}

func workers(n int) int {
	if n < 1 {
		return 1
	}
	return n
}

// SortGraph orders nodes by ascending neighbor count, then ascending
// member count, then id. The least ambiguous classes come first.
func SortGraph(nodes []*GraphNode) {
	sort.Slice(nodes, func(i, j int) bool {
		a, b := nodes[i], nodes[j]
		if len(a.Neighbors) != len(b.Neighbors) {
			return len(a.Neighbors) < len(b.Neighbors)
		}
		if a.Count != b.Count {
			return a.Count < b.Count
		}
		return a.ID < b.ID
	})
}
