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
	"sort"

	"github.com/cayleygraph/sparqlschema/schema"
)

// Property is one inferred property. A property node is owned by the
// worker resolving it.
type Property struct {
	ID                string
	TripleCount       int64
	ObjectTripleCount int64
	IsObjectProperty  bool

	Domains []*ClassCount
	Ranges  []*ClassCount
	Pairs   []*Pair

	DataTypes       []TypeCount
	LangStringCount int64

	MinCardinality        int
	MaxCardinality        int
	MaxInverseCardinality int

	ClosedDomain bool
	ClosedRange  bool

	FollowedBy     []TypeCount
	CommonSubjects []TypeCount
	CommonObjects  []TypeCount
}

func newProperty(id string, count int64) *Property {
	return &Property{
		ID:                    id,
		TripleCount:           count,
		MaxCardinality:        schema.Unbounded,
		MaxInverseCardinality: schema.Unbounded,
	}
}

// ClassCount is a domain or range candidate of a property.
type ClassCount struct {
	ClassID string
	// Count is the number of triples restricted to members of the class.
	Count int64
	// ObjectCount is the restricted number of resource-valued triples.
	ObjectCount int64
	// Valid is set when no more specific candidate has the same count.
	Valid bool

	MinCardinality        int
	MaxInverseCardinality int
}

// Pair is a (domain, range) combination of an object property.
type Pair struct {
	Domain string
	Range  string
	Count  int64
	Valid  bool
}

// TypeCount is an identifier with a triple count: a datatype, or a related
// property.
type TypeCount struct {
	ID    string
	Count int64
}

// ValidDomains returns the valid domain candidates.
func (p *Property) ValidDomains() []*ClassCount { return validOnly(p.Domains) }

// ValidRanges returns the valid range candidates.
func (p *Property) ValidRanges() []*ClassCount { return validOnly(p.Ranges) }

func validOnly(in []*ClassCount) []*ClassCount {
	var out []*ClassCount
	for _, c := range in {
		if c.Valid {
			out = append(out, c)
		}
	}
	return out
}

// validateClasses marks a candidate invalid when a strictly more specific
// candidate carries the same count: the data cannot tell the two apart and
// the subclass is kept.
func (s *Store) validateClasses(cands []*ClassCount) {
	for _, d := range cands {
		d.Valid = true
		for _, o := range cands {
			if o.ClassID != d.ClassID && o.Count == d.Count && s.IsSubClassOf(o.ClassID, d.ClassID) {
				d.Valid = false
				break
			}
		}
	}
}

// validatePairs applies the same rule to pairs: a pair is invalid when a
// different pair below it on both sides has the same count.
func (s *Store) validatePairs(pairs []*Pair) {
	for _, p := range pairs {
		p.Valid = true
		for _, o := range pairs {
			if o == p || o.Count != p.Count {
				continue
			}
			if o.Domain == p.Domain && o.Range == p.Range {
				continue
			}
			if s.IsSubClassOf(o.Domain, p.Domain) && s.IsSubClassOf(o.Range, p.Range) {
				p.Valid = false
				break
			}
		}
	}
}

func sortClassCounts(cs []*ClassCount) {
	sort.Slice(cs, func(i, j int) bool {
		if cs[i].Count != cs[j].Count {
			return cs[i].Count > cs[j].Count
		}
		return cs[i].ClassID < cs[j].ClassID
	})
}

func sortTypeCounts(ts []TypeCount) {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Count != ts[j].Count {
			return ts[i].Count > ts[j].Count
		}
		return ts[i].ID < ts[j].ID
	})
}
