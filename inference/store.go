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

// Package inference derives a class hierarchy and a property model from the
// answers of a SPARQL endpoint.
//
// Classes are kept in a Store keyed by identifier: the IRI for resource
// classes, the rendered term for literal-valued ones. Superclass and
// subclass sets are maintained together and never form a cycle. The root
// class owl:Thing is implicit: every class without a superclass sits
// directly below it and the root itself never gains a superclass.
package inference

import (
	"sort"

	"github.com/cayleygraph/quad"

	"github.com/cayleygraph/sparqlschema/sparql"
	"github.com/cayleygraph/sparqlschema/voc/owl"
)

// Root is the identifier of the implicit root class.
const Root = owl.Thing

// Class is one inferred class.
type Class struct {
	ID string
	// Term is the value as bound by the endpoint.
	Term quad.Value
	// Count is the number of members.
	Count int64
	// DataType is set for literal-valued classes.
	DataType string
	// InstanceNamespace is the most common namespace of sampled members.
	InstanceNamespace string

	super map[string]struct{}
	sub   map[string]struct{}
}

func newClass(id string, term quad.Value, count int64) *Class {
	return &Class{
		ID:    id,
		Term:  term,
		Count: count,
		super: map[string]struct{}{},
		sub:   map[string]struct{}{},
	}
}

// Store holds the classes and properties of one extraction run.
//
// Classes are added and linked by the hierarchy engine only; once the
// hierarchy is built the class side is read-only and may be shared by
// property workers.
type Store struct {
	classes    map[string]*Class
	properties map[string]*Property
}

// NewStore creates a store holding only the root class.
func NewStore() *Store {
	s := &Store{
		classes:    map[string]*Class{},
		properties: map[string]*Property{},
	}
	s.classes[Root] = newClass(Root, quad.IRI(Root), 0)
	return s
}

// ClassID returns the store identifier for a class bound by the endpoint.
// Blank nodes cannot be addressed by a later query and are rejected.
func ClassID(v quad.Value) (string, bool) {
	switch v := v.(type) {
	case nil, quad.BNode:
		return "", false
	case quad.IRI:
		return string(v), true
	}
	return sparql.Term(v), true
}

// AddClass adds a class or updates the count of an existing one.
func (s *Store) AddClass(id string, term quad.Value, count int64) *Class {
	if c, ok := s.classes[id]; ok {
		c.Count = count
		return c
	}
	c := newClass(id, term, count)
	s.classes[id] = c
	return c
}

// Class returns the class with the given id, or nil.
func (s *Store) Class(id string) *Class {
	return s.classes[id]
}

// Classes returns every class except the root, ordered by id.
func (s *Store) Classes() []*Class {
	out := make([]*Class, 0, len(s.classes))
	for id, c := range s.classes {
		if id != Root {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Link records super as a direct superclass of sub. It reports false and
// changes nothing when either class is unknown, the two are the same, sub
// is the root, the edge exists, or the edge would close a cycle. Linking
// to the root is a no-op since the root is implicit.
func (s *Store) Link(sub, super string) bool {
	if sub == super || sub == Root || super == Root {
		return false
	}
	c, p := s.classes[sub], s.classes[super]
	if c == nil || p == nil {
		return false
	}
	if _, ok := c.super[super]; ok {
		return false
	}
	if s.HasCyclicDependency(sub, super) {
		return false
	}
	c.super[super] = struct{}{}
	p.sub[sub] = struct{}{}
	return true
}

// HasCyclicDependency reports whether making super a superclass of sub
// would create a cycle, that is whether sub is already above super.
func (s *Store) HasCyclicDependency(sub, super string) bool {
	if sub == super {
		return true
	}
	return s.ReachableFromSuperclasses(super, sub)
}

// IsSubClassOf reports whether class equals super or lies below it.
// Every class is a subclass of the root.
func (s *Store) IsSubClassOf(class, super string) bool {
	if class == super || super == Root {
		return true
	}
	return s.ReachableFromSuperclasses(class, super)
}

// ReachableFromSuperclasses reports whether target is found by walking the
// superclass chain upwards from class.
func (s *Store) ReachableFromSuperclasses(class, target string) bool {
	return s.reachable(class, target, func(c *Class) map[string]struct{} { return c.super })
}

// ReachableFromSubclasses reports whether target is found by walking the
// subclass chain downwards from class.
func (s *Store) ReachableFromSubclasses(class, target string) bool {
	return s.reachable(class, target, func(c *Class) map[string]struct{} { return c.sub })
}

func (s *Store) reachable(from, target string, next func(c *Class) map[string]struct{}) bool {
	c := s.classes[from]
	if c == nil {
		return false
	}
	for id := range next(c) {
		if id == target || s.reachable(id, target, next) {
			return true
		}
	}
	return false
}

// SuperClasses returns the direct superclasses of class, ordered by id.
// Classes placed directly below the root have none.
func (s *Store) SuperClasses(class string) []string {
	c := s.classes[class]
	if c == nil {
		return nil
	}
	return sortedKeys(c.super)
}

// SubClasses returns the direct subclasses of class, ordered by id.
func (s *Store) SubClasses(class string) []string {
	c := s.classes[class]
	if c == nil {
		return nil
	}
	return sortedKeys(c.sub)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// AddProperty adds a property or updates the triple count of an existing one.
func (s *Store) AddProperty(id string, count int64) *Property {
	if p, ok := s.properties[id]; ok {
		p.TripleCount = count
		return p
	}
	p := newProperty(id, count)
	s.properties[id] = p
	return p
}

// Property returns the property with the given id, or nil.
func (s *Store) Property(id string) *Property {
	return s.properties[id]
}

// Properties returns every property ordered by id.
func (s *Store) Properties() []*Property {
	out := make([]*Property, 0, len(s.properties))
	for _, p := range s.properties {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
