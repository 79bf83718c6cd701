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

package schema

import (
	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"

	"github.com/cayleygraph/sparqlschema/voc/owl"
)

// Quads describes the document in RDFS and OWL terms. Literal-valued
// classes have no IRI and are left out.
func Quads(s *Schema, label quad.Value) []quad.Quad {
	var out []quad.Quad
	add := func(sub string, pred string, obj quad.IRI) {
		out = append(out, quad.Quad{
			Subject:   quad.IRI(sub).Full(),
			Predicate: quad.IRI(pred).Full(),
			Object:    obj.Full(),
			Label:     label,
		})
	}
	literal := make(map[string]bool)
	for _, c := range s.Classes {
		if c.DataType != "" {
			literal[c.ID] = true
		}
	}
	if s.Name != "" {
		add(s.Name, rdf.Type, quad.IRI(owl.Ontology))
	}
	for _, c := range s.Classes {
		if literal[c.ID] {
			continue
		}
		add(c.ID, rdf.Type, quad.IRI(owl.Class))
		for _, sup := range c.SuperClasses {
			add(c.ID, rdfs.SubClassOf, quad.IRI(sup))
		}
	}
	for _, p := range s.Properties {
		if p.IsObjectProperty {
			add(p.ID, rdf.Type, quad.IRI(owl.ObjectProperty))
		} else {
			add(p.ID, rdf.Type, quad.IRI(owl.DatatypeProperty))
		}
		if p.MaxCardinality == 1 {
			add(p.ID, rdf.Type, quad.IRI(owl.FunctionalProperty))
		}
		if p.IsObjectProperty && p.MaxInverseCardinality == 1 {
			add(p.ID, rdf.Type, quad.IRI(owl.InverseFunctionalProperty))
		}
		for _, d := range p.DomainClasses {
			if !literal[d.ClassID] {
				add(p.ID, rdfs.Domain, quad.IRI(d.ClassID))
			}
		}
		for _, r := range p.RangeClasses {
			if !literal[r.ClassID] {
				add(p.ID, rdfs.Range, quad.IRI(r.ClassID))
			}
		}
		if !p.IsObjectProperty {
			for _, dt := range p.DataTypes {
				add(p.ID, rdfs.Range, quad.IRI(dt.DataType))
			}
		}
	}
	return out
}

// WriteQuads writes the RDF description of the document to w.
func WriteQuads(w quad.Writer, s *Schema, label quad.Value) error {
	_, err := w.WriteQuads(Quads(s, label))
	return err
}
