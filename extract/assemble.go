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

package extract

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/cayleygraph/sparqlschema/inference"
	"github.com/cayleygraph/sparqlschema/schema"
	"github.com/cayleygraph/sparqlschema/sparql"
)

// Assemble folds the inferred model into a document. Only valid domain,
// range and pair entries are emitted.
func Assemble(name string, store *inference.Store, prefixes map[string]string) *schema.Schema {
	doc := &schema.Schema{
		Name:       name,
		Classes:    []schema.Class{},
		Properties: []schema.Property{},
		Parameters: []schema.Parameter{},
	}
	var iris []string
	for _, c := range store.Classes() {
		sc := schema.Class{
			ID:                c.ID,
			LocalName:         c.ID,
			SuperClasses:      store.SuperClasses(c.ID),
			InstanceCount:     c.Count,
			DataType:          c.DataType,
			InstanceNamespace: c.InstanceNamespace,
		}
		if c.DataType == "" {
			sc.Namespace, sc.LocalName = sparql.SplitIRI(c.ID)
			iris = append(iris, c.ID)
		}
		doc.Classes = append(doc.Classes, sc)
	}
	for _, p := range store.Properties() {
		doc.Properties = append(doc.Properties, property(p))
		iris = append(iris, p.ID)
	}
	doc.DefaultNamespace = schema.MostCommonNamespace(iris)
	doc.Prefixes = schema.Prefixes(doc.Namespaces(), schema.KnownNamespaces(), prefixes)
	return doc
}

func property(p *inference.Property) schema.Property {
	sp := schema.Property{
		ID:                    p.ID,
		TripleCount:           p.TripleCount,
		ObjectTripleCount:     p.ObjectTripleCount,
		IsObjectProperty:      p.IsObjectProperty,
		DomainClasses:         []schema.DomainClass{},
		RangeClasses:          []schema.RangeClass{},
		ClassPairs:            []schema.ClassPair{},
		DataTypes:             []schema.DataType{},
		LangStringCount:       p.LangStringCount,
		MinCardinality:        p.MinCardinality,
		MaxCardinality:        p.MaxCardinality,
		MaxInverseCardinality: p.MaxInverseCardinality,
		ClosedDomain:          p.ClosedDomain,
		ClosedRange:           p.ClosedRange,
		FollowedBy:            relations(p.FollowedBy),
		CommonSubjects:        relations(p.CommonSubjects),
		CommonObjects:         relations(p.CommonObjects),
	}
	sp.Namespace, sp.LocalName = sparql.SplitIRI(p.ID)

	domains, ranges := p.ValidDomains(), p.ValidRanges()
	domainIdx, rangeIdx := importance(domains), importance(ranges)
	for _, d := range domains {
		sp.DomainClasses = append(sp.DomainClasses, schema.DomainClass{
			ClassID:           d.ClassID,
			TripleCount:       d.Count,
			ObjectTripleCount: d.ObjectCount,
			MinCardinality:    d.MinCardinality,
			ImportanceIndex:   domainIdx[d.ClassID],
		})
	}
	for _, r := range ranges {
		sp.RangeClasses = append(sp.RangeClasses, schema.RangeClass{
			ClassID:               r.ClassID,
			TripleCount:           r.Count,
			MaxInverseCardinality: r.MaxInverseCardinality,
			ImportanceIndex:       rangeIdx[r.ClassID],
		})
	}
	for _, pr := range p.Pairs {
		if !pr.Valid {
			continue
		}
		sp.ClassPairs = append(sp.ClassPairs, schema.ClassPair{
			SourceClass:           pr.Domain,
			TargetClass:           pr.Range,
			TripleCount:           pr.Count,
			SourceImportanceIndex: domainIdx[pr.Domain],
			TargetImportanceIndex: rangeIdx[pr.Range],
		})
	}
	for _, dt := range p.DataTypes {
		sp.DataTypes = append(sp.DataTypes, schema.DataType{DataType: dt.ID, TripleCount: dt.Count})
	}
	return sp
}

// importance gives index 1 to the candidate with the largest count and 0
// to the others. Candidates arrive ordered by descending count.
func importance(cs []*inference.ClassCount) map[string]int {
	idx := make(map[string]int, len(cs))
	for i, c := range cs {
		if i == 0 {
			idx[c.ClassID] = 1
		} else {
			idx[c.ClassID] = 0
		}
	}
	return idx
}

func relations(in []inference.TypeCount) []schema.PropertyRelation {
	if len(in) == 0 {
		return nil
	}
	out := make([]schema.PropertyRelation, 0, len(in))
	for _, r := range in {
		out = append(out, schema.PropertyRelation{PropertyID: r.ID, TripleCount: r.Count})
	}
	return out
}

func (e *Extractor) parameters(id uuid.UUID, start time.Time) []schema.Parameter {
	c := e.cfg
	params := []schema.Parameter{
		{Name: "run_id", Value: id.String()},
		{Name: "started", Value: start.UTC().Format(time.RFC3339)},
		{Name: "duration", Value: time.Since(start).Round(time.Millisecond).String()},
		{Name: "endpoint", Value: c.Endpoint},
		{Name: "graph", Value: c.Graph},
		{Name: "method", Value: c.Method},
		{Name: "classification_property", Value: c.ClassificationProperty},
		{Name: "neighbor_strategy", Value: c.NeighborStrategy},
		{Name: "workers", Value: strconv.Itoa(c.Workers)},
		{Name: "calculate_subclass_relations", Value: strconv.FormatBool(c.CalculateSubClassRelations)},
		{Name: "calculate_multiple_inheritance", Value: strconv.FormatBool(c.CalculateMultipleInheritance)},
		{Name: "calculate_property_property_relations", Value: strconv.FormatBool(c.CalculatePropertyPropertyRelations)},
		{Name: "calculate_domain_range_pairs", Value: strconv.FormatBool(c.CalculateDomainAndRangePairs)},
		{Name: "calculate_cardinalities", Value: strconv.FormatBool(c.CalculateCardinalities)},
		{Name: "calculate_data_types", Value: strconv.FormatBool(c.CalculateDataTypes)},
		{Name: "calculate_instance_namespaces", Value: strconv.FormatBool(c.CalculateInstanceNamespaces)},
	}
	if e.exec != nil {
		st := e.exec.Stats()
		params = append(params,
			schema.Parameter{Name: "queries", Value: strconv.FormatInt(st.Queries, 10)},
			schema.Parameter{Name: "failed_queries", Value: strconv.FormatInt(st.Failed, 10)},
			schema.Parameter{Name: "retries", Value: strconv.FormatInt(st.Retries, 10)},
			schema.Parameter{Name: "template_fallbacks", Value: strconv.FormatInt(st.Fallbacks, 10)},
			schema.Parameter{Name: "health_wait", Value: st.Waited.String()},
		)
	}
	return params
}
