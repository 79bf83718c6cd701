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

	"github.com/cayleygraph/sparqlschema/queries"
	"github.com/cayleygraph/sparqlschema/schema"
	"github.com/cayleygraph/sparqlschema/sparql"
)

// cardinalities computes the maximum cardinality, the minimum cardinality
// per valid domain and, for object properties, the maximum inverse
// cardinality overall and per valid range.
//
// Maximums are 1 when no counter-example exists and Unbounded otherwise.
// Minimums are 1 when every member of the class has a value. A failed
// query leaves the weaker value in place.
func (p *Properties) cardinalities(ctx context.Context, prop *Property) error {
	one, err := p.noneFound(ctx, prop, queries.MultipleValues, sparql.Vars{})
	if err != nil {
		return err
	}
	prop.MaxCardinality = maxCard(one)

	domains := prop.ValidDomains()
	prop.MinCardinality = 0
	for i, d := range domains {
		full, err := p.noneFound(ctx, prop, queries.MissingValue, sparql.Vars{Class: p.term(d.ClassID)})
		if err != nil {
			return err
		}
		d.MinCardinality = 0
		if full {
			d.MinCardinality = 1
		}
		if i == 0 || d.MinCardinality < prop.MinCardinality {
			prop.MinCardinality = d.MinCardinality
		}
	}

	if !prop.IsObjectProperty {
		return nil
	}
	one, err = p.noneFound(ctx, prop, queries.SharedObject, sparql.Vars{})
	if err != nil {
		return err
	}
	prop.MaxInverseCardinality = maxCard(one)
	for _, r := range prop.ValidRanges() {
		one, err := p.noneFound(ctx, prop, queries.SharedObjectInClass, sparql.Vars{Class: p.term(r.ClassID)})
		if err != nil {
			return err
		}
		r.MaxInverseCardinality = maxCard(one)
	}
	return nil
}

// noneFound reports whether q answered successfully with no rows.
func (p *Properties) noneFound(ctx context.Context, prop *Property, q sparql.Query, vars sparql.Vars) (bool, error) {
	res, ok, err := p.run(ctx, prop, q, vars)
	if err != nil {
		return false, err
	}
	return ok && res.Empty(), nil
}

func maxCard(one bool) int {
	if one {
		return 1
	}
	return schema.Unbounded
}
