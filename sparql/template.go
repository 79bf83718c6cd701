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

package sparql

import (
	"fmt"
	"strings"
	"text/template"
)

// TimeoutClass selects which configured timeout applies to a query.
type TimeoutClass int

const (
	// Small is used for probes expected to return quickly (containment,
	// cardinality, closure checks).
	Small TimeoutClass = iota
	// Large is used for enumerations and aggregations over the whole dataset.
	Large
)

func (t TimeoutClass) String() string {
	if t == Large {
		return "large"
	}
	return "small"
}

// Query is a named, parameterized query. Template is the built-in text; it
// is also the fallback when a user-supplied override cannot be used.
type Query struct {
	Name     string
	Template string
	Timeout  TimeoutClass
}

// Vars are substituted into query templates. Term-valued fields hold
// rendered query terms (see Term), not raw IRIs.
type Vars struct {
	// From is a FROM clause selecting the named graph, or empty.
	From string
	// ClassificationProperty is the predicate treated as class membership.
	ClassificationProperty string

	Class    string
	Other    string
	Property string
	Limit    int
}

func render(name, text string, vars Vars) (string, error) {
	t, err := template.New(name).Parse(text)
	if err != nil {
		return "", err
	}
	var buf strings.Builder
	if err = t.Execute(&buf, vars); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// Render substitutes vars into the query template.
func (q Query) Render(vars Vars) (string, error) {
	s, err := render(q.Name, q.Template, vars)
	if err != nil {
		return "", fmt.Errorf("sparql: query %q: %w", q.Name, err)
	}
	return s, nil
}

// FromClause renders a FROM clause for graph, or nothing for the default graph.
func FromClause(graph string) string {
	if graph == "" {
		return ""
	}
	return "FROM <" + graph + ">"
}
