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

package queries

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/sparqlschema/sparql"
)

func TestTemplatesRender(t *testing.T) {
	vars := sparql.Vars{
		From:                   sparql.FromClause("http://example.org/graph"),
		ClassificationProperty: "<http://www.w3.org/1999/02/22-rdf-syntax-ns#type>",
		Class:                  "<http://example.org/A>",
		Other:                  "<http://example.org/B>",
		Property:               "<http://example.org/p>",
		Limit:                  10,
	}
	seen := make(map[string]bool)
	for _, q := range All() {
		require.False(t, seen[q.Name], "duplicate query name %q", q.Name)
		seen[q.Name] = true
		require.Equal(t, strings.ToLower(q.Name), q.Name, "override keys are case-folded")

		text, err := q.Render(vars)
		require.NoError(t, err, q.Name)
		require.NotContains(t, text, "{{", q.Name)
		require.NotContains(t, text, "<no value>", q.Name)
		require.Contains(t, text, "FROM <http://example.org/graph>", q.Name)
	}
}
