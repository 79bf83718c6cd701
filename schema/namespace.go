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
	"sort"
	"strconv"
	"strings"

	"github.com/cayleygraph/quad/voc"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/cayleygraph/quad/voc/rdfs"
	"github.com/cayleygraph/quad/voc/xsd"

	"github.com/cayleygraph/sparqlschema/sparql"
	"github.com/cayleygraph/sparqlschema/voc/owl"
)

// MostCommonNamespace returns the namespace shared by most of the given
// IRIs. Ties go to the lexically smallest namespace; IRIs without a
// namespace are ignored.
func MostCommonNamespace(iris []string) string {
	counts := make(map[string]int)
	for _, iri := range iris {
		if ns, _ := sparql.SplitIRI(iri); ns != "" {
			counts[ns]++
		}
	}
	var (
		best string
		max  int
	)
	for ns, n := range counts {
		if n > max || (n == max && ns < best) {
			best, max = ns, n
		}
	}
	return best
}

// KnownNamespaces lists the vocabularies abbreviated with their usual prefix.
func KnownNamespaces() *voc.Namespaces {
	var ns voc.Namespaces
	for _, n := range []voc.Namespace{
		{Full: rdf.NS, Prefix: rdf.Prefix},
		{Full: rdfs.NS, Prefix: rdfs.Prefix},
		{Full: xsd.NS, Prefix: xsd.Prefix},
		{Full: owl.NS, Prefix: owl.Prefix},
	} {
		ns.Register(n)
	}
	return &ns
}

// Prefixes assigns a prefix to every namespace in use. Custom maps prefixes
// to namespaces and takes precedence over known vocabularies; the rest get
// generated prefixes n0, n1, ... in namespace order.
func Prefixes(used []string, known *voc.Namespaces, custom map[string]string) []Prefix {
	byNS := make(map[string]string)
	taken := make(map[string]bool)
	if known != nil {
		for _, n := range known.List() {
			p := strings.TrimSuffix(n.Prefix, ":")
			byNS[n.Full] = p
			taken[p] = true
		}
	}
	for p, ns := range custom {
		p = strings.TrimSuffix(p, ":")
		byNS[ns] = p
		taken[p] = true
	}
	used = dedup(used)
	out := make([]Prefix, 0, len(used))
	next := 0
	for _, ns := range used {
		if ns == "" {
			continue
		}
		p, ok := byNS[ns]
		if !ok {
			for {
				p = "n" + strconv.Itoa(next)
				next++
				if !taken[p] {
					break
				}
			}
			byNS[ns] = p
			taken[p] = true
		}
		out = append(out, Prefix{Prefix: p, Namespace: ns})
	}
	return out
}

// Namespaces returns the distinct namespaces of the document's classes,
// properties and datatypes in lexical order.
func (s *Schema) Namespaces() []string {
	var all []string
	for _, c := range s.Classes {
		all = append(all, c.Namespace)
	}
	for _, p := range s.Properties {
		all = append(all, p.Namespace)
		for _, dt := range p.DataTypes {
			ns, _ := sparql.SplitIRI(dt.DataType)
			all = append(all, ns)
		}
	}
	return dedup(all)
}

func dedup(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if _, ok := seen[s]; ok || s == "" {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
