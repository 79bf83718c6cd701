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
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/xsd"
)

// ContentType is the result format requested from endpoints.
const ContentType = "application/sparql-results+json"

// Row is a single solution: variable name to bound value. Unbound
// variables are absent.
type Row map[string]quad.Value

// Result is the outcome of a query. Failed is set when the query could not
// be answered after all retries; Rows is empty in that case.
type Result struct {
	Vars   []string
	Rows   []Row
	Failed bool
}

// Empty reports whether the result carries no rows.
func (r Result) Empty() bool { return len(r.Rows) == 0 }

// Resource is the view of an IRI binding.
type Resource struct {
	Full      string
	Namespace string
	LocalName string
}

// Value returns the raw binding for name, or nil.
func (r Row) Value(name string) quad.Value { return r[name] }

// IRI returns the binding for name if it is an IRI.
func (r Row) IRI(name string) (quad.IRI, bool) {
	v, ok := r[name].(quad.IRI)
	return v, ok
}

// Resource returns the binding for name split into namespace and local name.
func (r Row) Resource(name string) (Resource, bool) {
	iri, ok := r.IRI(name)
	if !ok {
		return Resource{}, false
	}
	ns, local := SplitIRI(string(iri))
	return Resource{Full: string(iri), Namespace: ns, LocalName: local}, true
}

// Text returns the lexical form of the binding for name: the IRI itself,
// the blank node label or the literal value.
func (r Row) Text(name string) string {
	switch v := r[name].(type) {
	case nil:
		return ""
	case quad.IRI:
		return string(v)
	case quad.BNode:
		return string(v)
	case quad.String:
		return string(v)
	case quad.TypedString:
		return string(v.Value)
	case quad.LangString:
		return string(v.Value)
	default:
		return v.String()
	}
}

// Datatype returns the datatype of a literal binding. Language-tagged and
// plain literals report an empty datatype.
func (r Row) Datatype(name string) quad.IRI {
	if v, ok := r[name].(quad.TypedString); ok {
		return v.Type
	}
	return ""
}

// Int parses the binding for name as an integer count. Non-numeric or
// missing values yield 0. Decimal forms, which some endpoints return for
// aggregates, are truncated.
func (r Row) Int(name string) int64 {
	s := strings.TrimSpace(r.Text(name))
	if s == "" {
		return 0
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && !math.IsNaN(f) {
		return int64(f)
	}
	return 0
}

type jsonResults struct {
	Head struct {
		Vars []string `json:"vars"`
	} `json:"head"`
	Results *struct {
		Bindings []map[string]jsonBinding `json:"bindings"`
	} `json:"results"`
	Boolean *bool `json:"boolean"`
}

type jsonBinding struct {
	Type     string `json:"type"`
	Value    string `json:"value"`
	Datatype string `json:"datatype"`
	Lang     string `json:"xml:lang"`
}

func (b jsonBinding) value() (quad.Value, error) {
	switch b.Type {
	case "uri":
		return quad.IRI(b.Value), nil
	case "bnode":
		return quad.BNode(b.Value), nil
	case "literal", "typed-literal":
		switch {
		case b.Lang != "":
			return quad.LangString{Value: quad.String(b.Value), Lang: b.Lang}, nil
		case b.Datatype != "":
			return quad.TypedString{Value: quad.String(b.Value), Type: quad.IRI(b.Datatype)}, nil
		}
		return quad.String(b.Value), nil
	}
	return nil, fmt.Errorf("sparql: unknown binding type %q", b.Type)
}

// Decode reads a SPARQL 1.1 JSON results document. An ASK result is
// returned as a single row binding "boolean" when true, and no rows when false.
func Decode(r io.Reader) (Result, error) {
	var doc jsonResults
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return Result{}, fmt.Errorf("sparql: cannot decode results: %w", err)
	}
	res := Result{Vars: doc.Head.Vars}
	if doc.Boolean != nil {
		if *doc.Boolean {
			res.Rows = []Row{{"boolean": quad.TypedString{Value: "true", Type: quad.IRI(xsd.Boolean).Full()}}}
		}
		return res, nil
	}
	if doc.Results == nil {
		return res, nil
	}
	res.Rows = make([]Row, 0, len(doc.Results.Bindings))
	for _, b := range doc.Results.Bindings {
		row := make(Row, len(b))
		for name, jb := range b {
			v, err := jb.value()
			if err != nil {
				return Result{}, err
			}
			row[name] = v
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

// Term renders a value as a query term: <iri>, "literal"^^<type> or
// "literal"@lang.
func Term(v quad.Value) string {
	if v == nil {
		return ""
	}
	return v.String()
}

// SplitIRI splits an IRI after its last '#' or '/' into namespace and local
// name. IRIs without either separator (URNs and the like) split at the last
// ':'. An IRI ending in a separator is all namespace.
func SplitIRI(iri string) (namespace, local string) {
	i := strings.LastIndexAny(iri, "#/")
	switch {
	case i == len(iri)-1:
		return iri, ""
	case i >= 0:
		return iri[:i+1], iri[i+1:]
	}
	if j := strings.LastIndexByte(iri, ':'); j >= 0 {
		return iri[:j+1], iri[j+1:]
	}
	return "", iri
}
