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

package command

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cayleygraph/sparqlschema/config"
	"github.com/cayleygraph/sparqlschema/schema"
	"github.com/cayleygraph/sparqlschema/sparql"
)

const emptyResults = `{"head":{"vars":[]},"results":{"bindings":[]}}`

func execute(t *testing.T, args ...string) (string, error) {
	cmd := NewRootCmd()
	b := bytes.NewBuffer(nil)
	cmd.SetOut(b)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return b.String(), err
}

func emptyEndpoint(t *testing.T) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("query") == "" {
			http.Error(w, "no query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", sparql.ContentType)
		w.Write([]byte(emptyResults))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "sparqlschema "))
}

func TestExtractNoEndpoint(t *testing.T) {
	_, err := execute(t, "extract")
	require.ErrorIs(t, err, config.ErrNoEndpoint)
}

func TestExtractEmptyEndpoint(t *testing.T) {
	srv := emptyEndpoint(t)
	out, err := execute(t, "extract", "-e", srv.URL, "--name", "http://example.org/onto", "-f", "json")
	require.NoError(t, err)

	var doc schema.Schema
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	require.Equal(t, "http://example.org/onto", doc.Name)
	require.Empty(t, doc.Classes)
	require.Empty(t, doc.Properties)

	params := make(map[string]string)
	for _, p := range doc.Parameters {
		params[p.Name] = p.Value
	}
	require.Equal(t, srv.URL, params["endpoint"])
	require.Equal(t, "GET", params["method"])
}

func TestExtractToFile(t *testing.T) {
	srv := emptyEndpoint(t)
	path := filepath.Join(t.TempDir(), "schema.yaml")
	out, err := execute(t, "extract", "-e", srv.URL, "-o", path)
	require.NoError(t, err)
	require.Empty(t, out)

	doc, err := readSchema(nil, path)
	require.NoError(t, err)
	require.Equal(t, srv.URL, doc.Name)
}

func TestExtractConfigFile(t *testing.T) {
	srv := emptyEndpoint(t)
	path := filepath.Join(t.TempDir(), "extract.yaml")
	require.NoError(t, os.WriteFile(path, []byte("endpoint: "+srv.URL+"\nname: from-file\n"), 0644))
	out, err := execute(t, "--config", path, "extract")
	require.NoError(t, err)
	require.Contains(t, out, `"name": "from-file"`)
}

func TestHealth(t *testing.T) {
	srv := emptyEndpoint(t)
	out, err := execute(t, "health", srv.URL)
	require.NoError(t, err)
	require.Contains(t, out, "is healthy")

	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer down.Close()
	_, err = execute(t, "health", down.URL)
	require.Error(t, err)

	_, err = execute(t, "health")
	require.Error(t, err)
}

var testSchema = &schema.Schema{
	Name: "http://example.org/onto",
	Classes: []schema.Class{
		{ID: "http://example.org/onto#Person", LocalName: "Person", Namespace: "http://example.org/onto#", SuperClasses: []string{}, InstanceCount: 150},
		{ID: "http://example.org/onto#Employee", LocalName: "Employee", Namespace: "http://example.org/onto#", SuperClasses: []string{"http://example.org/onto#Person"}, InstanceCount: 100},
	},
	Properties: []schema.Property{
		{ID: "http://example.org/onto#name", LocalName: "name", Namespace: "http://example.org/onto#", TripleCount: 150,
			DomainClasses: []schema.DomainClass{{ClassID: "http://example.org/onto#Person", TripleCount: 150, MinCardinality: 1, ImportanceIndex: 1}},
			MaxCardinality: 1, MaxInverseCardinality: schema.Unbounded},
	},
}

func TestDump(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "schema.json")
	data, err := json.Marshal(testSchema)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(in, data, 0644))

	out, err := execute(t, "dump", "-i", in, "-f", "nquads")
	require.NoError(t, err)
	require.Contains(t, out, "<http://example.org/onto> <http://www.w3.org/1999/02/22-rdf-syntax-ns#type> <http://www.w3.org/2002/07/owl#Ontology> .")
	require.Contains(t, out, "<http://example.org/onto#Employee> <http://www.w3.org/2000/01/rdf-schema#subClassOf> <http://example.org/onto#Person> .")
	require.Contains(t, out, "<http://www.w3.org/2002/07/owl#FunctionalProperty>")

	yml := filepath.Join(dir, "schema.yml.gz")
	_, err = execute(t, "dump", "-i", in, "-o", yml)
	require.NoError(t, err)
	doc, err := readSchema(nil, yml)
	require.NoError(t, err)
	require.Equal(t, testSchema.Name, doc.Name)
	require.Equal(t, testSchema.Classes, doc.Classes)
	require.Len(t, doc.Properties, 1)
	require.Equal(t, testSchema.Properties[0].DomainClasses, doc.Properties[0].DomainClasses)
	require.Equal(t, schema.Unbounded, doc.Properties[0].MaxInverseCardinality)

	_, err = execute(t, "dump", "-i", in, "-f", "graphviz")
	require.Error(t, err)
}

func TestFormatByExt(t *testing.T) {
	require.Equal(t, formatJSON, formatByExt(".json"))
	require.Equal(t, formatYAML, formatByExt(".yml"))
	require.Equal(t, "nquads", formatByExt(".nq"))
	require.Equal(t, "", formatByExt(".txt"))
}

type closer struct{ err error }

func (c closer) Close() error { return c.err }

func TestWriteSchemaErrors(t *testing.T) {
	errFlush := errors.New("disk full")
	require.Equal(t, errFlush, closeAfter(nil, closer{err: errFlush}))
	errEncode := errors.New("bad doc")
	require.Equal(t, errEncode, closeAfter(errEncode, closer{err: errFlush}))
	require.NoError(t, closeAfter(nil, closer{}))

	path := filepath.Join(t.TempDir(), "schema.nq.gz")
	err := writeSchema(nil, path, "graphviz", testSchema)
	require.Error(t, err)
	require.Contains(t, err.Error(), "could not write")

	err = writeSchema(nil, filepath.Join(t.TempDir(), "missing", "schema.json"), "", testSchema)
	require.Error(t, err)
}
