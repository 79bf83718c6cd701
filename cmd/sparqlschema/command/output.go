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
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cayleygraph/quad"
	_ "github.com/cayleygraph/quad/jsonld"
	_ "github.com/cayleygraph/quad/nquads"
	"gopkg.in/yaml.v3"

	"github.com/cayleygraph/sparqlschema/clog"
	"github.com/cayleygraph/sparqlschema/schema"
)

const (
	formatJSON = "json"
	formatYAML = "yaml"
)

func formatNames() string {
	names := []string{formatJSON, formatYAML}
	for _, f := range quad.Formats() {
		if f.Writer != nil {
			names = append(names, f.Name)
		}
	}
	sort.Strings(names[2:])
	return `"` + strings.Join(names, `", "`) + `"`
}

// formatByExt detects the output format from a file name; ext has the
// compression suffix removed already.
func formatByExt(ext string) string {
	switch ext {
	case ".json":
		return formatJSON
	case ".yaml", ".yml":
		return formatYAML
	}
	if f := quad.FormatByExt(ext); f != nil && f.Writer != nil {
		return f.Name
	}
	return ""
}

// writeSchema writes doc to path ("-" or empty for out) in the named format.
// Without a format name, the file extension decides and JSON is the fallback.
func writeSchema(out io.Writer, path, typ string, doc *schema.Schema) error {
	toFile := path != "" && path != "-"
	if !toFile {
		return encodeSchema(out, detectFormat(typ, ""), doc)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create file %q: %v", path, err)
	}
	ext := filepath.Ext(path)
	if ext == ".gz" {
		ext = filepath.Ext(strings.TrimSuffix(path, ext))
		gz := gzip.NewWriter(f)
		err = closeAfter(encodeSchema(gz, detectFormat(typ, ext), doc), gz)
	} else {
		err = encodeSchema(f, detectFormat(typ, ext), doc)
	}
	if err = closeAfter(err, f); err != nil {
		return fmt.Errorf("could not write %q: %w", path, err)
	}
	clog.Infof("schema written to %q", path)
	return nil
}

// closeAfter closes c and returns err, or the close error when err is nil.
func closeAfter(err error, c io.Closer) error {
	if cerr := c.Close(); err == nil {
		err = cerr
	}
	return err
}

func detectFormat(typ, ext string) string {
	if typ != "" {
		return typ
	}
	if typ = formatByExt(ext); typ != "" {
		return typ
	}
	return formatJSON
}

func encodeSchema(w io.Writer, typ string, doc *schema.Schema) error {
	switch typ {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}
	format := quad.FormatByName(typ)
	if format == nil {
		return fmt.Errorf("unsupported format: %q", typ)
	} else if format.Writer == nil {
		return fmt.Errorf("encoding in %s format is not supported", typ)
	}
	qw := format.Writer(w)
	if err := schema.WriteQuads(qw, doc, nil); err != nil {
		qw.Close()
		return err
	}
	return qw.Close()
}

// readSchema reads a schema document written as JSON or YAML. YAML is a
// superset of JSON, so one decoder reads both.
func readSchema(in io.Reader, path string) (*schema.Schema, error) {
	var r io.Reader = in
	if path != "" && path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
		if filepath.Ext(path) == ".gz" {
			gz, err := gzip.NewReader(f)
			if err != nil {
				return nil, err
			}
			defer gz.Close()
			r = gz
		}
	}
	var doc schema.Schema
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot decode schema: %w", err)
	}
	return &doc, nil
}
