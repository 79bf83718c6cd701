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

// Package queries is the catalog of built-in query templates used to probe
// an endpoint for schema facts. Every template is also the fallback used
// when a configured override of the same name cannot be rendered or is
// rejected by the endpoint.
//
// Result variables are fixed per query: classes come back as ?c (and ?c2
// for pairs), properties as ?p, counts as ?count.
package queries

import "github.com/cayleygraph/sparqlschema/sparql"

// Query names, also the keys for configured overrides.
const (
	NameClasses             = "classes"
	NameClassNeighbors      = "class_neighbors"
	NameAllIntersections    = "all_intersections"
	NameNotContained        = "not_contained"
	NameInstances           = "instances"
	NameProperties          = "properties"
	NameObjectTriples       = "object_triples"
	NameDomains             = "domains"
	NameRanges              = "ranges"
	NamePairs               = "domain_range_pairs"
	NamePairCount           = "domain_range_pair_count"
	NameUntypedSubject      = "untyped_subject"
	NameUntypedObject       = "untyped_object"
	NameDataTypes           = "data_types"
	NameLangStrings         = "lang_strings"
	NameMultipleValues      = "multiple_values"
	NameMissingValue        = "missing_value"
	NameSharedObject        = "shared_object"
	NameSharedObjectInClass = "shared_object_in_class"
	NameFollowedBy          = "followed_by"
	NameCommonSubject       = "common_subject"
	NameCommonObject        = "common_object"
)

// Classes lists every value of the classification property with its
// member count.
var Classes = sparql.Query{
	Name:    NameClasses,
	Timeout: sparql.Large,
	Template: `SELECT ?c (COUNT(?x) AS ?count) {{.From}}
WHERE { ?x {{.ClassificationProperty}} ?c . }
GROUP BY ?c`,
}

// ClassNeighbors lists classes sharing at least one member with .Class.
var ClassNeighbors = sparql.Query{
	Name:    NameClassNeighbors,
	Timeout: sparql.Large,
	Template: `SELECT ?c (COUNT(?x) AS ?count) {{.From}}
WHERE { ?x {{.ClassificationProperty}} {{.Class}} . ?x {{.ClassificationProperty}} ?c . FILTER(?c != {{.Class}}) }
GROUP BY ?c`,
}

// AllIntersections lists every ordered pair of distinct classes that share
// a member.
var AllIntersections = sparql.Query{
	Name:    NameAllIntersections,
	Timeout: sparql.Large,
	Template: `SELECT DISTINCT ?c ?c2 {{.From}}
WHERE { ?x {{.ClassificationProperty}} ?c . ?x {{.ClassificationProperty}} ?c2 . FILTER(?c != ?c2) }`,
}

// NotContained returns a member of .Class that is not a member of .Other.
// An empty result means .Class is contained in .Other.
var NotContained = sparql.Query{
	Name:    NameNotContained,
	Timeout: sparql.Small,
	Template: `SELECT ?x {{.From}}
WHERE { ?x {{.ClassificationProperty}} {{.Class}} . FILTER NOT EXISTS { ?x {{.ClassificationProperty}} {{.Other}} } }
LIMIT 1`,
}

// Instances samples up to .Limit members of .Class.
var Instances = sparql.Query{
	Name:    NameInstances,
	Timeout: sparql.Small,
	Template: `SELECT ?x {{.From}}
WHERE { ?x {{.ClassificationProperty}} {{.Class}} . FILTER(isIRI(?x)) }
LIMIT {{.Limit}}`,
}

// Properties lists every predicate with its triple count.
var Properties = sparql.Query{
	Name:    NameProperties,
	Timeout: sparql.Large,
	Template: `SELECT ?p (COUNT(?x) AS ?count) {{.From}}
WHERE { ?x ?p ?y . }
GROUP BY ?p`,
}

// ObjectTriples counts the triples of .Property whose value is a resource.
var ObjectTriples = sparql.Query{
	Name:    NameObjectTriples,
	Timeout: sparql.Large,
	Template: `SELECT (COUNT(?y) AS ?count) {{.From}}
WHERE { ?x {{.Property}} ?y . FILTER(!isLiteral(?y)) }`,
}

// Domains lists the classes of subjects of .Property with the restricted
// triple count and the restricted object-triple count.
var Domains = sparql.Query{
	Name:    NameDomains,
	Timeout: sparql.Large,
	Template: `SELECT ?c (COUNT(?y) AS ?count) (SUM(IF(isLiteral(?y), 0, 1)) AS ?objects) {{.From}}
WHERE { ?x {{.Property}} ?y . ?x {{.ClassificationProperty}} ?c . }
GROUP BY ?c`,
}

// Ranges lists the classes of objects of .Property with the restricted
// triple count.
var Ranges = sparql.Query{
	Name:    NameRanges,
	Timeout: sparql.Large,
	Template: `SELECT ?c (COUNT(?x) AS ?count) {{.From}}
WHERE { ?x {{.Property}} ?y . ?y {{.ClassificationProperty}} ?c . }
GROUP BY ?c`,
}

// Pairs lists (domain, range) class combinations of .Property with counts.
var Pairs = sparql.Query{
	Name:    NamePairs,
	Timeout: sparql.Large,
	Template: `SELECT ?c ?c2 (COUNT(?x) AS ?count) {{.From}}
WHERE { ?x {{.Property}} ?y . ?x {{.ClassificationProperty}} ?c . ?y {{.ClassificationProperty}} ?c2 . }
GROUP BY ?c ?c2`,
}

// PairCount counts triples of .Property from .Class members to .Other members.
var PairCount = sparql.Query{
	Name:    NamePairCount,
	Timeout: sparql.Small,
	Template: `SELECT (COUNT(?x) AS ?count) {{.From}}
WHERE { ?x {{.Property}} ?y . ?x {{.ClassificationProperty}} {{.Class}} . ?y {{.ClassificationProperty}} {{.Other}} . }`,
}

// UntypedSubject returns a subject of .Property without any class.
var UntypedSubject = sparql.Query{
	Name:    NameUntypedSubject,
	Timeout: sparql.Small,
	Template: `SELECT ?x {{.From}}
WHERE { ?x {{.Property}} ?y . FILTER NOT EXISTS { ?x {{.ClassificationProperty}} ?c } }
LIMIT 1`,
}

// UntypedObject returns a resource object of .Property without any class.
var UntypedObject = sparql.Query{
	Name:    NameUntypedObject,
	Timeout: sparql.Small,
	Template: `SELECT ?y {{.From}}
WHERE { ?x {{.Property}} ?y . FILTER(!isLiteral(?y)) FILTER NOT EXISTS { ?y {{.ClassificationProperty}} ?c } }
LIMIT 1`,
}

// DataTypes lists the datatypes of literal values of .Property.
var DataTypes = sparql.Query{
	Name:    NameDataTypes,
	Timeout: sparql.Large,
	Template: `SELECT ?dt (COUNT(?y) AS ?count) {{.From}}
WHERE { ?x {{.Property}} ?y . FILTER(isLiteral(?y)) BIND(DATATYPE(?y) AS ?dt) }
GROUP BY ?dt`,
}

// LangStrings counts language-tagged values of .Property.
var LangStrings = sparql.Query{
	Name:    NameLangStrings,
	Timeout: sparql.Large,
	Template: `SELECT (COUNT(?y) AS ?count) {{.From}}
WHERE { ?x {{.Property}} ?y . FILTER(isLiteral(?y) && LANG(?y) != "") }`,
}

// MultipleValues returns a subject with two distinct values for .Property.
var MultipleValues = sparql.Query{
	Name:    NameMultipleValues,
	Timeout: sparql.Small,
	Template: `SELECT ?x {{.From}}
WHERE { ?x {{.Property}} ?y . ?x {{.Property}} ?y2 . FILTER(?y != ?y2) }
LIMIT 1`,
}

// MissingValue returns a member of .Class without a value for .Property.
var MissingValue = sparql.Query{
	Name:    NameMissingValue,
	Timeout: sparql.Small,
	Template: `SELECT ?x {{.From}}
WHERE { ?x {{.ClassificationProperty}} {{.Class}} . FILTER NOT EXISTS { ?x {{.Property}} ?y } }
LIMIT 1`,
}

// SharedObject returns an object that is the value of .Property for two
// distinct subjects.
var SharedObject = sparql.Query{
	Name:    NameSharedObject,
	Timeout: sparql.Small,
	Template: `SELECT ?y {{.From}}
WHERE { ?x {{.Property}} ?y . ?x2 {{.Property}} ?y . FILTER(?x != ?x2) }
LIMIT 1`,
}

// SharedObjectInClass is SharedObject restricted to objects in .Class.
var SharedObjectInClass = sparql.Query{
	Name:    NameSharedObjectInClass,
	Timeout: sparql.Small,
	Template: `SELECT ?y {{.From}}
WHERE { ?y {{.ClassificationProperty}} {{.Class}} . ?x {{.Property}} ?y . ?x2 {{.Property}} ?y . FILTER(?x != ?x2) }
LIMIT 1`,
}

// FollowedBy lists properties used on the objects of .Property.
var FollowedBy = sparql.Query{
	Name:    NameFollowedBy,
	Timeout: sparql.Large,
	Template: `SELECT ?p (COUNT(?y) AS ?count) {{.From}}
WHERE { ?x {{.Property}} ?y . ?y ?p ?z . }
GROUP BY ?p`,
}

// CommonSubject lists other properties used on the subjects of .Property.
var CommonSubject = sparql.Query{
	Name:    NameCommonSubject,
	Timeout: sparql.Large,
	Template: `SELECT ?p (COUNT(?x) AS ?count) {{.From}}
WHERE { ?x {{.Property}} ?y . ?x ?p ?z . FILTER(?p != {{.Property}}) }
GROUP BY ?p`,
}

// CommonObject lists other properties sharing resource objects with .Property.
var CommonObject = sparql.Query{
	Name:    NameCommonObject,
	Timeout: sparql.Large,
	Template: `SELECT ?p (COUNT(?y) AS ?count) {{.From}}
WHERE { ?x {{.Property}} ?y . FILTER(!isLiteral(?y)) ?z ?p ?y . FILTER(?p != {{.Property}}) }
GROUP BY ?p`,
}

// All lists every built-in query.
func All() []sparql.Query {
	return []sparql.Query{
		Classes, ClassNeighbors, AllIntersections, NotContained, Instances,
		Properties, ObjectTriples, Domains, Ranges, Pairs, PairCount,
		UntypedSubject, UntypedObject, DataTypes, LangStrings,
		MultipleValues, MissingValue, SharedObject, SharedObjectInClass,
		FollowedBy, CommonSubject, CommonObject,
	}
}
