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

// Package schema defines the document produced by an extraction run.
//
// Every count is a triple count observed on the endpoint. Cardinalities use
// Unbounded for "no upper limit" and 0 for an optional property.
package schema

// Unbounded marks an unlimited maximum cardinality.
const Unbounded = -1

// Schema is the inferred class and property model of one endpoint.
type Schema struct {
	Name             string      `json:"name" yaml:"name"`
	Classes          []Class     `json:"classes" yaml:"classes"`
	Properties       []Property  `json:"properties" yaml:"properties"`
	DefaultNamespace string      `json:"defaultNamespace" yaml:"defaultNamespace"`
	Prefixes         []Prefix    `json:"prefixes" yaml:"prefixes"`
	Parameters       []Parameter `json:"parameters" yaml:"parameters"`
	Warnings         []Warning   `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// Class is an inferred class. SuperClasses is empty for classes directly
// below the root.
type Class struct {
	ID                string   `json:"id" yaml:"id"`
	LocalName         string   `json:"localName" yaml:"localName"`
	Namespace         string   `json:"namespace" yaml:"namespace"`
	SuperClasses      []string `json:"superClasses" yaml:"superClasses"`
	InstanceCount     int64    `json:"instanceCount" yaml:"instanceCount"`
	DataType          string   `json:"dataType,omitempty" yaml:"dataType,omitempty"`
	InstanceNamespace string   `json:"instanceNamespace,omitempty" yaml:"instanceNamespace,omitempty"`
}

// Property is an inferred property.
type Property struct {
	ID                    string             `json:"id" yaml:"id"`
	LocalName             string             `json:"localName" yaml:"localName"`
	Namespace             string             `json:"namespace" yaml:"namespace"`
	TripleCount           int64              `json:"tripleCount" yaml:"tripleCount"`
	ObjectTripleCount     int64              `json:"objectTripleCount" yaml:"objectTripleCount"`
	IsObjectProperty      bool               `json:"isObjectProperty" yaml:"isObjectProperty"`
	DomainClasses         []DomainClass      `json:"domainClasses" yaml:"domainClasses"`
	RangeClasses          []RangeClass       `json:"rangeClasses" yaml:"rangeClasses"`
	ClassPairs            []ClassPair        `json:"classPairs" yaml:"classPairs"`
	DataTypes             []DataType         `json:"dataTypes" yaml:"dataTypes"`
	LangStringCount       int64              `json:"langStringCount,omitempty" yaml:"langStringCount,omitempty"`
	MinCardinality        int                `json:"minCardinality" yaml:"minCardinality"`
	MaxCardinality        int                `json:"maxCardinality" yaml:"maxCardinality"`
	MaxInverseCardinality int                `json:"maxInverseCardinality" yaml:"maxInverseCardinality"`
	ClosedDomain          bool               `json:"closedDomain" yaml:"closedDomain"`
	ClosedRange           bool               `json:"closedRange" yaml:"closedRange"`
	FollowedBy            []PropertyRelation `json:"followedBy,omitempty" yaml:"followedBy,omitempty"`
	CommonSubjects        []PropertyRelation `json:"commonSubjects,omitempty" yaml:"commonSubjects,omitempty"`
	CommonObjects         []PropertyRelation `json:"commonObjects,omitempty" yaml:"commonObjects,omitempty"`
}

// DomainClass is a class whose members use a property as subject.
type DomainClass struct {
	ClassID           string `json:"classId" yaml:"classId"`
	TripleCount       int64  `json:"tripleCount" yaml:"tripleCount"`
	ObjectTripleCount int64  `json:"objectTripleCount" yaml:"objectTripleCount"`
	MinCardinality    int    `json:"minCardinality" yaml:"minCardinality"`
	ImportanceIndex   int    `json:"importanceIndex" yaml:"importanceIndex"`
}

// RangeClass is a class whose members are values of an object property.
type RangeClass struct {
	ClassID               string `json:"classId" yaml:"classId"`
	TripleCount           int64  `json:"tripleCount" yaml:"tripleCount"`
	MaxInverseCardinality int    `json:"maxInverseCardinality" yaml:"maxInverseCardinality"`
	ImportanceIndex       int    `json:"importanceIndex" yaml:"importanceIndex"`
}

// ClassPair is a resolved (domain, range) combination of an object property.
type ClassPair struct {
	SourceClass           string `json:"sourceClass" yaml:"sourceClass"`
	TargetClass           string `json:"targetClass" yaml:"targetClass"`
	TripleCount           int64  `json:"tripleCount" yaml:"tripleCount"`
	SourceImportanceIndex int    `json:"sourceImportanceIndex" yaml:"sourceImportanceIndex"`
	TargetImportanceIndex int    `json:"targetImportanceIndex" yaml:"targetImportanceIndex"`
}

// DataType is a literal datatype observed for a property.
type DataType struct {
	DataType    string `json:"dataType" yaml:"dataType"`
	TripleCount int64  `json:"tripleCount" yaml:"tripleCount"`
}

// PropertyRelation links a property to another one used alongside it.
type PropertyRelation struct {
	PropertyID  string `json:"propertyId" yaml:"propertyId"`
	TripleCount int64  `json:"tripleCount" yaml:"tripleCount"`
}

// Prefix is a namespace abbreviation.
type Prefix struct {
	Prefix    string `json:"prefix" yaml:"prefix"`
	Namespace string `json:"namespace" yaml:"namespace"`
}

// Parameter records a setting the document was produced with.
type Parameter struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// Warning is an ambiguity or failure met during inference that did not
// stop the run.
type Warning struct {
	Entity  string `json:"entity,omitempty" yaml:"entity,omitempty"`
	Message string `json:"message" yaml:"message"`
}

// Class returns the class with the given id, or nil.
func (s *Schema) Class(id string) *Class {
	for i := range s.Classes {
		if s.Classes[i].ID == id {
			return &s.Classes[i]
		}
	}
	return nil
}

// Property returns the property with the given id, or nil.
func (s *Schema) Property(id string) *Property {
	for i := range s.Properties {
		if s.Properties[i].ID == id {
			return &s.Properties[i]
		}
	}
	return nil
}
