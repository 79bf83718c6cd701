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

// Package config holds the extraction request: the endpoint to probe, the
// feature toggles that select which parts of the schema are computed, the
// resilience knobs of the query layer and the include/exclude filters.
package config

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cayleygraph/quad"
	"github.com/cayleygraph/quad/voc/rdf"
	"github.com/spf13/viper"
)

var (
	ErrNoEndpoint  = errors.New("config: endpoint is not set")
	ErrBadMethod   = errors.New("config: unsupported HTTP method")
	ErrBadStrategy = errors.New("config: unknown neighbor strategy")
)

// DefaultClassificationProperty is the full IRI of rdf:type.
var DefaultClassificationProperty = string(quad.IRI(rdf.Type).Full())

// Neighbor discovery strategies.
const (
	StrategyPerClass = "per-class"
	StrategyAll      = "all"
)

// Config is the extraction request.
type Config struct {
	Name     string `json:"name" mapstructure:"name"`
	Endpoint string `json:"endpoint" mapstructure:"endpoint"`
	Graph    string `json:"graph" mapstructure:"graph"`
	Method   string `json:"method" mapstructure:"method"`

	// ClassificationProperty is the predicate whose objects are treated as classes.
	ClassificationProperty string `json:"classification_property" mapstructure:"classification_property"`

	LargeQueryTimeout time.Duration `json:"large_query_timeout" mapstructure:"large_query_timeout"`
	SmallQueryTimeout time.Duration `json:"small_query_timeout" mapstructure:"small_query_timeout"`
	Retries           int           `json:"retries" mapstructure:"retries"`
	RetryDelay        time.Duration `json:"retry_delay" mapstructure:"retry_delay"`
	FirstHealthWait   time.Duration `json:"first_health_wait" mapstructure:"first_health_wait"`
	HealthWait        time.Duration `json:"health_wait" mapstructure:"health_wait"`
	MaxHealthWait     time.Duration `json:"max_health_wait" mapstructure:"max_health_wait"`
	QueryRate         float64       `json:"query_rate" mapstructure:"query_rate"`
	Workers           int           `json:"workers" mapstructure:"workers"`
	RunTimeout        time.Duration `json:"run_timeout" mapstructure:"run_timeout"`
	NeighborStrategy  string        `json:"neighbor_strategy" mapstructure:"neighbor_strategy"`

	CalculateSubClassRelations          bool `json:"calculate_subclass_relations" mapstructure:"calculate_subclass_relations"`
	CalculateMultipleInheritance        bool `json:"calculate_multiple_inheritance" mapstructure:"calculate_multiple_inheritance"`
	CalculatePropertyPropertyRelations  bool `json:"calculate_property_property_relations" mapstructure:"calculate_property_property_relations"`
	CalculateDomainAndRangePairs        bool `json:"calculate_domain_range_pairs" mapstructure:"calculate_domain_range_pairs"`
	CalculateCardinalities              bool `json:"calculate_cardinalities" mapstructure:"calculate_cardinalities"`
	CalculateDataTypes                  bool `json:"calculate_data_types" mapstructure:"calculate_data_types"`
	CalculateDataTypesForObjectProperty bool `json:"calculate_data_types_for_object_properties" mapstructure:"calculate_data_types_for_object_properties"`
	CalculateInstanceNamespaces         bool `json:"calculate_instance_namespaces" mapstructure:"calculate_instance_namespaces"`
	InstanceNamespaceSample             int  `json:"instance_namespace_sample" mapstructure:"instance_namespace_sample"`

	IncludedClasses    []string `json:"included_classes" mapstructure:"included_classes"`
	ExcludedClasses    []string `json:"excluded_classes" mapstructure:"excluded_classes"`
	IncludedProperties []string `json:"included_properties" mapstructure:"included_properties"`
	ExcludedProperties []string `json:"excluded_properties" mapstructure:"excluded_properties"`
	IncludedNamespaces []string `json:"included_namespaces" mapstructure:"included_namespaces"`
	ExcludedNamespaces []string `json:"excluded_namespaces" mapstructure:"excluded_namespaces"`

	// Queries overrides built-in query templates by name.
	Queries map[string]string `json:"queries" mapstructure:"queries"`
	// Prefixes maps namespace prefixes (without the colon) to namespace IRIs.
	Prefixes map[string]string `json:"prefixes" mapstructure:"prefixes"`
}

// Default returns the configuration used when nothing else is specified.
// Workers is 1, which keeps the strictly sequential query order.
func Default() *Config {
	return &Config{
		Method:                 http.MethodGet,
		ClassificationProperty: DefaultClassificationProperty,
		LargeQueryTimeout:      5 * time.Minute,
		SmallQueryTimeout:      30 * time.Second,
		Retries:                2,
		RetryDelay:             2 * time.Second,
		FirstHealthWait:        time.Minute,
		HealthWait:             15 * time.Minute,
		Workers:                1,
		NeighborStrategy:       StrategyPerClass,

		CalculateSubClassRelations:         true,
		CalculateMultipleInheritance:       true,
		CalculatePropertyPropertyRelations: true,
		CalculateDomainAndRangePairs:       true,
		CalculateCardinalities:             true,
		CalculateDataTypes:                 true,
		CalculateInstanceNamespaces:        true,
		InstanceNamespaceSample:            1000,
	}
}

// Validate normalizes the configuration and reports the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Endpoint) == "" {
		return ErrNoEndpoint
	}
	c.Method = strings.ToUpper(c.Method)
	switch c.Method {
	case "":
		c.Method = http.MethodGet
	case http.MethodGet, http.MethodPost:
	default:
		return fmt.Errorf("%w: %q", ErrBadMethod, c.Method)
	}
	switch c.NeighborStrategy {
	case "":
		c.NeighborStrategy = StrategyPerClass
	case StrategyPerClass, StrategyAll:
	default:
		return fmt.Errorf("%w: %q", ErrBadStrategy, c.NeighborStrategy)
	}
	for name, d := range map[string]time.Duration{
		"large_query_timeout": c.LargeQueryTimeout,
		"small_query_timeout": c.SmallQueryTimeout,
		"retry_delay":         c.RetryDelay,
		"first_health_wait":   c.FirstHealthWait,
		"health_wait":         c.HealthWait,
		"max_health_wait":     c.MaxHealthWait,
		"run_timeout":         c.RunTimeout,
	} {
		if d < 0 {
			return fmt.Errorf("config: %s cannot be negative", name)
		}
	}
	if c.Retries < 0 {
		return errors.New("config: retries cannot be negative")
	}
	if c.QueryRate < 0 {
		return errors.New("config: query_rate cannot be negative")
	}
	if c.Workers <= 0 {
		c.Workers = 1
	}
	if c.ClassificationProperty == "" {
		c.ClassificationProperty = DefaultClassificationProperty
	}
	if c.Name == "" {
		c.Name = c.Endpoint
	}
	return nil
}

// SetDefaults registers the values of Default as viper defaults, so that
// config files and environment variables only need to name what differs.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("method", d.Method)
	v.SetDefault("classification_property", d.ClassificationProperty)
	v.SetDefault("large_query_timeout", d.LargeQueryTimeout)
	v.SetDefault("small_query_timeout", d.SmallQueryTimeout)
	v.SetDefault("retries", d.Retries)
	v.SetDefault("retry_delay", d.RetryDelay)
	v.SetDefault("first_health_wait", d.FirstHealthWait)
	v.SetDefault("health_wait", d.HealthWait)
	v.SetDefault("max_health_wait", d.MaxHealthWait)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("neighbor_strategy", d.NeighborStrategy)
	v.SetDefault("calculate_subclass_relations", d.CalculateSubClassRelations)
	v.SetDefault("calculate_multiple_inheritance", d.CalculateMultipleInheritance)
	v.SetDefault("calculate_property_property_relations", d.CalculatePropertyPropertyRelations)
	v.SetDefault("calculate_domain_range_pairs", d.CalculateDomainAndRangePairs)
	v.SetDefault("calculate_cardinalities", d.CalculateCardinalities)
	v.SetDefault("calculate_data_types", d.CalculateDataTypes)
	v.SetDefault("calculate_data_types_for_object_properties", d.CalculateDataTypesForObjectProperty)
	v.SetDefault("calculate_instance_namespaces", d.CalculateInstanceNamespaces)
	v.SetDefault("instance_namespace_sample", d.InstanceNamespaceSample)
}

// FromViper decodes and validates a configuration from v.
func FromViper(v *viper.Viper) (*Config, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads a configuration file (any format viper understands).
func Load(file string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(file)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: cannot read %q: %w", file, err)
	}
	return FromViper(v)
}
