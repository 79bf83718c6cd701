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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sparqlschema_queries_total",
		Help: "Number of queries dispatched to the endpoint.",
	}, []string{"tier"})
	mQueryFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sparqlschema_query_failures_total",
		Help: "Number of query attempts that failed.",
	}, []string{"tier"})
	mQueryRetries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sparqlschema_query_retries_total",
		Help: "Number of query retries after a failure.",
	})
	mQuerySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "sparqlschema_query_seconds",
		Help:    "Time spent waiting for the endpoint to answer a query.",
		Buckets: prometheus.ExponentialBuckets(0.01, 4, 10),
	}, []string{"tier"})
	mTemplateFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sparqlschema_template_fallbacks_total",
		Help: "Number of times a query override was replaced by its built-in template.",
	})
	mHealthWaitSeconds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sparqlschema_health_wait_seconds_total",
		Help: "Time spent waiting for an unhealthy endpoint to recover.",
	})
	mEndpointState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sparqlschema_endpoint_state",
		Help: "Endpoint health state: 0 healthy, 1 probing, 2 waiting, 3 aborted.",
	})
)
