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

package inference

import (
	"context"
	"fmt"
	"sync"

	"github.com/cayleygraph/sparqlschema/clog"
	"github.com/cayleygraph/sparqlschema/schema"
	"github.com/cayleygraph/sparqlschema/sparql"
)

// Runner executes catalog queries. Failed sub-queries come back as a result
// with Failed set and a nil error; a non-nil error stops the run.
type Runner interface {
	Run(ctx context.Context, q sparql.Query, vars sparql.Vars) (sparql.Result, error)
}

// Notes collects the warnings of a run. It is safe for concurrent use.
type Notes struct {
	mu   sync.Mutex
	list []schema.Warning
}

// Add records a warning about entity.
func (n *Notes) Add(entity, format string, args ...interface{}) {
	if n == nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	clog.Debugf(1, "%s: %s", entity, msg)
	n.mu.Lock()
	n.list = append(n.list, schema.Warning{Entity: entity, Message: msg})
	n.mu.Unlock()
}

// List returns the warnings recorded so far.
func (n *Notes) List() []schema.Warning {
	if n == nil {
		return nil
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]schema.Warning(nil), n.list...)
}
