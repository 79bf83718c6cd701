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

package http

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/cayleygraph/sparqlschema/sparql"
)

// StatusSource reports the state of the query layer of a running extraction.
type StatusSource interface {
	State() sparql.State
	Stats() sparql.Stats
}

// HandleHealth answers 204 while extraction can proceed and 503 once the
// endpoint has been given up on.
func HandleHealth(src StatusSource) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if src != nil && src.State() == sparql.Aborted {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

type status struct {
	State     string `json:"state"`
	Queries   int64  `json:"queries"`
	Failed    int64  `json:"failed"`
	Retries   int64  `json:"retries"`
	Fallbacks int64  `json:"fallbacks"`
	Waited    string `json:"waited"`
}

// HandleStatus reports the endpoint state and the query counters.
func HandleStatus(src StatusSource) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		if src == nil {
			jsonResponse(w, http.StatusNotFound, "no extraction running")
			return
		}
		st := src.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(status{
			State:     src.State().String(),
			Queries:   st.Queries,
			Failed:    st.Failed,
			Retries:   st.Retries,
			Fallbacks: st.Fallbacks,
			Waited:    st.Waited.String(),
		})
	}
}
