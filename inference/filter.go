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

import "strings"

// Filter selects the classes and properties kept in the model. Every entry
// is matched as an IRI prefix, so a full IRI selects one entity and a
// namespace selects all of its members. Exclusions win over inclusions; an
// empty inclusion list keeps everything.
type Filter struct {
	IncludedClasses    []string
	ExcludedClasses    []string
	IncludedProperties []string
	ExcludedProperties []string
	IncludedNamespaces []string
	ExcludedNamespaces []string
}

// Class reports whether the class with the given id is kept.
func (f Filter) Class(id string) bool {
	return f.keep(id, f.IncludedClasses, f.ExcludedClasses)
}

// Property reports whether the property with the given id is kept.
func (f Filter) Property(id string) bool {
	return f.keep(id, f.IncludedProperties, f.ExcludedProperties)
}

func (f Filter) keep(id string, include, exclude []string) bool {
	if matchAny(id, exclude) || matchAny(id, f.ExcludedNamespaces) {
		return false
	}
	if len(f.IncludedNamespaces) > 0 && !matchAny(id, f.IncludedNamespaces) {
		return false
	}
	return len(include) == 0 || matchAny(id, include)
}

func matchAny(id string, prefixes []string) bool {
	for _, p := range prefixes {
		if p != "" && strings.HasPrefix(id, p) {
			return true
		}
	}
	return false
}
