/*
Copyright 2025 Jordi Gil.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package rules

import (
	"strings"

	"github.com/google/cel-go/interpreter"
)

// normalizeVar collapses an identifier into a case- and underscore-
// insensitive form so that exposure_id, exposureId and exposure_Id all
// resolve to the same scope slot (spec.md §4.5).
func normalizeVar(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// scopeActivation implements interpreter.Activation over a flat map of
// evaluation-scope values, resolving names case- and underscore-
// insensitively. Building it normalizes keys once so every lookup is a
// single map access.
type scopeActivation struct {
	values map[string]interface{}
}

// newScopeActivation builds an activation from values, keyed by their
// canonical (non-normalized) field name. On a normalization collision the
// key that map iteration reaches first wins, so which one is kept is not
// defined; the keys buildScope produces do not collide.
func newScopeActivation(values map[string]interface{}) *scopeActivation {
	normalized := make(map[string]interface{}, len(values))
	for k, v := range values {
		key := normalizeVar(k)
		if _, exists := normalized[key]; exists {
			continue
		}
		normalized[key] = v
	}
	return &scopeActivation{values: normalized}
}

func (a *scopeActivation) ResolveName(name string) (interface{}, bool) {
	v, ok := a.values[normalizeVar(name)]
	return v, ok
}

func (a *scopeActivation) Parent() interpreter.Activation { return nil }

var _ interpreter.Activation = (*scopeActivation)(nil)
