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
	"bytes"
	"text/template"
)

// renderMessage interpolates a rule's message template against the
// exposure's evaluation scope (spec.md §4's supplemented violation-message
// feature). Template errors (an unknown field, bad syntax) fall back to
// the raw template text rather than failing the evaluation: a violation
// with a slightly wrong message still documents the failure, which
// matters more than a render error derailing the batch.
func renderMessage(tmpl string, scope map[string]interface{}) string {
	t, err := template.New("violation-message").Parse(tmpl)
	if err != nil {
		return tmpl
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, scope); err != nil {
		return tmpl
	}
	return buf.String()
}
