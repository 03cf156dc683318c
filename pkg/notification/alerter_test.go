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

package notification

import (
	"strconv"
	"strings"
	"testing"
)

func TestDeadLetterMessageIncludesAllFields(t *testing.T) {
	msg := deadLetterMessage("f-123", "exposure.BatchIngested", 5, "connection refused")

	for _, want := range []string{"f-123", "exposure.BatchIngested", strconv.Itoa(5), "connection refused"} {
		if !strings.Contains(msg, want) {
			t.Fatalf("expected message to contain %q, got: %s", want, msg)
		}
	}
}
