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

// Package audit buffers a durable trail of pipeline decisions — batch
// transitions, rule evaluations, coordinator joins — so operators can
// reconstruct why a batch ended up FAILED or why a report was rejected as
// stale, without that write blocking the decision itself.
package audit

import "time"

// Event is a single audited decision.
type Event struct {
	BatchID   string
	EventType string
	Detail    map[string]interface{}
	OccurredAt time.Time
}

// Sink persists a batch of audited events. Implementations (a Data
// Storage-backed HTTP client, a database table) see each batch once: when
// WriteEvents returns an error the buffered store logs it and discards
// that batch rather than redelivering it.
type Sink interface {
	WriteEvents(events []Event) error
}
