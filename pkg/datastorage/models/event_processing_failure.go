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

package models

import "time"

// EventProcessingFailure is the sqlx-mapped row backing the failure queue
// and retry processor (C11).
type EventProcessingFailure struct {
	ID                string     `db:"id"`
	EventType         string     `db:"event_type"`
	EventPayload      string     `db:"event_payload"`
	ErrorMessage      string     `db:"error_message"`
	ErrorStackSnippet string     `db:"error_stack_snippet"`
	RetryCount        int        `db:"retry_count"`
	MaxRetries        int        `db:"max_retries"`
	Status            string     `db:"status"`
	NextRetryAt       time.Time  `db:"next_retry_at"`
	CreatedAt         time.Time  `db:"created_at"`
	ProcessedAt       *time.Time `db:"processed_at"`
	FailedAt          *time.Time `db:"failed_at"`
}
