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

package domain

import "time"

// FailureStatus is the lifecycle state of an EventProcessingFailure row.
type FailureStatus string

const (
	FailureStatusPending    FailureStatus = "PENDING"
	FailureStatusProcessing FailureStatus = "PROCESSING"
	FailureStatusSucceeded  FailureStatus = "SUCCEEDED"
	FailureStatusFailed     FailureStatus = "FAILED"
	FailureStatusDeadLetter FailureStatus = "DEAD_LETTER"
)

// EventProcessingFailure is a durable, retryable record of a failed event
// handler invocation (C11).
type EventProcessingFailure struct {
	ID                string
	EventType         string
	EventPayload      string
	ErrorMessage      string
	ErrorStackSnippet string
	RetryCount        int
	MaxRetries        int
	Status            FailureStatus
	NextRetryAt       time.Time
	CreatedAt         time.Time
	ProcessedAt       *time.Time
	FailedAt          *time.Time
}
