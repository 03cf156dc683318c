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

package failurequeue

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// Queue is the write-side entry point other components (the coordinator,
// event-bus consumers) use to record a failed operation — spec.md §4.11's
// saveFailure contract.
type Queue struct {
	repo Repository
	now  func() time.Time
}

// NewQueue builds a Queue over repo.
func NewQueue(repo Repository) *Queue {
	return &Queue{repo: repo, now: time.Now}
}

// SaveFailure inserts a new PENDING row, immediately retryable.
func (q *Queue) SaveFailure(ctx context.Context, eventType string, payloadJSON []byte, errMessage string, errStack string, maxRetries int) error {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	now := q.now()
	failure := &domain.EventProcessingFailure{
		ID:                newFailureID(),
		EventType:         eventType,
		EventPayload:      string(payloadJSON),
		ErrorMessage:      errMessage,
		ErrorStackSnippet: errStack,
		RetryCount:        0,
		MaxRetries:        maxRetries,
		Status:            domain.FailureStatusPending,
		NextRetryAt:       now,
		CreatedAt:         now,
	}
	return q.repo.Save(ctx, failure)
}

func newFailureID() string {
	var b [16]byte
	_, _ = rand.Read(b[:])
	return hex.EncodeToString(b[:])
}
