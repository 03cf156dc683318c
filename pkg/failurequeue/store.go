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
	"time"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// Repository persists EventProcessingFailure rows and the status
// transitions the processor drives them through.
type Repository interface {
	// Save inserts a new PENDING failure row.
	Save(ctx context.Context, failure *domain.EventProcessingFailure) error
	// ClaimPending returns up to limit rows with status=PENDING and
	// nextRetryAt<=at, in age (createdAt) order, atomically marking them
	// PROCESSING so a concurrent processor cannot claim the same row.
	ClaimPending(ctx context.Context, at time.Time, limit int) ([]domain.EventProcessingFailure, error)
	// MarkSucceeded transitions id to SUCCEEDED.
	MarkSucceeded(ctx context.Context, id string) error
	// MarkRetry stores the given retryCount, records cause, and sets status
	// back to PENDING with the given nextRetryAt.
	MarkRetry(ctx context.Context, id string, retryCount int, nextRetryAt time.Time, cause string) error
	// MarkDeadLetter transitions id to DEAD_LETTER after retries are
	// exhausted.
	MarkDeadLetter(ctx context.Context, id string, cause string) error
}
