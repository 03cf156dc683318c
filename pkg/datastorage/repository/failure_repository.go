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

package repository

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// FailureRepository persists models.EventProcessingFailure rows backing
// the C11 failure queue and retry processor.
type FailureRepository struct {
	db  *sql.DB
	log *zap.Logger
}

// NewFailureRepository builds a FailureRepository.
func NewFailureRepository(db *sql.DB, log *zap.Logger) *FailureRepository {
	return &FailureRepository{db: db, log: log}
}

// Save inserts a new PENDING failure row.
func (r *FailureRepository) Save(ctx context.Context, failure *domain.EventProcessingFailure) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO event_processing_failures (
			id, event_type, event_payload, error_message, error_stack_snippet,
			retry_count, max_retries, status, next_retry_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		failure.ID, failure.EventType, failure.EventPayload, failure.ErrorMessage, failure.ErrorStackSnippet,
		failure.RetryCount, failure.MaxRetries, string(failure.Status), failure.NextRetryAt, failure.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to save event processing failure")
	}
	return nil
}

// ClaimPending atomically selects up to limit due PENDING rows and flips
// them to PROCESSING so a concurrent processor instance cannot claim the
// same row, using SELECT ... FOR UPDATE SKIP LOCKED under a transaction.
func (r *FailureRepository) ClaimPending(ctx context.Context, at time.Time, limit int) ([]domain.EventProcessingFailure, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to begin claim transaction")
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, event_type, event_payload, error_message, error_stack_snippet,
		       retry_count, max_retries, status, next_retry_at, created_at
		FROM event_processing_failures
		WHERE status = $1 AND next_retry_at <= $2
		ORDER BY created_at ASC
		LIMIT $3
		FOR UPDATE SKIP LOCKED
	`, string(domain.FailureStatusPending), at, limit)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to query pending failures")
	}

	var claimed []domain.EventProcessingFailure
	for rows.Next() {
		var f domain.EventProcessingFailure
		var status string
		if err := rows.Scan(&f.ID, &f.EventType, &f.EventPayload, &f.ErrorMessage, &f.ErrorStackSnippet,
			&f.RetryCount, &f.MaxRetries, &status, &f.NextRetryAt, &f.CreatedAt); err != nil {
			rows.Close()
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to scan event processing failure")
		}
		f.Status = domain.FailureStatus(status)
		claimed = append(claimed, f)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to iterate pending failures")
	}

	for _, f := range claimed {
		if _, err := tx.ExecContext(ctx, `UPDATE event_processing_failures SET status = $1 WHERE id = $2`,
			string(domain.FailureStatusProcessing), f.ID); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to mark failure processing")
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to commit claim transaction")
	}
	return claimed, nil
}

// MarkSucceeded transitions id to SUCCEEDED.
func (r *FailureRepository) MarkSucceeded(ctx context.Context, id string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE event_processing_failures SET status = $1, processed_at = $2 WHERE id = $3
	`, string(domain.FailureStatusSucceeded), now, id)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to mark failure succeeded")
	}
	return nil
}

// MarkRetry increments retryCount and schedules the next attempt.
func (r *FailureRepository) MarkRetry(ctx context.Context, id string, retryCount int, nextRetryAt time.Time, cause string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE event_processing_failures
		SET status = $1, retry_count = $2, next_retry_at = $3, error_message = $4
		WHERE id = $5
	`, string(domain.FailureStatusPending), retryCount, nextRetryAt, cause, id)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to schedule failure retry")
	}
	return nil
}

// MarkDeadLetter transitions id to DEAD_LETTER.
func (r *FailureRepository) MarkDeadLetter(ctx context.Context, id string, cause string) error {
	now := time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `
		UPDATE event_processing_failures SET status = $1, error_message = $2, failed_at = $3 WHERE id = $4
	`, string(domain.FailureStatusDeadLetter), cause, now, id)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to mark failure dead-lettered")
	}
	return nil
}
