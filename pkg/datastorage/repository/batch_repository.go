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
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// BatchRepository persists models.Batch rows backing the batch state
// machine (C1) across the ingestion pipeline's UPLOADED..COMPLETED walk.
type BatchRepository struct {
	db  *sql.DB
	log *zap.Logger
}

// NewBatchRepository builds a BatchRepository.
func NewBatchRepository(db *sql.DB, log *zap.Logger) *BatchRepository {
	return &BatchRepository{db: db, log: log}
}

// Create inserts a new batch row on tx, the same transaction enqueueing
// the BatchIngested outbox entry it produces.
func (r *BatchRepository) Create(ctx context.Context, tx *sql.Tx, batch *domain.Batch) error {
	fileMeta, err := json.Marshal(batch.FileMetadata)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to marshal file metadata")
	}
	objRef, err := json.Marshal(batch.ObjectRef)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to marshal object ref")
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO batches (
			batch_id, bank_id, status, file_metadata, object_ref,
			exposure_count, error_message, uploaded_at, processing_duration_ms
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, batch.BatchID, batch.BankID, string(batch.Status), fileMeta, objRef,
		batch.ExposureCount, batch.ErrorMessage, batch.UploadedAt, batch.ProcessingDurationMs)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to insert batch")
	}
	return nil
}

// Save persists batch's current state in full, reflecting whatever
// transition batchlifecycle.Machine applied in memory.
func (r *BatchRepository) Save(ctx context.Context, batch *domain.Batch) error {
	fileMeta, err := json.Marshal(batch.FileMetadata)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to marshal file metadata")
	}
	objRef, err := json.Marshal(batch.ObjectRef)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to marshal object ref")
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE batches SET
			status = $1, object_ref = $2, exposure_count = $3, error_message = $4,
			file_metadata = $5, completed_at = $6, failed_at = $7, processing_duration_ms = $8
		WHERE batch_id = $9
	`, string(batch.Status), objRef, batch.ExposureCount, batch.ErrorMessage,
		fileMeta, batch.CompletedAt, batch.FailedAt, batch.ProcessingDurationMs, batch.BatchID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to save batch")
	}
	return nil
}

// Get returns the batch identified by batchID, or a NotFound AppError if
// none exists.
func (r *BatchRepository) Get(ctx context.Context, batchID string) (*domain.Batch, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT batch_id, bank_id, status, file_metadata, object_ref,
		       exposure_count, error_message, uploaded_at, completed_at, failed_at, processing_duration_ms
		FROM batches WHERE batch_id = $1
	`, batchID)

	var (
		b                     domain.Batch
		status                string
		fileMeta, objRef      []byte
		completedAt, failedAt sql.NullTime
	)
	if err := row.Scan(&b.BatchID, &b.BankID, &status, &fileMeta, &objRef,
		&b.ExposureCount, &b.ErrorMessage, &b.UploadedAt, &completedAt, &failedAt, &b.ProcessingDurationMs); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.Newf(apperrors.ErrorTypeNotFound, "batch %s not found", batchID)
		}
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to query batch")
	}
	b.Status = domain.Status(status)
	if completedAt.Valid {
		b.CompletedAt = &completedAt.Time
	}
	if failedAt.Valid {
		b.FailedAt = &failedAt.Time
	}
	if len(fileMeta) > 0 {
		if err := json.Unmarshal(fileMeta, &b.FileMetadata); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to unmarshal file metadata")
		}
	}
	if len(objRef) > 0 && string(objRef) != "null" {
		var ref domain.ObjectRef
		if err := json.Unmarshal(objRef, &ref); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to unmarshal object ref")
		}
		b.ObjectRef = &ref
	}
	return &b, nil
}
