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
	"time"

	"go.uber.org/zap"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// ReportRepository persists models.Report rows backing the coordinator's
// (C10) idempotency guard.
type ReportRepository struct {
	db  *sql.DB
	log *zap.Logger
}

// NewReportRepository builds a ReportRepository.
func NewReportRepository(db *sql.DB, log *zap.Logger) *ReportRepository {
	return &ReportRepository{db: db, log: log}
}

// FindCompleted returns the COMPLETED report for batchID, or nil if none
// exists — the coordinator's idempotency check.
func (r *ReportRepository) FindCompleted(ctx context.Context, batchID string) (*domain.Report, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, batch_id, bank_id, format, status, artifact_json, error_message, created_at, completed_at
		FROM reports WHERE batch_id = $1 AND status = $2
	`, batchID, domain.ReportStatusCompleted)

	var (
		id, bID, bank, format, status, errMsg string
		artifactJSON                          []byte
		createdAt                             time.Time
		completedAt                           sql.NullTime
	)
	if err := row.Scan(&id, &bID, &bank, &format, &status, &artifactJSON, &errMsg, &createdAt, &completedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to query report")
	}

	var artifacts []domain.ReportArtifact
	if len(artifactJSON) > 0 {
		if err := json.Unmarshal(artifactJSON, &artifacts); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to unmarshal report artifacts")
		}
	}

	rpt := &domain.Report{
		ID:           id,
		BatchID:      bID,
		BankID:       bank,
		Format:       domain.ReportFormat(format),
		Status:       domain.ReportStatus(status),
		Artifacts:    artifacts,
		ErrorMessage: errMsg,
		CreatedAt:    createdAt,
	}
	if completedAt.Valid {
		rpt.CompletedAt = &completedAt.Time
	}
	return rpt, nil
}

// Create inserts rpt as IN_PROGRESS.
func (r *ReportRepository) Create(ctx context.Context, rpt *domain.Report) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (id, batch_id, bank_id, format, status)
		VALUES ($1, $2, $3, $4, $5)
	`, rpt.ID, rpt.BatchID, rpt.BankID, string(rpt.Format), string(domain.ReportStatusInProgress))
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to insert report")
	}
	return nil
}

// MarkCompleted records artifacts and transitions reportID to COMPLETED.
func (r *ReportRepository) MarkCompleted(ctx context.Context, reportID string, artifacts []domain.ReportArtifact) error {
	payload, err := json.Marshal(artifacts)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to marshal report artifacts")
	}
	_, err = r.db.ExecContext(ctx, `
		UPDATE reports SET status = $1, artifact_json = $2, completed_at = $3 WHERE id = $4
	`, string(domain.ReportStatusCompleted), payload, time.Now().UTC(), reportID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to mark report completed")
	}
	return nil
}

// MarkFailed transitions reportID to FAILED with errMessage.
func (r *ReportRepository) MarkFailed(ctx context.Context, reportID string, errMessage string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE reports SET status = $1, error_message = $2 WHERE id = $3
	`, string(domain.ReportStatusFailed), errMessage, reportID)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to mark report failed")
	}
	return nil
}
