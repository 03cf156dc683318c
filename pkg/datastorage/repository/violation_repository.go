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

	"go.uber.org/zap"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// ViolationRepository implements rules.ViolationRepository over the
// rule_violations table.
type ViolationRepository struct {
	db  *sql.DB
	log *zap.Logger
}

// NewViolationRepository builds a ViolationRepository.
func NewViolationRepository(db *sql.DB, log *zap.Logger) *ViolationRepository {
	return &ViolationRepository{db: db, log: log}
}

// InsertBatch inserts every violation in a single transaction, matching
// the batchPersistValidationResults contract of flushing a batch's
// violations exactly once.
func (r *ViolationRepository) InsertBatch(ctx context.Context, batchID string, violations []domain.RuleViolation) error {
	if len(violations) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to begin violation insert transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO rule_violations (batch_id, exposure_id, rule_id, dimension, severity, field, message, observed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to prepare violation insert")
	}
	defer stmt.Close()

	for _, v := range violations {
		if _, err := stmt.ExecContext(ctx, batchID, v.ExposureID, v.RuleID, string(v.Dimension), string(v.Severity), v.Field, v.Message, v.ObservedAt); err != nil {
			return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to insert rule violation")
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to commit violation insert")
	}
	return nil
}
