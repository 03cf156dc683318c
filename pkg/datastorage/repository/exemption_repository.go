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

// ExemptionRepository implements rules.ExemptionStore over the
// exemptions table.
type ExemptionRepository struct {
	db  *sql.DB
	log *zap.Logger
}

// NewExemptionRepository builds an ExemptionRepository.
func NewExemptionRepository(db *sql.DB, log *zap.Logger) *ExemptionRepository {
	return &ExemptionRepository{db: db, log: log}
}

// LoadForEntities returns every exemption recorded for the given
// entities, whatever its time window; CoversAt/AppliesToRule filter the time window and rule
// scope at evaluation time.
func (r *ExemptionRepository) LoadForEntities(ctx context.Context, entityType domain.EntityType, entityIDs []string) ([]domain.Exemption, error) {
	if len(entityIDs) == 0 {
		return nil, nil
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT entity_id, rule_id, valid_from, valid_to
		FROM exemptions
		WHERE entity_type = $1 AND entity_id = ANY($2)
	`, string(entityType), entityIDs)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to query exemptions")
	}
	defer rows.Close()

	var out []domain.Exemption
	for rows.Next() {
		ex := domain.Exemption{EntityType: entityType}
		if err := rows.Scan(&ex.EntityID, &ex.RuleID, &ex.ValidFrom, &ex.ValidTo); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to scan exemption")
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to iterate exemptions")
	}
	return out, nil
}
