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

// RuleRepository implements rules.RuleStore over the business_rules
// table: the engine's rule cache is loaded once from here and retained
// for the process lifetime.
type RuleRepository struct {
	db  *sql.DB
	log *zap.Logger
}

// NewRuleRepository builds a RuleRepository.
func NewRuleRepository(db *sql.DB, log *zap.Logger) *RuleRepository {
	return &RuleRepository{db: db, log: log}
}

// LoadEnabled returns one row per rule_id: the highest-numbered enabled
// version of that rule.
func (r *RuleRepository) LoadEnabled(ctx context.Context) ([]domain.BusinessRule, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT ON (rule_id) rule_id, expression, dimension, severity, field, message
		FROM business_rules
		WHERE enabled = true
		ORDER BY rule_id, version DESC
	`)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to query business rules")
	}
	defer rows.Close()

	var out []domain.BusinessRule
	for rows.Next() {
		var (
			rule           domain.BusinessRule
			dimension, sev string
		)
		if err := rows.Scan(&rule.RuleID, &rule.Expression, &dimension, &sev, &rule.Field, &rule.Message); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to scan business rule")
		}
		rule.Enabled = true
		rule.Dimension = domain.Dimension(dimension)
		rule.Severity = domain.Severity(sev)
		out = append(out, rule)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to iterate business rules")
	}
	return out, nil
}
