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

package rules

import (
	"context"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// RuleStore loads the enabled ruleset. It is read once per Engine
// lifetime (spec.md §4.5's "rule cache is retained across batches").
type RuleStore interface {
	LoadEnabled(ctx context.Context) ([]domain.BusinessRule, error)
}

// ExemptionStore loads the exemptions in force for a set of entities.
type ExemptionStore interface {
	LoadForEntities(ctx context.Context, entityType domain.EntityType, entityIDs []string) ([]domain.Exemption, error)
}

// ViolationRepository persists a batch's violations in a single
// transaction (spec.md §4.5's batchPersistValidationResults).
type ViolationRepository interface {
	InsertBatch(ctx context.Context, batchID string, violations []domain.RuleViolation) error
}
