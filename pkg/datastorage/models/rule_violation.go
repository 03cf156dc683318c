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

package models

import "time"

// RuleViolation is the row backing rules.ViolationRepository, per
// spec.md §6's rule_violations(batchId FK, exposureId, ruleId, dimension,
// severity, field?, message, observedAt).
type RuleViolation struct {
	BatchID    string    `db:"batch_id"`
	ExposureID string    `db:"exposure_id"`
	RuleID     string    `db:"rule_id"`
	Dimension  string    `db:"dimension"`
	Severity   string    `db:"severity"`
	Field      *string   `db:"field"`
	Message    string    `db:"message"`
	ObservedAt time.Time `db:"observed_at"`
}
