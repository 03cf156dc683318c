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

// Report is the sqlx-mapped row backing the coordinator's (C10)
// idempotency guard and artifact record.
type Report struct {
	ID           string     `db:"id"`
	BatchID      string     `db:"batch_id"`
	BankID       string     `db:"bank_id"`
	Format       string     `db:"format"`
	Status       string     `db:"status"`
	ArtifactJSON []byte     `db:"artifact_json"`
	ErrorMessage string     `db:"error_message"`
	CreatedAt    time.Time  `db:"created_at"`
	CompletedAt  *time.Time `db:"completed_at"`
}
