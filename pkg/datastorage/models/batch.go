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

// Batch is the sqlx-mapped row backing the batch state machine (C1), per
// spec.md §6's "persisted state layout": batches(batchId PK, bankId,
// status, fileMetadata json, objectRef json, exposureCount, errorMessage,
// timestamps…).
type Batch struct {
	BatchID              string     `db:"batch_id"`
	BankID               string     `db:"bank_id"`
	Status               string     `db:"status"`
	FileMetadataJSON     []byte     `db:"file_metadata"`
	ObjectRefJSON        []byte     `db:"object_ref"`
	ExposureCount        int        `db:"exposure_count"`
	ErrorMessage         string     `db:"error_message"`
	UploadedAt           time.Time  `db:"uploaded_at"`
	CompletedAt          *time.Time `db:"completed_at"`
	FailedAt             *time.Time `db:"failed_at"`
	ProcessingDurationMs int64      `db:"processing_duration_ms"`
}
