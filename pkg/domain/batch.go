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

package domain

import "time"

// Status is the lifecycle state of a Batch. See pkg/batchlifecycle for the
// legal transition table.
type Status string

const (
	StatusUploaded  Status = "UPLOADED"
	StatusParsing   Status = "PARSING"
	StatusValidated Status = "VALIDATED"
	StatusStoring   Status = "STORING"
	StatusCompleted Status = "COMPLETED"
	StatusFailed    Status = "FAILED"
)

// FileMetadata describes the file a bank submitted.
type FileMetadata struct {
	Name        string
	ContentType string
	SizeBytes   int64
	MD5         string
	SHA256      string
}

// ObjectRef locates a stored artifact (raw upload or derived output).
type ObjectRef struct {
	Bucket    string
	Key       string
	VersionID string
}

// Batch is an uploaded file and all derived state for one bank's submission.
type Batch struct {
	BatchID              string
	BankID               string
	Status               Status
	FileMetadata         FileMetadata
	ObjectRef            *ObjectRef
	ExposureCount        int
	UploadedAt           time.Time
	CompletedAt          *time.Time
	FailedAt             *time.Time
	ErrorMessage         string
	ProcessingDurationMs int64
}
