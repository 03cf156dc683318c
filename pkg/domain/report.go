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

// ReportStatus is the lifecycle of a generated report row, checked by the
// coordinator's idempotency guard before a JOIN is processed twice.
type ReportStatus string

const (
	ReportStatusInProgress ReportStatus = "IN_PROGRESS"
	ReportStatusCompleted  ReportStatus = "COMPLETED"
	ReportStatusFailed     ReportStatus = "FAILED"
)

// ReportFormat names the rendering the coordinator invokes on JOIN.
type ReportFormat string

const (
	ReportFormatPDF   ReportFormat = "PDF"
	ReportFormatXLSX  ReportFormat = "XLSX"
	ReportFormatXBRL  ReportFormat = "XBRL"
)

// Report is the durable record of one coordinator JOIN's output.
type Report struct {
	ID          string
	BatchID     string
	BankID      string
	Format      ReportFormat
	Status      ReportStatus
	Artifacts   []ReportArtifact
	ErrorMessage string
	CreatedAt   time.Time
	CompletedAt *time.Time
}
