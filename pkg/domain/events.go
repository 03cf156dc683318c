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

import (
	"time"

	"github.com/shopspring/decimal"
)

// Event type names used on the bus and in the failure queue. These are
// stable wire identifiers (spec.md §6) — never rename without a migration.
const (
	EventTypeBatchIngested                  = "exposure.BatchIngested"
	EventTypeBatchQualityCompleted          = "exposure.BatchQualityCompleted"
	EventTypeBatchCalculationCompleted      = "exposure.BatchCalculationCompleted"
	EventTypeReportGenerated                = "exposure.ReportGenerated"
	EventTypeEventProcessingPermanentlyFailed = "exposure.EventProcessingPermanentlyFailed"
)

// BatchIngested is emitted once a raw upload has been durably stored.
type BatchIngested struct {
	BatchID       string    `json:"batchId"`
	BankID        string    `json:"bankId"`
	ObjectRef     ObjectRef `json:"objectRef"`
	ExposureCount int       `json:"exposureCount"`
	UploadedAt    time.Time `json:"uploadedAt"`
}

// QualityScoresWire is the wire shape of QualityScores nested in
// BatchQualityCompleted.
type QualityScoresWire struct {
	DimensionScores map[Dimension]float64 `json:"dimensionScores"`
	OverallScore    float64               `json:"overallScore"`
	Grade           Grade                 `json:"grade"`
}

// BatchQualityCompleted is one half of the dual-event join consumed by the
// report coordinator (C10).
type BatchQualityCompleted struct {
	BatchID       string            `json:"batchId"`
	BankID        string            `json:"bankId"`
	ResultURI     string            `json:"resultUri"`
	QualityScores QualityScoresWire `json:"qualityScores"`
	Timestamp     time.Time         `json:"timestamp"`
}

// BatchCalculationCompleted is the other half of the dual-event join.
type BatchCalculationCompleted struct {
	BatchID        string          `json:"batchId"`
	BankID         string          `json:"bankId"`
	ResultURI      string          `json:"resultUri"`
	TotalExposures int             `json:"totalExposures"`
	TotalAmountEUR decimal.Decimal `json:"totalAmountEur"`
	CompletedAt    time.Time       `json:"completedAt"`
}

// ReportArtifact is one rendered output of a report (PDF, spreadsheet, XBRL).
type ReportArtifact struct {
	Format    string    `json:"format"`
	ObjectRef ObjectRef `json:"objectRef"`
}

// ReportGenerated is emitted once the coordinator successfully joins both
// streams and renders a report.
type ReportGenerated struct {
	BatchID     string           `json:"batchId"`
	ReportID    string           `json:"reportId"`
	Artifacts   []ReportArtifact `json:"artifacts"`
	CompletedAt time.Time        `json:"completedAt"`
}

// EventProcessingPermanentlyFailed is emitted when the failure queue (C11)
// exhausts retries for an event.
type EventProcessingPermanentlyFailed struct {
	FailureID  string `json:"failureId"`
	EventType  string `json:"eventType"`
	RetryCount int    `json:"retryCount"`
	LastError  string `json:"lastError"`
}
