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

// Package coordinator implements the report coordinator (C10): a dual-
// event join keyed by batchId. The first of BatchQualityCompleted /
// BatchCalculationCompleted to arrive for a batch parks it in an
// AWAITING_* state; the second triggers JOIN and report generation.
package coordinator

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
	"github.com/regtech-core/exposure-pipeline/pkg/objectstore"
	"github.com/regtech-core/exposure-pipeline/pkg/report"
)

// ReportStore persists the coordinator's idempotency record.
type ReportStore interface {
	// FindCompleted returns the COMPLETED report for batchID, if any.
	FindCompleted(ctx context.Context, batchID string) (*domain.Report, error)
	Create(ctx context.Context, r *domain.Report) error
	MarkCompleted(ctx context.Context, reportID string, artifacts []domain.ReportArtifact) error
	MarkFailed(ctx context.Context, reportID string, errMessage string) error
}

// FailureSink is the coordinator's only reaction to a report generation
// failure: hand it to C11 rather than retry inline.
type FailureSink interface {
	SaveFailure(ctx context.Context, eventType string, payloadJSON []byte, errMessage string, errStack string, maxRetries int) error
}

// joinState accumulates whichever half of the dual-event pair has arrived
// for one batch.
type joinState struct {
	mu          sync.Mutex
	quality     *domain.BatchQualityCompleted
	calculation *domain.BatchCalculationCompleted
}

// Coordinator joins BatchQualityCompleted and BatchCalculationCompleted
// per batchId and triggers report generation on JOIN.
type Coordinator struct {
	reports        ReportStore
	failures       FailureSink
	objectStore    objectstore.Gateway
	renderers      *report.Registry
	reportFormat   domain.ReportFormat
	reportBucket   string
	staleThreshold time.Duration
	now            func() time.Time
	log            *zap.Logger

	inFlight sync.Map // batchId -> *joinState
}

// Config selects the coordinator's behavior knobs, mirroring
// internal/config.CoordinatorConfig.
type Config struct {
	ReportFormat        domain.ReportFormat
	ReportBucket        string
	StaleEventThreshold time.Duration
}

// New builds a Coordinator.
func New(cfg Config, reports ReportStore, failures FailureSink, objectStore objectstore.Gateway, renderers *report.Registry, log *zap.Logger) *Coordinator {
	threshold := cfg.StaleEventThreshold
	if threshold == 0 {
		threshold = 24 * time.Hour
	}
	return &Coordinator{
		reports:        reports,
		failures:       failures,
		objectStore:    objectStore,
		renderers:      renderers,
		reportFormat:   cfg.ReportFormat,
		reportBucket:   cfg.ReportBucket,
		staleThreshold: threshold,
		now:            time.Now,
		log:            log,
	}
}

// Outcome reports what the coordinator did with one incoming event.
type Outcome struct {
	State  domain.CoordinationState
	Reason domain.CoordinationFilterReason
}

// HandleQualityCompleted processes one BatchQualityCompleted event.
func (c *Coordinator) HandleQualityCompleted(ctx context.Context, evt domain.BatchQualityCompleted) (Outcome, error) {
	if evt.BatchID == "" || evt.BankID == "" || evt.ResultURI == "" || evt.Timestamp.IsZero() {
		return Outcome{Reason: domain.FilterInvalid}, nil
	}
	if c.isStale(evt.Timestamp) {
		return Outcome{Reason: domain.FilterStale}, nil
	}
	return c.join(ctx, evt.BatchID, evt.BankID, func(st *joinState) { st.quality = &evt })
}

// HandleCalculationCompleted processes one BatchCalculationCompleted event.
func (c *Coordinator) HandleCalculationCompleted(ctx context.Context, evt domain.BatchCalculationCompleted) (Outcome, error) {
	if evt.BatchID == "" || evt.BankID == "" || evt.ResultURI == "" || evt.CompletedAt.IsZero() {
		return Outcome{Reason: domain.FilterInvalid}, nil
	}
	if c.isStale(evt.CompletedAt) {
		return Outcome{Reason: domain.FilterStale}, nil
	}
	return c.join(ctx, evt.BatchID, evt.BankID, func(st *joinState) { st.calculation = &evt })
}

func (c *Coordinator) isStale(eventTime time.Time) bool {
	return c.now().Sub(eventTime) > c.staleThreshold
}

// join applies apply to the batch's in-flight join state, completing a
// JOIN and triggering report generation once both halves are present.
func (c *Coordinator) join(ctx context.Context, batchID, bankID string, apply func(*joinState)) (Outcome, error) {
	if existing, err := c.reports.FindCompleted(ctx, batchID); err != nil {
		return Outcome{}, err
	} else if existing != nil {
		return Outcome{State: domain.CoordinationIdempotentSkip}, nil
	}

	actual, loaded := c.inFlight.LoadOrStore(batchID, &joinState{})
	st := actual.(*joinState)

	st.mu.Lock()
	apply(st)
	quality, calculation := st.quality, st.calculation
	st.mu.Unlock()

	if quality == nil {
		return Outcome{State: domain.CoordinationAwaitingQuality}, nil
	}
	if calculation == nil {
		return Outcome{State: domain.CoordinationAwaitingCalculation}, nil
	}
	_ = loaded

	c.inFlight.Delete(batchID)

	if err := c.completeJoin(ctx, bankID, *quality, *calculation); err != nil {
		return Outcome{}, err
	}
	return Outcome{State: domain.CoordinationJoined}, nil
}

// completeJoin renders the configured report format and writes the
// artifact via the object store. A rendering or write failure is handed
// to the failure queue — the coordinator never retries directly, and the
// in-flight entry has already been released so a re-delivered event can
// attempt the join again.
func (c *Coordinator) completeJoin(ctx context.Context, bankID string, quality domain.BatchQualityCompleted, calculation domain.BatchCalculationCompleted) error {
	rpt := &domain.Report{
		ID:      reportID(quality.BatchID, c.now()),
		BatchID: quality.BatchID,
		BankID:  bankID,
		Format:  c.reportFormat,
		Status:  domain.ReportStatusInProgress,
	}
	if err := c.reports.Create(ctx, rpt); err != nil {
		return err
	}

	renderer, ok := c.renderers.Resolve(c.reportFormat)
	if !ok {
		return c.fail(ctx, rpt, quality, calculation, apperrors.Newf(apperrors.ErrorTypeSystem, "no renderer registered for format %s", c.reportFormat))
	}

	in := report.Input{
		BatchID:        quality.BatchID,
		BankID:         bankID,
		QualityURI:     quality.ResultURI,
		QualityScores:  quality.QualityScores,
		CalculationURI: calculation.ResultURI,
		TotalExposures: calculation.TotalExposures,
		TotalAmountEUR: calculation.TotalAmountEUR,
		GeneratedAt:    c.now(),
	}

	content, contentType, err := renderer.Render(in)
	if err != nil {
		return c.fail(ctx, rpt, quality, calculation, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "report rendering failed"))
	}

	key := reportObjectKey(rpt.ID, c.reportFormat)
	ref, err := c.objectStore.PutObject(ctx, key, content, objectstore.Metadata{ContentType: contentType})
	if err != nil {
		return c.fail(ctx, rpt, quality, calculation, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to write report artifact"))
	}

	artifacts := []domain.ReportArtifact{{
		Format: string(c.reportFormat),
		ObjectRef: domain.ObjectRef{Bucket: ref.Bucket, Key: ref.Key, VersionID: ref.VersionID},
	}}
	return c.reports.MarkCompleted(ctx, rpt.ID, artifacts)
}

func (c *Coordinator) fail(ctx context.Context, rpt *domain.Report, quality domain.BatchQualityCompleted, calculation domain.BatchCalculationCompleted, cause error) error {
	if markErr := c.reports.MarkFailed(ctx, rpt.ID, cause.Error()); markErr != nil && c.log != nil {
		c.log.Error("failed to mark report FAILED", zap.String("reportId", rpt.ID), zap.Error(markErr))
	}

	payload, _ := marshalJoinedEvents(quality, calculation)
	if err := c.failures.SaveFailure(ctx, domain.EventTypeReportGenerated, payload, cause.Error(), "", 5); err != nil && c.log != nil {
		c.log.Error("failed to enqueue report generation failure", zap.String("batchId", rpt.BatchID), zap.Error(err))
	}
	return cause
}

func reportID(batchID string, at time.Time) string {
	return batchID + "-" + at.UTC().Format("20060102150405")
}

func reportObjectKey(reportID string, format domain.ReportFormat) string {
	ext := map[domain.ReportFormat]string{
		domain.ReportFormatPDF:  "pdf",
		domain.ReportFormatXLSX: "xlsx",
		domain.ReportFormatXBRL: "xbrl",
	}[format]
	return "reports/" + reportID + "." + ext
}
