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

// Package ingestion is the composition root for the upstream half of the
// pipeline (C1-C8): it drives a batch from UPLOADED through PARSING,
// VALIDATING (the uniqueness and rule checks), and STORING, to COMPLETED
// (or FAILED), wiring the object store gateway, parser, uniqueness
// validator, rule engine, quality scorer, risk calculator, and portfolio
// analyzer around the batch state machine.
package ingestion

import (
	"bytes"
	"context"
	"crypto/md5" //nolint:gosec // integrity metadata, not a security boundary
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/batchlifecycle"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
	"github.com/regtech-core/exposure-pipeline/pkg/eventbus"
	"github.com/regtech-core/exposure-pipeline/pkg/objectstore"
	"github.com/regtech-core/exposure-pipeline/pkg/parser"
	"github.com/regtech-core/exposure-pipeline/pkg/portfolio"
	"github.com/regtech-core/exposure-pipeline/pkg/quality"
	"github.com/regtech-core/exposure-pipeline/pkg/risk"
	"github.com/regtech-core/exposure-pipeline/pkg/rules"
	"github.com/regtech-core/exposure-pipeline/pkg/uniqueness"
)

// BatchStore is the persistence seam ProcessBatch and GetBatchStatus use
// to load and save batch state; *repository.BatchRepository satisfies it.
type BatchStore interface {
	Create(ctx context.Context, tx *sql.Tx, batch *domain.Batch) error
	Save(ctx context.Context, batch *domain.Batch) error
	Get(ctx context.Context, batchID string) (*domain.Batch, error)
}

// recognizedContentTypes maps an accepted upload content type, per
// spec.md §6's "Supported formats: JSON, spreadsheet".
var recognizedContentTypes = map[string]bool{
	"application/json": true,
	"text/csv":         true,
	"application/csv":  true,
}

// Pipeline wires C1-C8 into the two operations spec.md §6 mandates:
// submitBatch and getBatchStatus, plus the ProcessBatch step the
// BatchIngested event handler drives between them.
type Pipeline struct {
	db         *sql.DB
	store      objectstore.Gateway
	batches    BatchStore
	machine    *batchlifecycle.Machine
	jsonParser parser.Parser
	csvParser  parser.Parser
	validator  *uniqueness.Validator
	engine     *rules.Engine
	scorer     *quality.Scorer
	calculator *risk.Calculator
	outbox     *eventbus.Outbox
	workers    int
	now        func() time.Time
	log        *zap.Logger
}

// NewPipeline builds a Pipeline.
func NewPipeline(
	db *sql.DB,
	store objectstore.Gateway,
	batches BatchStore,
	engine *rules.Engine,
	scorer *quality.Scorer,
	calculator *risk.Calculator,
	outbox *eventbus.Outbox,
	log *zap.Logger,
) *Pipeline {
	return &Pipeline{
		db:         db,
		store:      store,
		batches:    batches,
		machine:    batchlifecycle.NewMachine(),
		jsonParser: parser.NewJSONParser(),
		csvParser:  parser.NewTabularParser(),
		validator:  uniqueness.NewValidator(),
		engine:     engine,
		scorer:     scorer,
		calculator: calculator,
		outbox:     outbox,
		workers:    8,
		now:        time.Now,
		log:        log,
	}
}

// SubmitBatch stores content as a new batch in UPLOADED status and
// enqueues a BatchIngested event in the same transaction, per spec.md
// §6's submitBatch(bankId, fileStream, fileName, contentType) contract.
func (p *Pipeline) SubmitBatch(ctx context.Context, bankID, fileName, contentType string, content []byte) (*domain.Batch, error) {
	if strings.TrimSpace(bankID) == "" {
		return nil, apperrors.NewValidationError("MISSING_REQUIRED_PARAMETER: bankId is required")
	}
	if !recognizedContentTypes[contentType] {
		return nil, apperrors.Newf(apperrors.ErrorTypeValidation, "INVALID_FILE_FORMAT: unrecognized content type %q", contentType)
	}

	md5Sum := md5.Sum(content) //nolint:gosec
	sha256Sum := sha256.Sum256(content)
	meta := objectstore.Metadata{
		ExpectedMD5:    hex.EncodeToString(md5Sum[:]),
		ExpectedSHA256: hex.EncodeToString(sha256Sum[:]),
		ContentType:    contentType,
	}

	batchID := uuid.NewString()
	ref, err := p.store.PutObject(ctx, objectstore.RawKey(batchID, fileName), content, meta)
	if err != nil {
		return nil, err
	}

	batch := &domain.Batch{
		BatchID: batchID,
		BankID:  bankID,
		Status:  domain.StatusUploaded,
		FileMetadata: domain.FileMetadata{
			Name:        fileName,
			ContentType: contentType,
			SizeBytes:   int64(len(content)),
			MD5:         meta.ExpectedMD5,
			SHA256:      meta.ExpectedSHA256,
		},
		ObjectRef:  &domain.ObjectRef{Bucket: ref.Bucket, Key: ref.Key, VersionID: ref.VersionID},
		UploadedAt: p.now().UTC(),
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to begin submit transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	if err := p.batches.Create(ctx, tx, batch); err != nil {
		return nil, err
	}
	if err := p.outbox.Enqueue(ctx, tx, domain.EventTypeBatchIngested, domain.BatchIngested{
		BatchID:       batch.BatchID,
		BankID:        batch.BankID,
		ObjectRef:     *batch.ObjectRef,
		ExposureCount: batch.ExposureCount,
		UploadedAt:    batch.UploadedAt,
	}); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to commit submit transaction")
	}

	p.log.Info("batch submitted", zap.String("batch_id", batch.BatchID), zap.String("bank_id", batch.BankID))
	return batch, nil
}

// GetBatchStatus returns the current state of batchID, per spec.md §6's
// getBatchStatus(batchId) contract.
func (p *Pipeline) GetBatchStatus(ctx context.Context, batchID string) (*domain.Batch, error) {
	return p.batches.Get(ctx, batchID)
}

// ProcessBatch drives batchID from UPLOADED to COMPLETED (or FAILED),
// running the parser, uniqueness validator, rule engine, quality scorer,
// risk calculator, and portfolio analyzer in turn. It is invoked by the
// BatchIngested event handler once submitBatch's transaction has
// committed; it is never called directly from the HTTP boundary.
func (p *Pipeline) ProcessBatch(ctx context.Context, batchID string) error {
	batch, err := p.batches.Get(ctx, batchID)
	if err != nil {
		return err
	}

	exposures, violations, ferr := p.parseAndValidate(ctx, batch)
	if ferr != nil {
		return p.fail(ctx, batch, ferr)
	}

	if ferr := p.machine.Apply(batch, domain.StatusStoring); ferr != nil {
		return p.fail(ctx, batch, ferr)
	}
	if err := p.batches.Save(ctx, batch); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to save STORING batch")
	}

	if ferr := p.scoreAndCalculate(ctx, batch, exposures, violations); ferr != nil {
		return p.fail(ctx, batch, ferr)
	}

	if ferr := p.machine.Apply(batch, domain.StatusCompleted); ferr != nil {
		return p.fail(ctx, batch, ferr)
	}
	return p.batches.Save(ctx, batch)
}

// parseAndValidate moves batch to PARSING, drains the raw upload through
// the content-type-appropriate parser, runs the uniqueness checks and
// rule engine, persists the resulting violations, and moves batch to
// VALIDATED.
func (p *Pipeline) parseAndValidate(ctx context.Context, batch *domain.Batch) ([]domain.Exposure, []domain.RuleViolation, error) {
	if err := p.machine.Apply(batch, domain.StatusParsing); err != nil {
		return nil, nil, err
	}
	if err := p.batches.Save(ctx, batch); err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to save PARSING batch")
	}

	raw, err := p.store.GetObject(ctx, objectstore.ObjectRef{
		Bucket: batch.ObjectRef.Bucket, Key: batch.ObjectRef.Key, VersionID: batch.ObjectRef.VersionID,
	})
	if err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to fetch raw upload")
	}

	result, perr := p.selectParser(batch.FileMetadata.ContentType).Parse(ctx, bytes.NewReader(raw))
	if perr != nil {
		return nil, nil, perr
	}
	exposures, perr := parser.Drain(result.Records)
	if perr != nil {
		return nil, nil, perr
	}
	batch.ExposureCount = len(exposures)

	uniquenessResult := p.validator.Validate(batch.BatchID, exposures)

	if err := p.engine.PrefetchForBatch(ctx, exposures); err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to prefetch rule engine state")
	}
	ruleOutcome, err2 := p.engine.EvaluateBatch(ctx, batch.BatchID, exposures, p.workers)
	p.engine.OnBatchComplete()
	if err2 != nil {
		return nil, nil, err2
	}

	violations := append(uniquenessResult.Violations, ruleOutcome.Violations...)
	if err := p.engine.BatchPersistValidationResults(ctx, batch.BatchID, violations); err != nil {
		return nil, nil, err
	}

	if err := p.machine.Apply(batch, domain.StatusValidated); err != nil {
		return nil, nil, err
	}
	if err := p.batches.Save(ctx, batch); err != nil {
		return nil, nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to save VALIDATED batch")
	}
	return exposures, violations, nil
}

// scoreAndCalculate runs the quality scorer, risk calculator, and
// portfolio analyzer over exposures, writes their outputs as derived
// object-store artifacts, and emits the dual events the report
// coordinator (C10) joins on.
func (p *Pipeline) scoreAndCalculate(ctx context.Context, batch *domain.Batch, exposures []domain.Exposure, violations []domain.RuleViolation) error {
	scores := p.scorer.Score(len(exposures), violations)

	analyzer := portfolio.NewAnalyzer(batch.BatchID)
	classified := make([]domain.ClassifiedExposure, 0, len(exposures))
	for _, e := range exposures {
		ce, cerr := p.calculator.Calculate(ctx, e, decimal.Zero)
		if cerr != nil {
			// FX_RATE_UNAVAILABLE is record-scoped: the record is excluded
			// from the portfolio totals but the batch still completes.
			p.log.Warn("exposure excluded from portfolio", zap.String("batch_id", batch.BatchID), zap.String("exposure_id", e.ExposureID), zap.Error(cerr))
			continue
		}
		analyzer.Accumulate(ce)
		classified = append(classified, ce)
	}
	analysis := analyzer.Finish()

	qualityPayload, jerr := json.Marshal(scores)
	if jerr != nil {
		return apperrors.Wrap(jerr, apperrors.ErrorTypeSystem, "failed to marshal quality result")
	}
	qualityRef, serr := p.store.PutObject(ctx, objectstore.DerivedKey(batch.BatchID, "quality-result.json"), qualityPayload, objectstore.Metadata{ContentType: "application/json"})
	if serr != nil {
		return apperrors.Wrap(serr, apperrors.ErrorTypeSystem, "failed to store quality result")
	}

	calcPayload, jerr := json.Marshal(struct {
		Classified []domain.ClassifiedExposure `json:"classified"`
		Portfolio  domain.PortfolioAnalysis    `json:"portfolio"`
	}{
		Classified: classified,
		Portfolio:  analysis,
	})
	if jerr != nil {
		return apperrors.Wrap(jerr, apperrors.ErrorTypeSystem, "failed to marshal calculation result")
	}
	calcRef, serr := p.store.PutObject(ctx, objectstore.DerivedKey(batch.BatchID, "calculation-result.json"), calcPayload, objectstore.Metadata{ContentType: "application/json"})
	if serr != nil {
		return apperrors.Wrap(serr, apperrors.ErrorTypeSystem, "failed to store calculation result")
	}

	tx, terr := p.db.BeginTx(ctx, nil)
	if terr != nil {
		return apperrors.Wrap(terr, apperrors.ErrorTypeSystem, "failed to begin result events transaction")
	}
	defer tx.Rollback() //nolint:errcheck

	dimensionWire := make(map[domain.Dimension]float64, len(scores.DimensionScores))
	for d, v := range scores.DimensionScores {
		dimensionWire[d] = v
	}
	if err := p.outbox.Enqueue(ctx, tx, domain.EventTypeBatchQualityCompleted, domain.BatchQualityCompleted{
		BatchID:   batch.BatchID,
		BankID:    batch.BankID,
		ResultURI: qualityRef.Key,
		QualityScores: domain.QualityScoresWire{
			DimensionScores: dimensionWire,
			OverallScore:    scores.OverallScore,
			Grade:           scores.Grade,
		},
		Timestamp: p.now().UTC(),
	}); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to enqueue BatchQualityCompleted")
	}
	if err := p.outbox.Enqueue(ctx, tx, domain.EventTypeBatchCalculationCompleted, domain.BatchCalculationCompleted{
		BatchID:        batch.BatchID,
		BankID:         batch.BankID,
		ResultURI:      calcRef.Key,
		TotalExposures: len(classified),
		TotalAmountEUR: analysis.TotalPortfolio,
		CompletedAt:    p.now().UTC(),
	}); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to enqueue BatchCalculationCompleted")
	}
	if err := tx.Commit(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to commit result events transaction")
	}
	return nil
}

func (p *Pipeline) selectParser(contentType string) parser.Parser {
	if contentType == "text/csv" || contentType == "application/csv" {
		return p.csvParser
	}
	return p.jsonParser
}

func (p *Pipeline) fail(ctx context.Context, batch *domain.Batch, cause error) error {
	batch.ErrorMessage = cause.Error()
	if err := p.machine.Apply(batch, domain.StatusFailed); err != nil {
		p.log.Error("failed to transition batch to FAILED", zap.String("batch_id", batch.BatchID), zap.Error(err))
	}
	if err := p.batches.Save(ctx, batch); err != nil {
		p.log.Error("failed to save FAILED batch", zap.String("batch_id", batch.BatchID), zap.Error(err))
	}
	return cause
}
