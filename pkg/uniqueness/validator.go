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

// Package uniqueness implements the uniqueness validator (C4): three
// duplicate checks over a batch's exposures (exposureId, referenceNumber,
// and full-content hash) that together seed the uniqueness dimension of
// the quality scorer.
package uniqueness

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

const (
	RuleExposureIDDuplicate      = "UNIQUENESS_EXPOSURE_ID_DUPLICATE"
	RuleReferenceNumberDuplicate = "UNIQUENESS_REFERENCE_NUMBER_DUPLICATE"
	RuleContentDuplicate         = "UNIQUENESS_CONTENT_DUPLICATE"
)

// Result is the outcome of Validate: the violations found plus the
// per-batch uniqueness dimension score derived from them.
type Result struct {
	Violations []domain.RuleViolation
	Score      float64
}

// Validator runs the three uniqueness checks named in spec.md §4.4.
type Validator struct {
	// Now is injected for deterministic ObservedAt timestamps in tests;
	// defaults to time.Now when nil.
	Now func() time.Time
}

// NewValidator builds a Validator using the real clock.
func NewValidator() *Validator {
	return &Validator{Now: time.Now}
}

func (v *Validator) now() time.Time {
	if v.Now != nil {
		return v.Now()
	}
	return time.Now()
}

// Validate runs all three checks over exposures and returns every
// violation found plus the resulting uniqueness score. An empty batch
// scores 100 (no opportunity for duplication).
func (v *Validator) Validate(batchID string, exposures []domain.Exposure) Result {
	if len(exposures) == 0 {
		return Result{Score: 100}
	}

	observedAt := v.now().UTC()
	var violations []domain.RuleViolation
	// flagged tracks duplicated *records* by index, not by the colliding
	// key value — a key with N duplicates must flag all N records, not
	// collapse them into one map entry.
	flagged := make(map[int]bool, len(exposures))

	violations = append(violations, v.checkExposureID(batchID, exposures, observedAt, flagged)...)
	violations = append(violations, v.checkReferenceNumber(batchID, exposures, observedAt, flagged)...)
	violations = append(violations, v.checkContentDuplicate(batchID, exposures, observedAt, flagged)...)

	total := len(exposures)
	score := float64(total-len(flagged)) / float64(total) * 100

	return Result{Violations: violations, Score: score}
}

func (v *Validator) checkExposureID(batchID string, exposures []domain.Exposure, observedAt time.Time, flagged map[int]bool) []domain.RuleViolation {
	groups := make(map[string][]int)
	for i, e := range exposures {
		if e.ExposureID == "" {
			continue
		}
		groups[e.ExposureID] = append(groups[e.ExposureID], i)
	}

	var violations []domain.RuleViolation
	for _, indices := range groups {
		if len(indices) <= 1 {
			continue
		}
		for _, i := range indices {
			flagged[i] = true
			e := exposures[i]
			violations = append(violations, domain.RuleViolation{
				BatchID:    batchID,
				ExposureID: e.ExposureID,
				RuleID:     RuleExposureIDDuplicate,
				Dimension:  domain.DimensionUniqueness,
				Severity:   domain.SeverityCritical,
				Message:    "duplicate exposureId within batch",
				ObservedAt: observedAt,
			})
		}
	}
	return violations
}

func (v *Validator) checkReferenceNumber(batchID string, exposures []domain.Exposure, observedAt time.Time, flagged map[int]bool) []domain.RuleViolation {
	groups := make(map[string][]int)
	for i, e := range exposures {
		if e.ReferenceNumber == nil || strings.TrimSpace(*e.ReferenceNumber) == "" {
			continue
		}
		groups[*e.ReferenceNumber] = append(groups[*e.ReferenceNumber], i)
	}

	var violations []domain.RuleViolation
	for _, indices := range groups {
		if len(indices) <= 1 {
			continue
		}
		for _, i := range indices {
			flagged[i] = true
			e := exposures[i]
			violations = append(violations, domain.RuleViolation{
				BatchID:    batchID,
				ExposureID: e.ExposureID,
				RuleID:     RuleReferenceNumberDuplicate,
				Dimension:  domain.DimensionUniqueness,
				Severity:   domain.SeverityHigh,
				Message:    "duplicate referenceNumber within batch",
				ObservedAt: observedAt,
			})
		}
	}
	return violations
}

func (v *Validator) checkContentDuplicate(batchID string, exposures []domain.Exposure, observedAt time.Time, flagged map[int]bool) []domain.RuleViolation {
	groups := make(map[string][]int)
	for i, e := range exposures {
		groups[contentHash(e)] = append(groups[contentHash(e)], i)
	}

	var violations []domain.RuleViolation
	for _, indices := range groups {
		if len(indices) <= 1 {
			continue
		}
		for _, i := range indices {
			flagged[i] = true
			e := exposures[i]
			violations = append(violations, domain.RuleViolation{
				BatchID:    batchID,
				ExposureID: e.ExposureID,
				RuleID:     RuleContentDuplicate,
				Dimension:  domain.DimensionUniqueness,
				Severity:   domain.SeverityHigh,
				Message:    "duplicate exposure content within batch",
				ObservedAt: observedAt,
			})
		}
	}
	return violations
}

// contentHash computes the SHA-256 over the exact, ordered field list
// contracted by spec.md §4.4, excluding exposureId and referenceNumber:
// counterpartyId|counterpartyLei|sector|countryCode|amount|currency|
// reportingDate|valuationDate|maturityDate|riskWeight|productType|
// counterpartyType|internalRating|riskCategory.
func contentHash(e domain.Exposure) string {
	parts := []string{
		e.CounterpartyID,
		e.CounterpartyLEI,
		e.Sector,
		e.CountryCode,
		e.ExposureAmount.String(),
		e.Currency,
		e.ReportingDate.Format("2006-01-02"),
		e.ValuationDate.Format("2006-01-02"),
		e.MaturityDate.Format("2006-01-02"),
		e.RiskWeight.String(),
		e.ProductType,
		e.CounterpartyType,
		e.InternalRating,
		e.RiskCategory,
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}
