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

// Package batchlifecycle implements the batch state machine (C1): the one
// legal way a Batch's status may change. Callers must never assign
// batch.Status directly.
package batchlifecycle

import (
	"time"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
	"github.com/regtech-core/exposure-pipeline/pkg/metrics"
)

// legalEdges is the transition table from spec.md §4.1. A status absent
// from this map (COMPLETED, FAILED) is terminal.
var legalEdges = map[domain.Status][]domain.Status{
	domain.StatusUploaded:  {domain.StatusParsing},
	domain.StatusParsing:   {domain.StatusValidated, domain.StatusFailed},
	domain.StatusValidated: {domain.StatusStoring, domain.StatusFailed},
	domain.StatusStoring:   {domain.StatusCompleted, domain.StatusFailed},
}

func isTerminal(s domain.Status) bool {
	return s == domain.StatusCompleted || s == domain.StatusFailed
}

// Machine applies and validates Batch transitions per the legal edge table.
type Machine struct{}

// NewMachine builds a Machine. The machine is stateless; a single instance
// is safe to share across batches and goroutines.
func NewMachine() *Machine {
	return &Machine{}
}

// ValidateTransition reports whether moving batch from its current status
// to target is legal, without mutating batch.
func (m *Machine) ValidateTransition(batch *domain.Batch, target domain.Status) *apperrors.AppError {
	from := batch.Status
	if isTerminal(from) {
		return apperrors.NewInvalidTransitionError(string(from), string(target)).
			WithDetails("current state is terminal")
	}
	for _, allowed := range legalEdges[from] {
		if allowed == target {
			return nil
		}
	}
	return apperrors.NewInvalidTransitionError(string(from), string(target))
}

// Apply validates and performs the transition, updating batch's status and
// timestamps in place, and emits the spec's per-transition metric
// regardless of outcome. Past PARSING, a successful transition requires
// objectRef to be set and exposureCount to be non-negative.
func (m *Machine) Apply(batch *domain.Batch, target domain.Status) *apperrors.AppError {
	start := time.Now()
	from := batch.Status

	if err := m.ValidateTransition(batch, target); err != nil {
		metrics.RecordBatchTransition(string(from), string(target), "rejected", time.Since(start))
		return err
	}

	if from != domain.StatusUploaded && target != domain.StatusFailed {
		if batch.ObjectRef == nil {
			err := apperrors.New(apperrors.ErrorTypeInvalidTransition, "objectRef must be set past UPLOADED").
				WithDetails(string(target))
			metrics.RecordBatchTransition(string(from), string(target), "rejected", time.Since(start))
			return err
		}
		if batch.ExposureCount < 0 {
			err := apperrors.New(apperrors.ErrorTypeInvalidTransition, "exposureCount must be non-negative")
			metrics.RecordBatchTransition(string(from), string(target), "rejected", time.Since(start))
			return err
		}
	}

	now := time.Now().UTC()
	batch.Status = target
	switch target {
	case domain.StatusCompleted:
		batch.CompletedAt = &now
		batch.ProcessingDurationMs = now.Sub(batch.UploadedAt).Milliseconds()
	case domain.StatusFailed:
		batch.FailedAt = &now
	}

	metrics.RecordBatchTransition(string(from), string(target), "accepted", time.Since(start))
	return nil
}
