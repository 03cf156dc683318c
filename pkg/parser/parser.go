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

// Package parser implements the file parser (C3): a lazy, single-pass
// reader that turns an uploaded JSON or CSV file into a stream of
// domain.Exposure records plus a sidecar domain.BankInfo. Field names are
// accepted interchangeably in snake_case and camelCase via the alias map
// in alias.go.
package parser

import (
	"context"
	"io"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// RecordOrError is one element of a RecordStream: either a successfully
// parsed exposure or the fatal parse error that ended the stream. Per
// spec.md §4.3 a single malformed record aborts the batch, so at most one
// error ever appears, always as the final element.
type RecordOrError struct {
	Exposure domain.Exposure
	Err      *apperrors.AppError
}

// RecordStream is the lazy, finite, single-pass sequence of parsed
// records a Parser produces.
type RecordStream <-chan RecordOrError

// ParseResult pairs the record stream with the sidecar bank metadata
// carried alongside it.
type ParseResult struct {
	BankInfo domain.BankInfo
	Records  RecordStream
}

// Parser turns raw file content into a ParseResult. Implementations must
// not block the caller beyond the time needed to read the sidecar bank
// metadata; individual record parsing happens lazily as Records is
// drained.
type Parser interface {
	Parse(ctx context.Context, r io.Reader) (*ParseResult, error)
}

// Drain consumes stream fully into a slice, returning the first parse
// error encountered (nil if the stream completed cleanly). Intended for
// callers (tests, small batches) that do not need the streaming contract.
func Drain(stream RecordStream) ([]domain.Exposure, *apperrors.AppError) {
	var exposures []domain.Exposure
	for item := range stream {
		if item.Err != nil {
			return exposures, item.Err
		}
		exposures = append(exposures, item.Exposure)
	}
	return exposures, nil
}
