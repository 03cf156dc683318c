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

package parser

import (
	"context"
	"encoding/csv"
	"io"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// TabularParser parses CSV uploads. No spreadsheet/CSV-alias library
// appears in any example repo's go.mod, so this is built directly on
// encoding/csv (see DESIGN.md). BankInfo is not carried in CSV uploads —
// a tabular file is a flat list of rows with no sidecar object, so the
// returned ParseResult always has a zero-value BankInfo.
type TabularParser struct {
	// Comma overrides the field delimiter; the zero value selects ','.
	Comma rune
}

// NewTabularParser builds a TabularParser using the standard comma
// delimiter.
func NewTabularParser() *TabularParser {
	return &TabularParser{Comma: ','}
}

var _ Parser = (*TabularParser)(nil)

// Parse treats the first row as a header naming each column (matched
// against the field alias table) and every subsequent row as one record.
func (p *TabularParser) Parse(ctx context.Context, r io.Reader) (*ParseResult, error) {
	reader := csv.NewReader(r)
	reader.Comma = p.Comma
	if reader.Comma == 0 {
		reader.Comma = ','
	}
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, apperrors.New(apperrors.ErrorTypeParse, "empty file: missing header row")
	}
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeParse, "failed to read header row")
	}

	columns := make([]canonicalField, len(header))
	for i, name := range header {
		field, ok := resolveField(name)
		if ok {
			columns[i] = field
		}
	}

	ch := make(chan RecordOrError)
	go func() {
		defer close(ch)
		index := 0
		for {
			record, err := reader.Read()
			if err == io.EOF {
				return
			}
			if err != nil {
				send(ctx, ch, RecordOrError{Err: apperrors.Wrapf(err, apperrors.ErrorTypeParse, "failed to read record %d", index)})
				return
			}

			row := make(map[canonicalField]string, len(columns))
			for i, value := range record {
				if i >= len(columns) || columns[i] == "" {
					continue
				}
				row[columns[i]] = value
			}

			exp, perr := buildExposure(row, index)
			if perr != nil {
				send(ctx, ch, RecordOrError{Err: perr})
				return
			}
			if !send(ctx, ch, RecordOrError{Exposure: exp}) {
				return
			}
			index++
		}
	}()

	return &ParseResult{BankInfo: domain.BankInfo{}, Records: ch}, nil
}
