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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// JSONParser parses an uploaded file shaped either as a bare array of
// exposure objects, or as a single object carrying bank metadata
// alongside a "records" (or "exposures") array. No ecosystem JSON-alias
// library appears anywhere in the retrieved pack, so field aliasing is
// hand-rolled on top of encoding/json (see DESIGN.md).
type JSONParser struct{}

// NewJSONParser builds a JSONParser.
func NewJSONParser() *JSONParser { return &JSONParser{} }

var _ Parser = (*JSONParser)(nil)

// recordsKeys lists the keys (normalized) a wrapper object may use to
// carry its array of exposure rows.
var recordsKeys = map[string]bool{
	"records":   true,
	"exposures": true,
	"data":      true,
}

// Parse reads r fully (JSON has no streaming-friendly framing without a
// dedicated tokenizer) and returns a ParseResult whose Records channel is
// filled by a goroutine, so the caller still observes the lazy,
// single-pass RecordStream contract.
func (p *JSONParser) Parse(ctx context.Context, r io.Reader) (*ParseResult, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeParse, "failed to read upload")
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var top interface{}
	if err := dec.Decode(&top); err != nil {
		return nil, apperrors.Wrapf(err, apperrors.ErrorTypeParse, "invalid JSON payload")
	}

	var bank domain.BankInfo
	var rawRecords []interface{}

	switch v := top.(type) {
	case []interface{}:
		rawRecords = v
	case map[string]interface{}:
		bank = extractBankInfo(v)
		rawRecords, err = extractRecords(v)
		if err != nil {
			return nil, err
		}
	default:
		return nil, apperrors.New(apperrors.ErrorTypeParse, "top-level JSON value must be an array or an object")
	}

	ch := make(chan RecordOrError)
	go func() {
		defer close(ch)
		for i, item := range rawRecords {
			obj, ok := item.(map[string]interface{})
			if !ok {
				send(ctx, ch, RecordOrError{Err: apperrors.NewParseError(i, "record must be a JSON object")})
				return
			}
			row := rowFromJSONObject(obj)
			exp, perr := buildExposure(row, i)
			if perr != nil {
				send(ctx, ch, RecordOrError{Err: perr})
				return
			}
			if !send(ctx, ch, RecordOrError{Exposure: exp}) {
				return
			}
		}
	}()

	return &ParseResult{BankInfo: bank, Records: ch}, nil
}

// send delivers item unless ctx is already done, in which case it drops
// the send and reports false so the producer goroutine stops early.
func send(ctx context.Context, ch chan<- RecordOrError, item RecordOrError) bool {
	select {
	case ch <- item:
		return true
	case <-ctx.Done():
		return false
	}
}

func extractRecords(obj map[string]interface{}) ([]interface{}, *apperrors.AppError) {
	for key, value := range obj {
		if !recordsKeys[normalize(key)] {
			continue
		}
		arr, ok := value.([]interface{})
		if !ok {
			return nil, apperrors.New(apperrors.ErrorTypeParse, "field \""+key+"\" must be an array of records")
		}
		return arr, nil
	}
	return nil, apperrors.New(apperrors.ErrorTypeParse, "no records array found (expected a top-level array or a \"records\" field)")
}

func extractBankInfo(obj map[string]interface{}) domain.BankInfo {
	var bank domain.BankInfo
	for key, value := range obj {
		switch normalize(key) {
		case "bankname":
			bank.BankName = jsonScalarToString(value)
		case "bankid":
			bank.BankID = jsonScalarToString(value)
		case "reportingdate":
			if t, err := time.Parse(dateLayout, jsonScalarToString(value)); err == nil {
				bank.ReportingDate = t
			}
		case "expectedexposurecount":
			if n, ok := value.(json.Number); ok {
				if i, err := n.Int64(); err == nil {
					bank.ExpectedExposureCount = int(i)
				}
			}
		}
	}
	return bank
}

func rowFromJSONObject(obj map[string]interface{}) map[canonicalField]string {
	row := make(map[canonicalField]string, len(obj))
	for key, value := range obj {
		field, ok := resolveField(key)
		if !ok {
			continue
		}
		row[field] = jsonScalarToString(value)
	}
	return row
}

func jsonScalarToString(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case bool:
		return fmt.Sprintf("%t", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
