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
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// dateLayout is the only date encoding accepted on the wire: ISO 8601
// calendar dates, matching every sample file in the retrieved pack.
const dateLayout = "2006-01-02"

// buildExposure converts a row of raw string values, keyed by canonical
// field, into a domain.Exposure. recordIndex is 0-based and is reported
// in any PARSE_ERROR so the caller can point an operator at the exact
// offending record.
func buildExposure(row map[canonicalField]string, recordIndex int) (domain.Exposure, *apperrors.AppError) {
	exp := domain.Exposure{
		ExposureID:       strings.TrimSpace(row[fieldExposureID]),
		CounterpartyID:   strings.TrimSpace(row[fieldCounterpartyID]),
		CounterpartyLEI:  strings.TrimSpace(row[fieldCounterpartyLEI]),
		CounterpartyType: strings.TrimSpace(row[fieldCounterpartyType]),
		Sector:           strings.TrimSpace(row[fieldSector]),
		CountryCode:      strings.TrimSpace(row[fieldCountryCode]),
		Currency:         strings.TrimSpace(row[fieldCurrency]),
		ProductType:      strings.TrimSpace(row[fieldProductType]),
		InternalRating:   strings.TrimSpace(row[fieldInternalRating]),
		RiskCategory:     strings.TrimSpace(row[fieldRiskCategory]),
	}

	if exp.ExposureID == "" {
		return domain.Exposure{}, apperrors.NewParseError(recordIndex, "exposureId is required")
	}

	if ref := strings.TrimSpace(row[fieldReferenceNumber]); ref != "" {
		exp.ReferenceNumber = &ref
	}

	amount, err := parseDecimal(row, fieldExposureAmount, recordIndex)
	if err != nil {
		return domain.Exposure{}, err
	}
	exp.ExposureAmount = amount

	weight, err := parseDecimal(row, fieldRiskWeight, recordIndex)
	if err != nil {
		return domain.Exposure{}, err
	}
	exp.RiskWeight = weight

	if exp.ReportingDate, err = parseDate(row, fieldReportingDate, recordIndex); err != nil {
		return domain.Exposure{}, err
	}
	if exp.ValuationDate, err = parseDate(row, fieldValuationDate, recordIndex); err != nil {
		return domain.Exposure{}, err
	}
	if exp.MaturityDate, err = parseDate(row, fieldMaturityDate, recordIndex); err != nil {
		return domain.Exposure{}, err
	}

	return exp, nil
}

func parseDecimal(row map[canonicalField]string, field canonicalField, recordIndex int) (decimal.Decimal, *apperrors.AppError) {
	raw := strings.TrimSpace(row[field])
	if raw == "" {
		return decimal.Decimal{}, apperrors.NewParseError(recordIndex, string(field)+" is required")
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, apperrors.NewParseError(recordIndex, string(field)+" is not a valid decimal: "+raw)
	}
	return d, nil
}

func parseDate(row map[canonicalField]string, field canonicalField, recordIndex int) (time.Time, *apperrors.AppError) {
	raw := strings.TrimSpace(row[field])
	if raw == "" {
		return time.Time{}, apperrors.NewParseError(recordIndex, string(field)+" is required")
	}
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, apperrors.NewParseError(recordIndex, string(field)+" is not a valid date (expected YYYY-MM-DD): "+raw)
	}
	return t, nil
}
