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

import "strings"

// canonicalField enumerates the record-level field names a parsed
// exposure row is built from, independent of whatever casing or
// delimiter style the source file used.
type canonicalField string

const (
	fieldExposureID       canonicalField = "exposureId"
	fieldReferenceNumber  canonicalField = "referenceNumber"
	fieldCounterpartyID   canonicalField = "counterpartyId"
	fieldCounterpartyLEI  canonicalField = "counterpartyLei"
	fieldCounterpartyType canonicalField = "counterpartyType"
	fieldSector           canonicalField = "sector"
	fieldCountryCode      canonicalField = "countryCode"
	fieldExposureAmount   canonicalField = "exposureAmount"
	fieldCurrency         canonicalField = "currency"
	fieldProductType      canonicalField = "productType"
	fieldInternalRating   canonicalField = "internalRating"
	fieldRiskCategory     canonicalField = "riskCategory"
	fieldRiskWeight       canonicalField = "riskWeight"
	fieldReportingDate    canonicalField = "reportingDate"
	fieldValuationDate    canonicalField = "valuationDate"
	fieldMaturityDate     canonicalField = "maturityDate"
)

var allFields = []canonicalField{
	fieldExposureID, fieldReferenceNumber, fieldCounterpartyID, fieldCounterpartyLEI,
	fieldCounterpartyType, fieldSector, fieldCountryCode, fieldExposureAmount,
	fieldCurrency, fieldProductType, fieldInternalRating, fieldRiskCategory,
	fieldRiskWeight, fieldReportingDate, fieldValuationDate, fieldMaturityDate,
}

// normalize collapses a header/key into a delimiter- and case-insensitive
// form so "counterparty_lei", "CounterpartyLEI" and "counterpartyLei" all
// resolve to the same canonical field.
func normalize(key string) string {
	key = strings.ToLower(key)
	key = strings.ReplaceAll(key, "_", "")
	key = strings.ReplaceAll(key, "-", "")
	return strings.ReplaceAll(key, " ", "")
}

// fieldAliases maps every normalized spelling of every canonical field to
// the field it denotes, built once at package init.
var fieldAliases = func() map[string]canonicalField {
	m := make(map[string]canonicalField, len(allFields))
	for _, f := range allFields {
		m[normalize(string(f))] = f
	}
	return m
}()

// resolveField looks up which canonical field a raw source key (JSON
// object key or CSV header cell) denotes, regardless of casing or
// separator style. ok is false for unrecognized keys, which callers
// ignore rather than reject (forward-compatible with extra columns).
func resolveField(rawKey string) (canonicalField, bool) {
	f, ok := fieldAliases[normalize(rawKey)]
	return f, ok
}
