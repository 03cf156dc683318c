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

package rules

import (
	"github.com/google/cel-go/common/types"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// buildScope's date fields are plain time.Time values rather than CEL's
// types.Timestamp: cel-go's default type adapter natively converts
// time.Time to a CEL timestamp when an Activation returns a raw Go value,
// so the same scope map serves both rule evaluation and message-template
// rendering without a second, CEL-specific copy.

// buildScope maps an exposure's fields plus the derived helpers and
// entity metadata named in spec.md §4.5 into the flat evaluation scope
// rule expressions and message templates are resolved against.
func buildScope(entityType domain.EntityType, e domain.Exposure) map[string]interface{} {
	return map[string]interface{}{
		"exposureId":       e.ExposureID,
		"referenceNumber":  derefOrEmpty(e.ReferenceNumber),
		"counterpartyId":   e.CounterpartyID,
		"counterpartyLei":  e.CounterpartyLEI,
		"counterpartyType": e.CounterpartyType,
		"sector":           e.Sector,
		"countryCode":      e.CountryCode,
		"exposureAmount":   e.ExposureAmount.InexactFloat64(),
		"currency":         e.Currency,
		"productType":      e.ProductType,
		"internalRating":   e.InternalRating,
		"riskCategory":     e.RiskCategory,
		"riskWeight":       e.RiskWeight.InexactFloat64(),
		"reportingDate":    e.ReportingDate,
		"valuationDate":    e.ValuationDate,
		"maturityDate":     e.MaturityDate,

		"isCorporateExposure": e.IsCorporateExposure(),
		"isTermExposure":      e.IsTermExposure(),

		"entityType": string(entityType),
		"entityId":   e.ExposureID,
	}
}

func derefOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// coerceTruthy implements spec.md §4.5's truthiness coercion: non-null
// numbers are truthy when non-zero, non-empty strings are truthy, null is
// false. A genuine CEL bool is used as-is.
func coerceTruthy(val interface{}) bool {
	switch v := val.(type) {
	case bool:
		return v
	case nil:
		return false
	case types.Bool:
		return bool(v)
	case types.Null:
		return false
	case int64:
		return v != 0
	case types.Int:
		return int64(v) != 0
	case float64:
		return v != 0
	case types.Double:
		return float64(v) != 0
	case string:
		return v != ""
	case types.String:
		return string(v) != ""
	default:
		return true
	}
}
