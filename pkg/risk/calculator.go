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

package risk

import (
	"context"

	"github.com/shopspring/decimal"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// eurScale is the decimal scale (places after the point) every EUR output
// is rounded to, half-up (spec.md §4.7).
const eurScale = 2

// Calculator is the risk calculator (C7): it converts each exposure to
// EUR, applies credit risk mitigation, and classifies it geographically
// and economically.
type Calculator struct {
	rates ExchangeRateProvider
}

// NewCalculator builds a Calculator backed by rates.
func NewCalculator(rates ExchangeRateProvider) *Calculator {
	return &Calculator{rates: rates}
}

// Calculate converts exposure to a domain.ClassifiedExposure. protectionEUR
// is the exposure's credit-risk-mitigation protection amount, already
// converted to EUR by the sidecar feed; pass decimal.Zero when no
// protection applies. Failure to resolve an exchange rate is scoped to
// this one record (FX_RATE_UNAVAILABLE) and never aborts the batch.
func (c *Calculator) Calculate(ctx context.Context, exposure domain.Exposure, protectionEUR decimal.Decimal) (domain.ClassifiedExposure, *apperrors.AppError) {
	rate, err := c.rates.FetchRate(ctx, exposure.Currency, exposure.ReportingDate)
	if err != nil {
		return domain.ClassifiedExposure{}, apperrors.NewFXRateUnavailableError(exposure.Currency)
	}

	// Round half away from zero, which is equivalent to half-up rounding
	// for the non-negative EUR amounts this pipeline handles.
	eurAmount := exposure.ExposureAmount.Mul(rate).Round(eurScale)

	mitigated := eurAmount.Sub(protectionEUR)
	if mitigated.IsNegative() {
		mitigated = decimal.Zero
	}
	mitigated = mitigated.Round(eurScale)

	return domain.ClassifiedExposure{
		Exposure:           exposure,
		EURAmount:          eurAmount,
		MitigatedAmountEUR: mitigated,
		GeographicRegion:   ClassifyRegion(exposure.CountryCode),
		EconomicSector:     ClassifySector(exposure.Sector, exposure.ProductType),
		ExchangeRateUsed:   rate,
		ExchangeRateDate:   exposure.ReportingDate,
	}, nil
}
