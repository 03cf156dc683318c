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
	"testing"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

type staticRateProvider struct {
	rates map[string]decimal.Decimal
}

func (p *staticRateProvider) FetchRate(_ context.Context, currency string, _ time.Time) (decimal.Decimal, error) {
	rate, ok := p.rates[currency]
	if !ok {
		return decimal.Decimal{}, ErrRateUnavailable
	}
	return rate, nil
}

func sampleExposure() domain.Exposure {
	return domain.Exposure{
		ExposureID:       "E1",
		CounterpartyID:   "C1",
		CounterpartyType: "CORPORATE",
		Sector:           "MANUFACTURING",
		CountryCode:      "DE",
		ExposureAmount:   decimal.RequireFromString("1000.00"),
		Currency:         "USD",
		ProductType:      "LOAN",
		ReportingDate:    time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		ValuationDate:    time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		MaturityDate:     time.Date(2030, 6, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestCalculateAppliesExchangeRate(t *testing.T) {
	calc := NewCalculator(&staticRateProvider{rates: map[string]decimal.Decimal{"USD": decimal.RequireFromString("0.9")}})

	classified, err := calc.Calculate(context.Background(), sampleExposure(), decimal.Zero)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !classified.EURAmount.Equal(decimal.RequireFromString("900.00")) {
		t.Fatalf("expected EUR amount 900.00, got %s", classified.EURAmount)
	}
	if classified.GeographicRegion != domain.RegionEUOther {
		t.Fatalf("expected EU_OTHER region, got %v", classified.GeographicRegion)
	}
}

func TestCalculateMitigationFlooredAtZero(t *testing.T) {
	calc := NewCalculator(&staticRateProvider{rates: map[string]decimal.Decimal{"USD": decimal.RequireFromString("1.0")}})

	classified, err := calc.Calculate(context.Background(), sampleExposure(), decimal.RequireFromString("5000.00"))
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !classified.MitigatedAmountEUR.Equal(decimal.Zero) {
		t.Fatalf("expected mitigated amount floored at zero, got %s", classified.MitigatedAmountEUR)
	}
}

func TestCalculateMissingRateIsRecordScoped(t *testing.T) {
	calc := NewCalculator(&staticRateProvider{rates: map[string]decimal.Decimal{}})

	_, err := calc.Calculate(context.Background(), sampleExposure(), decimal.Zero)
	if err == nil {
		t.Fatal("expected an FX_RATE_UNAVAILABLE error")
	}
	if err.Type != apperrors.ErrorTypeFXRateUnavailable {
		t.Fatalf("expected ErrorTypeFXRateUnavailable, got %s", err.Type)
	}
}

func TestCalculateRoundsHalfUpToScaleTwo(t *testing.T) {
	calc := NewCalculator(&staticRateProvider{rates: map[string]decimal.Decimal{"USD": decimal.RequireFromString("1.005")}})
	exp := sampleExposure()
	exp.ExposureAmount = decimal.RequireFromString("100")

	classified, err := calc.Calculate(context.Background(), exp, decimal.Zero)
	if err != nil {
		t.Fatalf("Calculate: %v", err)
	}
	if !classified.EURAmount.Equal(decimal.RequireFromString("100.50")) {
		t.Fatalf("expected 100.50, got %s", classified.EURAmount)
	}
}
