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

// Package portfolio implements the portfolio analyzer (C8): it streams
// classified exposures into geographic and sector breakdowns plus a
// Herfindahl-Hirschman concentration index per breakdown.
package portfolio

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
	sharedmath "github.com/regtech-core/exposure-pipeline/pkg/shared/math"
)

// Analyzer accumulates classified exposures streamed one at a time and
// produces a final domain.PortfolioAnalysis.
type Analyzer struct {
	batchID string
	now     func() time.Time

	total      decimal.Decimal
	geographic map[domain.GeographicRegion]decimal.Decimal
	sector     map[domain.EconomicSector]decimal.Decimal
}

// NewAnalyzer builds an Analyzer for batchID.
func NewAnalyzer(batchID string) *Analyzer {
	return &Analyzer{
		batchID:    batchID,
		now:        time.Now,
		geographic: make(map[domain.GeographicRegion]decimal.Decimal),
		sector:     make(map[domain.EconomicSector]decimal.Decimal),
	}
}

// Accumulate folds one classified exposure's mitigated EUR amount into the
// running breakdowns. Call it once per element of the classified stream.
func (a *Analyzer) Accumulate(e domain.ClassifiedExposure) {
	a.total = a.total.Add(e.MitigatedAmountEUR)
	a.geographic[e.GeographicRegion] = a.geographic[e.GeographicRegion].Add(e.MitigatedAmountEUR)
	a.sector[e.EconomicSector] = a.sector[e.EconomicSector].Add(e.MitigatedAmountEUR)
}

// Finish produces the final PortfolioAnalysis. A zero-total portfolio
// (no exposures accumulated, or all mitigated to zero) returns an
// all-zero analysis rather than erroring (spec.md §4.8).
func (a *Analyzer) Finish() domain.PortfolioAnalysis {
	if a.total.IsZero() {
		return domain.PortfolioAnalysis{
			BatchID:             a.batchID,
			TotalPortfolio:      decimal.Zero,
			GeographicBreakdown: map[domain.GeographicRegion]domain.CategoryBreakdown{},
			SectorBreakdown:     map[domain.EconomicSector]domain.CategoryBreakdown{},
			GeographicHHI:       decimal.Zero,
			SectorHHI:           decimal.Zero,
			AnalyzedAt:          a.now().UTC(),
		}
	}

	geoBreakdown, geoHHI := breakdown(a.geographic, a.total)
	sectorBreakdown, sectorHHI := breakdownSector(a.sector, a.total)

	return domain.PortfolioAnalysis{
		BatchID:             a.batchID,
		TotalPortfolio:      a.total,
		GeographicBreakdown: geoBreakdown,
		SectorBreakdown:     sectorBreakdown,
		GeographicHHI:       decimal.NewFromFloat(geoHHI),
		SectorHHI:           decimal.NewFromFloat(sectorHHI),
		AnalyzedAt:          a.now().UTC(),
	}
}

func breakdown(amounts map[domain.GeographicRegion]decimal.Decimal, total decimal.Decimal) (map[domain.GeographicRegion]domain.CategoryBreakdown, float64) {
	result := make(map[domain.GeographicRegion]domain.CategoryBreakdown, len(amounts))
	shares := make([]float64, 0, len(amounts))
	for category, amount := range amounts {
		pct := amount.Div(total).Mul(decimal.NewFromInt(100))
		result[category] = domain.CategoryBreakdown{AmountEUR: amount, Percentage: pct}
		shares = append(shares, pct.InexactFloat64()/100)
	}
	return result, sharedmath.HerfindahlIndex(shares)
}

func breakdownSector(amounts map[domain.EconomicSector]decimal.Decimal, total decimal.Decimal) (map[domain.EconomicSector]domain.CategoryBreakdown, float64) {
	result := make(map[domain.EconomicSector]domain.CategoryBreakdown, len(amounts))
	shares := make([]float64, 0, len(amounts))
	for category, amount := range amounts {
		pct := amount.Div(total).Mul(decimal.NewFromInt(100))
		result[category] = domain.CategoryBreakdown{AmountEUR: amount, Percentage: pct}
		shares = append(shares, pct.InexactFloat64()/100)
	}
	return result, sharedmath.HerfindahlIndex(shares)
}
