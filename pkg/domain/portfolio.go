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

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// CategoryBreakdown is one entry of a portfolio breakdown map: the amount in
// EUR attributed to a category and its share of the total portfolio.
type CategoryBreakdown struct {
	AmountEUR  decimal.Decimal
	Percentage decimal.Decimal
}

// PortfolioAnalysis is the output of the portfolio analyzer (C8).
type PortfolioAnalysis struct {
	BatchID             string
	TotalPortfolio      decimal.Decimal
	GeographicBreakdown map[GeographicRegion]CategoryBreakdown
	SectorBreakdown     map[EconomicSector]CategoryBreakdown
	GeographicHHI       decimal.Decimal
	SectorHHI           decimal.Decimal
	AnalyzedAt          time.Time
}
