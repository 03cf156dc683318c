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

// GeographicRegion buckets an exposure's country for concentration analysis.
type GeographicRegion string

const (
	RegionItaly        GeographicRegion = "ITALY"
	RegionEUOther      GeographicRegion = "EU_OTHER"
	RegionNonEuropean  GeographicRegion = "NON_EUROPEAN"
)

// EconomicSector buckets an exposure's counterparty sector.
type EconomicSector string

const (
	SectorRetailMortgage EconomicSector = "RETAIL_MORTGAGE"
	SectorCorporate      EconomicSector = "CORPORATE"
	SectorSovereign      EconomicSector = "SOVEREIGN"
	SectorBanking        EconomicSector = "BANKING"
	SectorOther          EconomicSector = "OTHER"
)

// ClassifiedExposure is the ephemeral, per-record output of the risk
// calculator (C7): the original record plus EUR amounts, classification, and
// the FX rate used. It is streamed into the portfolio analyzer, never
// persisted on its own.
type ClassifiedExposure struct {
	Exposure

	EURAmount          decimal.Decimal
	MitigatedAmountEUR decimal.Decimal
	GeographicRegion   GeographicRegion
	EconomicSector     EconomicSector
	ExchangeRateUsed   decimal.Decimal
	ExchangeRateDate   time.Time
}
