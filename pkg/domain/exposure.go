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

// Package domain holds the core record and event types shared by every
// stage of the exposure ingestion pipeline.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Exposure is an immutable, parsed exposure record. Once constructed by the
// parser it is never mutated; downstream stages derive new values (risk
// calculator, portfolio analyzer) into separate types.
type Exposure struct {
	ExposureID       string
	ReferenceNumber  *string
	CounterpartyID   string
	CounterpartyLEI  string
	CounterpartyType string
	Sector           string
	CountryCode      string
	ExposureAmount   decimal.Decimal
	Currency         string
	ProductType      string
	InternalRating   string
	RiskCategory     string
	RiskWeight       decimal.Decimal
	ReportingDate    time.Time
	ValuationDate    time.Time
	MaturityDate     time.Time
}

// IsCorporateExposure derives BR-RULE-001's corporate flag used by the rule
// engine's evaluation scope.
func (e Exposure) IsCorporateExposure() bool {
	return e.CounterpartyType == "CORPORATE"
}

// IsTermExposure is true when the exposure carries a maturity beyond its
// valuation date (i.e. it is not an on-demand/overnight facility).
func (e Exposure) IsTermExposure() bool {
	return e.MaturityDate.After(e.ValuationDate)
}

// BankInfo is the sidecar metadata that accompanies a parsed exposure file:
// the submitting bank's identity and the expected record count, used to
// cross-check parse completeness.
type BankInfo struct {
	BankName              string
	BankID                string
	ReportingDate         time.Time
	ExpectedExposureCount int
}
