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

// Package risk implements the risk calculator (C7): per-exposure EUR
// conversion, mitigation, and geographic/economic classification.
package risk

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRateProvider resolves the exchange rate for currency on date.
// Implementations fail per-lookup; the caller (Calculator) turns a
// failure into a record-scoped FX_RATE_UNAVAILABLE rather than aborting
// the batch.
type ExchangeRateProvider interface {
	FetchRate(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error)
}

// rateKey identifies one (currency, date) rate lookup.
type rateKey struct {
	Currency string
	Date     string
}

func newRateKey(currency string, date time.Time) rateKey {
	return rateKey{Currency: currency, Date: date.UTC().Format("2006-01-02")}
}

func (k rateKey) cacheKey() string {
	return "fx-rate:" + k.Currency + ":" + k.Date
}
