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
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// StaticRateProvider resolves a rate from a fixed, deployment-supplied
// table keyed by currency. It ignores date: the table is a point-in-time
// snapshot refreshed by redeploying config, not a historical series.
// Wrap it with NewCachedRateProvider when a shared Redis cache is wanted
// in front of it.
type StaticRateProvider struct {
	rates map[string]decimal.Decimal
}

// NewStaticRateProvider builds a StaticRateProvider from a currency->rate
// table (e.g. config.FXConfig.Rates converted to decimal.Decimal).
func NewStaticRateProvider(rates map[string]decimal.Decimal) *StaticRateProvider {
	return &StaticRateProvider{rates: rates}
}

// FetchRate returns the configured rate for currency, or an error if none
// is configured — the caller (Calculator) turns this into a
// record-scoped FX_RATE_UNAVAILABLE.
func (p *StaticRateProvider) FetchRate(_ context.Context, currency string, _ time.Time) (decimal.Decimal, error) {
	rate, ok := p.rates[currency]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no configured rate for currency %q", ErrRateUnavailable, currency)
	}
	return rate, nil
}
