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
	"errors"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
)

// CacheTTL is how long a resolved rate is retained in Redis.
const CacheTTL = 6 * time.Hour

// cachedRateProvider wraps an upstream ExchangeRateProvider with a
// Redis-backed cache, a circuit breaker, and retry-on-transient-failure,
// so a flaky FX source degrades gracefully instead of stalling every
// batch that needs a rate (spec.md §4.7, SPEC_FULL.md §6.7).
type cachedRateProvider struct {
	upstream ExchangeRateProvider
	redis    *redis.Client
	breaker  *gobreaker.CircuitBreaker
}

// NewCachedRateProvider builds a cachedRateProvider over upstream, using
// redisClient for the cache layer.
func NewCachedRateProvider(upstream ExchangeRateProvider, redisClient *redis.Client) ExchangeRateProvider {
	settings := gobreaker.Settings{
		Name:        "fx-rate-provider",
		MaxRequests: 3,
		Interval:    30 * time.Second,
		Timeout:     15 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	}
	return &cachedRateProvider{
		upstream: upstream,
		redis:    redisClient,
		breaker:  gobreaker.NewCircuitBreaker(settings),
	}
}

func (p *cachedRateProvider) FetchRate(ctx context.Context, currency string, date time.Time) (decimal.Decimal, error) {
	key := newRateKey(currency, date)

	if cached, err := p.redis.Get(ctx, key.cacheKey()).Result(); err == nil {
		if rate, derr := decimal.NewFromString(cached); derr == nil {
			return rate, nil
		}
	}

	result, err := p.breaker.Execute(func() (interface{}, error) {
		return backoff.Retry(ctx, func() (decimal.Decimal, error) {
			return p.upstream.FetchRate(ctx, currency, date)
		}, backoff.WithMaxTries(3))
	})
	if err != nil {
		return decimal.Decimal{}, err
	}

	rate := result.(decimal.Decimal)
	_ = p.redis.Set(ctx, key.cacheKey(), rate.String(), CacheTTL).Err()
	return rate, nil
}

// ErrRateUnavailable is returned by a static/test provider when no rate is
// configured for a (currency, date) pair.
var ErrRateUnavailable = errors.New("exchange rate unavailable")
