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

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

type countingProvider struct {
	calls int
	rate  decimal.Decimal
	err   error
}

func (p *countingProvider) FetchRate(context.Context, string, time.Time) (decimal.Decimal, error) {
	p.calls++
	if p.err != nil {
		return decimal.Decimal{}, p.err
	}
	return p.rate, nil
}

func newTestRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	server := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: server.Addr()})
}

func TestCachedRateProviderCachesAfterFirstLookup(t *testing.T) {
	client := newTestRedisClient(t)
	upstream := &countingProvider{rate: decimal.RequireFromString("1.1")}
	provider := NewCachedRateProvider(upstream, client)

	date := time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		rate, err := provider.FetchRate(context.Background(), "USD", date)
		if err != nil {
			t.Fatalf("FetchRate: %v", err)
		}
		if !rate.Equal(decimal.RequireFromString("1.1")) {
			t.Fatalf("expected rate 1.1, got %s", rate)
		}
	}
	if upstream.calls != 1 {
		t.Fatalf("expected the upstream provider to be called once, got %d", upstream.calls)
	}
}

func TestCachedRateProviderDistinctKeysPerCurrencyAndDate(t *testing.T) {
	client := newTestRedisClient(t)
	upstream := &countingProvider{rate: decimal.RequireFromString("1.1")}
	provider := NewCachedRateProvider(upstream, client)

	ctx := context.Background()
	if _, err := provider.FetchRate(ctx, "USD", time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("FetchRate: %v", err)
	}
	if _, err := provider.FetchRate(ctx, "GBP", time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("FetchRate: %v", err)
	}
	if upstream.calls != 2 {
		t.Fatalf("expected 2 upstream calls for 2 distinct currencies, got %d", upstream.calls)
	}
}
