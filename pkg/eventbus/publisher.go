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

package eventbus

import (
	"context"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
)

// Publisher hands a single event's raw payload to the transport.
// Handlers on the receiving side must be idempotent: the dispatcher
// guarantees at-least-once delivery, never exactly-once.
type Publisher interface {
	Publish(ctx context.Context, eventType string, payload []byte) error
}

// RedisPublisher publishes events over a Redis channel named after the
// event type, so subscribers can filter per event without a broker-side
// routing layer.
type RedisPublisher struct {
	client *redis.Client
	prefix string
}

// NewRedisPublisher builds a RedisPublisher. Channel names are
// "prefix:eventType"; prefix defaults to "exposure-pipeline" when empty.
func NewRedisPublisher(client *redis.Client, prefix string) *RedisPublisher {
	if prefix == "" {
		prefix = "exposure-pipeline"
	}
	return &RedisPublisher{client: client, prefix: prefix}
}

var _ Publisher = (*RedisPublisher)(nil)

func (p *RedisPublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	channel := p.prefix + ":" + eventType
	if err := p.client.Publish(ctx, channel, payload).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to publish event to redis")
	}
	return nil
}
