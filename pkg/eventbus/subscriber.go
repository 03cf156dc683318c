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
	"go.uber.org/zap"
)

// EventHandler processes a single event's raw payload. Handlers must be
// idempotent: redelivery after a dropped connection is possible.
type EventHandler func(ctx context.Context, payload []byte) error

// FailureSink durably records a failed event delivery so it re-enters
// the C11 retry path instead of being lost — the same seam the
// coordinator uses (pkg/coordinator.FailureSink), satisfied structurally
// by *failurequeue.Queue without either package importing the other.
type FailureSink interface {
	SaveFailure(ctx context.Context, eventType string, payloadJSON []byte, errMessage string, errStack string, maxRetries int) error
}

// RedisSubscriber dispatches messages received on "prefix:eventType"
// channels to the handler registered for that event type, mirroring
// RedisPublisher's channel-naming convention on the consuming side.
type RedisSubscriber struct {
	client   *redis.Client
	prefix   string
	log      *zap.Logger
	failures FailureSink
	handlers map[string]EventHandler
}

// NewRedisSubscriber builds a RedisSubscriber. prefix defaults to
// "exposure-pipeline" when empty, matching NewRedisPublisher. failures
// receives any live handler error so it is retried durably via C11
// rather than merely logged.
func NewRedisSubscriber(client *redis.Client, prefix string, failures FailureSink, log *zap.Logger) *RedisSubscriber {
	if prefix == "" {
		prefix = "exposure-pipeline"
	}
	return &RedisSubscriber{client: client, prefix: prefix, failures: failures, log: log, handlers: map[string]EventHandler{}}
}

// On registers handler for eventType. Registering the same event type
// twice replaces the previous handler.
func (s *RedisSubscriber) On(eventType string, handler EventHandler) {
	s.handlers[eventType] = handler
}

// Run subscribes to every registered event type's channel and dispatches
// messages until ctx is cancelled. A handler error is never fatal to the
// loop: it is durably recorded via failures.SaveFailure so C11's
// processor retries it, matching the at-least-once guarantee the outbox
// dispatcher already gives the publishing side.
func (s *RedisSubscriber) Run(ctx context.Context) error {
	if len(s.handlers) == 0 {
		return nil
	}
	channels := make([]string, 0, len(s.handlers))
	eventTypeByChannel := make(map[string]string, len(s.handlers))
	for eventType := range s.handlers {
		channel := s.prefix + ":" + eventType
		channels = append(channels, channel)
		eventTypeByChannel[channel] = eventType
	}

	pubsub := s.client.Subscribe(ctx, channels...)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			eventType := eventTypeByChannel[msg.Channel]
			handler := s.handlers[eventType]
			if handler == nil {
				continue
			}
			if err := handler(ctx, []byte(msg.Payload)); err != nil {
				s.log.Warn("event handler failed, routing to failure queue", zap.String("event_type", eventType), zap.Error(err))
				if saveErr := s.failures.SaveFailure(ctx, eventType, []byte(msg.Payload), err.Error(), "", 0); saveErr != nil {
					s.log.Error("failed to record event failure for retry", zap.String("event_type", eventType), zap.Error(saveErr))
				}
			}
		}
	}
}
