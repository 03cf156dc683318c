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

// Package failurequeue implements the failure queue and retry processor
// (C11): a durable, exponentially-backed-off retry of event handlers that
// failed on first attempt, terminating in DEAD_LETTER once retries are
// exhausted.
package failurequeue

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
	"github.com/regtech-core/exposure-pipeline/pkg/eventbus"
	"github.com/regtech-core/exposure-pipeline/pkg/notification"
)

// DefaultBackoffSchedule is spec.md §4.11's fixed retry schedule.
var DefaultBackoffSchedule = []time.Duration{
	10 * time.Second,
	30 * time.Second,
	60 * time.Second,
	5 * time.Minute,
	10 * time.Minute,
}

// DefaultMaxRetries caps retries absent an explicit per-failure value.
const DefaultMaxRetries = 5

// DefaultAttemptTimeout bounds a single handler dispatch.
const DefaultAttemptTimeout = 30 * time.Second

// DefaultBatchSize is how many PENDING rows one poll cycle claims.
const DefaultBatchSize = 20

// Handler processes one failure's deserialized payload. Handlers must be
// idempotent: the processor does not deduplicate retried deliveries.
type Handler func(ctx context.Context, payload []byte) error

// Processor polls Repository for retryable failures and dispatches them
// to a Handler registered by eventType.
type Processor struct {
	repo            Repository
	publisher       eventbus.Publisher
	alerter         notification.Alerter
	handlers        map[string]Handler
	backoffSchedule []time.Duration
	attemptTimeout  time.Duration
	batchSize       int
	now             func() time.Time
	log             *zap.Logger
}

// NewProcessor builds a Processor. handlers maps a stable event-type name
// to the function that replays it. alerter may be nil, in which case
// dead-letter events are still emitted on the bus but no operator alert
// is sent.
func NewProcessor(repo Repository, publisher eventbus.Publisher, alerter notification.Alerter, handlers map[string]Handler, log *zap.Logger) *Processor {
	return &Processor{
		repo:            repo,
		publisher:       publisher,
		alerter:         alerter,
		handlers:        handlers,
		backoffSchedule: DefaultBackoffSchedule,
		attemptTimeout:  DefaultAttemptTimeout,
		batchSize:       DefaultBatchSize,
		now:             time.Now,
		log:             log,
	}
}

// Run polls at pollInterval until ctx is cancelled.
func (p *Processor) Run(ctx context.Context, pollInterval time.Duration) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.ProcessOnce(ctx); err != nil && p.log != nil {
				p.log.Error("failure queue poll cycle failed", zap.Error(err))
			}
		}
	}
}

// ProcessOnce claims and dispatches one batch of due failures.
func (p *Processor) ProcessOnce(ctx context.Context) error {
	claimed, err := p.repo.ClaimPending(ctx, p.now(), p.batchSize)
	if err != nil {
		return err
	}
	for _, failure := range claimed {
		p.dispatch(ctx, failure)
	}
	return nil
}

func (p *Processor) dispatch(ctx context.Context, failure domain.EventProcessingFailure) {
	handler, ok := p.handlers[failure.EventType]
	if !ok {
		p.retryOrDeadLetter(ctx, failure, "no handler registered for event type "+failure.EventType)
		return
	}

	attemptCtx, cancel := context.WithTimeout(ctx, p.attemptTimeout)
	defer cancel()

	if err := handler(attemptCtx, []byte(failure.EventPayload)); err != nil {
		p.retryOrDeadLetter(ctx, failure, err.Error())
		return
	}

	if err := p.repo.MarkSucceeded(ctx, failure.ID); err != nil && p.log != nil {
		p.log.Error("failed to mark failure queue row succeeded", zap.String("failureId", failure.ID), zap.Error(err))
	}
}

func (p *Processor) retryOrDeadLetter(ctx context.Context, failure domain.EventProcessingFailure, cause string) {
	maxRetries := failure.MaxRetries
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	nextRetryCount := failure.RetryCount + 1

	if nextRetryCount > maxRetries {
		if err := p.repo.MarkDeadLetter(ctx, failure.ID, cause); err != nil && p.log != nil {
			p.log.Error("failed to mark failure queue row dead-lettered", zap.String("failureId", failure.ID), zap.Error(err))
		}
		p.emitPermanentlyFailed(ctx, failure, nextRetryCount, cause)
		p.sendDeadLetterAlert(ctx, failure, nextRetryCount, cause)
		return
	}

	delay := p.backoffDelay(nextRetryCount)
	nextRetryAt := p.now().Add(delay)
	if err := p.repo.MarkRetry(ctx, failure.ID, nextRetryCount, nextRetryAt, cause); err != nil && p.log != nil {
		p.log.Error("failed to schedule failure queue retry", zap.String("failureId", failure.ID), zap.Error(err))
	}
}

// backoffDelay returns the schedule entry for the Nth retry attempt
// (1-indexed), clamped to the schedule's last entry once retries exceed
// its length.
func (p *Processor) backoffDelay(retryCount int) time.Duration {
	idx := retryCount - 1
	if idx < 0 {
		idx = 0
	}
	if idx >= len(p.backoffSchedule) {
		idx = len(p.backoffSchedule) - 1
	}
	return p.backoffSchedule[idx]
}

func (p *Processor) emitPermanentlyFailed(ctx context.Context, failure domain.EventProcessingFailure, retryCount int, cause string) {
	if p.publisher == nil {
		return
	}
	evt := domain.EventProcessingPermanentlyFailed{
		FailureID:  failure.ID,
		EventType:  failure.EventType,
		RetryCount: retryCount,
		LastError:  cause,
	}
	payload, err := marshalPermanentlyFailed(evt)
	if err != nil {
		if p.log != nil {
			p.log.Error("failed to marshal EventProcessingPermanentlyFailed", zap.Error(err))
		}
		return
	}
	if err := p.publisher.Publish(ctx, domain.EventTypeEventProcessingPermanentlyFailed, payload); err != nil && p.log != nil {
		p.log.Error("failed to publish EventProcessingPermanentlyFailed", zap.Error(err))
	}
}

func (p *Processor) sendDeadLetterAlert(ctx context.Context, failure domain.EventProcessingFailure, retryCount int, cause string) {
	if p.alerter == nil {
		return
	}
	if err := p.alerter.AlertDeadLetter(ctx, failure.ID, failure.EventType, retryCount, cause); err != nil && p.log != nil {
		p.log.Error("failed to send dead-letter alert", zap.String("failureId", failure.ID), zap.Error(err))
	}
}
