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

// Package metrics exposes Prometheus collectors for every pipeline
// component, following the teacher's package-level collector-var pattern:
// each metric is a promauto-registered package variable, with a Record*/
// Set* function wrapping the update so call sites never touch the
// collector type directly.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BatchesIngestedTotal counts batches accepted by C1, labeled by the
	// submitting bank.
	BatchesIngestedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "batches_ingested_total",
		Help: "Total number of ingestion batches accepted.",
	}, []string{"bank_id"})

	// BatchTransitionsTotal counts every C1 state transition, labeled by
	// the edge walked and its outcome (spec.md §4.1).
	BatchTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "batch_transitions_total",
		Help: "Total number of batch state transitions.",
	}, []string{"from", "to", "outcome"})

	// BatchTransitionDuration measures the latency of a single state
	// transition.
	BatchTransitionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "batch_transition_duration_seconds",
		Help:    "Duration of a single batch state transition.",
		Buckets: prometheus.DefBuckets,
	}, []string{"from", "to"})

	// RuleEvaluationsTotal counts C5 rule evaluations, labeled by rule id
	// and whether the predicate passed, failed, or errored.
	RuleEvaluationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rule_evaluations_total",
		Help: "Total number of rule evaluations performed.",
	}, []string{"rule_id", "outcome"})

	// RuleEvaluationDuration measures the wall-clock time of a batch's
	// full rule-engine pass.
	RuleEvaluationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rule_evaluation_duration_seconds",
		Help:    "Duration of a full rule-engine pass over one batch.",
		Buckets: prometheus.DefBuckets,
	})

	// RuleViolationsTotal counts persisted violations by severity.
	RuleViolationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rule_violations_total",
		Help: "Total number of rule violations recorded.",
	}, []string{"severity"})

	// FXRateLookupErrorsTotal counts C7 FX_RATE_UNAVAILABLE occurrences,
	// labeled by currency.
	FXRateLookupErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fx_rate_lookup_errors_total",
		Help: "Total number of FX rate lookups that failed.",
	}, []string{"currency"})

	// OutboxEventsPublishedTotal counts C9 events successfully published.
	OutboxEventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "outbox_events_published_total",
		Help: "Total number of outbox events published to the bus.",
	}, []string{"event_type"})

	// FailureQueueRetriesTotal counts C11 retry attempts, labeled by
	// event type.
	FailureQueueRetriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "failure_queue_retries_total",
		Help: "Total number of failure-queue retry attempts.",
	}, []string{"event_type"})

	// FailureQueueDeadLetteredTotal counts C11 rows that exhausted their
	// retry budget.
	FailureQueueDeadLetteredTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "failure_queue_dead_lettered_total",
		Help: "Total number of failure-queue rows moved to DEAD_LETTER.",
	}, []string{"event_type"})

	// ActiveBatchesGauge reports the number of batches currently in a
	// non-terminal state.
	ActiveBatchesGauge = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "active_batches",
		Help: "Number of batches currently in a non-terminal state.",
	})

	// ReportsCoordinatedTotal counts C10 dual-event joins, labeled by
	// outcome (completed, filtered_stale, filtered_invalid).
	ReportsCoordinatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reports_coordinated_total",
		Help: "Total number of report-coordination joins processed.",
	}, []string{"outcome"})
)

// RecordBatchIngested increments BatchesIngestedTotal for bankID.
func RecordBatchIngested(bankID string) {
	BatchesIngestedTotal.WithLabelValues(bankID).Inc()
}

// RecordBatchTransition records a single C1 state transition and its
// latency.
func RecordBatchTransition(from, to, outcome string, duration time.Duration) {
	BatchTransitionsTotal.WithLabelValues(from, to, outcome).Inc()
	BatchTransitionDuration.WithLabelValues(from, to).Observe(duration.Seconds())
}

// RecordRuleEvaluation records a single rule-evaluation outcome.
func RecordRuleEvaluation(ruleID, outcome string) {
	RuleEvaluationsTotal.WithLabelValues(ruleID, outcome).Inc()
}

// RecordRuleEvaluationDuration records the wall-clock duration of a full
// rule-engine pass.
func RecordRuleEvaluationDuration(duration time.Duration) {
	RuleEvaluationDuration.Observe(duration.Seconds())
}

// RecordRuleViolation increments RuleViolationsTotal for sev.
func RecordRuleViolation(severity string) {
	RuleViolationsTotal.WithLabelValues(severity).Inc()
}

// RecordFXRateLookupError increments FXRateLookupErrorsTotal for currency.
func RecordFXRateLookupError(currency string) {
	FXRateLookupErrorsTotal.WithLabelValues(currency).Inc()
}

// RecordOutboxEventPublished increments OutboxEventsPublishedTotal for
// eventType.
func RecordOutboxEventPublished(eventType string) {
	OutboxEventsPublishedTotal.WithLabelValues(eventType).Inc()
}

// RecordFailureQueueRetry increments FailureQueueRetriesTotal for
// eventType.
func RecordFailureQueueRetry(eventType string) {
	FailureQueueRetriesTotal.WithLabelValues(eventType).Inc()
}

// RecordFailureQueueDeadLettered increments FailureQueueDeadLetteredTotal
// for eventType.
func RecordFailureQueueDeadLettered(eventType string) {
	FailureQueueDeadLetteredTotal.WithLabelValues(eventType).Inc()
}

// SetActiveBatches sets ActiveBatchesGauge to n.
func SetActiveBatches(n float64) {
	ActiveBatchesGauge.Set(n)
}

// RecordReportCoordinated increments ReportsCoordinatedTotal for outcome.
func RecordReportCoordinated(outcome string) {
	ReportsCoordinatedTotal.WithLabelValues(outcome).Inc()
}

// Timer measures elapsed wall-clock time for a single operation.
type Timer struct {
	start time.Time
}

// NewTimer starts a timer.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Elapsed returns the time since the timer started.
func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}

// RecordBatchTransition records the elapsed time as a batch transition.
func (t *Timer) RecordBatchTransition(from, to, outcome string) {
	RecordBatchTransition(from, to, outcome, t.Elapsed())
}

// RecordRuleEvaluationDuration records the elapsed time as a rule-engine
// pass duration.
func (t *Timer) RecordRuleEvaluationDuration() {
	RecordRuleEvaluationDuration(t.Elapsed())
}
