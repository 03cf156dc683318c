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

package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
)

func TestRecordBatchIngested(t *testing.T) {
	bankID := "test_08081"
	initial := testutil.ToFloat64(BatchesIngestedTotal.WithLabelValues(bankID))

	RecordBatchIngested(bankID)

	final := testutil.ToFloat64(BatchesIngestedTotal.WithLabelValues(bankID))
	assert.Equal(t, initial+1.0, final)
}

func TestRecordBatchTransition(t *testing.T) {
	from, to, outcome := "test_VALIDATING", "test_SCORED", "success"
	initial := testutil.ToFloat64(BatchTransitionsTotal.WithLabelValues(from, to, outcome))

	RecordBatchTransition(from, to, outcome, 150*time.Millisecond)

	final := testutil.ToFloat64(BatchTransitionsTotal.WithLabelValues(from, to, outcome))
	assert.Equal(t, initial+1.0, final)

	metric := &dto.Metric{}
	BatchTransitionDuration.WithLabelValues(from, to).Write(metric)
	assert.True(t, metric.GetHistogram().GetSampleCount() > 0, "transition histogram should have recorded a sample")
}

func TestRecordRuleEvaluation(t *testing.T) {
	ruleID := "test_R-001"
	initial := testutil.ToFloat64(RuleEvaluationsTotal.WithLabelValues(ruleID, "pass"))

	RecordRuleEvaluation(ruleID, "pass")

	final := testutil.ToFloat64(RuleEvaluationsTotal.WithLabelValues(ruleID, "pass"))
	assert.Equal(t, initial+1.0, final)
}

func TestRecordRuleEvaluationDuration(t *testing.T) {
	RecordRuleEvaluationDuration(2 * time.Second)

	metric := &dto.Metric{}
	RuleEvaluationDuration.Write(metric)
	assert.True(t, metric.GetHistogram().GetSampleCount() > 0, "rule evaluation histogram should have recorded a sample")
}

func TestRecordRuleViolation(t *testing.T) {
	initial := testutil.ToFloat64(RuleViolationsTotal.WithLabelValues("test_HIGH"))

	RecordRuleViolation("test_HIGH")

	final := testutil.ToFloat64(RuleViolationsTotal.WithLabelValues("test_HIGH"))
	assert.Equal(t, initial+1.0, final)
}

func TestRecordFXRateLookupError(t *testing.T) {
	initial := testutil.ToFloat64(FXRateLookupErrorsTotal.WithLabelValues("test_JPY"))

	RecordFXRateLookupError("test_JPY")

	final := testutil.ToFloat64(FXRateLookupErrorsTotal.WithLabelValues("test_JPY"))
	assert.Equal(t, initial+1.0, final)
}

func TestRecordOutboxEventPublished(t *testing.T) {
	initial := testutil.ToFloat64(OutboxEventsPublishedTotal.WithLabelValues("test_BatchIngested"))

	RecordOutboxEventPublished("test_BatchIngested")

	final := testutil.ToFloat64(OutboxEventsPublishedTotal.WithLabelValues("test_BatchIngested"))
	assert.Equal(t, initial+1.0, final)
}

func TestRecordFailureQueueRetry(t *testing.T) {
	initial := testutil.ToFloat64(FailureQueueRetriesTotal.WithLabelValues("test_ReportGenerationRequested"))

	RecordFailureQueueRetry("test_ReportGenerationRequested")

	final := testutil.ToFloat64(FailureQueueRetriesTotal.WithLabelValues("test_ReportGenerationRequested"))
	assert.Equal(t, initial+1.0, final)
}

func TestRecordFailureQueueDeadLettered(t *testing.T) {
	initial := testutil.ToFloat64(FailureQueueDeadLetteredTotal.WithLabelValues("test_ReportGenerationRequested"))

	RecordFailureQueueDeadLettered("test_ReportGenerationRequested")

	final := testutil.ToFloat64(FailureQueueDeadLetteredTotal.WithLabelValues("test_ReportGenerationRequested"))
	assert.Equal(t, initial+1.0, final)
}

func TestSetActiveBatches(t *testing.T) {
	SetActiveBatches(5.0)
	assert.Equal(t, 5.0, testutil.ToFloat64(ActiveBatchesGauge))

	SetActiveBatches(3.0)
	assert.Equal(t, 3.0, testutil.ToFloat64(ActiveBatchesGauge))
}

func TestRecordReportCoordinated(t *testing.T) {
	initial := testutil.ToFloat64(ReportsCoordinatedTotal.WithLabelValues("test_completed"))

	RecordReportCoordinated("test_completed")

	final := testutil.ToFloat64(ReportsCoordinatedTotal.WithLabelValues("test_completed"))
	assert.Equal(t, initial+1.0, final)
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	assert.NotNil(t, timer)
	assert.False(t, timer.start.IsZero())

	time.Sleep(10 * time.Millisecond)

	elapsed := timer.Elapsed()
	assert.True(t, elapsed >= 10*time.Millisecond, "elapsed time should be at least 10ms")
	assert.True(t, elapsed < 1*time.Second, "elapsed time should be well under a second")
}

func TestTimerRecordBatchTransition(t *testing.T) {
	timer := NewTimer()
	from, to, outcome := "test_timer_RECEIVED", "test_timer_PARSING", "success"

	initial := testutil.ToFloat64(BatchTransitionsTotal.WithLabelValues(from, to, outcome))

	time.Sleep(5 * time.Millisecond)
	timer.RecordBatchTransition(from, to, outcome)

	final := testutil.ToFloat64(BatchTransitionsTotal.WithLabelValues(from, to, outcome))
	assert.Equal(t, initial+1.0, final)
}

func TestMetricsNaming(t *testing.T) {
	metricNames := []string{
		"batches_ingested_total",
		"batch_transitions_total",
		"batch_transition_duration_seconds",
		"rule_evaluations_total",
		"rule_evaluation_duration_seconds",
		"rule_violations_total",
		"fx_rate_lookup_errors_total",
		"outbox_events_published_total",
		"failure_queue_retries_total",
		"failure_queue_dead_lettered_total",
		"active_batches",
		"reports_coordinated_total",
	}

	for _, name := range metricNames {
		assert.False(t, strings.Contains(name, "-"), "metric name %s should not contain hyphens", name)
		assert.False(t, strings.Contains(name, " "), "metric name %s should not contain spaces", name)

		if strings.Contains(name, "duration") {
			assert.True(t, strings.HasSuffix(name, "_seconds"), "duration metric %s should end with _seconds", name)
		}

		if strings.Contains(name, "ingested") || strings.Contains(name, "transitions") ||
			strings.Contains(name, "evaluations") || strings.Contains(name, "violations") ||
			strings.Contains(name, "errors") || strings.Contains(name, "published") ||
			strings.Contains(name, "retries") || strings.Contains(name, "dead_lettered") ||
			strings.Contains(name, "coordinated") {
			assert.True(t, strings.HasSuffix(name, "_total"), "counter metric %s should end with _total", name)
		}
	}
}
