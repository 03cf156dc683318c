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

// Package rules implements the CEL-based business rule engine (C5): it
// evaluates every enabled BusinessRule against every exposure in a batch,
// honoring time-windowed exemptions and producing RuleViolations.
package rules

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/cel-go/cel"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// Stats summarizes how an exposure's rule evaluation went.
type Stats struct {
	Evaluated int
	Exempted  int
	Passed    int
	Violated  int
	Errored   int
}

// Outcome is the result of evaluating one or more exposures:
// validateNoPersist's {errors, violations, stats} triple.
type Outcome struct {
	Violations []domain.RuleViolation
	Errors     []*apperrors.AppError
	Stats      Stats
}

type compiledRule struct {
	Rule    domain.BusinessRule
	Program cel.Program
}

type exemptionKey struct {
	EntityType domain.EntityType
	EntityID   string
}

// Engine is the rule evaluation engine. A single Engine is shared across
// every batch processed by this instance: its rule cache is loaded once,
// on first use, and retained for the process lifetime.
type Engine struct {
	ruleStore      RuleStore
	exemptionStore ExemptionStore
	violationRepo  ViolationRepository
	log            *zap.Logger

	env *cel.Env

	ruleCacheOnce sync.Once
	ruleCacheErr  error
	rules         atomic.Pointer[[]compiledRule]

	exemptions atomic.Pointer[map[exemptionKey][]domain.Exemption]

	now func() time.Time
}

// NewEngine builds an Engine backed by ruleStore, exemptionStore and
// violationRepo.
func NewEngine(ruleStore RuleStore, exemptionStore ExemptionStore, violationRepo ViolationRepository, log *zap.Logger) (*Engine, error) {
	env, err := newEnv()
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to build CEL environment")
	}
	return &Engine{
		ruleStore:      ruleStore,
		exemptionStore: exemptionStore,
		violationRepo:  violationRepo,
		log:            log,
		env:            env,
		now:            time.Now,
	}, nil
}

// ensureRules loads and compiles the enabled ruleset exactly once,
// regardless of how many goroutines or batches call into it concurrently
// (spec.md §4.5's double-checked initialization).
func (e *Engine) ensureRules(ctx context.Context) error {
	e.ruleCacheOnce.Do(func() {
		loaded, err := e.ruleStore.LoadEnabled(ctx)
		if err != nil {
			e.ruleCacheErr = err
			return
		}

		compiled := make([]compiledRule, 0, len(loaded))
		for _, r := range loaded {
			if !r.Enabled {
				continue
			}
			cr, cerr := compileRule(e.env, r)
			if cerr != nil {
				if e.log != nil {
					e.log.Warn("skipping rule that failed to compile",
						zap.String("ruleId", r.RuleID), zap.Error(cerr))
				}
				continue
			}
			compiled = append(compiled, cr)
		}
		e.rules.Store(&compiled)
	})
	return e.ruleCacheErr
}

func compileRule(env *cel.Env, rule domain.BusinessRule) (compiledRule, error) {
	// Parse (not Compile/Check): the environment declares no variables, so
	// type-checking would reject every exposure field reference. Names are
	// resolved dynamically at Eval time via scopeActivation instead.
	ast, iss := env.Parse(rule.Expression)
	if iss != nil && iss.Err() != nil {
		return compiledRule{}, iss.Err()
	}
	prg, err := env.Program(ast)
	if err != nil {
		return compiledRule{}, err
	}
	return compiledRule{Rule: rule, Program: prg}, nil
}

// PrefetchForBatch loads the enabled ruleset (a one-time, process-lifetime
// operation) and rebuilds the exemption index for this batch's exposures,
// keyed by (entityType, entityId).
func (e *Engine) PrefetchForBatch(ctx context.Context, exposures []domain.Exposure) error {
	if err := e.ensureRules(ctx); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to load business rules")
	}

	seen := make(map[string]bool, len(exposures))
	ids := make([]string, 0, len(exposures))
	for _, exp := range exposures {
		if seen[exp.ExposureID] {
			continue
		}
		seen[exp.ExposureID] = true
		ids = append(ids, exp.ExposureID)
	}

	exemptions, err := e.exemptionStore.LoadForEntities(ctx, domain.EntityTypeExposure, ids)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to load exemptions")
	}

	index := make(map[exemptionKey][]domain.Exemption, len(exemptions))
	for _, ex := range exemptions {
		key := exemptionKey{EntityType: ex.EntityType, EntityID: ex.EntityID}
		index[key] = append(index[key], ex)
	}
	e.exemptions.Store(&index)
	return nil
}

// OnBatchComplete clears the exemption cache. The rule cache is retained
// across batches (spec.md §4.5).
func (e *Engine) OnBatchComplete() {
	empty := make(map[exemptionKey][]domain.Exemption)
	e.exemptions.Store(&empty)
}

// Evaluator is a pure function over an exposure, safe to call
// concurrently from multiple workers.
type Evaluator func(exposure domain.Exposure) Outcome

// PrepareForBatch snapshots the cached ruleset and exemption index and
// returns an Evaluator closed over that immutable snapshot, with
// violations tagged against batchID.
func (e *Engine) PrepareForBatch(batchID string) Evaluator {
	rulesPtr := e.rules.Load()
	var snapshot []compiledRule
	if rulesPtr != nil {
		snapshot = *rulesPtr
	}
	exemptionsPtr := e.exemptions.Load()
	var exemptionIndex map[exemptionKey][]domain.Exemption
	if exemptionsPtr != nil {
		exemptionIndex = *exemptionsPtr
	}

	return func(exposure domain.Exposure) Outcome {
		return e.evaluate(batchID, snapshot, exemptionIndex, exposure)
	}
}

// ValidateNoPersist evaluates a single exposure against the current
// snapshot without any side effects.
func (e *Engine) ValidateNoPersist(batchID string, exposure domain.Exposure) Outcome {
	return e.PrepareForBatch(batchID)(exposure)
}

func (e *Engine) evaluate(batchID string, rulesSnapshot []compiledRule, exemptionIndex map[exemptionKey][]domain.Exemption, exposure domain.Exposure) Outcome {
	scope := buildScope(domain.EntityTypeExposure, exposure)
	activation := newScopeActivation(scope)
	now := e.now().UTC()

	var outcome Outcome
	entityExemptions := exemptionIndex[exemptionKey{EntityType: domain.EntityTypeExposure, EntityID: exposure.ExposureID}]

	for _, cr := range rulesSnapshot {
		outcome.Stats.Evaluated++

		if exemptionCovers(entityExemptions, cr.Rule.RuleID, now) {
			outcome.Stats.Exempted++
			continue
		}

		out, _, err := cr.Program.Eval(activation)
		if err != nil {
			outcome.Stats.Errored++
			outcome.Errors = append(outcome.Errors, apperrors.NewEvaluationError(cr.Rule.RuleID, err))
			outcome.Violations = append(outcome.Violations, domain.RuleViolation{
				BatchID:    batchID,
				ExposureID: exposure.ExposureID,
				RuleID:     cr.Rule.RuleID,
				Dimension:  cr.Rule.Dimension,
				Severity:   domain.SeverityMedium,
				Field:      cr.Rule.Field,
				Message:    "EVALUATION_ERROR: " + err.Error(),
				ObservedAt: now,
			})
			continue
		}

		if coerceTruthy(out.Value()) {
			outcome.Stats.Passed++
			continue
		}

		outcome.Stats.Violated++
		outcome.Violations = append(outcome.Violations, domain.RuleViolation{
			BatchID:    batchID,
			ExposureID: exposure.ExposureID,
			RuleID:     cr.Rule.RuleID,
			Dimension:  cr.Rule.Dimension,
			Severity:   cr.Rule.Severity,
			Field:      cr.Rule.Field,
			Message:    renderMessage(cr.Rule.Message, scope),
			ObservedAt: now,
		})
	}

	return outcome
}

func exemptionCovers(exemptions []domain.Exemption, ruleID string, at time.Time) bool {
	for _, ex := range exemptions {
		if ex.AppliesToRule(ruleID) && ex.CoversAt(at) {
			return true
		}
	}
	return false
}

// EvaluateBatch fans exposures out across a bounded worker pool (spec.md
// §5's errgroup-based concurrency model), aggregating every exposure's
// violations, errors and stats into a single Outcome.
func (e *Engine) EvaluateBatch(ctx context.Context, batchID string, exposures []domain.Exposure, workers int) (Outcome, error) {
	if workers <= 0 {
		workers = 4
	}
	evaluator := e.PrepareForBatch(batchID)

	outcomes := make([]Outcome, len(exposures))
	g, gctx := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)

	for i, exposure := range exposures {
		i, exposure := i, exposure
		select {
		case sem <- struct{}{}:
		case <-gctx.Done():
			return Outcome{}, apperrors.Wrap(gctx.Err(), apperrors.ErrorTypeTimeout, "batch evaluation cancelled")
		}
		g.Go(func() error {
			defer func() { <-sem }()
			outcomes[i] = evaluator(exposure)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Outcome{}, apperrors.Wrap(err, apperrors.ErrorTypeSystem, "batch evaluation failed")
	}

	var combined Outcome
	for _, o := range outcomes {
		combined.Violations = append(combined.Violations, o.Violations...)
		combined.Errors = append(combined.Errors, o.Errors...)
		combined.Stats.Evaluated += o.Stats.Evaluated
		combined.Stats.Exempted += o.Stats.Exempted
		combined.Stats.Passed += o.Stats.Passed
		combined.Stats.Violated += o.Stats.Violated
		combined.Stats.Errored += o.Stats.Errored
	}
	return combined, nil
}

// BatchPersistValidationResults inserts a batch's violations in a single
// transaction, flushing once.
func (e *Engine) BatchPersistValidationResults(ctx context.Context, batchID string, violations []domain.RuleViolation) error {
	if len(violations) == 0 {
		return nil
	}
	if err := e.violationRepo.InsertBatch(ctx, batchID, violations); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to persist rule violations")
	}
	return nil
}
