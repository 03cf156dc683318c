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

package quality

import (
	"math"
	"testing"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

func TestScoreEmptyBatchIsPerfect(t *testing.T) {
	scores := NewScorer(nil).Score(0, nil)
	if scores.OverallScore != 100 || scores.Grade != domain.GradeAPlus {
		t.Fatalf("expected a perfect score for an empty batch, got %+v", scores)
	}
}

func TestScoreNoViolationsIsPerfect(t *testing.T) {
	scores := NewScorer(nil).Score(10, nil)
	if scores.OverallScore != 100 || scores.Grade != domain.GradeAPlus {
		t.Fatalf("expected a perfect score, got %+v", scores)
	}
}

func TestScoreUniquenessDimensionFromDuplicateExposureID(t *testing.T) {
	violations := []domain.RuleViolation{
		{Dimension: domain.DimensionUniqueness, Severity: domain.SeverityCritical},
		{Dimension: domain.DimensionUniqueness, Severity: domain.SeverityCritical},
	}
	scores := NewScorer(nil).Score(3, violations)

	want := 100 - (2.0/3.0)*100
	if math.Abs(scores.DimensionScores[domain.DimensionUniqueness]-want) > 1e-9 {
		t.Fatalf("expected uniqueness score %v, got %v", want, scores.DimensionScores[domain.DimensionUniqueness])
	}
	for _, d := range domain.Dimensions {
		if d == domain.DimensionUniqueness {
			continue
		}
		if scores.DimensionScores[d] != 100 {
			t.Fatalf("expected dimension %s to stay at 100, got %v", d, scores.DimensionScores[d])
		}
	}
}

func TestScoreClampsAtZero(t *testing.T) {
	var violations []domain.RuleViolation
	for i := 0; i < 10; i++ {
		violations = append(violations, domain.RuleViolation{Dimension: domain.DimensionValidity, Severity: domain.SeverityCritical})
	}
	scores := NewScorer(nil).Score(2, violations)
	if scores.DimensionScores[domain.DimensionValidity] != 0 {
		t.Fatalf("expected the validity score to clamp at 0, got %v", scores.DimensionScores[domain.DimensionValidity])
	}
}

func TestScoreGradeThresholds(t *testing.T) {
	tests := []struct {
		overall float64
		want    domain.Grade
	}{
		{100, domain.GradeAPlus},
		{95, domain.GradeAPlus},
		{94.9, domain.GradeA},
		{90, domain.GradeA},
		{89.9, domain.GradeB},
		{80, domain.GradeB},
		{79.9, domain.GradeC},
		{70, domain.GradeC},
		{69.9, domain.GradeF},
		{0, domain.GradeF},
	}
	for _, tt := range tests {
		if got := gradeFor(tt.overall); got != tt.want {
			t.Errorf("gradeFor(%v) = %v, want %v", tt.overall, got, tt.want)
		}
	}
}

func TestScoreCustomWeights(t *testing.T) {
	weights := Weights{domain.DimensionUniqueness: 1.0}
	violations := []domain.RuleViolation{
		{Dimension: domain.DimensionUniqueness, Severity: domain.SeverityCritical},
	}
	scores := NewScorer(weights).Score(1, violations)
	if scores.OverallScore != 0 {
		t.Fatalf("expected overall score to equal the sole weighted dimension's score (0), got %v", scores.OverallScore)
	}
}

func TestLowestAndHighestScoringDimensionTieBreakByDeclarationOrder(t *testing.T) {
	scores := domain.QualityScores{
		DimensionScores: map[domain.Dimension]float64{
			domain.DimensionCompleteness: 80,
			domain.DimensionAccuracy:     80,
			domain.DimensionConsistency:  80,
			domain.DimensionTimeliness:   80,
			domain.DimensionUniqueness:   80,
			domain.DimensionValidity:     80,
		},
	}
	if scores.LowestScoringDimension() != domain.DimensionCompleteness {
		t.Fatalf("expected completeness to win the tie as the first-declared dimension, got %v", scores.LowestScoringDimension())
	}
	if scores.HighestScoringDimension() != domain.DimensionCompleteness {
		t.Fatalf("expected completeness to win the tie as the first-declared dimension, got %v", scores.HighestScoringDimension())
	}
}
