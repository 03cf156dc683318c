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

// Package quality implements the quality scorer (C6): it turns a batch's
// aggregated rule violations into per-dimension and overall scores plus a
// letter grade.
package quality

import (
	"math"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// Weights maps each dimension to its contribution to the overall score.
// Externally configurable per spec.md §4.6; DefaultWeights is used when a
// deployment supplies none.
type Weights map[domain.Dimension]float64

// DefaultWeights splits the overall score uniformly across the six
// dimensions.
func DefaultWeights() Weights {
	w := make(Weights, len(domain.Dimensions))
	share := 1.0 / float64(len(domain.Dimensions))
	for _, d := range domain.Dimensions {
		w[d] = share
	}
	return w
}

// Scorer computes domain.QualityScores from a batch's violations.
type Scorer struct {
	weights Weights
}

// NewScorer builds a Scorer. A nil or empty weights map falls back to
// DefaultWeights.
func NewScorer(weights Weights) *Scorer {
	if len(weights) == 0 {
		weights = DefaultWeights()
	}
	return &Scorer{weights: weights}
}

// Score computes the batch's quality scores. totalCount is the number of
// exposures the violations were evaluated over; a batch with no exposures
// scores a perfect 100 in every dimension (there was no opportunity to
// violate anything).
func (s *Scorer) Score(totalCount int, violations []domain.RuleViolation) domain.QualityScores {
	dimensionScores := make(map[domain.Dimension]float64, len(domain.Dimensions))

	if totalCount == 0 {
		for _, d := range domain.Dimensions {
			dimensionScores[d] = 100
		}
		return domain.QualityScores{DimensionScores: dimensionScores, OverallScore: 100, Grade: domain.GradeAPlus}
	}

	weightedViolations := make(map[domain.Dimension]float64, len(domain.Dimensions))
	for _, v := range violations {
		weightedViolations[v.Dimension] += domain.SeverityWeight(v.Severity)
	}

	for _, d := range domain.Dimensions {
		ratio := weightedViolations[d] / float64(totalCount)
		score := 100 - ratio*100
		dimensionScores[d] = clamp(score, 0, 100)
	}

	var overall float64
	for d, weight := range s.weights {
		overall += weight * dimensionScores[d]
	}
	// Drop float summation drift (six 1/6 shares of 100 sum to
	// 99.99999999999997) so a batch without violations scores exactly 100.
	overall = math.Round(overall*1e9) / 1e9
	overall = clamp(overall, 0, 100)

	return domain.QualityScores{
		DimensionScores: dimensionScores,
		OverallScore:    overall,
		Grade:           gradeFor(overall),
	}
}

func clamp(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// gradeFor applies spec.md §4.6's fixed grade thresholds.
func gradeFor(overall float64) domain.Grade {
	switch {
	case overall >= 95:
		return domain.GradeAPlus
	case overall >= 90:
		return domain.GradeA
	case overall >= 80:
		return domain.GradeB
	case overall >= 70:
		return domain.GradeC
	default:
		return domain.GradeF
	}
}
