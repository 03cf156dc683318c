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

package domain

// Grade is the letter grade derived from a batch's overall quality score.
type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeB     Grade = "B"
	GradeC     Grade = "C"
	GradeF     Grade = "F"
)

// QualityScores is the per-batch result of the quality scorer (C6).
type QualityScores struct {
	DimensionScores map[Dimension]float64
	OverallScore    float64
	Grade           Grade
}

// LowestScoringDimension and HighestScoringDimension are computed once the
// scores are final; ties are broken by Dimensions declaration order.
func (q QualityScores) LowestScoringDimension() Dimension {
	return extremeDimension(q.DimensionScores, false)
}

func (q QualityScores) HighestScoringDimension() Dimension {
	return extremeDimension(q.DimensionScores, true)
}

func extremeDimension(scores map[Dimension]float64, highest bool) Dimension {
	var best Dimension
	bestScore := 0.0
	set := false
	for _, d := range Dimensions {
		s, ok := scores[d]
		if !ok {
			continue
		}
		if !set {
			best, bestScore, set = d, s, true
			continue
		}
		if (highest && s > bestScore) || (!highest && s < bestScore) {
			best, bestScore = d, s
		}
	}
	return best
}
