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

// Package math holds small, dependency-free numeric helpers shared across
// the scoring and portfolio-analysis components. Portfolio amounts
// themselves stay in decimal.Decimal (see pkg/portfolio); these helpers
// operate on plain float64 shares for statistics that do not need
// arbitrary precision (e.g. HHI is a dimensionless concentration index).
package math

func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

func Variance(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - m
		sumSq += d * d
	}
	return sumSq / float64(len(values))
}

func StandardDeviation(values []float64) float64 {
	return sqrt(Variance(values))
}

func Min(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func Max(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// HerfindahlIndex computes the Herfindahl-Hirschman concentration index:
// the sum of squared category shares, where each share is a fraction in
// [0,1] of the whole. Spec.md §4.8/§8 requires 1/k <= HHI <= 1 for k
// non-empty categories, which holds automatically from Cauchy-Schwarz.
func HerfindahlIndex(shares []float64) float64 {
	var hhi float64
	for _, s := range shares {
		hhi += s * s
	}
	return hhi
}

func sqrt(x float64) float64 {
	if x <= 0 {
		return 0
	}
	// Newton-Raphson, keeping this package free of the stdlib math import
	// so its name does not collide with the package's own name.
	z := x
	for i := 0; i < 40; i++ {
		z -= (z*z - x) / (2 * z)
	}
	return z
}
