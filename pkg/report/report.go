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

// Package report renders the artifact the coordinator (C10) writes once a
// batch's quality and calculation streams join: a summary of the two
// result URIs, the quality scores, and the portfolio totals, in one of
// three output formats selected by configuration.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// Input is everything a Renderer needs to produce one artifact. Both
// halves of the dual-event join are always present by the time a report
// is requested — the coordinator only calls Render on JOIN.
type Input struct {
	BatchID        string
	BankID         string
	QualityURI     string
	QualityScores  domain.QualityScoresWire
	CalculationURI string
	TotalExposures int
	TotalAmountEUR decimal.Decimal
	GeneratedAt    time.Time
}

// Renderer produces one report artifact's bytes and a content type for
// the object-store PutObject call.
type Renderer interface {
	Render(in Input) (content []byte, contentType string, err error)
	Format() domain.ReportFormat
}

// Registry resolves a configured format name to its Renderer.
type Registry struct {
	renderers map[domain.ReportFormat]Renderer
}

// NewRegistry wires every available Renderer by its Format().
func NewRegistry(renderers ...Renderer) *Registry {
	reg := &Registry{renderers: make(map[domain.ReportFormat]Renderer, len(renderers))}
	for _, r := range renderers {
		reg.renderers[r.Format()] = r
	}
	return reg
}

// DefaultRegistry wires the three built-in renderers.
func DefaultRegistry() *Registry {
	return NewRegistry(&PDFRenderer{}, &XLSXRenderer{}, &XBRLRenderer{})
}

// Resolve looks up the Renderer for format.
func (reg *Registry) Resolve(format domain.ReportFormat) (Renderer, bool) {
	r, ok := reg.renderers[format]
	return r, ok
}
