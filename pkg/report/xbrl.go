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

package report

import (
	"encoding/xml"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// xbrlDocument is a minimal XBRL-shaped instance document: a context per
// batch and a fact per reported figure. Not a full XBRL taxonomy binding —
// regulators accepting this pipeline's output would supply the taxonomy
// the real facts bind against.
type xbrlDocument struct {
	XMLName xml.Name  `xml:"xbrl"`
	Xmlns   string    `xml:"xmlns,attr"`
	Context xbrlContext `xml:"context"`
	Facts   []xbrlFact  `xml:"fact"`
}

type xbrlContext struct {
	ID      string `xml:"id,attr"`
	BatchID string `xml:"batchId"`
	BankID  string `xml:"bankId"`
}

type xbrlFact struct {
	Name    string `xml:"name,attr"`
	Context string `xml:"contextRef,attr"`
	Value   string `xml:",chardata"`
}

// XBRLRenderer emits a minimal XBRL instance document.
type XBRLRenderer struct{}

func (r *XBRLRenderer) Format() domain.ReportFormat { return domain.ReportFormatXBRL }

func (r *XBRLRenderer) Render(in Input) ([]byte, string, error) {
	ctxID := "ctx-" + in.BatchID
	doc := xbrlDocument{
		Xmlns:   "http://www.xbrl.org/2003/instance",
		Context: xbrlContext{ID: ctxID, BatchID: in.BatchID, BankID: in.BankID},
		Facts: []xbrlFact{
			{Name: "TotalExposures", Context: ctxID, Value: itoa(in.TotalExposures)},
			{Name: "TotalAmountEUR", Context: ctxID, Value: in.TotalAmountEUR.String()},
			{Name: "OverallQualityScore", Context: ctxID, Value: ftoa(in.QualityScores.OverallScore)},
			{Name: "QualityGrade", Context: ctxID, Value: string(in.QualityScores.Grade)},
		},
	}

	out, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, "", err
	}
	out = append([]byte(xml.Header), out...)
	return out, "application/xml", nil
}

var _ Renderer = (*XBRLRenderer)(nil)
