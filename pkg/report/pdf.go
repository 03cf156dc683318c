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
	"bytes"
	"fmt"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// PDFRenderer emits a single-page PDF listing the batch summary as plain
// text lines. No PDF library appears anywhere in the retrieved example
// pack (see DESIGN.md); the PDF object graph below is the minimal set of
// objects the format requires (catalog, page tree, page, content stream,
// font) written directly.
type PDFRenderer struct{}

func (r *PDFRenderer) Format() domain.ReportFormat { return domain.ReportFormatPDF }

func (r *PDFRenderer) Render(in Input) ([]byte, string, error) {
	lines := []string{
		"Exposure Pipeline Batch Report",
		"Batch ID: " + in.BatchID,
		"Bank ID: " + in.BankID,
		"Quality result: " + in.QualityURI,
		"Calculation result: " + in.CalculationURI,
		"Total exposures: " + itoa(in.TotalExposures),
		"Total amount (EUR): " + in.TotalAmountEUR.String(),
		"Overall quality score: " + ftoa(in.QualityScores.OverallScore),
		"Quality grade: " + string(in.QualityScores.Grade),
	}
	return buildPDF(lines), "application/pdf", nil
}

func buildPDF(lines []string) []byte {
	var content bytes.Buffer
	content.WriteString("BT /F1 12 Tf 50 780 Td 16 TL\n")
	for _, line := range lines {
		fmt.Fprintf(&content, "(%s) Tj T*\n", escapePDFText(line))
	}
	content.WriteString("ET")

	objects := []string{
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 5 0 R >> >> /Contents 4 0 R >>",
		fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", content.Len(), content.String()),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects)+1)
	for i, obj := range objects {
		offsets[i+1] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}

	xrefStart := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", len(objects)+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= len(objects); i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF", len(objects)+1, xrefStart)

	return buf.Bytes()
}

func escapePDFText(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '(', ')', '\\':
			b.WriteRune('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var _ Renderer = (*PDFRenderer)(nil)
