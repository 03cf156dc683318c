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
	"archive/zip"
	"bytes"
	"fmt"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

// XLSXRenderer emits a single-sheet OOXML spreadsheet. An .xlsx file is a
// zip archive of fixed XML parts; no third-party spreadsheet library
// appears anywhere in the retrieved example pack, so this builds the
// archive directly rather than hand-rolling a DOM around a borrowed
// format the pack never demonstrates using one.
type XLSXRenderer struct{}

func (r *XLSXRenderer) Format() domain.ReportFormat { return domain.ReportFormatXLSX }

const xlsxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
  <Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
  <Default Extension="xml" ContentType="application/xml"/>
  <Override PartName="/xl/workbook.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.sheet.main+xml"/>
  <Override PartName="/xl/worksheets/sheet1.xml" ContentType="application/vnd.openxmlformats-officedocument.spreadsheetml.worksheet+xml"/>
</Types>`

const xlsxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="xl/workbook.xml"/>
</Relationships>`

const xlsxWorkbookRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
  <Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet1.xml"/>
</Relationships>`

const xlsxWorkbook = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets>
    <sheet name="Batch Summary" sheetId="1" r:id="rId1"/>
  </sheets>
</workbook>`

func (r *XLSXRenderer) Render(in Input) ([]byte, string, error) {
	rows := [][2]string{
		{"Batch ID", in.BatchID},
		{"Bank ID", in.BankID},
		{"Quality result URI", in.QualityURI},
		{"Calculation result URI", in.CalculationURI},
		{"Total exposures", itoa(in.TotalExposures)},
		{"Total amount (EUR)", in.TotalAmountEUR.String()},
		{"Overall quality score", ftoa(in.QualityScores.OverallScore)},
		{"Quality grade", string(in.QualityScores.Grade)},
		{"Generated at", in.GeneratedAt.UTC().Format("2006-01-02T15:04:05Z")},
	}

	var sheet bytes.Buffer
	sheet.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sheet.WriteString(`<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>`)
	for i, row := range rows {
		rowNum := i + 1
		fmt.Fprintf(&sheet, `<row r="%d">`, rowNum)
		fmt.Fprintf(&sheet, `<c r="A%d" t="inlineStr"><is><t>%s</t></is></c>`, rowNum, escapeXMLText(row[0]))
		fmt.Fprintf(&sheet, `<c r="B%d" t="inlineStr"><is><t>%s</t></is></c>`, rowNum, escapeXMLText(row[1]))
		sheet.WriteString(`</row>`)
	}
	sheet.WriteString(`</sheetData></worksheet>`)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := map[string]string{
		"[Content_Types].xml":       xlsxContentTypes,
		"_rels/.rels":               xlsxRootRels,
		"xl/workbook.xml":           xlsxWorkbook,
		"xl/_rels/workbook.xml.rels": xlsxWorkbookRels,
		"xl/worksheets/sheet1.xml":  sheet.String(),
	}
	for name, content := range parts {
		w, err := zw.Create(name)
		if err != nil {
			return nil, "", err
		}
		if _, err := w.Write([]byte(content)); err != nil {
			return nil, "", err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", nil
}

func escapeXMLText(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		switch r {
		case '&':
			b.WriteString("&amp;")
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

var _ Renderer = (*XLSXRenderer)(nil)
