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

package validation

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

var _ = Describe("Validation", func() {
	Describe("ValidateSubmitBatchRequest", func() {
		Context("with a valid request", func() {
			It("should pass validation", func() {
				req := SubmitBatchRequest{
					BankID:        "08081",
					FileName:      "exposures-2026-07-30.json",
					FileFormat:    "json",
					ReportingDate: "2026-07-30",
					ObjectKey:     "raw/08081/2026-07-30/exposures.json",
				}

				err := ValidateSubmitBatchRequest(req)
				Expect(err).NotTo(HaveOccurred())
			})
		})

		Context("when bank id is missing", func() {
			It("should return a validation error", func() {
				req := SubmitBatchRequest{
					FileName:      "exposures.json",
					FileFormat:    "json",
					ReportingDate: "2026-07-30",
					ObjectKey:     "raw/x",
				}

				err := ValidateSubmitBatchRequest(req)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("when file format is unsupported", func() {
			It("should return a validation error", func() {
				req := SubmitBatchRequest{
					BankID:        "08081",
					FileName:      "exposures.xlsx",
					FileFormat:    "xlsx",
					ReportingDate: "2026-07-30",
					ObjectKey:     "raw/x",
				}

				err := ValidateSubmitBatchRequest(req)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("when reporting date is not ISO-8601", func() {
			It("should return a validation error", func() {
				req := SubmitBatchRequest{
					BankID:        "08081",
					FileName:      "exposures.json",
					FileFormat:    "json",
					ReportingDate: "30/07/2026",
					ObjectKey:     "raw/x",
				}

				err := ValidateSubmitBatchRequest(req)
				Expect(err).To(HaveOccurred())
			})
		})

		Context("when the file name contains an injection pattern", func() {
			It("should return a validation error", func() {
				req := SubmitBatchRequest{
					BankID:        "08081",
					FileName:      "exposures'; DROP TABLE batches; --.json",
					FileFormat:    "json",
					ReportingDate: "2026-07-30",
					ObjectKey:     "raw/x",
				}

				err := ValidateSubmitBatchRequest(req)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("unsafe characters"))
			})
		})
	})

	Describe("ValidateBusinessRule", func() {
		Context("with a valid rule", func() {
			It("should pass validation", func() {
				rule := domain.BusinessRule{
					RuleID:     "R-042",
					Enabled:    true,
					Expression: `exposure.amount > 0`,
					Dimension:  domain.DimensionValidity,
					Severity:   domain.SeverityHigh,
				}

				err := ValidateBusinessRule(rule)
				Expect(err).NotTo(HaveOccurred())
			})
		})

		Context("when rule id is empty", func() {
			It("should return a validation error", func() {
				rule := domain.BusinessRule{
					Expression: `exposure.amount > 0`,
					Severity:   domain.SeverityHigh,
				}

				err := ValidateBusinessRule(rule)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("rule id is required"))
			})
		})

		Context("when expression is empty", func() {
			It("should return a validation error", func() {
				rule := domain.BusinessRule{
					RuleID:   "R-042",
					Severity: domain.SeverityHigh,
				}

				err := ValidateBusinessRule(rule)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("rule expression is required"))
			})
		})

		Context("when severity is unrecognized", func() {
			It("should return a validation error", func() {
				rule := domain.BusinessRule{
					RuleID:     "R-042",
					Expression: `exposure.amount > 0`,
					Severity:   domain.Severity("CATASTROPHIC"),
				}

				err := ValidateBusinessRule(rule)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("not recognized"))
			})
		})
	})

	Describe("ValidateStringInput", func() {
		Context("with valid input", func() {
			It("should pass validation", func() {
				err := ValidateStringInput("field", "validinput123", 100)
				Expect(err).NotTo(HaveOccurred())
			})
		})

		Context("when input is too long", func() {
			It("should return validation error", func() {
				err := ValidateStringInput("field", "toolong", 5)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("must be 5 characters or less"))
			})
		})

		Context("when input contains SQL injection patterns", func() {
			It("should detect UNION attacks", func() {
				err := ValidateStringInput("field", "'; UNION SELECT * FROM users --", 100)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("contains potentially unsafe characters"))
			})

			It("should detect script injection", func() {
				err := ValidateStringInput("field", "<script>alert('xss')</script>", 100)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("contains potentially unsafe characters"))
			})
		})

		Context("when input contains control characters", func() {
			It("should detect control characters", func() {
				controlChar := string(rune(0x01))
				err := ValidateStringInput("field", "input"+controlChar, 100)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("contains invalid control characters"))
			})

			It("should allow valid whitespace", func() {
				err := ValidateStringInput("field", "input\twith\nlines\r", 100)
				Expect(err).NotTo(HaveOccurred())
			})
		})
	})

	Describe("ValidateLimit", func() {
		Context("with valid limits", func() {
			It("should accept valid ranges", func() {
				validLimits := []int{1, 50, 100, 1000, 10000}

				for _, limit := range validLimits {
					err := ValidateLimit(limit)
					Expect(err).NotTo(HaveOccurred())
				}
			})
		})

		Context("with invalid limits", func() {
			It("should reject zero", func() {
				err := ValidateLimit(0)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("must be greater than 0"))
			})

			It("should reject too large values", func() {
				err := ValidateLimit(50000)
				Expect(err).To(HaveOccurred())
				Expect(err.Error()).To(ContainSubstring("must be 10000 or less"))
			})
		})
	})

	Describe("SanitizeForLogging", func() {
		Context("with clean input", func() {
			It("should return input unchanged", func() {
				input := "clean input text"
				result := SanitizeForLogging(input)
				Expect(result).To(Equal(input))
			})
		})

		Context("with control characters", func() {
			It("should replace control characters", func() {
				controlChar := string(rune(0x01))
				input := "text" + controlChar + "more"
				result := SanitizeForLogging(input)
				Expect(result).To(Equal("text?more"))
			})

			It("should preserve valid whitespace", func() {
				input := "text\twith\nlines\r"
				result := SanitizeForLogging(input)
				Expect(result).To(Equal(input))
			})
		})

		Context("with long input", func() {
			It("should truncate long strings", func() {
				longInput := ""
				for i := 0; i < 300; i++ {
					longInput += "a"
				}

				result := SanitizeForLogging(longInput)
				Expect(len(result)).To(Equal(200))
				Expect(result).To(HaveSuffix("..."))
			})
		})
	})
})
