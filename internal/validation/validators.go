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

// Package validation validates inbound boundary-layer requests and
// business-rule definitions before they reach the pipeline core, and holds
// general-purpose string sanitization helpers used when echoing untrusted
// input back into logs.
package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/regtech-core/exposure-pipeline/pkg/domain"
)

var validate = validator.New()

// SubmitBatchRequest is the inbound shape for submitting a new ingestion
// batch (spec.md §6 "Inbound"), validated via struct tags before C1's state
// machine ever sees it.
type SubmitBatchRequest struct {
	BankID        string `validate:"required,max=20"`
	FileName      string `validate:"required,max=255"`
	FileFormat    string `validate:"required,oneof=json csv"`
	ReportingDate string `validate:"required,datetime=2006-01-02"`
	ObjectKey     string `validate:"required,max=1024"`
}

// ValidateSubmitBatchRequest runs struct-tag validation over an inbound
// batch submission and additionally rejects values carrying injection
// patterns, since BankID and FileName are echoed into audit logs verbatim.
func ValidateSubmitBatchRequest(req SubmitBatchRequest) error {
	if err := validate.Struct(req); err != nil {
		return fmt.Errorf("invalid batch submission: %w", err)
	}
	if err := ValidateStringInput("bankId", req.BankID, 20); err != nil {
		return err
	}
	return ValidateStringInput("fileName", req.FileName, 255)
}

// ValidateBusinessRule validates a rule definition prior to it entering
// the C5 rule cache: a rule with an empty expression or unknown severity
// would otherwise surface as a confusing EVALUATION_ERROR at batch time
// instead of at authoring time.
func ValidateBusinessRule(rule domain.BusinessRule) error {
	if strings.TrimSpace(rule.RuleID) == "" {
		return fmt.Errorf("rule id is required")
	}
	if strings.TrimSpace(rule.Expression) == "" {
		return fmt.Errorf("rule expression is required")
	}
	switch rule.Severity {
	case domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh, domain.SeverityCritical:
	default:
		return fmt.Errorf("rule severity %q is not recognized", rule.Severity)
	}
	return ValidateStringInput("expression", rule.Expression, 2000)
}

// unsafePattern matches the injection signatures ValidateStringInput
// rejects: SQL keywords/comment markers and HTML tag delimiters. It isn't a
// substitute for parameterized queries (every repository already uses
// those); it exists so obviously hostile input is rejected at the
// boundary with a clear error instead of reaching the database driver.
var unsafePattern = regexp.MustCompile(`(?i)(--|;|<script|</script|\bUNION\b|\bDROP\b|\bSELECT\b.*\bFROM\b)`)

// controlCharPattern matches C0 control characters other than tab,
// newline, and carriage return.
var controlCharPattern = regexp.MustCompile("[\x00-\x08\x0B\x0C\x0E-\x1F]")

// ValidateStringInput checks field against a max length and rejects
// injection-pattern or stray control-character content.
func ValidateStringInput(field, value string, maxLen int) error {
	if len(value) > maxLen {
		return fmt.Errorf("%s must be %d characters or less", field, maxLen)
	}
	if unsafePattern.MatchString(value) {
		return fmt.Errorf("%s contains potentially unsafe characters", field)
	}
	if controlCharPattern.MatchString(value) {
		return fmt.Errorf("%s contains invalid control characters", field)
	}
	return nil
}

// ValidateLimit bounds a repository list query's page size.
func ValidateLimit(limit int) error {
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}
	if limit > 10000 {
		return fmt.Errorf("limit must be 10000 or less")
	}
	return nil
}

// SanitizeForLogging replaces stray control characters with '?' and
// truncates long input before it is written to a log line.
func SanitizeForLogging(input string) string {
	sanitized := controlCharPattern.ReplaceAllString(input, "?")
	const maxLogLen = 200
	if len(sanitized) > maxLogLen {
		return sanitized[:maxLogLen-3] + "..."
	}
	return sanitized
}
