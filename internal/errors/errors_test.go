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

package errors

import (
	"errors"
	"net/http"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Structured Errors", func() {
	Describe("AppError", func() {
		Context("basic error creation", func() {
			It("should create error with correct properties", func() {
				err := New(ErrorTypeValidation, "test message")

				Expect(err.Type).To(Equal(ErrorTypeValidation))
				Expect(err.Message).To(Equal("test message"))
				Expect(err.StatusCode).To(Equal(http.StatusBadRequest))
				Expect(err.Details).To(BeEmpty())
				Expect(err.Cause).To(BeNil())
			})

			It("should implement error interface correctly", func() {
				err := New(ErrorTypeValidation, "test message")
				Expect(err.Error()).To(Equal("validation: test message"))
			})

			It("should include details in error string when present", func() {
				err := New(ErrorTypeValidation, "test message").WithDetails("extra info")
				Expect(err.Error()).To(Equal("validation: test message (extra info)"))
			})
		})

		Context("error wrapping", func() {
			It("should wrap underlying error", func() {
				originalErr := errors.New("original error")
				wrappedErr := Wrap(originalErr, ErrorTypeSystem, "operation failed")

				Expect(wrappedErr.Type).To(Equal(ErrorTypeSystem))
				Expect(wrappedErr.Message).To(Equal("operation failed"))
				Expect(wrappedErr.Cause).To(Equal(originalErr))
				Expect(wrappedErr.Unwrap()).To(Equal(originalErr))
			})

			It("should format wrapped error with arguments", func() {
				originalErr := errors.New("connection refused")
				wrappedErr := Wrapf(originalErr, ErrorTypeSystem, "failed to connect to %s:%d", "localhost", 5432)

				Expect(wrappedErr.Message).To(Equal("failed to connect to localhost:5432"))
				Expect(wrappedErr.Cause).To(Equal(originalErr))
			})
		})

		Context("adding details", func() {
			It("should add details to existing error", func() {
				err := New(ErrorTypeFXRateUnavailable, "no rate for ZZZ")
				detailedErr := err.WithDetails("reportingDate=2026-01-01")

				Expect(detailedErr.Details).To(Equal("reportingDate=2026-01-01"))
				Expect(detailedErr).To(BeIdenticalTo(err))
			})

			It("should add formatted details", func() {
				err := New(ErrorTypeEvaluation, "rule failed")
				detailedErr := err.WithDetailsf("rule %s, exposure %s", "R-01", "E-1")

				Expect(detailedErr.Details).To(Equal("rule R-01, exposure E-1"))
			})
		})
	})

	Describe("Status Code Mapping", func() {
		It("should map every spec.md §7 error kind to a status code", func() {
			testCases := []struct {
				errorType  ErrorType
				statusCode int
			}{
				{ErrorTypeValidation, http.StatusBadRequest},
				{ErrorTypeParse, http.StatusUnprocessableEntity},
				{ErrorTypeInvalidTransition, http.StatusInternalServerError},
				{ErrorTypeChecksumMismatch, http.StatusBadRequest},
				{ErrorTypeFXRateUnavailable, http.StatusBadGateway},
				{ErrorTypeEvaluation, http.StatusUnprocessableEntity},
				{ErrorTypeTimeout, http.StatusRequestTimeout},
				{ErrorTypeSystem, http.StatusInternalServerError},
				{ErrorTypePermanentFailure, http.StatusInternalServerError},
			}

			for _, tc := range testCases {
				err := New(tc.errorType, "test message")
				Expect(err.StatusCode).To(Equal(tc.statusCode), string(tc.errorType))
			}
		})
	})

	Describe("Predefined Error Constructors", func() {
		It("should create an invalid transition error naming both states", func() {
			err := NewInvalidTransitionError("COMPLETED", "PARSING")

			Expect(err.Type).To(Equal(ErrorTypeInvalidTransition))
			Expect(err.Message).To(ContainSubstring("COMPLETED"))
			Expect(err.Message).To(ContainSubstring("PARSING"))
		})

		It("should create a checksum mismatch error", func() {
			err := NewChecksumMismatchError("sha256")
			Expect(err.Type).To(Equal(ErrorTypeChecksumMismatch))
			Expect(err.Message).To(ContainSubstring("sha256"))
		})

		It("should create an FX rate unavailable error scoped to a currency", func() {
			err := NewFXRateUnavailableError("ZZZ")
			Expect(err.Type).To(Equal(ErrorTypeFXRateUnavailable))
			Expect(err.Message).To(ContainSubstring("ZZZ"))
		})

		It("should wrap an evaluation error with the failing rule id", func() {
			cause := errors.New("division by zero")
			err := NewEvaluationError("R-042", cause)

			Expect(err.Type).To(Equal(ErrorTypeEvaluation))
			Expect(err.Message).To(ContainSubstring("R-042"))
			Expect(err.Cause).To(Equal(cause))
		})
	})

	Describe("Error Type Checking", func() {
		It("should correctly identify error types", func() {
			validationErr := NewValidationError("test")
			timeoutErr := NewTimeoutError("batch processing")

			Expect(IsType(validationErr, ErrorTypeValidation)).To(BeTrue())
			Expect(IsType(validationErr, ErrorTypeTimeout)).To(BeFalse())
			Expect(IsType(timeoutErr, ErrorTypeTimeout)).To(BeTrue())
		})

		It("should handle non-AppError types", func() {
			regularErr := errors.New("regular error")

			Expect(IsType(regularErr, ErrorTypeValidation)).To(BeFalse())
			Expect(GetType(regularErr)).To(Equal(ErrorTypeInternal))
			Expect(GetStatusCode(regularErr)).To(Equal(http.StatusInternalServerError))
		})
	})

	Describe("Logging Fields", func() {
		It("should generate structured logging fields", func() {
			originalErr := errors.New("connection failed")
			appErr := Wrapf(originalErr, ErrorTypeSystem, "query failed").
				WithDetails("table: rule_violations")

			fields := LogFields(appErr)

			Expect(fields).To(HaveKey("error"))
			Expect(fields).To(HaveKey("error_type"))
			Expect(fields).To(HaveKey("status_code"))
			Expect(fields).To(HaveKey("error_details"))
			Expect(fields).To(HaveKey("underlying_error"))

			Expect(fields["error_type"]).To(Equal("system_error"))
			Expect(fields["status_code"]).To(Equal(http.StatusInternalServerError))
			Expect(fields["error_details"]).To(Equal("table: rule_violations"))
			Expect(fields["underlying_error"]).To(Equal("connection failed"))
		})
	})
})
