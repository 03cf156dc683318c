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

// Package errors defines the structured AppError the core returns across
// every component boundary (spec.md §7): the core never panics or throws
// across an API boundary, it returns a value carrying either a result or
// an error detail.
package errors

import (
	"fmt"
	"net/http"
)

// ErrorType enumerates the error kinds named in spec.md §7.
type ErrorType string

const (
	ErrorTypeValidation        ErrorType = "validation"
	ErrorTypeParse             ErrorType = "parse_error"
	ErrorTypeInvalidTransition ErrorType = "invalid_transition"
	ErrorTypeChecksumMismatch  ErrorType = "checksum_mismatch"
	ErrorTypeFXRateUnavailable ErrorType = "fx_rate_unavailable"
	ErrorTypeEvaluation        ErrorType = "evaluation_error"
	ErrorTypeTimeout           ErrorType = "timeout"
	ErrorTypeSystem            ErrorType = "system_error"
	ErrorTypePermanentFailure  ErrorType = "permanent_failure"
	ErrorTypeNotFound          ErrorType = "not_found"
	ErrorTypeInternal          ErrorType = "internal"
)

var statusCodes = map[ErrorType]int{
	ErrorTypeValidation:        http.StatusBadRequest,
	ErrorTypeParse:             http.StatusUnprocessableEntity,
	ErrorTypeInvalidTransition: http.StatusInternalServerError,
	ErrorTypeChecksumMismatch:  http.StatusBadRequest,
	ErrorTypeFXRateUnavailable: http.StatusBadGateway,
	ErrorTypeEvaluation:        http.StatusUnprocessableEntity,
	ErrorTypeTimeout:           http.StatusRequestTimeout,
	ErrorTypeSystem:            http.StatusInternalServerError,
	ErrorTypePermanentFailure:  http.StatusInternalServerError,
	ErrorTypeNotFound:          http.StatusNotFound,
	ErrorTypeInternal:          http.StatusInternalServerError,
}

// AppError is the value every core operation returns instead of throwing.
// Only true invariant violations (INVALID_TRANSITION against a code path
// that bypassed the state machine) may still panic, and only to terminate
// the immediate handler — never the process.
type AppError struct {
	Type       ErrorType
	Message    string
	StatusCode int
	Details    string
	Cause      error
}

func New(t ErrorType, message string) *AppError {
	return &AppError{Type: t, Message: message, StatusCode: statusCodeFor(t)}
}

func Newf(t ErrorType, format string, args ...any) *AppError {
	return New(t, fmt.Sprintf(format, args...))
}

func Wrap(cause error, t ErrorType, message string) *AppError {
	return &AppError{Type: t, Message: message, StatusCode: statusCodeFor(t), Cause: cause}
}

func Wrapf(cause error, t ErrorType, format string, args ...any) *AppError {
	return Wrap(cause, t, fmt.Sprintf(format, args...))
}

func statusCodeFor(t ErrorType) int {
	if code, ok := statusCodes[t]; ok {
		return code
	}
	return http.StatusInternalServerError
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error { return e.Cause }

// WithDetails mutates e in place and returns it, mirroring the teacher's
// fluent builder style.
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithDetailsf(format string, args ...any) *AppError {
	return e.WithDetails(fmt.Sprintf(format, args...))
}

// IsType reports whether err is an *AppError of type t.
func IsType(err error, t ErrorType) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == t
}

// GetType returns err's ErrorType, or ErrorTypeInternal when err is not an
// *AppError.
func GetType(err error) ErrorType {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// GetStatusCode returns the HTTP-style status code associated with err, for
// the boundary layer to surface; this package never serves HTTP itself.
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// LogFields renders err as a structured field map suitable for
// pkg/shared/logging.
func LogFields(err error) map[string]any {
	fields := map[string]any{
		"error": err.Error(),
	}
	appErr, ok := err.(*AppError)
	if !ok {
		return fields
	}
	fields["error_type"] = string(appErr.Type)
	fields["status_code"] = appErr.StatusCode
	if appErr.Details != "" {
		fields["error_details"] = appErr.Details
	}
	if appErr.Cause != nil {
		fields["underlying_error"] = appErr.Cause.Error()
	}
	return fields
}

// Predefined constructors for the spec's named error kinds.

func NewValidationError(message string) *AppError {
	return New(ErrorTypeValidation, message)
}

func NewParseError(lineOrIndex int, message string) *AppError {
	return Newf(ErrorTypeParse, "record %d: %s", lineOrIndex, message)
}

func NewInvalidTransitionError(from, to string) *AppError {
	return Newf(ErrorTypeInvalidTransition, "cannot transition from %s to %s", from, to)
}

func NewChecksumMismatchError(algorithm string) *AppError {
	return Newf(ErrorTypeChecksumMismatch, "%s checksum mismatch", algorithm)
}

func NewFXRateUnavailableError(currency string) *AppError {
	return Newf(ErrorTypeFXRateUnavailable, "no exchange rate available for %s", currency)
}

func NewEvaluationError(ruleID string, cause error) *AppError {
	return Wrapf(cause, ErrorTypeEvaluation, "rule %s failed to evaluate", ruleID)
}

func NewTimeoutError(operation string) *AppError {
	return Newf(ErrorTypeTimeout, "operation timed out: %s", operation)
}

func NewSystemError(cause error, operation string) *AppError {
	return Wrapf(cause, ErrorTypeSystem, "system error during %s", operation)
}

func NewPermanentFailureError(cause error, eventType string) *AppError {
	return Wrapf(cause, ErrorTypePermanentFailure, "permanently failed processing %s", eventType)
}
