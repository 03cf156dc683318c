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

// Package validation validates rows bound for pkg/datastorage/repository
// and turns both validation and persistence failures into RFC 7807
// problem details for the Data Storage HTTP surface.
package validation

import (
	"encoding/json"
	"fmt"
)

// ValidationError reports that a row failed field-level validation before
// a repository attempted to persist it.
type ValidationError struct {
	Resource    string
	Message     string
	FieldErrors map[string]string
}

// NewValidationError builds a ValidationError for resource with an empty
// FieldErrors map ready for AddFieldError.
func NewValidationError(resource, message string) *ValidationError {
	return &ValidationError{
		Resource:    resource,
		Message:     message,
		FieldErrors: make(map[string]string),
	}
}

// AddFieldError records (or overwrites) the error for field.
func (e *ValidationError) AddFieldError(field, message string) {
	e.FieldErrors[field] = message
}

func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return fmt.Sprintf("%s: %s", e.Resource, e.Message)
	}
	return fmt.Sprintf("%s: %s (%d fields)", e.Resource, e.Message, len(e.FieldErrors))
}

// ToRFC7807 converts the validation error into a problem detail suitable
// for an HTTP response body; the problem's Detail carries the error's
// Message.
func (e *ValidationError) ToRFC7807() *RFC7807Problem {
	problem := NewValidationErrorProblem(e.Resource, e.FieldErrors)
	problem.Detail = e.Message
	return problem
}

// RFC7807Problem is an RFC 7807 "problem details" response body. Extensions
// are flattened into the top-level JSON object alongside the standard
// fields.
type RFC7807Problem struct {
	Type       string                 `json:"type"`
	Title      string                 `json:"title"`
	Status     int                    `json:"status"`
	Detail     string                 `json:"detail,omitempty"`
	Instance   string                 `json:"instance,omitempty"`
	Extensions map[string]interface{} `json:"-"`
}

// MarshalJSON flattens Extensions into the top-level object so clients see
// a single flat RFC 7807 document rather than a nested "extensions" key.
func (p *RFC7807Problem) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(p.Extensions)+5)
	for k, v := range p.Extensions {
		out[k] = v
	}
	out["type"] = p.Type
	out["title"] = p.Title
	out["status"] = p.Status
	if p.Detail != "" {
		out["detail"] = p.Detail
	}
	if p.Instance != "" {
		out["instance"] = p.Instance
	}
	return json.Marshal(out)
}

func (p *RFC7807Problem) Error() string {
	return fmt.Sprintf("%s (%d): %s", p.Title, p.Status, p.Detail)
}

const problemBaseURL = "https://regtech-core.io/errors"

// NewValidationErrorProblem builds a 400 problem for a resource that
// failed field validation.
func NewValidationErrorProblem(resource string, fieldErrors map[string]string) *RFC7807Problem {
	return &RFC7807Problem{
		Type:     problemBaseURL + "/validation-error",
		Title:    "Validation Error",
		Status:   400,
		Detail:   fmt.Sprintf("%s failed validation", resource),
		Instance: "/audit/" + resource,
		Extensions: map[string]interface{}{
			"resource":     resource,
			"field_errors": fieldErrors,
		},
	}
}

// NewNotFoundProblem builds a 404 problem for a missing resource instance.
func NewNotFoundProblem(resource, id string) *RFC7807Problem {
	return &RFC7807Problem{
		Type:     problemBaseURL + "/not-found",
		Title:    "Resource Not Found",
		Status:   404,
		Detail:   fmt.Sprintf("%s with id %s was not found", resource, id),
		Instance: fmt.Sprintf("/audit/%s/%s", resource, id),
		Extensions: map[string]interface{}{
			"resource": resource,
			"id":       id,
		},
	}
}

// NewInternalErrorProblem builds a 500 problem for an unexpected failure.
// Extensions["retry"] signals the caller may safely retry.
func NewInternalErrorProblem(detail string) *RFC7807Problem {
	return &RFC7807Problem{
		Type:   problemBaseURL + "/internal-error",
		Title:  "Internal Server Error",
		Status: 500,
		Detail: detail,
		Extensions: map[string]interface{}{
			"retry": true,
		},
	}
}

// NewServiceUnavailableProblem builds a 503 problem for a dependency that
// is transiently down (e.g. the database).
func NewServiceUnavailableProblem(detail string) *RFC7807Problem {
	return &RFC7807Problem{
		Type:   problemBaseURL + "/service-unavailable",
		Title:  "Service Unavailable",
		Status: 503,
		Detail: detail,
		Extensions: map[string]interface{}{
			"retry": true,
		},
	}
}

// NewConflictProblem builds a 409 problem for a unique constraint
// violation on field/value.
func NewConflictProblem(resource, field, value string) *RFC7807Problem {
	return &RFC7807Problem{
		Type:     problemBaseURL + "/conflict",
		Title:    "Resource Conflict",
		Status:   409,
		Detail:   fmt.Sprintf("%s already exists with %s = %s", resource, field, value),
		Instance: "/audit/" + resource,
		Extensions: map[string]interface{}{
			"resource": resource,
			"field":    field,
			"value":    value,
		},
	}
}
