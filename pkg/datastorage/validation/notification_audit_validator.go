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
	"strings"
	"time"

	"github.com/regtech-core/exposure-pipeline/pkg/datastorage/models"
)

var validChannels = map[string]bool{
	"email":     true,
	"slack":     true,
	"pagerduty": true,
	"sms":       true,
}

var validNotificationStatuses = map[string]bool{
	"sent":         true,
	"failed":       true,
	"acknowledged": true,
	"escalated":    true,
}

// sentAtClockSkew is how far into the future a sent_at timestamp may sit
// before it is rejected, to tolerate modest clock drift between the
// notification sender and Data Storage.
const sentAtClockSkew = 5 * time.Minute

// NotificationAuditValidator validates models.NotificationAudit rows
// before a repository attempts to persist them.
type NotificationAuditValidator struct{}

// NewNotificationAuditValidator builds a NotificationAuditValidator.
func NewNotificationAuditValidator() *NotificationAuditValidator {
	return &NotificationAuditValidator{}
}

// Validate checks audit against field-level constraints, returning a
// ValidationError naming every violated field, or nil if audit is valid.
func (v *NotificationAuditValidator) Validate(audit *models.NotificationAudit) *ValidationError {
	if audit == nil {
		err := NewValidationError("notification_audit", "audit record cannot be nil")
		return err
	}

	err := NewValidationError("notification_audit", "notification audit failed validation")

	if strings.TrimSpace(audit.BatchID) == "" {
		err.AddFieldError("batch_id", "batch_id is required")
	} else if len(audit.BatchID) > 255 {
		err.AddFieldError("batch_id", "batch_id must not exceed 255 characters")
	}

	if strings.TrimSpace(audit.NotificationID) == "" {
		err.AddFieldError("notification_id", "notification_id is required")
	} else if len(audit.NotificationID) > 255 {
		err.AddFieldError("notification_id", "notification_id must not exceed 255 characters")
	}

	if strings.TrimSpace(audit.Recipient) == "" {
		err.AddFieldError("recipient", "recipient is required")
	} else if len(audit.Recipient) > 255 {
		err.AddFieldError("recipient", "recipient must not exceed 255 characters")
	}

	switch {
	case strings.TrimSpace(audit.Channel) == "":
		err.AddFieldError("channel", "channel is required")
	case len(audit.Channel) > 50:
		err.AddFieldError("channel", "channel must not exceed 50 characters")
	case !validChannels[strings.ToLower(audit.Channel)]:
		err.AddFieldError("channel", "channel must be one of email, slack, pagerduty, sms")
	}

	if strings.TrimSpace(audit.MessageSummary) == "" {
		err.AddFieldError("message_summary", "message_summary is required")
	}

	switch {
	case strings.TrimSpace(audit.Status) == "":
		err.AddFieldError("status", "status is required")
	case len(audit.Status) > 50:
		err.AddFieldError("status", "status must not exceed 50 characters")
	case !validNotificationStatuses[strings.ToLower(audit.Status)]:
		err.AddFieldError("status", "status must be one of sent, failed, acknowledged, escalated")
	}

	switch {
	case audit.SentAt.IsZero():
		err.AddFieldError("sent_at", "sent_at is required")
	case audit.SentAt.After(time.Now().Add(sentAtClockSkew)):
		err.AddFieldError("sent_at", "sent_at cannot be in the future")
	}

	switch {
	case audit.EscalationLevel < 0:
		err.AddFieldError("escalation_level", "escalation_level must be non-negative")
	case audit.EscalationLevel > 100:
		err.AddFieldError("escalation_level", "escalation_level must be at most 100")
	}

	if len(err.FieldErrors) == 0 {
		return nil
	}
	return err
}
