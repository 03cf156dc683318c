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

// Package models holds the sqlx-mapped row shapes persisted by
// pkg/datastorage/repository.
package models

import "time"

// NotificationAudit is a durable record of one outbound notification about
// a batch lifecycle event — a compliance officer alerted to a FAILED
// batch, a risk desk paged about a stale report join — sent over email,
// Slack, PagerDuty or SMS.
type NotificationAudit struct {
	ID              int64     `db:"id"`
	BatchID         string    `db:"batch_id"`
	NotificationID  string    `db:"notification_id"`
	Recipient       string    `db:"recipient"`
	Channel         string    `db:"channel"`
	MessageSummary  string    `db:"message_summary"`
	Status          string    `db:"status"`
	SentAt          time.Time `db:"sent_at"`
	DeliveryStatus  string    `db:"delivery_status"`
	ErrorMessage    string    `db:"error_message"`
	EscalationLevel int       `db:"escalation_level"`
	CreatedAt       time.Time `db:"created_at"`
	UpdatedAt       time.Time `db:"updated_at"`
}
