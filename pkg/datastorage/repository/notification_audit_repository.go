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

// Package repository persists Data Storage-owned rows — notification
// audit trails, batches, rules, exemptions, rule violations, reports,
// event processing failures — over database/sql. The notification audit
// repository translates database errors into RFC 7807 problem details.
package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn" // DD-010: migrated from lib/pq
	"go.uber.org/zap"

	"github.com/regtech-core/exposure-pipeline/pkg/datastorage/models"
	"github.com/regtech-core/exposure-pipeline/pkg/datastorage/repository/sqlutil"
	"github.com/regtech-core/exposure-pipeline/pkg/datastorage/validation"
)

const uniqueViolationCode = "23505"

// NotificationAuditRepository persists models.NotificationAudit rows to
// the notification_audit table.
type NotificationAuditRepository struct {
	db        *sql.DB
	log       *zap.Logger
	validator *validation.NotificationAuditValidator
}

// NewNotificationAuditRepository builds a NotificationAuditRepository.
func NewNotificationAuditRepository(db *sql.DB, log *zap.Logger) *NotificationAuditRepository {
	return &NotificationAuditRepository{
		db:        db,
		log:       log,
		validator: validation.NewNotificationAuditValidator(),
	}
}

// Create validates and inserts audit, returning the row with its
// generated ID, created_at and updated_at populated.
func (r *NotificationAuditRepository) Create(ctx context.Context, audit *models.NotificationAudit) (*models.NotificationAudit, error) {
	if err := r.validator.Validate(audit); err != nil {
		return nil, err
	}

	row := *audit
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO notification_audit (
			batch_id, notification_id, recipient, channel, message_summary,
			status, sent_at, delivery_status, error_message, escalation_level
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at, updated_at
	`,
		audit.BatchID,
		audit.NotificationID,
		audit.Recipient,
		audit.Channel,
		audit.MessageSummary,
		audit.Status,
		audit.SentAt,
		sqlutil.ToNullStringValue(audit.DeliveryStatus),
		sqlutil.ToNullStringValue(audit.ErrorMessage),
		audit.EscalationLevel,
	).Scan(&row.ID, &row.CreatedAt, &row.UpdatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, validation.NewConflictProblem("notification_audit", "notification_id", audit.NotificationID)
		}
		r.log.Error("failed to insert notification audit", zap.Error(err), zap.String("notification_id", audit.NotificationID))
		return nil, errors.New("failed to insert notification audit record: " + err.Error())
	}

	return &row, nil
}

// GetByNotificationID retrieves the audit record for notificationID, or a
// 404 RFC7807Problem if none exists.
func (r *NotificationAuditRepository) GetByNotificationID(ctx context.Context, notificationID string) (*models.NotificationAudit, error) {
	row := &models.NotificationAudit{NotificationID: notificationID}
	var deliveryStatus, errorMessage sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, batch_id, notification_id, recipient, channel,
			message_summary, status, sent_at, delivery_status, error_message,
			escalation_level, created_at, updated_at
		FROM notification_audit WHERE notification_id = $1
	`, notificationID).Scan(
		&row.ID,
		&row.BatchID,
		&row.NotificationID,
		&row.Recipient,
		&row.Channel,
		&row.MessageSummary,
		&row.Status,
		&row.SentAt,
		&deliveryStatus,
		&errorMessage,
		&row.EscalationLevel,
		&row.CreatedAt,
		&row.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, validation.NewNotFoundProblem("notification_audit", notificationID)
		}
		r.log.Error("failed to retrieve notification audit", zap.Error(err), zap.String("notification_id", notificationID))
		return nil, errors.New("failed to retrieve notification audit record: " + err.Error())
	}

	row.DeliveryStatus = deliveryStatus.String
	row.ErrorMessage = errorMessage.String
	return row, nil
}

// HealthCheck verifies the underlying database connection is reachable.
func (r *NotificationAuditRepository) HealthCheck(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return errors.New("health check failed: " + err.Error())
	}
	return nil
}
