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

// Package eventbus implements the transactional outbox and publisher
// (C9): every domain event is persisted in the same transaction as the
// business state that produced it, then handed to an asynchronous
// publisher guaranteeing at-least-once delivery.
package eventbus

import (
	"context"
	"database/sql"
	"encoding/json"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/datastorage/models"
)

// Outbox inserts an event row within the caller's transaction.
type Outbox struct {
	db *sql.DB
}

// NewOutbox builds an Outbox over db.
func NewOutbox(db *sql.DB) *Outbox {
	return &Outbox{db: db}
}

// Enqueue marshals event and inserts it as a PENDING row on tx, the same
// transaction committing the business-state change it describes. The row
// becomes visible to the dispatcher only once tx commits.
func (o *Outbox) Enqueue(ctx context.Context, tx *sql.Tx, eventType string, event interface{}) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to marshal event payload")
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO outbox_entries (event_type, payload, status, attempts)
		 VALUES ($1, $2, $3, 0)`,
		eventType, payload, models.OutboxStatusPending,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to enqueue outbox entry")
	}
	return nil
}
