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

package eventbus

import (
	"context"
	"database/sql"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/regtech-core/exposure-pipeline/internal/errors"
	"github.com/regtech-core/exposure-pipeline/pkg/datastorage/models"
)

// DefaultPollInterval is how often the Dispatcher checks for PENDING
// outbox rows between publish attempts.
const DefaultPollInterval = 2 * time.Second

// Dispatcher polls the outbox for PENDING rows and publishes them,
// leaving a row PENDING (to be retried on the next poll) when publication
// fails — this is what makes delivery at-least-once rather than
// best-effort.
type Dispatcher struct {
	db           *sql.DB
	publisher    Publisher
	pollInterval time.Duration
	log          *zap.Logger
}

// NewDispatcher builds a Dispatcher over db and publisher.
func NewDispatcher(db *sql.DB, publisher Publisher, log *zap.Logger) *Dispatcher {
	return &Dispatcher{db: db, publisher: publisher, pollInterval: DefaultPollInterval, log: log}
}

// Run polls until ctx is cancelled.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := d.dispatchOnce(ctx); err != nil && d.log != nil {
				d.log.Error("outbox dispatch cycle failed", zap.Error(err))
			}
		}
	}
}

// dispatchOnce publishes every currently-PENDING row once.
func (d *Dispatcher) dispatchOnce(ctx context.Context) error {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, event_type, payload, status, attempts, created_at, published_at
		 FROM outbox_entries WHERE status = $1 ORDER BY created_at ASC`,
		models.OutboxStatusPending,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to query pending outbox entries")
	}
	defer rows.Close()

	var entries []models.OutboxEntry
	for rows.Next() {
		var e models.OutboxEntry
		if err := rows.Scan(&e.ID, &e.EventType, &e.Payload, &e.Status, &e.Attempts, &e.CreatedAt, &e.PublishedAt); err != nil {
			return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to scan outbox entry")
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrorTypeSystem, "failed to iterate outbox entries")
	}

	for _, entry := range entries {
		d.dispatchEntry(ctx, entry)
	}
	return nil
}

func (d *Dispatcher) dispatchEntry(ctx context.Context, entry models.OutboxEntry) {
	if err := d.publisher.Publish(ctx, entry.EventType, entry.Payload); err != nil {
		if _, uerr := d.db.ExecContext(ctx,
			`UPDATE outbox_entries SET attempts = attempts + 1 WHERE id = $1`, entry.ID,
		); uerr != nil && d.log != nil {
			d.log.Error("failed to record outbox publish attempt", zap.Int64("outboxId", entry.ID), zap.Error(uerr))
		}
		if d.log != nil {
			d.log.Warn("outbox entry publish failed, left PENDING for retry",
				zap.Int64("outboxId", entry.ID), zap.String("eventType", entry.EventType), zap.Error(err))
		}
		return
	}

	now := time.Now().UTC()
	if _, err := d.db.ExecContext(ctx,
		`UPDATE outbox_entries SET status = $1, published_at = $2 WHERE id = $3`,
		models.OutboxStatusPublished, now, entry.ID,
	); err != nil && d.log != nil {
		d.log.Error("failed to mark outbox entry published", zap.Int64("outboxId", entry.ID), zap.Error(err))
	}
}
