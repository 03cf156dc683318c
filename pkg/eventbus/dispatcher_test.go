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
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"

	"github.com/regtech-core/exposure-pipeline/pkg/datastorage/models"
)

type fakePublisher struct {
	fail    bool
	calls   []string
	lastErr error
}

func (p *fakePublisher) Publish(ctx context.Context, eventType string, payload []byte) error {
	p.calls = append(p.calls, eventType)
	if p.fail {
		if p.lastErr != nil {
			return p.lastErr
		}
		return errors.New("publish failed")
	}
	return nil
}

var _ Publisher = (*fakePublisher)(nil)

func TestDispatcherPublishesPendingRowAndMarksPublished(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error creating sqlmock: %v", err)
	}
	defer db.Close()

	createdAt := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "event_type", "payload", "status", "attempts", "created_at", "published_at"}).
		AddRow(int64(1), "BatchIngested", []byte(`{"batchId":"b1"}`), models.OutboxStatusPending, 0, createdAt, nil)

	mock.ExpectQuery("SELECT id, event_type, payload, status, attempts, created_at, published_at").
		WithArgs(models.OutboxStatusPending).
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE outbox_entries SET status = \\$1, published_at = \\$2 WHERE id = \\$3").
		WithArgs(models.OutboxStatusPublished, sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	pub := &fakePublisher{}
	d := NewDispatcher(db, pub, nil)

	if err := d.dispatchOnce(context.Background()); err != nil {
		t.Fatalf("unexpected dispatch error: %v", err)
	}
	if len(pub.calls) != 1 || pub.calls[0] != "BatchIngested" {
		t.Fatalf("expected exactly one publish call for BatchIngested, got %v", pub.calls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDispatcherLeavesRowPendingOnPublishFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error creating sqlmock: %v", err)
	}
	defer db.Close()

	createdAt := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "event_type", "payload", "status", "attempts", "created_at", "published_at"}).
		AddRow(int64(7), "BatchQualityCompleted", []byte(`{}`), models.OutboxStatusPending, 2, createdAt, nil)

	mock.ExpectQuery("SELECT id, event_type, payload, status, attempts, created_at, published_at").
		WithArgs(models.OutboxStatusPending).
		WillReturnRows(rows)
	mock.ExpectExec("UPDATE outbox_entries SET attempts = attempts \\+ 1 WHERE id = \\$1").
		WithArgs(int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	pub := &fakePublisher{fail: true}
	d := NewDispatcher(db, pub, nil)

	if err := d.dispatchOnce(context.Background()); err != nil {
		t.Fatalf("dispatchOnce itself should not fail on a single entry publish error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestDispatcherRunStopsOnContextCancellation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("unexpected error creating sqlmock: %v", err)
	}
	defer db.Close()

	mock.MatchExpectationsInOrder(false)
	emptyRows := sqlmock.NewRows([]string{"id", "event_type", "payload", "status", "attempts", "created_at", "published_at"})
	mock.ExpectQuery("SELECT id, event_type, payload, status, attempts, created_at, published_at").
		WithArgs(models.OutboxStatusPending).
		WillReturnRows(emptyRows)

	d := NewDispatcher(db, &fakePublisher{}, nil)
	d.pollInterval = time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	err = d.Run(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected Run to return context.DeadlineExceeded, got %v", err)
	}
}
