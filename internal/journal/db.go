// Package journal records every registration submission the gateway makes
// against the platform, including pending orders whose confirmation failed
// after a successful checkout. Those orphaned entries are the input to
// out-of-band reconciliation; the gateway never cleans them up itself.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type DB struct {
	Bun *bun.DB
}

// Open connects the journal backend. driver is "sqlite" (default) or
// "postgres"; dsn is the sqlite path or Postgres connection string.
func Open(driver, dsn string) (*DB, error) {
	switch driver {
	case "postgres":
		connector := pgdriver.NewConnector(pgdriver.WithDSN(dsn))
		sqldb := sql.OpenDB(connector)
		if err := sqldb.Ping(); err != nil {
			return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
		}
		return &DB{Bun: bun.NewDB(sqldb, pgdialect.New())}, nil
	case "sqlite", "":
		sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite journal: %w", err)
		}
		return &DB{Bun: bun.NewDB(sqldb, sqlitedialect.New())}, nil
	default:
		return nil, fmt.Errorf("unknown journal driver %q", driver)
	}
}

// CreateAttempt inserts a new journal entry.
func (d *DB) CreateAttempt(ctx context.Context, attempt Attempt) error {
	if attempt.CreatedAt.IsZero() {
		attempt.CreatedAt = time.Now()
	}
	_, err := d.Bun.NewInsert().Model(&attempt).Exec(ctx)
	return err
}

// GetAttemptByID fetches one entry.
func (d *DB) GetAttemptByID(ctx context.Context, id string) (*Attempt, error) {
	var attempt Attempt
	err := d.Bun.NewSelect().
		Model(&attempt).
		Where("attempt_id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// MarkPending records the platform's pending order against an attempt.
func (d *DB) MarkPending(ctx context.Context, id, registrationID, orderID string, amount float64, currency string) error {
	_, err := d.Bun.NewUpdate().
		Model((*Attempt)(nil)).
		Set("status = ?", StatusPending).
		Set("registration_id = ?", registrationID).
		Set("order_id = ?", orderID).
		Set("amount = ?", amount).
		Set("currency = ?", currency).
		Set("updated_at = ?", time.Now()).
		Where("attempt_id = ?", id).
		Exec(ctx)
	return err
}

// MarkCompleted finalizes an attempt.
func (d *DB) MarkCompleted(ctx context.Context, id, registrationID, paymentID string) error {
	_, err := d.Bun.NewUpdate().
		Model((*Attempt)(nil)).
		Set("status = ?", StatusCompleted).
		Set("registration_id = ?", registrationID).
		Set("payment_id = ?", paymentID).
		Set("updated_at = ?", time.Now()).
		Where("attempt_id = ?", id).
		Exec(ctx)
	return err
}

// MarkFailed records a failure that happened before checkout succeeded.
func (d *DB) MarkFailed(ctx context.Context, id, reason string) error {
	_, err := d.Bun.NewUpdate().
		Model((*Attempt)(nil)).
		Set("status = ?", StatusFailed).
		Set("reason = ?", reason).
		Set("updated_at = ?", time.Now()).
		Where("attempt_id = ?", id).
		Exec(ctx)
	return err
}

// MarkOrphaned records a confirmation failure after a successful checkout.
func (d *DB) MarkOrphaned(ctx context.Context, id, paymentID, reason string) error {
	_, err := d.Bun.NewUpdate().
		Model((*Attempt)(nil)).
		Set("status = ?", StatusOrphaned).
		Set("payment_id = ?", paymentID).
		Set("reason = ?", reason).
		Set("updated_at = ?", time.Now()).
		Where("attempt_id = ?", id).
		Exec(ctx)
	return err
}

// ListByStatus returns attempts in one status, newest first.
func (d *DB) ListByStatus(ctx context.Context, status AttemptStatus) ([]Attempt, error) {
	var attempts []Attempt
	err := d.Bun.NewSelect().
		Model(&attempts).
		Where("status = ?", status).
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []Attempt{}
	}
	return attempts, nil
}

// ListOrphaned returns the entries awaiting out-of-band reconciliation.
func (d *DB) ListOrphaned(ctx context.Context) ([]Attempt, error) {
	return d.ListByStatus(ctx, StatusOrphaned)
}
