package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// migrations run in order; each statement is idempotent so Migrate can be
// called on every start.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         UUID PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		full_name  TEXT NOT NULL,
		role       TEXT NOT NULL CHECK (role IN ('admin', 'staff', 'maintenance', 'rentee', 'requester')),
		is_active  BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		deleted_at TIMESTAMPTZ
	)`,
	`CREATE TABLE IF NOT EXISTS maintenance_requests (
		id                  UUID PRIMARY KEY,
		title               TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		request_type        TEXT NOT NULL DEFAULT '',
		priority            TEXT NOT NULL CHECK (priority IN ('low', 'medium', 'high', 'emergency')),
		status              TEXT NOT NULL CHECK (status IN ('pending', 'assigned', 'in_progress', 'completed', 'cancelled')),
		property_id         UUID NOT NULL,
		rentee_id           UUID NOT NULL REFERENCES users(id),
		assigned_to         UUID REFERENCES users(id),
		notes               TEXT,
		cancellation_reason TEXT,
		created_at          TIMESTAMPTZ NOT NULL,
		assigned_at         TIMESTAMPTZ,
		started_at          TIMESTAMPTZ,
		completed_at        TIMESTAMPTZ,
		cancelled_at        TIMESTAMPTZ,
		updated_at          TIMESTAMPTZ NOT NULL,
		version             BIGINT NOT NULL DEFAULT 1
	)`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_requests_status ON maintenance_requests (status)`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_requests_rentee ON maintenance_requests (rentee_id)`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_requests_assignee ON maintenance_requests (assigned_to)`,
	`CREATE TABLE IF NOT EXISTS maintenance_request_images (
		id           UUID PRIMARY KEY,
		seq          BIGSERIAL,
		request_id   UUID NOT NULL REFERENCES maintenance_requests(id) ON DELETE CASCADE,
		image_url    TEXT NOT NULL,
		image_type   TEXT NOT NULL CHECK (image_type IN ('initial', 'progress', 'completion', 'additional', 'general')),
		uploaded_by  UUID NOT NULL,
		description  TEXT,
		uploaded_at  TIMESTAMPTZ,
		storage_path TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_request_images_request ON maintenance_request_images (request_id, seq)`,
	`CREATE TABLE IF NOT EXISTS maintenance_request_comments (
		id          UUID PRIMARY KEY,
		seq         BIGSERIAL,
		request_id  UUID NOT NULL REFERENCES maintenance_requests(id) ON DELETE CASCADE,
		content     TEXT NOT NULL,
		author_id   UUID NOT NULL,
		author_name TEXT NOT NULL,
		author_role TEXT NOT NULL,
		is_internal BOOLEAN NOT NULL DEFAULT FALSE,
		created_at  TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_maintenance_request_comments_request ON maintenance_request_comments (request_id, seq)`,
	`CREATE TABLE IF NOT EXISTS audit_logs (
		id          UUID PRIMARY KEY,
		user_id     UUID NOT NULL,
		user_name   TEXT,
		user_role   TEXT,
		action      TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		entity_id   UUID NOT NULL,
		old_value   JSONB,
		new_value   JSONB,
		ip_address  TEXT,
		user_agent  TEXT,
		created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_logs_entity ON audit_logs (entity_type, entity_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id         UUID PRIMARY KEY,
		user_id    UUID NOT NULL REFERENCES users(id),
		type       TEXT NOT NULL,
		title      TEXT NOT NULL,
		message    TEXT NOT NULL,
		data       JSONB,
		is_read    BOOLEAN NOT NULL DEFAULT FALSE,
		read_at    TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications (user_id, is_read, created_at)`,
}

// Migrate applies the schema inside a single transaction.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for i, m := range migrations {
		if _, err := tx.ExecContext(ctx, m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migrations: %w", err)
	}
	return nil
}
