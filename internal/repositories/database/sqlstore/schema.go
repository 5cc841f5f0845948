package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
)

// sqliteSchema mirrors migrations/ for the SQLite dialect. Timestamps are
// RFC3339 text. Statements are idempotent so Bootstrap can run on every start.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id TEXT PRIMARY KEY,
		email TEXT NOT NULL,
		created_at TEXT NOT NULL,
		created_by TEXT NOT NULL,
		last_updated_at TEXT NOT NULL,
		last_updated_by TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS user_global_roles (
		user_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		PRIMARY KEY (user_id, role)
	)`,
	`CREATE TABLE IF NOT EXISTS company_members (
		user_id TEXT PRIMARY KEY REFERENCES users(user_id) ON DELETE CASCADE,
		company_id TEXT NOT NULL,
		role TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS project_members (
		project_id TEXT NOT NULL,
		user_id TEXT NOT NULL REFERENCES users(user_id) ON DELETE CASCADE,
		role TEXT NOT NULL,
		created_at TEXT NOT NULL,
		created_by TEXT NOT NULL,
		last_updated_at TEXT NOT NULL,
		last_updated_by TEXT NOT NULL,
		PRIMARY KEY (project_id, user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_project_members_user ON project_members(user_id)`,
	`CREATE TABLE IF NOT EXISTS meetings (
		meeting_id TEXT PRIMARY KEY,
		project_id TEXT,
		title TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('scheduled', 'active', 'closed')),
		scheduled_at TEXT,
		closed_at TEXT,
		created_at TEXT NOT NULL,
		created_by TEXT NOT NULL,
		last_updated_at TEXT NOT NULL,
		last_updated_by TEXT NOT NULL,
		CHECK ((status = 'closed') = (closed_at IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_project_status ON meetings(project_id, status)`,
	`CREATE TABLE IF NOT EXISTS meeting_series (
		series_id TEXT PRIMARY KEY,
		project_id TEXT,
		title TEXT NOT NULL,
		recurrence TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL CHECK (status IN ('scheduled', 'active', 'closed')),
		closed_at TEXT,
		created_at TEXT NOT NULL,
		created_by TEXT NOT NULL,
		last_updated_at TEXT NOT NULL,
		last_updated_by TEXT NOT NULL,
		CHECK ((status = 'closed') = (closed_at IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meeting_series_project_status ON meeting_series(project_id, status)`,
	`CREATE TABLE IF NOT EXISTS meeting_occurrences (
		occurrence_id TEXT PRIMARY KEY,
		series_id TEXT NOT NULL REFERENCES meeting_series(series_id) ON DELETE CASCADE,
		occurs_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meeting_occurrences_series ON meeting_occurrences(series_id, occurs_at)`,
	`CREATE TABLE IF NOT EXISTS points (
		point_id TEXT PRIMARY KEY,
		meeting_id TEXT REFERENCES meetings(meeting_id),
		series_id TEXT REFERENCES meeting_series(series_id),
		title TEXT NOT NULL,
		status TEXT NOT NULL CHECK (status IN ('new', 'open', 'ongoing', 'closed', 'postponed')),
		assignee_id TEXT,
		closed_at TEXT,
		created_at TEXT NOT NULL,
		created_by TEXT NOT NULL,
		last_updated_at TEXT NOT NULL,
		last_updated_by TEXT NOT NULL,
		CHECK ((meeting_id IS NULL) <> (series_id IS NULL)),
		CHECK ((status = 'closed') = (closed_at IS NOT NULL))
	)`,
	`CREATE INDEX IF NOT EXISTS idx_points_meeting_status ON points(meeting_id, status)`,
	`CREATE INDEX IF NOT EXISTS idx_points_series_status ON points(series_id, status)`,
}

// Bootstrap creates the SQLite schema if it does not exist yet.
func Bootstrap(ctx context.Context, db *sql.DB) error {
	for i, stmt := range sqliteSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("bootstrap schema statement %d: %w", i, err)
		}
	}
	return nil
}
