package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-attendance-api/pkg/config"
)

// Rosters, classes and attendance records are stored as documents: the student lists
// and lesson data live in a single JSON column next to the lookup keys.

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS rosters (
    name TEXT PRIMARY KEY,
    students JSONB NOT NULL DEFAULT '[]'::jsonb,
    data JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS classes (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    session TEXT NOT NULL,
    students JSONB NOT NULL DEFAULT '[]'::jsonb,
    data JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_classes_name ON classes(name)`,
	`CREATE TABLE IF NOT EXISTS attendance_records (
    id TEXT PRIMARY KEY,
    attendance_date DATE NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    class_name TEXT NOT NULL,
    session TEXT NOT NULL,
    students JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_attendance_key ON attendance_records(class_name, session, attendance_date)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance_records(attendance_date DESC)`,
}

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS rosters (
    name TEXT PRIMARY KEY,
    students TEXT NOT NULL DEFAULT '[]',
    data TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS classes (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    session TEXT NOT NULL,
    students TEXT NOT NULL DEFAULT '[]',
    data TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_classes_name ON classes(name)`,
	`CREATE TABLE IF NOT EXISTS attendance_records (
    id TEXT PRIMARY KEY,
    attendance_date TEXT NOT NULL,
    name TEXT NOT NULL DEFAULT '',
    class_name TEXT NOT NULL,
    session TEXT NOT NULL,
    students TEXT NOT NULL DEFAULT '[]',
    created_at DATETIME NOT NULL,
    updated_at DATETIME NOT NULL
)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_attendance_key ON attendance_records(class_name, session, attendance_date)`,
	`CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance_records(attendance_date DESC)`,
}

// Migrate creates the collections if they do not exist yet.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	var statements []string
	switch db.DriverName() {
	case config.DriverSQLite:
		statements = sqliteSchema
	default:
		statements = postgresSchema
	}
	for i, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
