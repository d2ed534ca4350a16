package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-attendance-api/internal/models"
)

// RosterRepository manages persistence for rosters (sessions).
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs a roster repository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// List returns roster names ordered alphabetically.
func (r *RosterRepository) List(ctx context.Context) ([]models.RosterSummary, error) {
	var rosters []models.RosterSummary
	if err := r.db.SelectContext(ctx, &rosters, `SELECT name FROM rosters ORDER BY name`); err != nil {
		return nil, fmt.Errorf("list rosters: %w", err)
	}
	return rosters, nil
}

// FindByName returns the full roster. It returns sql.ErrNoRows when absent.
func (r *RosterRepository) FindByName(ctx context.Context, name string) (*models.Roster, error) {
	query := r.db.Rebind(`SELECT name, students, data, created_at, updated_at FROM rosters WHERE name = ?`)
	var roster models.Roster
	if err := r.db.GetContext(ctx, &roster, query, name); err != nil {
		return nil, err
	}
	return &roster, nil
}

// Count returns the number of stored rosters.
func (r *RosterRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM rosters`); err != nil {
		return 0, fmt.Errorf("count rosters: %w", err)
	}
	return total, nil
}

// CreateIfAbsent inserts the roster unless one with the same name exists. It reports whether a row was written.
func (r *RosterRepository) CreateIfAbsent(ctx context.Context, roster *models.Roster) (bool, error) {
	now := time.Now().UTC()
	if roster.CreatedAt.IsZero() {
		roster.CreatedAt = now
	}
	roster.UpdatedAt = now
	if roster.Students == nil {
		roster.Students = models.Students{}
	}
	if roster.Data == nil {
		roster.Data = models.Lessons{}
	}

	const query = `INSERT INTO rosters (name, students, data, created_at, updated_at) VALUES (:name, :students, :data, :created_at, :updated_at) ON CONFLICT (name) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, roster)
	if err != nil {
		return false, fmt.Errorf("create roster: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("create roster rows affected: %w", err)
	}
	return affected > 0, nil
}
