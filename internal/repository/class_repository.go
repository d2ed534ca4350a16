package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-attendance-api/internal/models"
)

const classColumns = "id, name, session, students, data, created_at"

// ClassRepository manages persistence for classes.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a new class repository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns every class, newest first.
func (r *ClassRepository) List(ctx context.Context) ([]models.ClassInstance, error) {
	query := fmt.Sprintf("SELECT %s FROM classes ORDER BY created_at DESC", classColumns)
	var classes []models.ClassInstance
	if err := r.db.SelectContext(ctx, &classes, query); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// FindByID returns a class record by ID. It returns sql.ErrNoRows when absent.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.ClassInstance, error) {
	query := r.db.Rebind(fmt.Sprintf("SELECT %s FROM classes WHERE id = ?", classColumns))
	var class models.ClassInstance
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// Create persists a class record.
func (r *ClassRepository) Create(ctx context.Context, class *models.ClassInstance) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	if class.CreatedAt.IsZero() {
		class.CreatedAt = time.Now().UTC()
	}
	if class.Students == nil {
		class.Students = models.Students{}
	}
	if class.Data == nil {
		class.Data = models.Lessons{}
	}

	const query = `INSERT INTO classes (id, name, session, students, data, created_at) VALUES (:id, :name, :session, :students, :data, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Delete removes a class record and reports whether a row existed.
func (r *ClassRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM classes WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete class: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete class rows affected: %w", err)
	}
	return affected > 0, nil
}
