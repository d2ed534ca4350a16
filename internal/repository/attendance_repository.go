package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/class-attendance-api/internal/models"
)

const attendanceColumns = "id, attendance_date, name, class_name, session, students, created_at, updated_at"

// AttendanceRepository handles persistence for ledger records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// FindByKey returns the record for the composite key. It returns sql.ErrNoRows when absent.
func (r *AttendanceRepository) FindByKey(ctx context.Context, key models.AttendanceKey) (*models.AttendanceRecord, error) {
	query := r.db.Rebind(fmt.Sprintf(`SELECT %s FROM attendance_records
WHERE class_name = ? AND session = ? AND attendance_date = ?`, attendanceColumns))
	var record models.AttendanceRecord
	if err := r.db.GetContext(ctx, &record, query, key.ClassName, key.Session, key.Date); err != nil {
		return nil, err
	}
	return &record, nil
}

// List returns records matching the filter ordered by date descending.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	where := []string{"1=1"}
	args := []interface{}{}
	if filter.Date != nil {
		where = append(where, "attendance_date = ?")
		args = append(args, *filter.Date)
	}
	if filter.ClassName != "" {
		where = append(where, "class_name = ?")
		args = append(args, filter.ClassName)
	}
	if filter.Session != "" {
		where = append(where, "session = ?")
		args = append(args, filter.Session)
	}
	if filter.Name != "" {
		where = append(where, "name = ?")
		args = append(args, filter.Name)
	}

	query := r.db.Rebind(fmt.Sprintf(`SELECT %s FROM attendance_records
WHERE %s
ORDER BY attendance_date DESC, updated_at DESC`, attendanceColumns, strings.Join(where, " AND ")))

	var rows []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	return rows, nil
}

// Insert persists a new record.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.AttendanceRecord) error {
	now := time.Now().UTC()
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.UpdatedAt = now
	if record.Students == nil {
		record.Students = models.StudentStatuses{}
	}

	const query = `INSERT INTO attendance_records (id, attendance_date, name, class_name, session, students, created_at, updated_at)
VALUES (:id, :attendance_date, :name, :class_name, :session, :students, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		if isUniqueViolation(err) {
			return conflict(err, "attendance already recorded for this class, session and date")
		}
		return fmt.Errorf("insert attendance: %w", err)
	}
	return nil
}

// Update overwrites the mutable fields (name and the students list) and stamps updated_at.
// It returns sql.ErrNoRows when the record no longer exists.
func (r *AttendanceRepository) Update(ctx context.Context, record *models.AttendanceRecord) error {
	record.UpdatedAt = time.Now().UTC()
	if record.Students == nil {
		record.Students = models.StudentStatuses{}
	}
	const query = `UPDATE attendance_records SET name = :name, students = :students, updated_at = :updated_at WHERE id = :id`
	res, err := r.db.NamedExecContext(ctx, query, record)
	if err != nil {
		return fmt.Errorf("update attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update attendance rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Delete removes one record by id.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM attendance_records WHERE id = ?`), id); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// DeleteByClassName removes every record of a class and returns how many were removed.
func (r *AttendanceRepository) DeleteByClassName(ctx context.Context, className string) (int64, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM attendance_records WHERE class_name = ?`), className)
	if err != nil {
		return 0, fmt.Errorf("delete class attendance: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete class attendance rows affected: %w", err)
	}
	return affected, nil
}
