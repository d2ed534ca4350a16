package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-attendance-api/internal/models"
	appErrors "github.com/noah-isme/class-attendance-api/pkg/errors"
)

var attendanceRowColumns = []string{"id", "attendance_date", "name", "class_name", "session", "students", "created_at", "updated_at"}

func mustDate(t *testing.T, raw string) models.Date {
	d, err := models.ParseDate(raw)
	require.NoError(t, err)
	return d
}

func TestAttendanceRepositoryFindByKey(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM attendance_records").
		WithArgs("10A", "2024-2025", "2025-01-10").
		WillReturnRows(sqlmock.NewRows(attendanceRowColumns).
			AddRow("r1", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "", "10A", "2024-2025", []byte(`[{"studentId":"S1","name":"Alice","status":0}]`), now, now))

	record, err := repo.FindByKey(context.Background(), models.AttendanceKey{Date: mustDate(t, "2025-01-10"), ClassName: "10A", Session: "2024-2025"})
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", record.Date.String())
	require.Len(t, record.Students, 1)
	assert.True(t, record.Students[0].Status.IsPresent())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryFindByKeyMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM attendance_records").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByKey(context.Background(), models.AttendanceKey{Date: mustDate(t, "2025-01-10"), ClassName: "10A", Session: "2024-2025"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestAttendanceRepositoryListFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT (.+) FROM attendance_records").
		WithArgs("2025-01-10", "10A", "2024-2025", "Morning").
		WillReturnRows(sqlmock.NewRows(attendanceRowColumns).
			AddRow("r1", "2025-01-10", "Morning", "10A", "2024-2025", "[]", now, now))

	date := mustDate(t, "2025-01-10")
	rows, err := repo.List(context.Background(), models.AttendanceFilter{Date: &date, ClassName: "10A", Session: "2024-2025", Name: "Morning"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Morning", rows[0].Name)
	assert.NotNil(t, rows[0].Students)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryListError(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectQuery("SELECT (.+) FROM attendance_records").WillReturnError(errors.New("connection reset"))

	_, err := repo.List(context.Background(), models.AttendanceFilter{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "list attendance")
}

func TestAttendanceRepositoryInsertAndUpdate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance_records").
		WithArgs(sqlmock.AnyArg(), "2025-01-10", "", "10A", "2024-2025", `[{"studentId":"S1","name":"Alice","status":0}]`, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("UPDATE attendance_records SET").
		WithArgs("", `[{"studentId":"S1","name":"Alice","status":2}]`, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	record := &models.AttendanceRecord{
		Date:      mustDate(t, "2025-01-10"),
		ClassName: "10A",
		Session:   "2024-2025",
		Students:  models.StudentStatuses{{StudentID: "S1", Name: "Alice", Status: models.StatusPresent}},
	}
	require.NoError(t, repo.Insert(context.Background(), record))
	assert.NotEmpty(t, record.ID)

	record.Students = models.StudentStatuses{{StudentID: "S1", Name: "Alice", Status: 2}}
	require.NoError(t, repo.Update(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryUpdateMissingRecord(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("UPDATE attendance_records SET").WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), &models.AttendanceRecord{ID: "gone", Date: mustDate(t, "2025-01-10")})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryDeletes(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec(`DELETE FROM attendance_records WHERE id = \$1`).WithArgs("r1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM attendance_records WHERE class_name = \$1`).WithArgs("10A").WillReturnResult(sqlmock.NewResult(0, 3))

	require.NoError(t, repo.Delete(context.Background(), "r1"))
	removed, err := repo.DeleteByClassName(context.Background(), "10A")
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositoryInsertDuplicateKey(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO attendance_records").
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	err := repo.Insert(context.Background(), &models.AttendanceRecord{Date: mustDate(t, "2025-01-10"), ClassName: "10A", Session: "2024-2025"})
	require.Error(t, err)
	assert.True(t, appErrors.IsCode(err, appErrors.ErrConflict.Code))
}
