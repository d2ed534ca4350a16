package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-attendance-api/internal/models"
	appErrors "github.com/noah-isme/class-attendance-api/pkg/errors"
)

type attendanceRepository interface {
	FindByKey(ctx context.Context, key models.AttendanceKey) (*models.AttendanceRecord, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	Insert(ctx context.Context, record *models.AttendanceRecord) error
	Update(ctx context.Context, record *models.AttendanceRecord) error
	Delete(ctx context.Context, id string) error
	DeleteByClassName(ctx context.Context, className string) (int64, error)
}

// UpsertAttendanceRequest records every student's status for one class on one date.
type UpsertAttendanceRequest struct {
	Date      string                 `json:"date" validate:"required"`
	Name      string                 `json:"name"`
	ClassName string                 `json:"className" validate:"required"`
	Session   string                 `json:"session" validate:"required"`
	Students  []models.StudentStatus `json:"students" validate:"required"`
}

// UpdateAttendanceRequest is the partial payload accepted by PUT. At least one field must be set.
type UpdateAttendanceRequest struct {
	Name     *string                `json:"name"`
	Students []models.StudentStatus `json:"students"`
}

// AttendanceLookup addresses one record by date with optional narrowing filters.
type AttendanceLookup struct {
	Date      string
	ClassName string
	Session   string
}

// AttendanceService manages the attendance ledger.
type AttendanceService struct {
	repo      attendanceRepository
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService constructs AttendanceService. cache and metrics may be nil.
func NewAttendanceService(repo attendanceRepository, cache *CacheService, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, cache: cache, metrics: metrics, validator: validate, logger: logger}
}

// Upsert stores the record for (className, session, date). An existing record has its
// students list replaced wholesale. The result reports whether a new record was inserted.
//
// The lookup and the write are separate statements; two concurrent submissions for a new
// key can race, in which case the unique index rejects the loser with a conflict error.
func (s *AttendanceService) Upsert(ctx context.Context, req UpsertAttendanceRequest) (*models.UpsertResult, error) {
	req.ClassName = strings.TrimSpace(req.ClassName)
	req.Session = strings.TrimSpace(req.Session)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date, className, session and students are required")
	}
	date, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}

	key := models.AttendanceKey{Date: date, ClassName: req.ClassName, Session: req.Session}
	result, err := s.upsertKey(ctx, key, req.Name, models.StudentStatuses(req.Students))
	if err != nil {
		return nil, err
	}
	s.logger.Info("attendance saved",
		zap.String("class", key.ClassName),
		zap.String("session", key.Session),
		zap.String("date", key.Date.String()),
		zap.Bool("created", result.Created),
		zap.Int("students", len(result.Record.Students)),
	)
	return result, nil
}

// upsertKey is Upsert for an already validated key.
func (s *AttendanceService) upsertKey(ctx context.Context, key models.AttendanceKey, name string, students models.StudentStatuses) (*models.UpsertResult, error) {
	if students == nil {
		students = models.StudentStatuses{}
	}

	start := time.Now()
	existing, err := s.repo.FindByKey(ctx, key)
	s.metrics.ObserveDBQuery("attendance_find_key", time.Since(start))
	switch {
	case err == nil:
		existing.Students = students
		if name != "" {
			existing.Name = name
		}
		if err := s.repo.Update(ctx, existing); err != nil {
			return nil, updateError(err)
		}
		s.afterWrite(ctx, false)
		return &models.UpsertResult{Record: existing}, nil
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, appErrors.Store(err, "failed to load attendance")
	}

	record := &models.AttendanceRecord{
		Date:      key.Date,
		Name:      name,
		ClassName: key.ClassName,
		Session:   key.Session,
		Students:  students,
	}
	if err := s.repo.Insert(ctx, record); err != nil {
		if appErrors.IsCode(err, appErrors.ErrConflict.Code) {
			return nil, err
		}
		return nil, appErrors.Store(err, "failed to save attendance")
	}
	s.afterWrite(ctx, true)
	return &models.UpsertResult{Record: record, Created: true}, nil
}

// InsertIfAbsent writes a record for key only when the ledger has none yet; an existing
// record is left untouched. It reports whether a record was written.
func (s *AttendanceService) InsertIfAbsent(ctx context.Context, key models.AttendanceKey, name string, students models.StudentStatuses) (bool, error) {
	if students == nil {
		students = models.StudentStatuses{}
	}

	start := time.Now()
	_, err := s.repo.FindByKey(ctx, key)
	s.metrics.ObserveDBQuery("attendance_find_key", time.Since(start))
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, sql.ErrNoRows):
	default:
		return false, appErrors.Store(err, "failed to load attendance")
	}

	record := &models.AttendanceRecord{
		Date:      key.Date,
		Name:      name,
		ClassName: key.ClassName,
		Session:   key.Session,
		Students:  students,
	}
	if err := s.repo.Insert(ctx, record); err != nil {
		if appErrors.IsCode(err, appErrors.ErrConflict.Code) {
			return false, nil
		}
		return false, appErrors.Store(err, "failed to save attendance")
	}
	s.afterWrite(ctx, true)
	return true, nil
}

// Find returns the single record for the date narrowed by the optional filters.
func (s *AttendanceService) Find(ctx context.Context, lookup AttendanceLookup) (*models.AttendanceRecord, error) {
	return s.resolveOne(ctx, lookup)
}

// List returns records matching the filter, newest first.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	start := time.Now()
	records, err := s.repo.List(ctx, filter)
	s.metrics.ObserveDBQuery("attendance_list", time.Since(start))
	if err != nil {
		return nil, appErrors.Store(err, "failed to list attendance")
	}
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	return records, nil
}

// Update applies a partial change (name and/or students) to the addressed record.
func (s *AttendanceService) Update(ctx context.Context, lookup AttendanceLookup, req UpdateAttendanceRequest) (*models.AttendanceRecord, error) {
	if req.Name == nil && req.Students == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "nothing to update: provide name or students")
	}
	record, err := s.resolveOne(ctx, lookup)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		record.Name = strings.TrimSpace(*req.Name)
	}
	if req.Students != nil {
		record.Students = models.StudentStatuses(req.Students)
	}
	if err := s.repo.Update(ctx, record); err != nil {
		return nil, updateError(err)
	}
	s.cache.InvalidateAttendance(ctx)
	return record, nil
}

// Delete removes the addressed record.
func (s *AttendanceService) Delete(ctx context.Context, lookup AttendanceLookup) error {
	record, err := s.resolveOne(ctx, lookup)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, record.ID); err != nil {
		return appErrors.Store(err, "failed to delete attendance")
	}
	s.cache.InvalidateAttendance(ctx)
	return nil
}

// DeleteByClassName removes every record of the class and returns the count.
func (s *AttendanceService) DeleteByClassName(ctx context.Context, className string) (int64, error) {
	removed, err := s.repo.DeleteByClassName(ctx, className)
	if err != nil {
		return 0, appErrors.Store(err, "failed to delete class attendance")
	}
	s.cache.InvalidateAttendance(ctx)
	return removed, nil
}

// resolveOne narrows the date lookup to exactly one record.
func (s *AttendanceService) resolveOne(ctx context.Context, lookup AttendanceLookup) (*models.AttendanceRecord, error) {
	date, err := models.ParseDate(lookup.Date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	}
	className := strings.TrimSpace(lookup.ClassName)
	session := strings.TrimSpace(lookup.Session)

	if className != "" && session != "" {
		record, err := s.repo.FindByKey(ctx, models.AttendanceKey{Date: date, ClassName: className, Session: session})
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
			}
			return nil, appErrors.Store(err, "failed to load attendance")
		}
		return record, nil
	}

	records, err := s.repo.List(ctx, models.AttendanceFilter{Date: &date, ClassName: className, Session: session})
	if err != nil {
		return nil, appErrors.Store(err, "failed to load attendance")
	}
	switch len(records) {
	case 0:
		return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
	case 1:
		return &records[0], nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "multiple attendance records match this date; provide className and session")
	}
}

// updateError maps a record removed between lookup and write to not-found.
func updateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "attendance not found")
	}
	return appErrors.Store(err, "failed to update attendance")
}

func (s *AttendanceService) afterWrite(ctx context.Context, created bool) {
	s.metrics.RecordUpsert(created)
	s.cache.InvalidateAttendance(ctx)
}
