package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-attendance-api/internal/models"
	appErrors "github.com/noah-isme/class-attendance-api/pkg/errors"
)

type classRepository interface {
	List(ctx context.Context) ([]models.ClassInstance, error)
	FindByID(ctx context.Context, id string) (*models.ClassInstance, error)
	Create(ctx context.Context, class *models.ClassInstance) error
	Delete(ctx context.Context, id string) (bool, error)
}

type rosterFinder interface {
	FindByName(ctx context.Context, name string) (*models.Roster, error)
}

type classLedger interface {
	InsertIfAbsent(ctx context.Context, key models.AttendanceKey, name string, students models.StudentStatuses) (bool, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	DeleteByClassName(ctx context.Context, className string) (int64, error)
}

// CreateClassRequest captures creation payload. Students and Data default to the roster's.
type CreateClassRequest struct {
	Name     string           `json:"name" validate:"required"`
	Session  string           `json:"session" validate:"required"`
	Students []models.Student `json:"students" validate:"omitempty,dive"`
	Data     []models.Lesson  `json:"data"`
}

// DeleteClassResult reports the cascade outcome.
type DeleteClassResult struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	AttendanceRemoved int64  `json:"attendanceRemoved"`
}

// ClassService coordinates class operations.
type ClassService struct {
	repo      classRepository
	rosters   rosterFinder
	ledger    classLedger
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewClassService constructs ClassService.
func NewClassService(repo classRepository, rosters rosterFinder, ledger classLedger, validate *validator.Validate, logger *zap.Logger) *ClassService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClassService{repo: repo, rosters: rosters, ledger: ledger, validator: validate, logger: logger, now: time.Now}
}

// List returns every class, newest first.
func (s *ClassService) List(ctx context.Context) ([]models.ClassInstance, error) {
	classes, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list classes")
	}
	if classes == nil {
		classes = []models.ClassInstance{}
	}
	return classes, nil
}

// Get returns one class.
func (s *ClassService) Get(ctx context.Context, id string) (*models.ClassInstance, error) {
	class, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
		}
		return nil, appErrors.Store(err, "failed to load class")
	}
	return class, nil
}

// Create snapshots the roster into a new class. A class that ends up with students also gets
// a baseline attendance record dated today with everyone present, unless the ledger already
// holds a record for that class, session and date; that record is kept as is. If the baseline
// cannot be written the class is removed again and the error returned.
func (s *ClassService) Create(ctx context.Context, req CreateClassRequest) (*models.ClassInstance, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Session = strings.TrimSpace(req.Session)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "name and session are required")
	}

	roster, err := s.rosters.FindByName(ctx, req.Session)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session %s does not exist", req.Session))
		}
		return nil, appErrors.Store(err, "failed to load session")
	}

	students := models.Students(req.Students)
	if len(students) == 0 {
		students = roster.Students
	}
	data := models.Lessons(req.Data)
	if req.Data == nil {
		data = roster.Data
	}

	class := &models.ClassInstance{Name: req.Name, Session: req.Session, Students: students, Data: data}
	if err := s.repo.Create(ctx, class); err != nil {
		return nil, appErrors.Store(err, "failed to create class")
	}

	if len(class.Students) > 0 {
		key := models.AttendanceKey{Date: models.NewDate(s.now()), ClassName: class.Name, Session: class.Session}
		written, err := s.ledger.InsertIfAbsent(ctx, key, class.Name, class.Students.WithStatus(models.StatusPresent))
		if err != nil {
			s.logger.Error("baseline attendance failed, removing class", zap.String("class_id", class.ID), zap.Error(err))
			if _, delErr := s.repo.Delete(ctx, class.ID); delErr != nil {
				s.logger.Error("rollback of class failed", zap.String("class_id", class.ID), zap.Error(delErr))
			}
			return nil, err
		}
		if !written {
			s.logger.Info("baseline attendance already recorded", zap.String("class", class.Name), zap.String("date", key.Date.String()))
		}
	}

	s.logger.Info("class created", zap.String("class_id", class.ID), zap.String("class", class.Name), zap.String("session", class.Session), zap.Int("students", len(class.Students)))
	return class, nil
}

// Delete removes the class and then every attendance record carrying its name.
// The cascade is best-effort: a failure there is logged and the class stays deleted.
func (s *ClassService) Delete(ctx context.Context, id string) (*DeleteClassResult, error) {
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	deleted, err := s.repo.Delete(ctx, class.ID)
	if err != nil {
		return nil, appErrors.Store(err, "failed to delete class")
	}
	if !deleted {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class not found")
	}

	result := &DeleteClassResult{ID: class.ID, Name: class.Name}
	removed, err := s.ledger.DeleteByClassName(ctx, class.Name)
	if err != nil {
		s.logger.Error("cascade delete failed", zap.String("class_id", class.ID), zap.String("class", class.Name), zap.Error(err))
		return result, nil
	}
	result.AttendanceRemoved = removed
	s.logger.Info("class deleted", zap.String("class_id", class.ID), zap.Int64("attendance_removed", removed))
	return result, nil
}

// Attendance returns the class together with its ledger entries, newest first.
func (s *ClassService) Attendance(ctx context.Context, id string) (*models.ClassInstance, []models.AttendanceRecord, error) {
	class, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	records, err := s.ledger.List(ctx, models.AttendanceFilter{ClassName: class.Name, Session: class.Session})
	if err != nil {
		return nil, nil, err
	}
	return class, records, nil
}
