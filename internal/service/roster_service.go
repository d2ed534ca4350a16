package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/class-attendance-api/internal/models"
	appErrors "github.com/noah-isme/class-attendance-api/pkg/errors"
)

type rosterRepository interface {
	List(ctx context.Context) ([]models.RosterSummary, error)
	FindByName(ctx context.Context, name string) (*models.Roster, error)
	Count(ctx context.Context) (int, error)
	CreateIfAbsent(ctx context.Context, roster *models.Roster) (bool, error)
}

type attendanceLister interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
}

// ImportRosterRequest is the bulk import payload for one roster.
type ImportRosterRequest struct {
	Name     string           `json:"name" validate:"required"`
	Students []models.Student `json:"students" validate:"dive"`
	Data     []models.Lesson  `json:"data"`
}

// seedFileEntry is one element of a seed file: [{"name": "...", "students": [...]}].
type seedFileEntry struct {
	Name     string           `json:"name"`
	Students []models.Student `json:"students"`
}

// RosterService manages rosters ("sessions") and their bootstrap.
type RosterService struct {
	repo            rosterRepository
	ledger          attendanceLister
	validator       *validator.Validate
	logger          *zap.Logger
	defaultSessions []string
}

// NewRosterService constructs RosterService. ledger may be nil, which disables the name fallback in Get.
func NewRosterService(repo rosterRepository, ledger attendanceLister, validate *validator.Validate, logger *zap.Logger, defaultSessions []string) *RosterService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RosterService{repo: repo, ledger: ledger, validator: validate, logger: logger, defaultSessions: defaultSessions}
}

// List returns roster names.
func (s *RosterService) List(ctx context.Context) ([]models.RosterSummary, error) {
	rosters, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Store(err, "failed to list sessions")
	}
	if rosters == nil {
		rosters = []models.RosterSummary{}
	}
	return rosters, nil
}

// Get returns the named roster. When no roster exists, the newest ledger record labelled
// with the same name is returned in roster shape (students without statuses).
func (s *RosterService) Get(ctx context.Context, name string) (*models.Roster, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "session name is required")
	}

	roster, err := s.repo.FindByName(ctx, name)
	if err == nil {
		return roster, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Store(err, "failed to load session")
	}

	if s.ledger != nil {
		records, err := s.ledger.List(ctx, models.AttendanceFilter{Name: name})
		if err != nil {
			return nil, appErrors.Store(err, "failed to load session")
		}
		if len(records) > 0 {
			latest := records[0]
			return &models.Roster{
				Name:      name,
				Students:  latest.Students.Roster(),
				Data:      models.Lessons{},
				CreatedAt: latest.CreatedAt,
				UpdatedAt: latest.UpdatedAt,
			}, nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "session not found")
}

// Count returns the number of stored rosters.
func (s *RosterService) Count(ctx context.Context) (int, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return 0, appErrors.Store(err, "failed to count sessions")
	}
	return total, nil
}

// BootstrapDefaults creates an empty roster for every name that does not exist yet.
func (s *RosterService) BootstrapDefaults(ctx context.Context, names []string) (int, error) {
	created := 0
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		ok, err := s.repo.CreateIfAbsent(ctx, &models.Roster{Name: name})
		if err != nil {
			return created, appErrors.Store(err, fmt.Sprintf("failed to create session %s", name))
		}
		if !ok {
			s.logger.Info("roster exists, skipping", zap.String("roster", name))
			continue
		}
		s.logger.Info("created empty roster", zap.String("roster", name))
		created++
	}
	return created, nil
}

// ImportRoster creates a roster from bulk data. An existing roster is left untouched and
// reported with created=false.
func (s *RosterService) ImportRoster(ctx context.Context, req ImportRosterRequest) (*models.Roster, bool, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid session payload")
	}

	roster := &models.Roster{Name: req.Name, Students: models.Students(req.Students), Data: models.Lessons(req.Data)}
	created, err := s.repo.CreateIfAbsent(ctx, roster)
	if err != nil {
		return nil, false, appErrors.Store(err, "failed to import session")
	}
	if !created {
		s.logger.Info("roster exists, skipping", zap.String("roster", req.Name))
		existing, err := s.repo.FindByName(ctx, req.Name)
		if err != nil {
			return nil, false, appErrors.Store(err, "failed to load session")
		}
		return existing, false, nil
	}
	return roster, true, nil
}

// Seed imports every *.json roster file from dir and returns how many rosters were created.
// When dir is missing or holds no JSON files, the default session names are bootstrapped instead.
func (s *RosterService) Seed(ctx context.Context, dir string) (int, error) {
	files, err := seedFiles(dir)
	if err != nil {
		return 0, err
	}
	if len(files) == 0 {
		s.logger.Info("no roster files found, creating default sessions", zap.String("dir", dir), zap.Strings("sessions", s.defaultSessions))
		return s.BootstrapDefaults(ctx, s.defaultSessions)
	}

	created := 0
	for _, file := range files {
		roster, err := readSeedFile(file)
		if err != nil {
			s.logger.Warn("skipping roster file", zap.String("file", file), zap.Error(err))
			continue
		}
		ok, err := s.repo.CreateIfAbsent(ctx, roster)
		if err != nil {
			return created, appErrors.Store(err, fmt.Sprintf("failed to seed session %s", roster.Name))
		}
		if !ok {
			s.logger.Info("roster exists, skipping", zap.String("roster", roster.Name), zap.String("file", file))
			continue
		}
		s.logger.Info("created roster from file", zap.String("roster", roster.Name), zap.Int("students", len(roster.Students)))
		created++
	}
	return created, nil
}

func seedFiles(dir string) ([]string, error) {
	if strings.TrimSpace(dir) == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read seed directory")
	}
	files := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// readSeedFile names the roster after the file when the base name contains "-"
// (e.g. 2024-2025.json), otherwise after the first entry's name, otherwise the base name.
func readSeedFile(path string) (*models.Roster, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var entries []seedFileEntry
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode roster file: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("roster file has no entries")
	}

	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	name := base
	if !strings.Contains(base, "-") && strings.TrimSpace(entries[0].Name) != "" {
		name = strings.TrimSpace(entries[0].Name)
	}
	return &models.Roster{Name: name, Students: models.Students(entries[0].Students), Data: models.Lessons{}}, nil
}
