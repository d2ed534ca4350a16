package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"time"

	"github.com/noah-isme/class-attendance-api/internal/models"
	appErrors "github.com/noah-isme/class-attendance-api/pkg/errors"
)

type fakeRosterRepo struct {
	items   map[string]*models.Roster
	listErr error
}

func newFakeRosterRepo(rosters ...models.Roster) *fakeRosterRepo {
	repo := &fakeRosterRepo{items: map[string]*models.Roster{}}
	for i := range rosters {
		r := rosters[i]
		repo.items[r.Name] = &r
	}
	return repo
}

func (f *fakeRosterRepo) List(ctx context.Context) ([]models.RosterSummary, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.RosterSummary, 0, len(f.items))
	for name := range f.items {
		out = append(out, models.RosterSummary{Name: name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeRosterRepo) FindByName(ctx context.Context, name string) (*models.Roster, error) {
	if r, ok := f.items[name]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRosterRepo) Count(ctx context.Context) (int, error) {
	return len(f.items), nil
}

func (f *fakeRosterRepo) CreateIfAbsent(ctx context.Context, roster *models.Roster) (bool, error) {
	if _, ok := f.items[roster.Name]; ok {
		return false, nil
	}
	cp := *roster
	f.items[roster.Name] = &cp
	return true, nil
}

type fakeClassRepo struct {
	items     map[string]*models.ClassInstance
	seq       int
	deleteErr error
}

func newFakeClassRepo() *fakeClassRepo {
	return &fakeClassRepo{items: map[string]*models.ClassInstance{}}
}

func (f *fakeClassRepo) List(ctx context.Context) ([]models.ClassInstance, error) {
	out := make([]models.ClassInstance, 0, len(f.items))
	for _, c := range f.items {
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (f *fakeClassRepo) FindByID(ctx context.Context, id string) (*models.ClassInstance, error) {
	if c, ok := f.items[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeClassRepo) Create(ctx context.Context, class *models.ClassInstance) error {
	f.seq++
	class.ID = fmt.Sprintf("class-%d", f.seq)
	class.CreatedAt = time.Now().UTC()
	cp := *class
	f.items[class.ID] = &cp
	return nil
}

func (f *fakeClassRepo) Delete(ctx context.Context, id string) (bool, error) {
	if f.deleteErr != nil {
		return false, f.deleteErr
	}
	if _, ok := f.items[id]; !ok {
		return false, nil
	}
	delete(f.items, id)
	return true, nil
}

// fakeLedgerRepo is an in-memory attendance store honouring the composite key.
type fakeLedgerRepo struct {
	items      map[string]*models.AttendanceRecord
	seq        int
	insertErr  error
	updateErr  error
	listErr    error
	cascadeErr error
	inserts    int
	updates    int
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{items: map[string]*models.AttendanceRecord{}}
}

func ledgerKey(k models.AttendanceKey) string {
	return k.ClassName + "|" + k.Session + "|" + k.Date.String()
}

func (f *fakeLedgerRepo) seed(records ...models.AttendanceRecord) {
	for i := range records {
		r := records[i]
		f.seq++
		if r.ID == "" {
			r.ID = fmt.Sprintf("rec-%d", f.seq)
		}
		f.items[ledgerKey(r.Key())] = &r
	}
}

func (f *fakeLedgerRepo) FindByKey(ctx context.Context, key models.AttendanceKey) (*models.AttendanceRecord, error) {
	if r, ok := f.items[ledgerKey(key)]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeLedgerRepo) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]models.AttendanceRecord, 0)
	for _, r := range f.items {
		if filter.Date != nil && !r.Date.Equal(filter.Date.Time) {
			continue
		}
		if filter.ClassName != "" && r.ClassName != filter.ClassName {
			continue
		}
		if filter.Session != "" && r.Session != filter.Session {
			continue
		}
		if filter.Name != "" && r.Name != filter.Name {
			continue
		}
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date.Time) {
			return out[i].ID > out[j].ID
		}
		return out[i].Date.After(out[j].Date.Time)
	})
	return out, nil
}

func (f *fakeLedgerRepo) Insert(ctx context.Context, record *models.AttendanceRecord) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if _, ok := f.items[ledgerKey(record.Key())]; ok {
		return appErrors.Clone(appErrors.ErrConflict, "duplicate key")
	}
	f.seq++
	f.inserts++
	record.ID = fmt.Sprintf("rec-%d", f.seq)
	record.CreatedAt = time.Now().UTC()
	record.UpdatedAt = record.CreatedAt
	cp := *record
	f.items[ledgerKey(record.Key())] = &cp
	return nil
}

func (f *fakeLedgerRepo) Update(ctx context.Context, record *models.AttendanceRecord) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	for k, r := range f.items {
		if r.ID == record.ID {
			f.updates++
			record.UpdatedAt = time.Now().UTC()
			cp := *record
			f.items[k] = &cp
			return nil
		}
	}
	return sql.ErrNoRows
}

func (f *fakeLedgerRepo) Delete(ctx context.Context, id string) error {
	for k, r := range f.items {
		if r.ID == id {
			delete(f.items, k)
		}
	}
	return nil
}

func (f *fakeLedgerRepo) DeleteByClassName(ctx context.Context, className string) (int64, error) {
	if f.cascadeErr != nil {
		return 0, f.cascadeErr
	}
	var removed int64
	for k, r := range f.items {
		if r.ClassName == className {
			delete(f.items, k)
			removed++
		}
	}
	return removed, nil
}

// fakeCacheRepo stores JSON payloads in memory; patterns are matched with path.Match.
type fakeCacheRepo struct {
	items       map[string][]byte
	invalidated []string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{items: map[string][]byte{}}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.items[key] = raw
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	f.invalidated = append(f.invalidated, pattern)
	for key := range f.items {
		if ok, _ := path.Match(pattern, key); ok {
			delete(f.items, key)
		}
	}
	return nil
}

func mustDate(raw string) models.Date {
	d, err := models.ParseDate(raw)
	if err != nil {
		panic(err)
	}
	return d
}
