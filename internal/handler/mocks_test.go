package handler

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-attendance-api/internal/middleware"
	"github.com/noah-isme/class-attendance-api/internal/models"
	"github.com/noah-isme/class-attendance-api/internal/service"
)

type rosterServiceMock struct {
	listResp   []models.RosterSummary
	getResp    *models.Roster
	getErr     error
	importResp *models.Roster
	created    bool
	importErr  error
	lastName   string
	lastImport service.ImportRosterRequest
}

func (m *rosterServiceMock) List(ctx context.Context) ([]models.RosterSummary, error) {
	return m.listResp, nil
}

func (m *rosterServiceMock) Get(ctx context.Context, name string) (*models.Roster, error) {
	m.lastName = name
	return m.getResp, m.getErr
}

func (m *rosterServiceMock) ImportRoster(ctx context.Context, req service.ImportRosterRequest) (*models.Roster, bool, error) {
	m.lastImport = req
	return m.importResp, m.created, m.importErr
}

type classServiceMock struct {
	listResp    []models.ClassInstance
	getResp     *models.ClassInstance
	err         error
	createReq   service.CreateClassRequest
	deleteResp  *service.DeleteClassResult
	records     []models.AttendanceRecord
	exportFile  *service.ExportFile
	lastFormat  models.ExportFormat
	lastClassID string
}

func (m *classServiceMock) List(ctx context.Context) ([]models.ClassInstance, error) {
	return m.listResp, m.err
}

func (m *classServiceMock) Get(ctx context.Context, id string) (*models.ClassInstance, error) {
	m.lastClassID = id
	return m.getResp, m.err
}

func (m *classServiceMock) Create(ctx context.Context, req service.CreateClassRequest) (*models.ClassInstance, error) {
	m.createReq = req
	if m.err != nil {
		return nil, m.err
	}
	return &models.ClassInstance{ID: "c1", Name: req.Name, Session: req.Session}, nil
}

func (m *classServiceMock) Delete(ctx context.Context, id string) (*service.DeleteClassResult, error) {
	m.lastClassID = id
	return m.deleteResp, m.err
}

func (m *classServiceMock) Attendance(ctx context.Context, id string) (*models.ClassInstance, []models.AttendanceRecord, error) {
	m.lastClassID = id
	return m.getResp, m.records, m.err
}

func (m *classServiceMock) Export(ctx context.Context, classID string, format models.ExportFormat) (*service.ExportFile, error) {
	m.lastClassID = classID
	m.lastFormat = format
	return m.exportFile, m.err
}

type attendanceServiceMock struct {
	upsertResp   *models.UpsertResult
	record       *models.AttendanceRecord
	records      []models.AttendanceRecord
	err          error
	lastUpsert   service.UpsertAttendanceRequest
	lastLookup   service.AttendanceLookup
	lastFilter   models.AttendanceFilter
	lastUpdate   service.UpdateAttendanceRequest
	deleteCalled bool
}

func (m *attendanceServiceMock) Upsert(ctx context.Context, req service.UpsertAttendanceRequest) (*models.UpsertResult, error) {
	m.lastUpsert = req
	return m.upsertResp, m.err
}

func (m *attendanceServiceMock) Find(ctx context.Context, lookup service.AttendanceLookup) (*models.AttendanceRecord, error) {
	m.lastLookup = lookup
	return m.record, m.err
}

func (m *attendanceServiceMock) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error) {
	m.lastFilter = filter
	return m.records, m.err
}

func (m *attendanceServiceMock) Update(ctx context.Context, lookup service.AttendanceLookup, req service.UpdateAttendanceRequest) (*models.AttendanceRecord, error) {
	m.lastLookup = lookup
	m.lastUpdate = req
	return m.record, m.err
}

func (m *attendanceServiceMock) Delete(ctx context.Context, lookup service.AttendanceLookup) error {
	m.lastLookup = lookup
	m.deleteCalled = true
	return m.err
}

type aggregationServiceMock struct {
	summary    models.AttendanceSummary
	stats      models.AttendanceStats
	cacheHit   bool
	err        error
	lastFilter models.AttendanceFilter
}

func (m *aggregationServiceMock) Summary(ctx context.Context, filter models.AttendanceFilter) (models.AttendanceSummary, bool, error) {
	m.lastFilter = filter
	return m.summary, m.cacheHit, m.err
}

func (m *aggregationServiceMock) Stats(ctx context.Context, filter models.AttendanceFilter) (models.AttendanceStats, bool, error) {
	m.lastFilter = filter
	return m.stats, m.cacheHit, m.err
}

type routerMocks struct {
	rosters    *rosterServiceMock
	classes    *classServiceMock
	attendance *attendanceServiceMock
	aggregates *aggregationServiceMock
}

func buildTestRouter() (*gin.Engine, *routerMocks) {
	gin.SetMode(gin.TestMode)
	mocks := &routerMocks{
		rosters:    &rosterServiceMock{},
		classes:    &classServiceMock{},
		attendance: &attendanceServiceMock{},
		aggregates: &aggregationServiceMock{},
	}
	router := gin.New()
	router.Use(middleware.WithResponseMeta())
	RegisterRoutes(router.Group("/api"), Handlers{
		Sessions:   NewSessionHandler(mocks.rosters),
		Classes:    NewClassHandler(mocks.classes, mocks.classes),
		Attendance: NewAttendanceHandler(mocks.attendance, mocks.aggregates),
	})
	return router, mocks
}

func performRequest(router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
