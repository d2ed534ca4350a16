package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-attendance-api/internal/middleware"
	"github.com/noah-isme/class-attendance-api/internal/models"
	"github.com/noah-isme/class-attendance-api/internal/service"
	appErrors "github.com/noah-isme/class-attendance-api/pkg/errors"
	"github.com/noah-isme/class-attendance-api/pkg/response"
)

type attendanceService interface {
	Upsert(ctx context.Context, req service.UpsertAttendanceRequest) (*models.UpsertResult, error)
	Find(ctx context.Context, lookup service.AttendanceLookup) (*models.AttendanceRecord, error)
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, error)
	Update(ctx context.Context, lookup service.AttendanceLookup, req service.UpdateAttendanceRequest) (*models.AttendanceRecord, error)
	Delete(ctx context.Context, lookup service.AttendanceLookup) error
}

type aggregationService interface {
	Summary(ctx context.Context, filter models.AttendanceFilter) (models.AttendanceSummary, bool, error)
	Stats(ctx context.Context, filter models.AttendanceFilter) (models.AttendanceStats, bool, error)
}

// AttendanceHandler exposes ledger and aggregate endpoints.
type AttendanceHandler struct {
	ledger     attendanceService
	aggregates aggregationService
}

// NewAttendanceHandler constructs an attendance handler.
func NewAttendanceHandler(ledger attendanceService, aggregates aggregationService) *AttendanceHandler {
	return &AttendanceHandler{ledger: ledger, aggregates: aggregates}
}

// Upsert godoc
// @Summary Save attendance for a class and date
// @Description Replaces the students list when a record already exists for (className, session, date).
// @Tags Attendance
// @Accept json
// @Produce json
// @Param payload body service.UpsertAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /attendance [post]
func (h *AttendanceHandler) Upsert(c *gin.Context) {
	var req service.UpsertAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	result, err := h.ledger.Upsert(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if result.Created {
		response.Created(c, result.Record, map[string]interface{}{"message": "Attendance saved successfully"})
		return
	}
	response.JSON(c, http.StatusOK, result.Record, map[string]interface{}{"message": "Attendance updated successfully"})
}

// Find godoc
// @Summary Get attendance by date
// @Tags Attendance
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param className query string false "Class name"
// @Param session query string false "Session"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /attendance/{date} [get]
func (h *AttendanceHandler) Find(c *gin.Context) {
	record, err := h.ledger.Find(c.Request.Context(), lookupFromRequest(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// List godoc
// @Summary List attendance records
// @Tags Attendance
// @Produce json
// @Param className query string false "Class name"
// @Param session query string false "Session"
// @Param name query string false "Record label"
// @Success 200 {object} response.Envelope
// @Router /attendance [get]
func (h *AttendanceHandler) List(c *gin.Context) {
	filter := filterFromQuery(c)
	filter.Name = strings.TrimSpace(c.Query("name"))
	records, err := h.ledger.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Update godoc
// @Summary Update attendance name or students
// @Tags Attendance
// @Accept json
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param className query string false "Class name"
// @Param session query string false "Session"
// @Param payload body service.UpdateAttendanceRequest true "Fields to change"
// @Success 200 {object} response.Envelope
// @Router /attendance/{date} [put]
func (h *AttendanceHandler) Update(c *gin.Context) {
	var req service.UpdateAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	record, err := h.ledger.Update(c.Request.Context(), lookupFromRequest(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record)
}

// Delete godoc
// @Summary Delete attendance by date
// @Tags Attendance
// @Produce json
// @Param date path string true "Date (YYYY-MM-DD)"
// @Param className query string false "Class name"
// @Param session query string false "Session"
// @Success 200 {object} response.Envelope
// @Router /attendance/{date} [delete]
func (h *AttendanceHandler) Delete(c *gin.Context) {
	if err := h.ledger.Delete(c.Request.Context(), lookupFromRequest(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"deleted": true}, map[string]interface{}{"message": "Deleted"})
}

// Summary godoc
// @Summary Per-student attendance calendar keyed by student name
// @Tags Attendance
// @Produce json
// @Param className query string false "Class name"
// @Param session query string false "Session"
// @Success 200 {object} response.Envelope
// @Router /attendance/summary [get]
func (h *AttendanceHandler) Summary(c *gin.Context) {
	summary, cacheHit, err := h.aggregates.Summary(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, middleware.ExtractMeta(c))
}

// Stats godoc
// @Summary Attendance statistics
// @Tags Attendance
// @Produce json
// @Param className query string false "Class name"
// @Param session query string false "Session"
// @Success 200 {object} response.Envelope
// @Router /attendance/stats [get]
func (h *AttendanceHandler) Stats(c *gin.Context) {
	stats, cacheHit, err := h.aggregates.Stats(c.Request.Context(), filterFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, stats, middleware.ExtractMeta(c))
}

// StatusInfo godoc
// @Summary Status code legend
// @Tags Attendance
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /attendance/status-info [get]
func (h *AttendanceHandler) StatusInfo(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.StatusLegends())
}

func lookupFromRequest(c *gin.Context) service.AttendanceLookup {
	return service.AttendanceLookup{
		Date:      c.Param("date"),
		ClassName: strings.TrimSpace(c.Query("className")),
		Session:   strings.TrimSpace(c.Query("session")),
	}
}

func filterFromQuery(c *gin.Context) models.AttendanceFilter {
	return models.AttendanceFilter{
		ClassName: strings.TrimSpace(c.Query("className")),
		Session:   strings.TrimSpace(c.Query("session")),
	}
}
