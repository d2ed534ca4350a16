package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/class-attendance-api/internal/models"
	"github.com/noah-isme/class-attendance-api/internal/service"
	appErrors "github.com/noah-isme/class-attendance-api/pkg/errors"
	"github.com/noah-isme/class-attendance-api/pkg/response"
)

type classService interface {
	List(ctx context.Context) ([]models.ClassInstance, error)
	Get(ctx context.Context, id string) (*models.ClassInstance, error)
	Create(ctx context.Context, req service.CreateClassRequest) (*models.ClassInstance, error)
	Delete(ctx context.Context, id string) (*service.DeleteClassResult, error)
	Attendance(ctx context.Context, id string) (*models.ClassInstance, []models.AttendanceRecord, error)
}

type classExporter interface {
	Export(ctx context.Context, classID string, format models.ExportFormat) (*service.ExportFile, error)
}

// ClassHandler exposes class endpoints.
type ClassHandler struct {
	service  classService
	exporter classExporter
}

// NewClassHandler constructs a class handler.
func NewClassHandler(svc classService, exporter classExporter) *ClassHandler {
	return &ClassHandler{service: svc, exporter: exporter}
}

// List godoc
// @Summary List classes
// @Tags Classes
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /classes [get]
func (h *ClassHandler) List(c *gin.Context) {
	classes, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, classes)
}

// Get godoc
// @Summary Get class
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [get]
func (h *ClassHandler) Get(c *gin.Context) {
	class, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, class)
}

// Create godoc
// @Summary Create class from a session roster
// @Description Students and data default to the roster's. A class with students gets a baseline attendance record for today.
// @Tags Classes
// @Accept json
// @Produce json
// @Param payload body service.CreateClassRequest true "Class payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /classes [post]
func (h *ClassHandler) Create(c *gin.Context) {
	var req service.CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	class, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, class)
}

// Delete godoc
// @Summary Delete class and its attendance
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /classes/{id} [delete]
func (h *ClassHandler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, map[string]interface{}{"message": "Deleted"})
}

// Attendance godoc
// @Summary List class attendance
// @Tags Classes
// @Produce json
// @Param id path string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance [get]
func (h *ClassHandler) Attendance(c *gin.Context) {
	_, records, err := h.service.Attendance(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records)
}

// Export godoc
// @Summary Export class attendance matrix
// @Tags Classes
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param id path string true "Class ID"
// @Param format query string false "json, csv or pdf" default(json)
// @Success 200 {object} response.Envelope
// @Router /classes/{id}/attendance/export [get]
func (h *ClassHandler) Export(c *gin.Context) {
	file, err := h.exporter.Export(c.Request.Context(), c.Param("id"), models.ExportFormat(c.DefaultQuery("format", string(models.ExportFormatJSON))))
	if err != nil {
		response.Error(c, err)
		return
	}
	if file.Format == models.ExportFormatJSON {
		response.JSON(c, http.StatusOK, file.Matrix)
		return
	}
	response.File(c, file.ContentType, file.Filename, file.Payload)
}
