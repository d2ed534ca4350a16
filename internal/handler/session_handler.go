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

type rosterService interface {
	List(ctx context.Context) ([]models.RosterSummary, error)
	Get(ctx context.Context, name string) (*models.Roster, error)
	ImportRoster(ctx context.Context, req service.ImportRosterRequest) (*models.Roster, bool, error)
}

// SessionHandler exposes roster ("session") endpoints.
type SessionHandler struct {
	service rosterService
}

// NewSessionHandler constructs a session handler.
func NewSessionHandler(svc rosterService) *SessionHandler {
	return &SessionHandler{service: svc}
}

// List godoc
// @Summary List sessions
// @Tags Sessions
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sessions [get]
func (h *SessionHandler) List(c *gin.Context) {
	rosters, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rosters)
}

// Get godoc
// @Summary Get session roster
// @Description Falls back to the newest attendance record labelled with the same name when no roster exists.
// @Tags Sessions
// @Produce json
// @Param name path string true "Session name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /sessions/{name} [get]
func (h *SessionHandler) Get(c *gin.Context) {
	roster, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster)
}

// Import godoc
// @Summary Import session roster
// @Description Creates the roster unless one with the same name exists.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param payload body service.ImportRosterRequest true "Roster payload"
// @Success 201 {object} response.Envelope
// @Success 200 {object} response.Envelope
// @Router /sessions [post]
func (h *SessionHandler) Import(c *gin.Context) {
	var req service.ImportRosterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload"))
		return
	}
	roster, created, err := h.service.ImportRoster(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := map[string]interface{}{"created": created}
	if created {
		response.Created(c, roster, meta)
		return
	}
	response.JSON(c, http.StatusOK, roster, meta)
}
