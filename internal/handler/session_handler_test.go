package handler

import (
	"bytes"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/class-attendance-api/internal/models"
)

func TestSessionList(t *testing.T) {
	router, mocks := buildTestRouter()
	mocks.rosters.listResp = []models.RosterSummary{{Name: "2024-2025"}}

	req, _ := http.NewRequest(http.MethodGet, "/api/sessions", nil)
	w := performRequest(router, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"name":"2024-2025"}]`, string(decodeEnvelope(t, w).Data))
}

func TestSessionGetDecodesName(t *testing.T) {
	router, mocks := buildTestRouter()
	mocks.rosters.getResp = &models.Roster{Name: "Robotics Club", Students: models.Students{}}

	req, _ := http.NewRequest(http.MethodGet, "/api/sessions/"+url.PathEscape("Robotics Club"), nil)
	w := performRequest(router, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Robotics Club", mocks.rosters.lastName)
}

func TestSessionImport(t *testing.T) {
	router, mocks := buildTestRouter()
	payload := `{"name":"2024-2025","students":[{"studentId":"S1","name":"Alice"}]}`

	mocks.rosters.importResp = &models.Roster{Name: "2024-2025"}
	mocks.rosters.created = true
	req, _ := http.NewRequest(http.MethodPost, "/api/sessions", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w := performRequest(router, req)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, true, decodeEnvelope(t, w).Meta["created"])
	assert.Len(t, mocks.rosters.lastImport.Students, 1)

	mocks.rosters.created = false
	req, _ = http.NewRequest(http.MethodPost, "/api/sessions", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	w = performRequest(router, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, false, decodeEnvelope(t, w).Meta["created"])
}
