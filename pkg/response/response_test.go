package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/class-attendance-api/pkg/errors"
)

func TestErrorUsesTypedStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Error(c, appErrors.Clone(appErrors.ErrNotFound, "session not found"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
	assert.Equal(t, "session not found", body.Error.Message)
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestCreatedCarriesMeta(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	Created(c, gin.H{"id": "1"}, map[string]interface{}{"message": "saved"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"data":{"id":"1"},"meta":{"message":"saved"}}`, rec.Body.String())
}

func TestFileSetsAttachmentHeaders(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	File(c, "text/csv", "attendance.csv", []byte("Name\n"))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="attendance.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "Name\n", rec.Body.String())
}
