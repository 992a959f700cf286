package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/Clinicreportanalytics/internal/api/handlers"
	"github.com/zatekoja/Clinicreportanalytics/internal/classify"
)

func TestTaxonomyHandler_ListAppointmentTypes(t *testing.T) {
	handler := handlers.NewTaxonomyHandler(classify.NewClassifier(nil))

	req := httptest.NewRequest(http.MethodGet, "/api/appointment-types", nil)
	rec := httptest.NewRecorder()
	handler.ListAppointmentTypes(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp struct {
		Departments []classify.DepartmentTypes `json:"departments"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Departments)

	names := make([]string, 0, len(resp.Departments))
	for _, dept := range resp.Departments {
		names = append(names, dept.Department)
	}
	assert.Contains(t, names, "Dentistry")
	assert.Contains(t, names, "Wellness")
	assert.NotContains(t, names, "General")
}
