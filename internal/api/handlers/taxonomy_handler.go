package handlers

import (
	"net/http"

	"github.com/zatekoja/Clinicreportanalytics/internal/classify"
)

// TaxonomyHandler serves the appointment-type taxonomy
type TaxonomyHandler struct {
	classifier *classify.Classifier
}

// NewTaxonomyHandler creates a new taxonomy handler
func NewTaxonomyHandler(classifier *classify.Classifier) *TaxonomyHandler {
	return &TaxonomyHandler{
		classifier: classifier,
	}
}

// ListAppointmentTypes handles GET /api/appointment-types
func (h *TaxonomyHandler) ListAppointmentTypes(w http.ResponseWriter, r *http.Request) {
	departments := h.classifier.Taxonomy().DepartmentSummary()
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"departments": departments,
	})
}
