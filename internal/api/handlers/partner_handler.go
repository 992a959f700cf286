package handlers

import (
	"net/http"

	"github.com/zatekoja/Clinicreportanalytics/internal/domain/repositories"
)

// PartnerHandler serves the referral partner registry
type PartnerHandler struct {
	partners repositories.PartnerRepository
}

// NewPartnerHandler creates a new partner handler
func NewPartnerHandler(partners repositories.PartnerRepository) *PartnerHandler {
	return &PartnerHandler{
		partners: partners,
	}
}

// ListPartners handles GET /api/partners
func (h *PartnerHandler) ListPartners(w http.ResponseWriter, r *http.Request) {
	partners, err := h.partners.List(r.Context())
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"partners": partners,
	})
}

// GetPartner handles GET /api/partners/{id}
func (h *PartnerHandler) GetPartner(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "partner ID is required")
		return
	}

	partner, err := h.partners.GetByID(r.Context(), id)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, partner)
}
