package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/zatekoja/Clinicreportanalytics/internal/application/services"
)

// ReferralImportService defines the interface for referral stat rebuilds
type ReferralImportService interface {
	Rebuild(ctx context.Context, docs ...services.ReferralReport) (*services.RebuildResult, error)
}

// ReferralHandler handles referral report uploads
type ReferralHandler struct {
	service ReferralImportService
}

// NewReferralHandler creates a new referral handler
func NewReferralHandler(service ReferralImportService) *ReferralHandler {
	return &ReferralHandler{
		service: service,
	}
}

type referralDocument struct {
	FileName string `json:"file_name"`
	Text     string `json:"text"`
}

type referralUploadRequest struct {
	Reports []referralDocument `json:"reports"`

	// Single-document shorthand
	FileName string `json:"file_name"`
	Text     string `json:"text"`
}

// RebuildReferrals handles POST /api/reports/referrals
func (h *ReferralHandler) RebuildReferrals(w http.ResponseWriter, r *http.Request) {
	var req referralUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	if len(req.Reports) == 0 && req.Text != "" {
		req.Reports = []referralDocument{{FileName: req.FileName, Text: req.Text}}
	}

	docs := make([]services.ReferralReport, 0, len(req.Reports))
	for _, doc := range req.Reports {
		if doc.Text == "" {
			respondWithError(w, http.StatusBadRequest, "every report needs text")
			return
		}
		docs = append(docs, services.ReferralReport{FileName: doc.FileName, Text: doc.Text})
	}
	if len(docs) == 0 {
		respondWithError(w, http.StatusBadRequest, "at least one referral report is required")
		return
	}

	result, err := h.service.Rebuild(r.Context(), docs...)
	if err != nil {
		respondWithAppError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}
