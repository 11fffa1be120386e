package handlers

import (
	"net/http"

	"github.com/isdelr/ledger-be/internal/services"
)

// ReportHandler serves a user's books and the statements derived from them.
type ReportHandler struct {
	service services.ReportServiceProvider
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(service services.ReportServiceProvider) *ReportHandler {
	return &ReportHandler{service: service}
}

// GetData returns the caller's accounts and entries with their lines.
func (h *ReportHandler) GetData(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	data, err := h.service.Data(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err, "Failed to load ledger data")
		return
	}
	writeJSON(w, http.StatusOK, data)
}

// GetReports returns the trial balance, statements, general ledger and trend.
func (h *ReportHandler) GetReports(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	report, err := h.service.Report(r.Context(), uid)
	if err != nil {
		writeServiceError(w, r, err, "Failed to build reports")
		return
	}
	writeJSON(w, http.StatusOK, report)
}
