package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"ideagauge/internal/repository"
	"ideagauge/internal/service"
	"ideagauge/internal/transport/rest/middleware"
)

// ReportHandler handles evaluation report endpoints.
type ReportHandler struct {
	convSvc   *service.ConversationService
	reportSvc *service.ReportService
}

// NewReportHandler creates a new report handler.
func NewReportHandler(convSvc *service.ConversationService, reportSvc *service.ReportService) *ReportHandler {
	return &ReportHandler{convSvc: convSvc, reportSvc: reportSvc}
}

// Generate handles POST /v1/conversations/{id}/report
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	conv, err := h.convSvc.Get(r.Context(), mux.Vars(r)["id"], middleware.GetClientID(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	report, err := h.reportSvc.Generate(r.Context(), conv)
	if err != nil {
		if errors.Is(err, service.ErrNotEnoughInformation) {
			writeError(w, http.StatusConflict, "keep answering questions before requesting a full report")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, report)
}

// Get handles GET /v1/conversations/{id}/report
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	if _, err := h.convSvc.Get(r.Context(), mux.Vars(r)["id"], middleware.GetClientID(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}

	report, err := h.reportSvc.Latest(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no report yet")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
