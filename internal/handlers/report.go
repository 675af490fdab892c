package handlers

import (
	"context"
	"net/http"

	"skill-swap-backend/internal/middleware"
	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// ReportService is the moderation behaviour the handlers need
type ReportService interface {
	FileReport(ctx context.Context, reporterID string, in services.FileReportInput) (*models.Report, error)
	MarkInvestigating(ctx context.Context, adminID, reportID string) (*models.Report, error)
	ResolveReport(ctx context.Context, adminID, reportID string, status models.ReportStatus, notes string) (*models.Report, error)
	ListReports(ctx context.Context) ([]*models.ReportView, error)
}

// ReportHandler handles report filing and moderation
type ReportHandler struct {
	reportService ReportService
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportService ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

// ResolveRequest represents the request body for closing a report
type ResolveRequest struct {
	Status     models.ReportStatus `json:"status"`
	AdminNotes string              `json:"admin_notes"`
}

// FileReport handles POST /api/reports
func (h *ReportHandler) FileReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.FileReportInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	report, err := h.reportService.FileReport(ctx, middleware.GetUserID(ctx), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, report)
}

// List handles GET /api/admin/reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports, err := h.reportService.ListReports(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, reports)
}

// Investigate handles PUT /api/admin/reports/{id}/investigate
func (h *ReportHandler) Investigate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report, err := h.reportService.MarkInvestigating(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

// Resolve handles PUT /api/admin/reports/{id}/status
func (h *ReportHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req ResolveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	report, err := h.reportService.ResolveReport(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"), req.Status, req.AdminNotes)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
