package handlers

import (
	"context"
	"net/http"

	"skill-swap-backend/internal/middleware"
	"skill-swap-backend/internal/models"
	"skill-swap-backend/internal/services"

	"github.com/go-chi/chi/v5"
)

// SwapService is the swap lifecycle behaviour the handlers need
type SwapService interface {
	RequestSwap(ctx context.Context, requesterID string, in services.RequestSwapInput) (*models.SwapView, error)
	Accept(ctx context.Context, actorID, swapID string) (*models.Swap, error)
	Reject(ctx context.Context, actorID, swapID string) (*models.Swap, error)
	Complete(ctx context.Context, actorID, swapID string) (*models.Swap, error)
	Delete(ctx context.Context, actorID, swapID string) error
	SubmitFeedback(ctx context.Context, actorID, swapID string, rating int, comment string) (*models.Swap, error)
	Get(ctx context.Context, actorID, swapID string) (*models.SwapView, error)
	ListForUser(ctx context.Context, userID string) (*services.SwapList, error)
	RecentActivity(ctx context.Context, userID string) ([]models.Activity, error)
}

// SwapHandler handles swap-related HTTP requests
type SwapHandler struct {
	swapService SwapService
}

// NewSwapHandler creates a new swap handler
func NewSwapHandler(swapService SwapService) *SwapHandler {
	return &SwapHandler{
		swapService: swapService,
	}
}

// FeedbackRequest represents the request body for rating a swap
type FeedbackRequest struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// RequestSwap handles POST /api/swaps/request
func (h *SwapHandler) RequestSwap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req services.RequestSwapInput
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	swap, err := h.swapService.RequestSwap(ctx, middleware.GetUserID(ctx), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, swap)
}

// MyRequests handles GET /api/swaps/my-requests
func (h *SwapHandler) MyRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	list, err := h.swapService.ListForUser(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

// Recent handles GET /api/swaps/recent
func (h *SwapHandler) Recent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	activity, err := h.swapService.RecentActivity(ctx, middleware.GetUserID(ctx))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, activity)
}

// Get handles GET /api/swaps/{id}
func (h *SwapHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	swap, err := h.swapService.Get(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, swap)
}

// Accept handles PUT /api/swaps/{id}/accept
func (h *SwapHandler) Accept(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.swapService.Accept)
}

// Reject handles PUT /api/swaps/{id}/reject
func (h *SwapHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.swapService.Reject)
}

// Complete handles PUT /api/swaps/{id}/complete
func (h *SwapHandler) Complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.swapService.Complete)
}

func (h *SwapHandler) transition(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, actorID, swapID string) (*models.Swap, error),
) {
	ctx := r.Context()
	swap, err := apply(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, swap)
}

// Delete handles DELETE /api/swaps/{id}
func (h *SwapHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if err := h.swapService.Delete(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id")); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, MessageResponse{Message: "Swap request deleted"})
}

// SubmitFeedback handles POST /api/swaps/{id}/feedback
func (h *SwapHandler) SubmitFeedback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	swap, err := h.swapService.SubmitFeedback(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"), req.Rating, req.Comment)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, swap)
}
