package handlers

import (
	"context"
	"net/http"
	"strconv"

	"skill-swap-backend/internal/middleware"
	"skill-swap-backend/internal/models"

	"github.com/go-chi/chi/v5"
)

// AdminService is the dashboard behaviour the handlers need
type AdminService interface {
	Stats(ctx context.Context) (*models.AdminStats, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	ListSwaps(ctx context.Context) ([]*models.SwapView, error)
	BanUser(ctx context.Context, adminID, userID string) (*models.User, error)
	UnbanUser(ctx context.Context, adminID, userID string) (*models.User, error)
	Broadcast(ctx context.Context, adminID, content string) (*models.PlatformMessage, error)
	Export(ctx context.Context, kind string) ([]byte, string, error)
}

// MessageService reads platform broadcasts
type MessageService interface {
	Latest(ctx context.Context) ([]*models.PlatformMessage, error)
}

// AdminHandler handles admin dashboard requests
type AdminHandler struct {
	adminService AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// BroadcastRequest represents the request body for a platform message
type BroadcastRequest struct {
	Message string `json:"message"`
}

// Stats handles GET /api/admin/stats
func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.adminService.Stats(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

// Users handles GET /api/admin/users
func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.adminService.ListUsers(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// Swaps handles GET /api/admin/swaps
func (h *AdminHandler) Swaps(w http.ResponseWriter, r *http.Request) {
	swaps, err := h.adminService.ListSwaps(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, swaps)
}

// Ban handles PUT /api/admin/users/{id}/ban
func (h *AdminHandler) Ban(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, h.adminService.BanUser)
}

// Unban handles PUT /api/admin/users/{id}/unban
func (h *AdminHandler) Unban(w http.ResponseWriter, r *http.Request) {
	h.setBanned(w, r, h.adminService.UnbanUser)
}

func (h *AdminHandler) setBanned(
	w http.ResponseWriter,
	r *http.Request,
	apply func(ctx context.Context, adminID, userID string) (*models.User, error),
) {
	ctx := r.Context()
	user, err := apply(ctx, middleware.GetUserID(ctx), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// Broadcast handles POST /api/admin/broadcast
func (h *AdminHandler) Broadcast(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req BroadcastRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	msg, err := h.adminService.Broadcast(ctx, middleware.GetUserID(ctx), req.Message)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, msg)
}

// Export handles GET /api/admin/export/{kind}
func (h *AdminHandler) Export(w http.ResponseWriter, r *http.Request) {
	data, filename, err := h.adminService.Export(r.Context(), chi.URLParam(r, "kind"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// MessageHandler serves platform broadcasts to members
type MessageHandler struct {
	messageService MessageService
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(messageService MessageService) *MessageHandler {
	return &MessageHandler{messageService: messageService}
}

// Latest handles GET /api/messages/latest
func (h *MessageHandler) Latest(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.messageService.Latest(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, msgs)
}
