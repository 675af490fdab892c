package handlers

import (
	"context"
	"net/http"

	"skill-swap-backend/internal/middleware"
	"skill-swap-backend/internal/services"

	"github.com/rs/zerolog/log"
)

// PhotoUploader signs profile photo uploads and confirms them
type PhotoUploader interface {
	GetUploadURL(ctx context.Context, userID, contentType string) (*services.UploadResponse, error)
	ConfirmProfilePhoto(ctx context.Context, userID, photoURL string) error
}

// PhotoHandler handles profile photo requests
type PhotoHandler struct {
	photoService PhotoUploader
}

// NewPhotoHandler creates a new photo handler
func NewPhotoHandler(photoService PhotoUploader) *PhotoHandler {
	return &PhotoHandler{
		photoService: photoService,
	}
}

// UploadRequest represents the request body for a profile photo upload
type UploadRequest struct {
	ContentType string `json:"content_type"`
}

// ConfirmRequest names an uploaded photo to put on the profile
type ConfirmRequest struct {
	PhotoURL string `json:"photo_url"`
}

// UploadProfilePhoto handles POST /api/users/profile/photo
func (h *PhotoHandler) UploadProfilePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req UploadRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if req.ContentType == "" {
		req.ContentType = "image/jpeg"
	}

	response, err := h.photoService.GetUploadURL(ctx, userID, req.ContentType)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("photo_url", response.PhotoURL).
		Msg("Pre-signed URL generated")

	respondJSON(w, http.StatusOK, response)
}

// ConfirmProfilePhoto handles PUT /api/users/profile/photo
func (h *PhotoHandler) ConfirmProfilePhoto(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req ConfirmRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	if err := h.photoService.ConfirmProfilePhoto(ctx, userID, req.PhotoURL); err != nil {
		respondError(w, r, err)
		return
	}

	log.Info().
		Str("user_id", userID).
		Str("photo_url", req.PhotoURL).
		Msg("Profile photo updated")

	respondJSON(w, http.StatusOK, req)
}
