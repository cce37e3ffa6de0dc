package controller

import (
	"net/http"

	"bandsync/internal/model"

	"go.uber.org/zap"
)

type syncProfileRequest struct {
	Email       *string `json:"email"`
	DisplayName string  `json:"display_name"`
	AvatarURL   *string `json:"avatar_url"`
}

// handleSyncProfile создаёт или обновляет профиль после логина
func (c *Controller) handleSyncProfile(w http.ResponseWriter, r *http.Request) {
	var req syncProfileRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	user := &model.User{
		ID:          userIDFromContext(r.Context()),
		Email:       req.Email,
		DisplayName: req.DisplayName,
		AvatarURL:   req.AvatarURL,
	}

	synced, err := c.users.SyncProfile(r.Context(), user)
	if err != nil {
		c.logger.Error("Failed to sync profile", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, synced)
}

func (c *Controller) handleGetMe(w http.ResponseWriter, r *http.Request) {
	user, err := c.users.Get(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

type updateDisplayNameRequest struct {
	DisplayName string `json:"display_name"`
}

func (c *Controller) handleUpdateDisplayName(w http.ResponseWriter, r *http.Request) {
	var req updateDisplayNameRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.DisplayName == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "display_name is required")
		return
	}

	if err := c.users.UpdateDisplayName(r.Context(), userIDFromContext(r.Context()), req.DisplayName); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"display_name": req.DisplayName})
}

func (c *Controller) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := userIDFromContext(r.Context())

	if err := c.users.DeleteAccount(r.Context(), userID); err != nil {
		c.logger.Error("Failed to delete account",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
