package controller

import (
	"net/http"
	"time"

	"bandsync/internal/heatmap"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// groupIDFromURL разбирает {groupID} из пути
func groupIDFromURL(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "groupID"))
	return id, err == nil
}

// anchorFromQuery читает параметр week (RFC3339 или YYYY-MM-DD),
// по умолчанию текущая неделя
func anchorFromQuery(r *http.Request) time.Time {
	raw := r.URL.Query().Get("week")
	if raw == "" {
		return time.Now()
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t
	}
	return time.Now()
}

type createGroupRequest struct {
	Name string `json:"name"`
}

func (c *Controller) handleCreateGroup(w http.ResponseWriter, r *http.Request) {
	var req createGroupRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "name is required")
		return
	}

	group, err := c.groups.Create(r.Context(), userIDFromContext(r.Context()), req.Name)
	if err != nil {
		c.logger.Error("Failed to create group", zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

type joinGroupRequest struct {
	InviteCode string `json:"invite_code"`
}

func (c *Controller) handleJoinGroup(w http.ResponseWriter, r *http.Request) {
	var req joinGroupRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.InviteCode == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invite_code is required")
		return
	}

	group, err := c.groups.JoinByCode(r.Context(), userIDFromContext(r.Context()), req.InviteCode)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

func (c *Controller) handleListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := c.groups.ListForUser(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

func (c *Controller) handleGetGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	group, err := c.groups.Get(r.Context(), groupID, userIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, group)
}

func (c *Controller) handleDeleteGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	if err := c.groups.Delete(r.Context(), groupID, userIDFromContext(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

func (c *Controller) handleLeaveGroup(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	if err := c.groups.Leave(r.Context(), groupID, userIDFromContext(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"left": true})
}

type updateWindowRequest struct {
	StartHour   int `json:"start_hour"`
	EndHour     int `json:"end_hour"`
	SlotMinutes int `json:"slot_minutes"`
}

func (c *Controller) handleUpdateWindow(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	var req updateWindowRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	err := c.groups.UpdateWindow(r.Context(), groupID, userIDFromContext(r.Context()),
		req.StartHour, req.EndHour, req.SlotMinutes)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, req)
}

func (c *Controller) handleListMembers(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	members, err := c.groups.Members(r.Context(), groupID, userIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, members)
}

func (c *Controller) handleOverview(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	overview, err := c.groups.Overview(r.Context(), groupID, userIDFromContext(r.Context()), anchorFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

// handleMonthSummary отдаёт дневные счета месячной сетки (6 недель)
func (c *Controller) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	days, err := c.groups.MonthSummary(r.Context(), groupID, userIDFromContext(r.Context()), anchorFromQuery(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, days)
}

// handleHeatmap отдаёт PNG-карту недели группы
func (c *Controller) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	anchor := anchorFromQuery(r)
	overview, err := c.groups.Overview(r.Context(), groupID, userIDFromContext(r.Context()), anchor)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	img, err := heatmap.Render(heatmap.WeekData{
		Group:  overview.Group,
		Anchor: anchor,
		Marks:  overview.Marks,
		Busy:   overview.Busy,
		Events: overview.Events,
	})
	if err != nil {
		c.logger.Error("Failed to render heatmap",
			zap.String("group_id", groupID.String()),
			zap.Error(err))
		writeError(w, http.StatusInternalServerError, "INTERNAL", "failed to render heatmap")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}
