package controller

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// handleCalendarSync перечитывает внешние календари пользователя
// и замещает его busy-слоты в запрошенном диапазоне
func (c *Controller) handleCalendarSync(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rangeFromQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "from and to are required RFC3339 timestamps")
		return
	}

	userID := userIDFromContext(r.Context())
	result, err := c.calendars.SyncBusy(r.Context(), userID, from, to)
	if err != nil {
		c.logger.Warn("Calendar sync failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleCalendarEvents отдаёт события календарей пользователя
// за период без записи в базу
func (c *Controller) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	from, to, ok := rangeFromQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "from and to are required RFC3339 timestamps")
		return
	}

	events, partial, err := c.calendars.FetchEvents(r.Context(), userIDFromContext(r.Context()), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"events":  events,
		"partial": partial,
	})
}

type addFeedRequest struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

func (c *Controller) handleAddFeed(w http.ResponseWriter, r *http.Request) {
	var req addFeedRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "url is required")
		return
	}

	feed, err := c.calendars.AddFeed(r.Context(), userIDFromContext(r.Context()), req.Name, req.URL)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, feed)
}

func (c *Controller) handleListFeeds(w http.ResponseWriter, r *http.Request) {
	feeds, err := c.calendars.ListFeeds(r.Context(), userIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, feeds)
}

func (c *Controller) handleDeleteFeed(w http.ResponseWriter, r *http.Request) {
	feedID, err := uuid.Parse(chi.URLParam(r, "feedID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid feed id")
		return
	}

	if err := c.calendars.DeleteFeed(r.Context(), userIDFromContext(r.Context()), feedID); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}
