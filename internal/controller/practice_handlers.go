package controller

import (
	"net/http"
	"time"

	"bandsync/internal/schedule"
)

func (c *Controller) handleListPractices(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	from, to, ok := rangeFromQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "from and to are required RFC3339 timestamps")
		return
	}

	events, err := c.practices.ListRange(r.Context(), groupID, userIDFromContext(r.Context()), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, events)
}

// handlePracticeRuns отдаёт репетиции, склеенные в непрерывные интервалы
func (c *Controller) handlePracticeRuns(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	from, to, ok := rangeFromQuery(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "from and to are required RFC3339 timestamps")
		return
	}

	runs, err := c.practices.MergedRuns(r.Context(), groupID, userIDFromContext(r.Context()), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, runs)
}

type togglePracticeRequest struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (c *Controller) handleTogglePractice(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	var req togglePracticeRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if !req.End.After(req.Start) {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "end must be after start")
		return
	}

	confirmed, err := c.practices.Toggle(r.Context(), groupID, userIDFromContext(r.Context()), req.Start, req.End)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"confirmed": confirmed})
}

type bulkPracticeRequest struct {
	Mode  string      `json:"mode"`
	Slots []slotRange `json:"slots"`
}

// handleBulkPractices - пакетное подтверждение или снятие репетиций,
// только для администраторов
func (c *Controller) handleBulkPractices(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	var req bulkPracticeRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	mode, ok := parseDragMode(req.Mode)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "mode must be add or remove")
		return
	}

	slots := make([]schedule.Interval, 0, len(req.Slots))
	for _, sl := range req.Slots {
		if !sl.End.After(sl.Start) {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "slot end must be after start")
			return
		}
		slots = append(slots, schedule.Interval{Start: sl.Start, End: sl.End})
	}

	result, err := c.practices.BulkUpdate(r.Context(), groupID, userIDFromContext(r.Context()), mode, slots)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (c *Controller) handleClearPractices(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	deleted, err := c.practices.ClearAll(r.Context(), groupID, userIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}
