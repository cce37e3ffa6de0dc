package controller

import (
	"net/http"
	"time"

	"bandsync/internal/schedule"
)

// rangeFromQuery читает параметры from/to (RFC3339). Обе границы
// обязательны для листингов по диапазону.
func rangeFromQuery(r *http.Request) (time.Time, time.Time, bool) {
	from, err1 := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	to, err2 := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err1 != nil || err2 != nil || !to.After(from) {
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (c *Controller) handleListAvailability(w http.ResponseWriter, r *http.Request) {
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

	marks, err := c.availability.ListRange(r.Context(), groupID, userIDFromContext(r.Context()), from, to)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, marks)
}

type toggleSlotRequest struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Priority int       `json:"priority"`
}

func (c *Controller) handleToggleAvailability(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	var req toggleSlotRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if !req.End.After(req.Start) {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "end must be after start")
		return
	}
	if req.Priority <= 0 {
		req.Priority = 1
	}

	added, err := c.availability.Toggle(r.Context(), groupID, userIDFromContext(r.Context()),
		req.Start, req.End, req.Priority)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"marked": added})
}

type bulkDayRequest struct {
	Day      time.Time `json:"day"`
	Add      bool      `json:"add"`
	Priority int       `json:"priority"`
}

func (c *Controller) handleBulkDayAvailability(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	var req bulkDayRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}
	if req.Priority <= 0 {
		req.Priority = 1
	}

	err := c.availability.BulkDay(r.Context(), groupID, userIDFromContext(r.Context()),
		req.Day, req.Add, req.Priority)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"applied": true})
}

type slotRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type rangeUpdateRequest struct {
	Mode     string      `json:"mode"`
	Slots    []slotRange `json:"slots"`
	Priority int         `json:"priority"`
}

func parseDragMode(raw string) (schedule.DragMode, bool) {
	switch raw {
	case "add":
		return schedule.DragAdd, true
	case "remove":
		return schedule.DragRemove, true
	}
	return schedule.DragAdd, false
}

// handleRangeAvailability применяет итог drag-выделения одной пачкой
func (c *Controller) handleRangeAvailability(w http.ResponseWriter, r *http.Request) {
	groupID, ok := groupIDFromURL(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid group id")
		return
	}

	var req rangeUpdateRequest
	if err := parseJSONBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body")
		return
	}

	mode, ok := parseDragMode(req.Mode)
	if !ok {
		writeError(w, http.StatusBadRequest, "BAD_REQUEST", "mode must be add or remove")
		return
	}
	if req.Priority <= 0 {
		req.Priority = 1
	}

	slots := make([]schedule.Interval, 0, len(req.Slots))
	for _, sl := range req.Slots {
		if !sl.End.After(sl.Start) {
			writeError(w, http.StatusBadRequest, "BAD_REQUEST", "slot end must be after start")
			return
		}
		slots = append(slots, schedule.Interval{Start: sl.Start, End: sl.End})
	}

	err := c.availability.UpdateRange(r.Context(), groupID, userIDFromContext(r.Context()),
		mode, slots, req.Priority)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"applied": len(slots)})
}
