package controller

import (
	"encoding/json"
	"errors"
	"net/http"

	"bandsync/internal/service"
)

// APIResponse - стандартный конверт ответа
type APIResponse struct {
	Success bool      `json:"success"`
	Data    any       `json:"data,omitempty"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError - структура ошибки в конверте
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: statusCode >= 200 && statusCode < 300,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := APIResponse{
		Success: false,
		Error:   &APIError{Code: code, Message: message},
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// writeServiceError переводит ошибки сервисного слоя в HTTP-статусы.
// Сервисы уже выполнили авторизацию, здесь только перевод.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotMember):
		writeError(w, http.StatusForbidden, "NOT_MEMBER", err.Error())
	case errors.Is(err, service.ErrNotAdmin):
		writeError(w, http.StatusForbidden, "NOT_ADMIN", err.Error())
	case errors.Is(err, service.ErrNotOwner):
		writeError(w, http.StatusForbidden, "NOT_OWNER", err.Error())
	case errors.Is(err, service.ErrAlreadyMember):
		writeError(w, http.StatusConflict, "ALREADY_MEMBER", err.Error())
	case errors.Is(err, service.ErrGroupNotFound):
		writeError(w, http.StatusNotFound, "GROUP_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrUserNotFound):
		writeError(w, http.StatusNotFound, "USER_NOT_FOUND", err.Error())
	case errors.Is(err, service.ErrSlotBusy):
		writeError(w, http.StatusConflict, "SLOT_BUSY", err.Error())
	case errors.Is(err, service.ErrInvalidWindow):
		writeError(w, http.StatusBadRequest, "INVALID_WINDOW", err.Error())
	case errors.Is(err, service.ErrInviteCodeExhausted):
		writeError(w, http.StatusServiceUnavailable, "INVITE_CODE_EXHAUSTED", err.Error())
	case errors.Is(err, service.ErrStaleSync):
		writeError(w, http.StatusConflict, "STALE_SYNC", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

func parseJSONBody(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}
