package http

import (
	"LinkShield-Backend/internal/service"
	"encoding/json"
	"errors"
	"net/http"
)

// APIResponse единый конверт ответа API
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func writeJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: true, Data: data})
}

func writeError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(APIResponse{Success: false, Error: message})
}

// writeServiceError транслирует ошибки бизнес-уровня в короткие сообщения.
// Необработанные ошибки отдаются как общий сбой без внутренних деталей.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		writeError(w, "Please enter a valid URL.", http.StatusBadRequest)
	case errors.Is(err, service.ErrInvalidCustomCode):
		writeError(w, "Custom code must be 3-20 characters: letters, numbers, '-' or '_'.", http.StatusBadRequest)
	case errors.Is(err, service.ErrCodeTaken):
		writeError(w, "Custom code is already taken, please choose another one.", http.StatusConflict)
	case errors.Is(err, service.ErrBlockedMalicious):
		writeError(w, "This URL has been identified as malicious and cannot be shortened.", http.StatusForbidden)
	case errors.Is(err, service.ErrAttemptsExhausted):
		writeError(w, "Failed to shorten URL, please try again.", http.StatusInternalServerError)
	case errors.Is(err, service.ErrUnauthorized):
		writeError(w, "Unauthorized, only logged in users can access this resource.", http.StatusUnauthorized)
	case errors.Is(err, service.ErrForbidden):
		writeError(w, "Unauthorized, you are not allowed to access this resource.", http.StatusForbidden)
	case errors.Is(err, service.ErrNotFound):
		writeError(w, "Not found, the resource does not exist.", http.StatusNotFound)
	case errors.Is(err, service.ErrInvalidRole):
		writeError(w, "Bad request, invalid role.", http.StatusBadRequest)
	default:
		writeError(w, "Something went wrong, please try again.", http.StatusInternalServerError)
	}
}
