// File: internal/handlers/response.go
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/iyunix/go-ragchat/internal/domain"
	chatservice "github.com/iyunix/go-ragchat/internal/services/chat"
)

// writeJSON is a helper for sending JSON responses.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError is a helper for sending JSON error responses.
func writeError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps an error kind onto a status code and a message that
// does not leak internals.
func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	writeError(w, messageFor(status, err), status)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, chatservice.ErrValidation), errors.Is(err, domain.ErrInvalidRole):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrModelUnavailable):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func messageFor(status int, err error) string {
	switch status {
	case http.StatusNotFound:
		return "Chat not found"
	case http.StatusBadRequest:
		var chatErr *chatservice.ChatError
		if errors.As(err, &chatErr) && chatErr.Message != "" {
			return chatErr.Message
		}
		return "Bad Request"
	case http.StatusBadGateway:
		return "The language model is unavailable, please try again later"
	default:
		return "Something went wrong on our end"
	}
}

// chatIDFromPath reads the {id} route variable.
func chatIDFromPath(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}
