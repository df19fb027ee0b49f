package api

import (
	"encoding/json"
	"net/http"

	"podqueue/internal/queue"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, kind, msg string) {
	respondJSON(w, status, ErrorResponse{Error: msg, Kind: kind})
}

// StatusFor maps a queue error to an HTTP status code by its kind.
func StatusFor(err error) int {
	switch queue.KindOf(err) {
	case "not_found":
		return http.StatusNotFound
	case "validation":
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func mapError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		msg = "internal server error"
	}
	respondError(w, status, queue.KindOf(err), msg)
}
