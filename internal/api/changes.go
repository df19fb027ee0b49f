package api

import (
	"fmt"
	"net/http"
	"time"
)

const (
	changeBuffer      = 64
	keepaliveInterval = 25 * time.Second
)

// streamChanges writes one server-sent event per committed change. The data
// line is the changed resource path, e.g. "podcasts/12" or "podcasts/queue".
func (h *handlers) streamChanges(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondError(w, http.StatusInternalServerError, "internal", "streaming unsupported")
		return
	}

	changes, cancel := h.changes.Subscribe(changeBuffer)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	keepalive := time.NewTicker(keepaliveInterval)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			if _, err := fmt.Fprint(w, ": keepalive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case change, ok := <-changes:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(w, "event: change\ndata: %s\n\n", change.Path()); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
