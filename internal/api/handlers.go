package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"podqueue/internal/logging"
	"podqueue/internal/queue"
)

type handlers struct {
	service *QueueService
	changes ChangeSource
	logger  *slog.Logger
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handlers) list(w http.ResponseWriter, r *http.Request) {
	episodes, err := h.service.List(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, EpisodeListResponse{Episodes: episodes})
}

func (h *handlers) queue(w http.ResponseWriter, r *http.Request) {
	episodes, err := h.service.Queue(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, EpisodeListResponse{Episodes: episodes})
}

func (h *handlers) describe(w http.ResponseWriter, r *http.Request) {
	id, ok := episodeID(w, r)
	if !ok {
		return
	}
	episode, err := h.service.Describe(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, EpisodeResponse{Episode: *episode})
}

func (h *handlers) setPosition(w http.ResponseWriter, r *http.Request) {
	id, ok := episodeID(w, r)
	if !ok {
		return
	}
	var req PositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "validation", "invalid JSON body")
		return
	}
	target, err := req.Target()
	if err != nil {
		respondError(w, http.StatusBadRequest, "validation", err.Error())
		return
	}
	h.place(w, r, id, target)
}

func (h *handlers) enqueue(w http.ResponseWriter, r *http.Request) {
	if id, ok := episodeID(w, r); ok {
		h.place(w, r, id, queue.TargetEnd)
	}
}

func (h *handlers) dequeue(w http.ResponseWriter, r *http.Request) {
	if id, ok := episodeID(w, r); ok {
		h.place(w, r, id, queue.TargetNone)
	}
}

func (h *handlers) place(w http.ResponseWriter, r *http.Request, id int64, target queue.Target) {
	ctx := logging.WithEpisodeID(r.Context(), id)
	episode, err := h.service.SetPosition(ctx, id, target)
	if err != nil {
		h.fail(w, r.WithContext(ctx), err)
		return
	}
	respondJSON(w, http.StatusOK, EpisodeResponse{Episode: *episode})
}

func (h *handlers) check(w http.ResponseWriter, r *http.Request) {
	report, err := h.service.Check(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}

func (h *handlers) repair(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Repair(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

func (h *handlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	if StatusFor(err) == http.StatusInternalServerError {
		logging.WithContext(r.Context(), h.logger).Warn("request failed",
			logging.String("path", r.URL.Path),
			logging.Error(err),
		)
	}
	mapError(w, err)
}

func episodeID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, http.StatusBadRequest, "validation", fmt.Sprintf("invalid episode id %q", raw))
		return 0, false
	}
	return id, true
}
