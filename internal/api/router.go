package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"podqueue/internal/logging"
	"podqueue/internal/queue"
)

// ChangeSource hands out change subscriptions; queue.Broadcaster satisfies it.
type ChangeSource interface {
	Subscribe(buffer int) (<-chan queue.Change, func())
}

// RouterOptions carries the collaborators NewRouter wires together.
type RouterOptions struct {
	Service  *QueueService
	Changes  ChangeSource
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

// NewRouter builds the chi router for the HTTP API.
func NewRouter(opts RouterOptions) http.Handler {
	logger := logging.NewComponentLogger(opts.Logger, "api")

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(chimw.RequestSize(1 << 16))
	r.Use(requestID)
	r.Use(requestLogger(logger))

	h := &handlers{service: opts.Service, changes: opts.Changes, logger: logger}

	r.Get("/health", h.health)
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/podcasts", func(r chi.Router) {
		r.Get("/", h.list)
		r.Get("/queue", h.queue)
		r.Get("/queue/check", h.check)
		r.Post("/queue/repair", h.repair)
		if opts.Changes != nil {
			r.Get("/changes", h.streamChanges)
		}
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.describe)
			r.Put("/position", h.setPosition)
			r.Post("/queue", h.enqueue)
			r.Delete("/queue", h.dequeue)
		})
	})
	return r
}
