// Package api defines the HTTP surface over the episode queue: wire-format
// DTOs, converters from queue models, a QueueService that works in DTOs, and
// a chi router exposing episodes, queue ordering, a server-sent change
// stream, and Prometheus metrics.
//
// # Routes
//
//	GET    /podcasts                 every episode, newest first
//	GET    /podcasts/queue           queued episodes in play order
//	GET    /podcasts/queue/check     density report
//	POST   /podcasts/queue/repair    renumber positions to 0..k-1
//	GET    /podcasts/changes         text/event-stream of change paths
//	GET    /podcasts/{id}            single episode
//	PUT    /podcasts/{id}/position   body {"position": null | "end" | n}
//	POST   /podcasts/{id}/queue      append to the queue
//	DELETE /podcasts/{id}/queue      remove from the queue
//	GET    /metrics                  Prometheus scrape endpoint
//	GET    /health                   liveness probe
//
// # Errors
//
// Queue errors are mapped by kind: not_found to 404, validation to 400, and
// store or anything else to 500. Error bodies are {"error": "...", "kind": "..."}.
//
// DTOs use camelCase JSON tags. An unqueued episode has "queuePosition": null.
package api
