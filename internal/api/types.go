package api

import (
	"encoding/json"

	"podqueue/internal/queue"
)

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Episode describes an episode in a transport-friendly format.
type Episode struct {
	ID                int64          `json:"id"`
	GUID              string         `json:"guid"`
	SubscriptionID    int64          `json:"subscriptionId,omitempty"`
	SubscriptionTitle string         `json:"subscriptionTitle,omitempty"`
	Title             string         `json:"title"`
	QueuePosition     queue.Position `json:"queuePosition"`
	MediaURL          string         `json:"mediaUrl,omitempty"`
	Link              string         `json:"link,omitempty"`
	PubDate           string         `json:"pubDate,omitempty"`
	Description       string         `json:"description,omitempty"`
	FileSize          int64          `json:"fileSize"`
	LastPosition      int64          `json:"lastPosition"`
	Duration          int64          `json:"duration"`
	Downloaded        bool           `json:"downloaded"`
	CreatedAt         string         `json:"createdAt,omitempty"`
}

// EpisodeListResponse wraps a collection of episodes.
type EpisodeListResponse struct {
	Episodes []Episode `json:"episodes"`
}

// EpisodeResponse wraps a single episode.
type EpisodeResponse struct {
	Episode Episode `json:"episode"`
}

// PositionRequest is the body of PUT /podcasts/{id}/position. Position is
// null to dequeue, "end" to append, or a non-negative rank.
type PositionRequest struct {
	Position json.RawMessage `json:"position"`
}

// QueueCheckResponse reports queue density.
type QueueCheckResponse struct {
	OK         bool  `json:"ok"`
	Length     int   `json:"length"`
	Duplicates []int `json:"duplicates"`
	Gaps       []int `json:"gaps"`
}

// QueueRepairResponse reports how many positions a repair rewrote.
type QueueRepairResponse struct {
	Changed int64 `json:"changed"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}
