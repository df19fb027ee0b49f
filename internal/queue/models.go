package queue

import "time"

// Subscription is a podcast feed episodes belong to.
type Subscription struct {
	ID        int64
	Title     string
	URL       string
	CreatedAt time.Time
}

// Episode is a single podcast episode and its queue placement.
type Episode struct {
	ID                int64
	GUID              string
	SubscriptionID    int64
	SubscriptionTitle string
	Title             string
	QueuePosition     Position
	MediaURL          string
	Link              string
	PubDate           time.Time
	Description       string
	// FileSize is the expected payload length in bytes; 0 when unknown.
	FileSize int64
	// LastPosition is the playback offset in milliseconds.
	LastPosition int64
	// Duration is the playback length in milliseconds; 0 when unknown.
	Duration  int64
	CreatedAt time.Time
}

// Queued reports whether the episode currently has a queue position.
func (e Episode) Queued() bool { return e.QueuePosition.Queued() }

// NewEpisode carries the fields accepted when recording an episode.
// GUID defaults to a random UUID; QueuePosition is never accepted here.
type NewEpisode struct {
	GUID           string
	SubscriptionID int64
	Title          string
	MediaURL       string
	Link           string
	PubDate        time.Time
	Description    string
	FileSize       int64
	Duration       int64
}
