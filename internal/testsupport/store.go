package testsupport

import (
	"context"
	"fmt"
	"testing"

	"podqueue/internal/config"
	"podqueue/internal/queue"
)

// MustOpenStore opens a queue.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *queue.Store {
	t.Helper()

	store, err := queue.Open(cfg)
	if err != nil {
		t.Fatalf("queue.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}

// NewOrderer builds an Orderer over store using cfg's queue settings.
func NewOrderer(t testing.TB, cfg *config.Config, store *queue.Store, opts ...queue.OrdererOption) *queue.Orderer {
	t.Helper()
	all := append(queue.OrdererOptionsFromConfig(cfg), opts...)
	return queue.NewOrderer(store, all...)
}

// NewEpisode records an unqueued episode titled title.
func NewEpisode(t testing.TB, store *queue.Store, title string) *queue.Episode {
	t.Helper()

	episode, err := store.AddEpisode(context.Background(), queue.NewEpisode{
		Title:    title,
		MediaURL: fmt.Sprintf("https://example.com/%s.mp3", title),
	})
	if err != nil {
		t.Fatalf("store.AddEpisode: %v", err)
	}
	return episode
}

// SeedQueue records one episode per title and appends them in order, so
// titles[i] ends up at position i. It returns the episode ids keyed by title.
func SeedQueue(t testing.TB, store *queue.Store, orderer *queue.Orderer, titles ...string) map[string]int64 {
	t.Helper()

	ids := make(map[string]int64, len(titles))
	for _, title := range titles {
		episode := NewEpisode(t, store, title)
		if err := orderer.AddToQueue(context.Background(), episode.ID); err != nil {
			t.Fatalf("AddToQueue(%s): %v", title, err)
		}
		ids[title] = episode.ID
	}
	return ids
}

// QueueTitles returns the queued episode titles in play order.
func QueueTitles(t testing.TB, store *queue.Store) []string {
	t.Helper()

	episodes, err := store.Queue(context.Background())
	if err != nil {
		t.Fatalf("store.Queue: %v", err)
	}
	titles := make([]string, 0, len(episodes))
	for _, ep := range episodes {
		titles = append(titles, ep.Title)
	}
	return titles
}

// Positions returns every episode's queue position keyed by title; unqueued
// episodes map to "-".
func Positions(t testing.TB, store *queue.Store) map[string]string {
	t.Helper()

	episodes, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("store.List: %v", err)
	}
	out := make(map[string]string, len(episodes))
	for _, ep := range episodes {
		out[ep.Title] = ep.QueuePosition.String()
	}
	return out
}

// RequireDense fails the test when the stored positions are not 0..k-1.
func RequireDense(t testing.TB, store *queue.Store) queue.DensityReport {
	t.Helper()

	report, err := store.Check(context.Background())
	if err != nil {
		t.Fatalf("store.Check: %v", err)
	}
	if !report.OK() {
		t.Fatalf("queue not dense: %s", report)
	}
	return report
}
