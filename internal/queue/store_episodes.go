package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AddSubscription records a podcast feed.
func (s *Store) AddSubscription(ctx context.Context, title, feedURL string) (*Subscription, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, errors.New("subscription title is required")
	}
	now := time.Now().UTC()

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO subscriptions (title, url, created_at) VALUES (?, ?, ?)`,
		title,
		nullableString(strings.TrimSpace(feedURL)),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert subscription: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return &Subscription{ID: id, Title: title, URL: strings.TrimSpace(feedURL), CreatedAt: now}, nil
}

// AddEpisode records an episode outside the queue.
func (s *Store) AddEpisode(ctx context.Context, ep NewEpisode) (*Episode, error) {
	title := strings.TrimSpace(ep.Title)
	if title == "" {
		return nil, errors.New("episode title is required")
	}
	guid := strings.TrimSpace(ep.GUID)
	if guid == "" {
		guid = uuid.NewString()
	}
	var subscriptionID any
	if ep.SubscriptionID != 0 {
		subscriptionID = ep.SubscriptionID
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO podcasts (
            guid, subscription_id, title, queue_position, media_url, link,
            pub_date, description, file_size, duration, created_at
        ) VALUES (?, ?, ?, NULL, ?, ?, ?, ?, ?, ?, ?)`,
		guid,
		subscriptionID,
		title,
		nullableString(strings.TrimSpace(ep.MediaURL)),
		nullableString(strings.TrimSpace(ep.Link)),
		nullableTime(ep.PubDate),
		nullableString(ep.Description),
		nullableInt64(ep.FileSize),
		nullableInt64(ep.Duration),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return nil, fmt.Errorf("insert episode: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches an episode by identifier. It returns nil, nil when the
// episode does not exist.
func (s *Store) GetByID(ctx context.Context, id int64) (*Episode, error) {
	row := s.db.QueryRowContext(ensureContext(ctx), `SELECT `+episodeColumns+episodeFrom+` WHERE p.id = ?`, id)
	episode, err := scanEpisode(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get episode: %w", err)
	}
	return episode, nil
}

// List returns every episode, newest publication first.
func (s *Store) List(ctx context.Context) ([]*Episode, error) {
	return s.queryEpisodes(ctx, `SELECT `+episodeColumns+episodeFrom+` ORDER BY p.pub_date DESC, p.id DESC`)
}

// Queue returns the queued episodes in play order.
func (s *Store) Queue(ctx context.Context) ([]*Episode, error) {
	return s.queryEpisodes(ctx, `SELECT `+episodeColumns+episodeFrom+`
        WHERE p.queue_position IS NOT NULL
        ORDER BY p.queue_position, p.id`)
}

// QueueLength counts episodes with a queue position.
func (s *Store) QueueLength(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT COUNT(1) FROM podcasts WHERE queue_position IS NOT NULL`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count queue: %w", err)
	}
	return count, nil
}

func (s *Store) queryEpisodes(ctx context.Context, query string, args ...any) ([]*Episode, error) {
	rows, err := s.db.QueryContext(ensureContext(ctx), query, args...)
	if err != nil {
		return nil, fmt.Errorf("query episodes: %w", err)
	}
	defer rows.Close()

	var episodes []*Episode
	for rows.Next() {
		episode, err := scanEpisode(rows)
		if err != nil {
			return nil, fmt.Errorf("scan episode: %w", err)
		}
		episodes = append(episodes, episode)
	}
	return episodes, rows.Err()
}
