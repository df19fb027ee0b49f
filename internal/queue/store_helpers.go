package queue

import (
	"database/sql"
	"errors"
	"time"
)

const episodeColumns = `p.id, p.guid, p.subscription_id, s.title, p.title, p.queue_position,
    p.media_url, p.link, p.pub_date, p.description, p.file_size, p.last_position,
    p.duration, p.created_at`

const episodeFrom = ` FROM podcasts p LEFT JOIN subscriptions s ON s.id = p.subscription_id`

func scanEpisode(scanner interface{ Scan(dest ...any) error }) (*Episode, error) {
	var (
		episode           Episode
		subscriptionID    sql.NullInt64
		subscriptionTitle sql.NullString
		mediaURL          sql.NullString
		link              sql.NullString
		pubDateRaw        sql.NullString
		description       sql.NullString
		fileSize          sql.NullInt64
		duration          sql.NullInt64
		createdRaw        string
	)

	if err := scanner.Scan(
		&episode.ID,
		&episode.GUID,
		&subscriptionID,
		&subscriptionTitle,
		&episode.Title,
		&episode.QueuePosition,
		&mediaURL,
		&link,
		&pubDateRaw,
		&description,
		&fileSize,
		&episode.LastPosition,
		&duration,
		&createdRaw,
	); err != nil {
		return nil, err
	}

	episode.SubscriptionID = subscriptionID.Int64
	episode.SubscriptionTitle = subscriptionTitle.String
	episode.MediaURL = mediaURL.String
	episode.Link = link.String
	episode.Description = description.String
	episode.FileSize = fileSize.Int64
	episode.Duration = duration.Int64
	if pubDateRaw.Valid {
		if pub, err := parseTimeString(pubDateRaw.String); err == nil {
			episode.PubDate = pub
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		episode.CreatedAt = created
	}
	return &episode, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt64(value int64) any {
	if value == 0 {
		return nil
	}
	return value
}

func nullableTime(value time.Time) any {
	if value.IsZero() {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
