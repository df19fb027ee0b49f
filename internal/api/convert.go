package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"podqueue/internal/queue"
)

// FromEpisode converts a stored episode to its API representation.
// storageDir is consulted for the downloaded flag; pass "" to skip it.
func FromEpisode(ep *queue.Episode, storageDir string) Episode {
	if ep == nil {
		return Episode{}
	}
	dto := Episode{
		ID:                ep.ID,
		GUID:              ep.GUID,
		SubscriptionID:    ep.SubscriptionID,
		SubscriptionTitle: ep.SubscriptionTitle,
		Title:             ep.Title,
		QueuePosition:     ep.QueuePosition,
		MediaURL:          ep.MediaURL,
		Link:              ep.Link,
		Description:       ep.Description,
		FileSize:          ep.FileSize,
		LastPosition:      ep.LastPosition,
		Duration:          ep.Duration,
	}
	if storageDir != "" {
		dto.Downloaded = ep.IsDownloaded(storageDir)
	}
	if !ep.PubDate.IsZero() {
		dto.PubDate = ep.PubDate.UTC().Format(dateTimeFormat)
	}
	if !ep.CreatedAt.IsZero() {
		dto.CreatedAt = ep.CreatedAt.UTC().Format(dateTimeFormat)
	}
	return dto
}

// FromEpisodes converts a slice of stored episodes. The result is never nil
// so empty lists encode as [].
func FromEpisodes(episodes []*queue.Episode, storageDir string) []Episode {
	out := make([]Episode, 0, len(episodes))
	for _, ep := range episodes {
		out = append(out, FromEpisode(ep, storageDir))
	}
	return out
}

// FromDensityReport converts a density report.
func FromDensityReport(report queue.DensityReport) QueueCheckResponse {
	resp := QueueCheckResponse{
		OK:         report.OK(),
		Length:     report.Length,
		Duplicates: report.Duplicates,
		Gaps:       report.Gaps,
	}
	if resp.Duplicates == nil {
		resp.Duplicates = []int{}
	}
	if resp.Gaps == nil {
		resp.Gaps = []int{}
	}
	return resp
}

var errMissingPosition = errors.New(`request body must set "position"`)

// Target decodes the requested placement.
func (r PositionRequest) Target() (queue.Target, error) {
	raw := bytes.TrimSpace(r.Position)
	if len(raw) == 0 {
		return queue.Target{}, errMissingPosition
	}
	if bytes.Equal(raw, []byte("null")) {
		return queue.TargetNone, nil
	}
	if raw[0] == '"' {
		var keyword string
		if err := json.Unmarshal(raw, &keyword); err != nil {
			return queue.Target{}, fmt.Errorf("decode position: %w", err)
		}
		return queue.ParseTarget(keyword)
	}
	var rank int
	if err := json.Unmarshal(raw, &rank); err != nil {
		return queue.Target{}, fmt.Errorf("position must be null, \"end\", or an integer: %w", err)
	}
	target := queue.TargetAt(rank)
	if rank < 0 {
		return queue.Target{}, &queue.InvalidTargetError{Target: target, Max: -1}
	}
	return target, nil
}
