package api

import (
	"context"

	"podqueue/internal/queue"
)

// QueueReader abstracts the store reads the API needs.
type QueueReader interface {
	GetByID(ctx context.Context, id int64) (*queue.Episode, error)
	List(ctx context.Context) ([]*queue.Episode, error)
	Queue(ctx context.Context) ([]*queue.Episode, error)
	Check(ctx context.Context) (queue.DensityReport, error)
}

// QueueOrderer abstracts the ordering writes the API needs.
type QueueOrderer interface {
	SetPosition(ctx context.Context, id int64, target queue.Target) error
	Repair(ctx context.Context) (int64, error)
}

// QueueService exposes queue operations returning API DTOs.
type QueueService struct {
	store      QueueReader
	orderer    QueueOrderer
	storageDir string
}

// NewQueueService constructs a QueueService. storageDir is where downloaded
// payloads live; it only affects the downloaded flag of returned episodes.
func NewQueueService(store QueueReader, orderer QueueOrderer, storageDir string) *QueueService {
	if store == nil || orderer == nil {
		return nil
	}
	return &QueueService{store: store, orderer: orderer, storageDir: storageDir}
}

// List returns every episode.
func (s *QueueService) List(ctx context.Context) ([]Episode, error) {
	episodes, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	return FromEpisodes(episodes, s.storageDir), nil
}

// Queue returns queued episodes in play order.
func (s *QueueService) Queue(ctx context.Context) ([]Episode, error) {
	episodes, err := s.store.Queue(ctx)
	if err != nil {
		return nil, err
	}
	return FromEpisodes(episodes, s.storageDir), nil
}

// Describe fetches a single episode, failing with queue.NotFoundError when
// the id has no row.
func (s *QueueService) Describe(ctx context.Context, id int64) (*Episode, error) {
	episode, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if episode == nil {
		return nil, &queue.NotFoundError{ID: id}
	}
	dto := FromEpisode(episode, s.storageDir)
	return &dto, nil
}

// SetPosition places the episode and returns its updated representation.
func (s *QueueService) SetPosition(ctx context.Context, id int64, target queue.Target) (*Episode, error) {
	if err := s.orderer.SetPosition(ctx, id, target); err != nil {
		return nil, err
	}
	return s.Describe(ctx, id)
}

// Check reports queue density.
func (s *QueueService) Check(ctx context.Context) (QueueCheckResponse, error) {
	report, err := s.store.Check(ctx)
	if err != nil {
		return QueueCheckResponse{}, err
	}
	return FromDensityReport(report), nil
}

// Repair renumbers the queue.
func (s *QueueService) Repair(ctx context.Context) (QueueRepairResponse, error) {
	changed, err := s.orderer.Repair(ctx)
	if err != nil {
		return QueueRepairResponse{}, err
	}
	return QueueRepairResponse{Changed: changed}, nil
}
