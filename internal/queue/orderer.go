package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"podqueue/internal/config"
	"podqueue/internal/logging"
)

// RangePolicy decides what SetPosition does with a rank past the end of the queue.
type RangePolicy int

const (
	// ClampToEnd treats an overlarge rank as TargetEnd.
	ClampToEnd RangePolicy = iota
	// RejectOutOfRange fails with InvalidTargetError.
	RejectOutOfRange
)

// Mutation classifies what a SetPosition call did to the queue.
type Mutation string

const (
	MutationNone       Mutation = "noop"
	MutationInsert     Mutation = "insert"
	MutationRemove     Mutation = "remove"
	MutationMoveToHead Mutation = "move_toward_head"
	MutationMoveToTail Mutation = "move_toward_tail"
	MutationRenumber   Mutation = "renumber"
)

const (
	lockRetryDelay       = 25 * time.Millisecond
	defaultLockWaitLimit = 10 * time.Second
)

// ErrLockTimeout is returned when the cross-process queue lock could not be
// acquired before the wait limit.
var ErrLockTimeout = errors.New("queue lock not acquired")

// Orderer is the only writer of episode queue positions. It keeps the
// positioned episodes numbered 0..k-1 with every mutation committed as one
// transaction.
type Orderer struct {
	store    *Store
	notifier Notifier
	observer Observer
	logger   *slog.Logger
	policy   RangePolicy
	lock     *flock.Flock
	lockWait time.Duration

	mu sync.Mutex
}

// OrdererOption customizes an Orderer.
type OrdererOption func(*Orderer)

// WithNotifier sets the sink told about changed episodes and queue changes.
func WithNotifier(n Notifier) OrdererOption {
	return func(o *Orderer) {
		if n != nil {
			o.notifier = n
		}
	}
}

// WithObserver sets the sink for per-call outcome metrics.
func WithObserver(obs Observer) OrdererOption {
	return func(o *Orderer) {
		if obs != nil {
			o.observer = obs
		}
	}
}

// WithLogger sets the logger used for debug traces and failures.
func WithLogger(logger *slog.Logger) OrdererOption {
	return func(o *Orderer) {
		o.logger = logging.NewComponentLogger(logger, "orderer")
	}
}

// WithRangePolicy selects clamp or reject for overlarge ranks.
func WithRangePolicy(policy RangePolicy) OrdererOption {
	return func(o *Orderer) { o.policy = policy }
}

// WithLockFile serializes mutations across processes through an exclusive
// lock on path, waiting at most wait (0 uses the default limit).
func WithLockFile(path string, wait time.Duration) OrdererOption {
	return func(o *Orderer) {
		if path == "" {
			return
		}
		if wait <= 0 {
			wait = defaultLockWaitLimit
		}
		o.lock = flock.New(path)
		o.lockWait = wait
	}
}

// NewOrderer builds an Orderer over store.
func NewOrderer(store *Store, opts ...OrdererOption) *Orderer {
	o := &Orderer{
		store:    store,
		notifier: nopNotifier{},
		observer: nopObserver{},
		logger:   logging.NewComponentLogger(nil, "orderer"),
		policy:   ClampToEnd,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// OrdererOptionsFromConfig maps configuration onto orderer options.
func OrdererOptionsFromConfig(cfg *config.Config) []OrdererOption {
	if cfg == nil {
		return nil
	}
	policy := ClampToEnd
	if cfg.Queue.OutOfRange == config.OutOfRangeReject {
		policy = RejectOutOfRange
	}
	return []OrdererOption{
		WithRangePolicy(policy),
		WithLockFile(cfg.QueueLockPath(), time.Duration(cfg.Queue.LockTimeout)*time.Second),
	}
}

// AddToQueue appends the episode to the end of the queue.
func (o *Orderer) AddToQueue(ctx context.Context, id int64) error {
	return o.SetPosition(ctx, id, TargetEnd)
}

// RemoveFromQueue takes the episode out of the queue and closes the gap.
func (o *Orderer) RemoveFromQueue(ctx context.Context, id int64) error {
	return o.SetPosition(ctx, id, TargetNone)
}

// MoveTo places the episode at rank n.
func (o *Orderer) MoveTo(ctx context.Context, id int64, n int) error {
	return o.SetPosition(ctx, id, TargetAt(n))
}

// SetPosition inserts, removes, or moves an episode within the queue. The
// read, shift, and write phases run in one transaction while holding the
// queue lock; on failure nothing is committed.
func (o *Orderer) SetPosition(ctx context.Context, id int64, target Target) error {
	ctx = ensureContext(ctx)
	logger := logging.WithContext(logging.WithEpisodeID(ctx, id), o.logger)
	start := time.Now()

	if err := target.validate(); err != nil {
		o.observer.PositionFailed(err)
		return err
	}

	release, err := o.acquire(ctx)
	if err != nil {
		o.observer.PositionFailed(err)
		return err
	}
	defer release()

	var result moveResult
	err = o.store.inTx(ctx, func(tx *sql.Tx) error {
		var applyErr error
		result, applyErr = o.apply(ctx, positionTx{tx: tx}, id, target)
		return applyErr
	})
	if err != nil {
		o.observer.PositionFailed(err)
		if KindOf(err) == "store" {
			logging.ErrorWithContext(logger, "queue position update failed", "queue_position_failed",
				logging.String("target", target.String()),
				logging.Error(err),
			)
		}
		return err
	}

	elapsed := time.Since(start)
	o.observer.PositionChanged(result.mutation, result.shifted, elapsed)
	logger.Debug("queue position updated",
		logging.String("mutation", string(result.mutation)),
		logging.String("target", target.String()),
		logging.String("from", result.from.String()),
		logging.String("to", result.to.String()),
		logging.Int64("shifted", result.shifted),
		logging.Duration("elapsed", elapsed),
	)

	if result.mutation != MutationNone {
		o.notifier.EpisodeChanged(id)
		o.notifier.QueueChanged()
	}
	return nil
}

type moveResult struct {
	mutation Mutation
	from     Position
	to       Position
	shifted  int64
}

func (o *Orderer) apply(ctx context.Context, tx positionTx, id int64, target Target) (moveResult, error) {
	old, err := tx.readPosition(ctx, id)
	if err != nil {
		return moveResult{}, err
	}
	count, err := tx.countPositioned(ctx)
	if err != nil {
		return moveResult{}, err
	}
	next, err := o.resolve(target, old, count)
	if err != nil {
		return moveResult{}, err
	}

	result := moveResult{mutation: MutationNone, from: old, to: next}
	from, queued := old.Rank()
	to, placed := next.Rank()

	switch {
	case !queued && !placed:
		return result, nil
	case !queued:
		result.mutation = MutationInsert
		result.shifted, err = tx.shiftPositions(ctx, atOrAbove(to), 1)
	case !placed:
		result.mutation = MutationRemove
		result.shifted, err = tx.shiftPositions(ctx, atOrAbove(from+1), -1)
	case from < to:
		result.mutation = MutationMoveToTail
		result.shifted, err = tx.shiftPositions(ctx, between(from+1, to), -1)
	case to < from:
		result.mutation = MutationMoveToHead
		result.shifted, err = tx.shiftPositions(ctx, between(to, from-1), 1)
	default:
		return result, nil
	}
	if err != nil {
		return moveResult{}, err
	}
	if err := tx.writePosition(ctx, id, next); err != nil {
		return moveResult{}, err
	}
	return result, nil
}

// resolve turns target into a concrete position before any range arithmetic.
// count includes the episode itself when it is already queued, so the last
// rank it can occupy is count-1; an unqueued episode can take rank count.
func (o *Orderer) resolve(target Target, old Position, count int) (Position, error) {
	last := count
	if old.Queued() {
		last = count - 1
	}
	switch {
	case target.IsNone():
		return NoPosition, nil
	case target.IsEnd():
		return PositionAt(last), nil
	}
	n, _ := target.Rank()
	if n > count && o.policy == RejectOutOfRange {
		return NoPosition, &InvalidTargetError{Target: target, Max: count}
	}
	if n > last {
		n = last
	}
	return PositionAt(n), nil
}

// acquire serializes callers in this process and, when a lock file is
// configured, across processes sharing the database.
func (o *Orderer) acquire(ctx context.Context) (func(), error) {
	o.mu.Lock()
	if o.lock == nil {
		return o.mu.Unlock, nil
	}

	lockCtx, cancel := context.WithTimeout(ctx, o.lockWait)
	defer cancel()
	locked, err := o.lock.TryLockContext(lockCtx, lockRetryDelay)
	if err != nil || !locked {
		o.mu.Unlock()
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, storeErr("acquire queue lock", ctxErr)
		}
		if err == nil || errors.Is(err, context.DeadlineExceeded) {
			err = ErrLockTimeout
		}
		return nil, storeErr(fmt.Sprintf("acquire queue lock %s", o.lock.Path()), err)
	}
	return func() {
		_ = o.lock.Unlock()
		o.mu.Unlock()
	}, nil
}
