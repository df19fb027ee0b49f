package queue

import (
	"strconv"
	"sync"
	"sync/atomic"
)

// Notifier is told about committed queue mutations. Implementations must not
// block; they are called after the transaction commits and the queue lock is
// still held.
//
// Every call that changes the episode's position reports both EpisodeChanged
// and QueueChanged, even when no other row shifted (appending to the tail,
// say). This matches the Android provider, which notified the queue URI on
// every position write; listeners that render the queue re-read it either
// way. Calls that change nothing, and failed calls, report nothing.
type Notifier interface {
	EpisodeChanged(id int64)
	QueueChanged()
}

type nopNotifier struct{}

func (nopNotifier) EpisodeChanged(int64) {}

func (nopNotifier) QueueChanged() {}

// ChangeKind distinguishes per-episode from whole-queue notifications.
type ChangeKind int

const (
	ChangeEpisode ChangeKind = iota + 1
	ChangeQueue
)

// Change is a single notification delivered to Broadcaster subscribers.
type Change struct {
	Kind      ChangeKind
	EpisodeID int64
}

// Path renders the change as the resource path observers watch:
// "podcasts/<id>" for an episode, "podcasts/queue" for the queue.
func (c Change) Path() string {
	if c.Kind == ChangeQueue {
		return "podcasts/queue"
	}
	return "podcasts/" + strconv.FormatInt(c.EpisodeID, 10)
}

// Broadcaster fans changes out to any number of subscribers. Delivery is
// best effort: a subscriber whose buffer is full misses the change.
type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[uint64]chan Change
	next    uint64
	closed  bool
	dropped atomic.Uint64
}

// NewBroadcaster returns an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[uint64]chan Change)}
}

// Subscribe registers a subscriber with the given buffer size. The returned
// cancel func unregisters it and closes the channel; it is safe to call twice.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Change, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan Change, buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := b.next
	b.next++
	b.subs[id] = ch
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if sub, ok := b.subs[id]; ok {
				delete(b.subs, id)
				close(sub)
			}
		})
	}
}

// EpisodeChanged implements Notifier.
func (b *Broadcaster) EpisodeChanged(id int64) {
	b.publish(Change{Kind: ChangeEpisode, EpisodeID: id})
}

// QueueChanged implements Notifier.
func (b *Broadcaster) QueueChanged() {
	b.publish(Change{Kind: ChangeQueue})
}

// Dropped returns how many deliveries were skipped because a subscriber was full.
func (b *Broadcaster) Dropped() uint64 {
	return b.dropped.Load()
}

// Close unregisters and closes every subscriber.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, ch := range b.subs {
		delete(b.subs, id)
		close(ch)
	}
}

func (b *Broadcaster) publish(change Change) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, ch := range b.subs {
		select {
		case ch <- change:
		default:
			b.dropped.Add(1)
		}
	}
}
