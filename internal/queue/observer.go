package queue

import "time"

// Observer receives the outcome of every Orderer call.
type Observer interface {
	PositionChanged(m Mutation, shifted int64, elapsed time.Duration)
	PositionFailed(err error)
}

type nopObserver struct{}

func (nopObserver) PositionChanged(Mutation, int64, time.Duration) {}

func (nopObserver) PositionFailed(error) {}
