package queue

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"podqueue/internal/logging"
)

// DensityReport describes how far the stored positions are from 0..k-1.
type DensityReport struct {
	Length int
	// Duplicates lists ranks held by more than one episode.
	Duplicates []int
	// Gaps lists ranks below the highest stored rank that no episode holds.
	Gaps []int
}

// OK reports whether the queue is dense and unique.
func (r DensityReport) OK() bool {
	return len(r.Duplicates) == 0 && len(r.Gaps) == 0
}

func (r DensityReport) String() string {
	if r.OK() {
		return fmt.Sprintf("queue ok: %d episodes", r.Length)
	}
	return fmt.Sprintf("queue inconsistent: %d episodes, duplicates %v, gaps %v", r.Length, r.Duplicates, r.Gaps)
}

// Check reads every queue position and reports duplicates and gaps.
func (s *Store) Check(ctx context.Context) (DensityReport, error) {
	ctx = ensureContext(ctx)
	var ranked []rankedID
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		ranked, err = positionTx{tx: tx}.positionedIDs(ctx)
		return err
	})
	if err != nil {
		return DensityReport{}, err
	}
	return densityOf(ranked), nil
}

func densityOf(ranked []rankedID) DensityReport {
	report := DensityReport{Length: len(ranked)}
	if len(ranked) == 0 {
		return report
	}
	seen := make(map[int]int, len(ranked))
	highest := 0
	for _, r := range ranked {
		seen[r.rank]++
		if r.rank > highest {
			highest = r.rank
		}
	}
	for rank := 0; rank <= highest; rank++ {
		switch n := seen[rank]; {
		case n == 0:
			report.Gaps = append(report.Gaps, rank)
		case n > 1:
			report.Duplicates = append(report.Duplicates, rank)
		}
	}
	return report
}

// Repair renumbers queued episodes to 0..k-1, keeping their current order
// and breaking ties by id. It returns the number of episodes whose position
// changed.
func (o *Orderer) Repair(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	start := time.Now()

	release, err := o.acquire(ctx)
	if err != nil {
		o.observer.PositionFailed(err)
		return 0, err
	}
	defer release()

	var changed int64
	err = o.store.inTx(ctx, func(tx *sql.Tx) error {
		ptx := positionTx{tx: tx}
		ranked, err := ptx.positionedIDs(ctx)
		if err != nil {
			return err
		}
		for i, r := range ranked {
			if r.rank == i {
				continue
			}
			if err := ptx.writePosition(ctx, r.id, PositionAt(i)); err != nil {
				return err
			}
			changed++
		}
		return nil
	})
	if err != nil {
		o.observer.PositionFailed(err)
		return 0, err
	}

	o.observer.PositionChanged(MutationRenumber, changed, time.Since(start))
	if changed > 0 {
		o.logger.Info("queue renumbered", logging.Int64("changed", changed))
		o.notifier.QueueChanged()
	}
	return changed, nil
}
