package queue

import (
	"context"
	"database/sql"
	"errors"
)

// positionRange selects queue positions from..to inclusive, or from.. when
// open is set.
type positionRange struct {
	from int
	to   int
	open bool
}

func atOrAbove(from int) positionRange { return positionRange{from: from, open: true} }

func between(from, to int) positionRange { return positionRange{from: from, to: to} }

// positionTx exposes the read/shift/write primitives of the ordering
// algorithm over one open transaction.
type positionTx struct {
	tx *sql.Tx
}

func (p positionTx) readPosition(ctx context.Context, id int64) (Position, error) {
	var pos Position
	err := p.tx.QueryRowContext(ctx, `SELECT queue_position FROM podcasts WHERE id = ?`, id).Scan(&pos)
	if errors.Is(err, sql.ErrNoRows) {
		return NoPosition, &NotFoundError{ID: id}
	}
	if err != nil {
		return NoPosition, storeErr("read queue position", err)
	}
	return pos, nil
}

func (p positionTx) countPositioned(ctx context.Context) (int, error) {
	var count int
	err := p.tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM podcasts WHERE queue_position IS NOT NULL`).Scan(&count)
	if err != nil {
		return 0, storeErr("count queue", err)
	}
	return count, nil
}

// shiftPositions adds delta to every position inside r and returns the
// number of rows moved.
func (p positionTx) shiftPositions(ctx context.Context, r positionRange, delta int) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if r.open {
		res, err = p.tx.ExecContext(ctx,
			`UPDATE podcasts SET queue_position = queue_position + ? WHERE queue_position >= ?`,
			delta, r.from)
	} else {
		res, err = p.tx.ExecContext(ctx,
			`UPDATE podcasts SET queue_position = queue_position + ? WHERE queue_position BETWEEN ? AND ?`,
			delta, r.from, r.to)
	}
	if err != nil {
		return 0, storeErr("shift queue positions", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, storeErr("shift queue positions", err)
	}
	return n, nil
}

func (p positionTx) writePosition(ctx context.Context, id int64, pos Position) error {
	if _, err := p.tx.ExecContext(ctx, `UPDATE podcasts SET queue_position = ? WHERE id = ?`, pos, id); err != nil {
		return storeErr("write queue position", err)
	}
	return nil
}

type rankedID struct {
	id   int64
	rank int
}

// positionedIDs returns queued episodes ordered by position, ties by id.
func (p positionTx) positionedIDs(ctx context.Context) ([]rankedID, error) {
	rows, err := p.tx.QueryContext(ctx,
		`SELECT id, queue_position FROM podcasts WHERE queue_position IS NOT NULL ORDER BY queue_position, id`)
	if err != nil {
		return nil, storeErr("list queue positions", err)
	}
	defer rows.Close()

	var out []rankedID
	for rows.Next() {
		var r rankedID
		if err := rows.Scan(&r.id, &r.rank); err != nil {
			return nil, storeErr("scan queue position", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list queue positions", err)
	}
	return out, nil
}
