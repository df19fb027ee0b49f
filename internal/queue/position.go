package queue

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Position is an episode's rank in the queue, or the absence of one.
// The zero value is NoPosition.
type Position struct {
	rank  int
	valid bool
}

// NoPosition marks an episode that is not queued.
var NoPosition = Position{}

// PositionAt returns a queued position at rank.
func PositionAt(rank int) Position {
	return Position{rank: rank, valid: true}
}

// Rank returns the zero-based rank and whether the episode is queued.
func (p Position) Rank() (int, bool) {
	return p.rank, p.valid
}

// Queued reports whether the position is present.
func (p Position) Queued() bool { return p.valid }

func (p Position) String() string {
	if !p.valid {
		return "-"
	}
	return strconv.Itoa(p.rank)
}

// Value implements driver.Valuer; an absent position is stored as NULL.
func (p Position) Value() (driver.Value, error) {
	if !p.valid {
		return nil, nil
	}
	return int64(p.rank), nil
}

// Scan implements sql.Scanner.
func (p *Position) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*p = NoPosition
	case int64:
		*p = PositionAt(int(v))
	case int:
		*p = PositionAt(v)
	case []byte:
		return p.scanString(string(v))
	case string:
		return p.scanString(v)
	default:
		return fmt.Errorf("scan position: unsupported type %T", src)
	}
	return nil
}

func (p *Position) scanString(value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("scan position: %w", err)
	}
	*p = PositionAt(n)
	return nil
}

func (p Position) MarshalJSON() ([]byte, error) {
	if !p.valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(p.rank)), nil
}

func (p *Position) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = NoPosition
		return nil
	}
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode position: %w", err)
	}
	*p = PositionAt(n)
	return nil
}

type targetKind int

const (
	targetNone targetKind = iota
	targetEnd
	targetAt
)

// Target is a requested placement for SetPosition.
type Target struct {
	kind targetKind
	rank int
}

var (
	// TargetNone removes the episode from the queue.
	TargetNone = Target{kind: targetNone}
	// TargetEnd appends the episode after the current last item.
	TargetEnd = Target{kind: targetEnd}
)

// TargetAt places the episode at zero-based rank n.
func TargetAt(n int) Target {
	return Target{kind: targetAt, rank: n}
}

// ParseTarget accepts "none", "end", or a non-negative integer rank,
// case-insensitively. A blank value is an error, never a removal.
func ParseTarget(value string) (Target, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	switch normalized {
	case "":
		return Target{}, errors.New("parse queue target: value is empty")
	case "none":
		return TargetNone, nil
	case "end":
		return TargetEnd, nil
	}
	n, err := strconv.Atoi(normalized)
	if err != nil {
		return Target{}, fmt.Errorf("parse queue target %q: expected none, end, or a rank", value)
	}
	target := TargetAt(n)
	if err := target.validate(); err != nil {
		return Target{}, err
	}
	return target, nil
}

// Rank returns n for TargetAt(n).
func (t Target) Rank() (int, bool) {
	return t.rank, t.kind == targetAt
}

// IsNone reports whether the target removes the episode from the queue.
func (t Target) IsNone() bool { return t.kind == targetNone }

// IsEnd reports whether the target appends to the queue.
func (t Target) IsEnd() bool { return t.kind == targetEnd }

func (t Target) String() string {
	switch t.kind {
	case targetNone:
		return "none"
	case targetEnd:
		return "end"
	default:
		return fmt.Sprintf("at(%d)", t.rank)
	}
}

func (t Target) validate() error {
	if t.kind == targetAt && t.rank < 0 {
		return &InvalidTargetError{Target: t, Max: -1}
	}
	return nil
}
