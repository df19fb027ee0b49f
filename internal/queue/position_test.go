package queue_test

import (
	"encoding/json"
	"errors"
	"testing"

	"podqueue/internal/queue"
)

func TestParseTarget(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"none", "none"},
		{" NONE ", "none"},
		{"end", "end"},
		{"End", "end"},
		{"0", "at(0)"},
		{"12", "at(12)"},
	}
	for _, tc := range cases {
		got, err := queue.ParseTarget(tc.in)
		if err != nil {
			t.Fatalf("ParseTarget(%q) failed: %v", tc.in, err)
		}
		if got.String() != tc.want {
			t.Fatalf("ParseTarget(%q) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestParseTargetRejectsGarbageAndNegative(t *testing.T) {
	for _, in := range []string{"soon", "", "   ", "null", "last"} {
		if _, err := queue.ParseTarget(in); err == nil {
			t.Fatalf("expected error for target %q", in)
		}
	}
	_, err := queue.ParseTarget("-1")
	var invalid *queue.InvalidTargetError
	if !errors.As(err, &invalid) {
		t.Fatalf("expected InvalidTargetError, got %v", err)
	}
	if queue.KindOf(err) != "validation" {
		t.Fatalf("expected validation kind, got %q", queue.KindOf(err))
	}
}

func TestPositionJSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		A queue.Position `json:"a"`
		B queue.Position `json:"b"`
	}{A: queue.NoPosition, B: queue.PositionAt(3)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(payload) != `{"a":null,"b":3}` {
		t.Fatalf("unexpected json %s", payload)
	}

	var decoded struct {
		A queue.Position `json:"a"`
		B queue.Position `json:"b"`
	}
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.A.Queued() {
		t.Fatal("expected a to stay unqueued")
	}
	if rank, ok := decoded.B.Rank(); !ok || rank != 3 {
		t.Fatalf("expected b=3, got %s", decoded.B)
	}
}

func TestPositionScan(t *testing.T) {
	var p queue.Position
	if err := p.Scan(nil); err != nil || p.Queued() {
		t.Fatalf("Scan(nil) = %s, %v", p, err)
	}
	if err := p.Scan(int64(4)); err != nil {
		t.Fatalf("Scan(int64) failed: %v", err)
	}
	if p.String() != "4" {
		t.Fatalf("expected 4, got %s", p)
	}
	if err := p.Scan([]byte("7")); err != nil || p.String() != "7" {
		t.Fatalf("Scan([]byte) = %s, %v", p, err)
	}
	if err := p.Scan(3.5); err == nil {
		t.Fatal("expected unsupported type error")
	}
}
