package api_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"testing"
	"time"

	"podqueue/internal/api"
	"podqueue/internal/queue"
)

func TestFromEpisode(t *testing.T) {
	dir := t.TempDir()
	ep := &queue.Episode{
		ID:                3,
		GUID:              "guid-3",
		SubscriptionTitle: "Go Time",
		Title:             "Errors",
		QueuePosition:     queue.PositionAt(1),
		MediaURL:          "https://example.com/3.mp3",
		PubDate:           time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC),
		FileSize:          2,
	}
	if err := os.WriteFile(ep.Filename(dir), []byte("ok"), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}

	dto := api.FromEpisode(ep, dir)
	if dto.PubDate != "2024-05-06T07:08:09.000Z" {
		t.Fatalf("unexpected pub date %q", dto.PubDate)
	}
	if !dto.Downloaded {
		t.Fatal("expected downloaded flag")
	}
	payload, err := json.Marshal(dto)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded["queuePosition"] != float64(1) {
		t.Fatalf("expected queuePosition 1, got %v", decoded["queuePosition"])
	}
	if decoded["subscriptionTitle"] != "Go Time" {
		t.Fatalf("unexpected subscriptionTitle %v", decoded["subscriptionTitle"])
	}

	if got := api.FromEpisodes(nil, ""); got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", got)
	}
}

func TestPositionRequestTarget(t *testing.T) {
	cases := []struct {
		body string
		want string
	}{
		{`{"position": null}`, "none"},
		{`{"position": "end"}`, "end"},
		{`{"position": "none"}`, "none"},
		{`{"position": 4}`, "at(4)"},
	}
	for _, tc := range cases {
		var req api.PositionRequest
		if err := json.Unmarshal([]byte(tc.body), &req); err != nil {
			t.Fatalf("decode %s: %v", tc.body, err)
		}
		target, err := req.Target()
		if err != nil {
			t.Fatalf("Target(%s) failed: %v", tc.body, err)
		}
		if target.String() != tc.want {
			t.Fatalf("Target(%s) = %s, want %s", tc.body, target, tc.want)
		}
	}

	for _, body := range []string{`{}`, `{"position": 1.5}`, `{"position": -2}`, `{"position": true}`} {
		var req api.PositionRequest
		if err := json.Unmarshal([]byte(body), &req); err != nil {
			t.Fatalf("decode %s: %v", body, err)
		}
		if _, err := req.Target(); err == nil {
			t.Fatalf("expected %s to be rejected", body)
		}
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&queue.NotFoundError{ID: 1}, http.StatusNotFound},
		{&queue.InvalidTargetError{Target: queue.TargetAt(-1), Max: -1}, http.StatusBadRequest},
		{&queue.StoreError{Op: "commit", Err: errors.New("disk I/O error")}, http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := api.StatusFor(tc.err); got != tc.want {
			t.Fatalf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
