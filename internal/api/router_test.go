package api_test

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"

	"podqueue/internal/api"
	"podqueue/internal/metrics"
	"podqueue/internal/queue"
	"podqueue/internal/testsupport"
)

type apiFixture struct {
	server      *httptest.Server
	store       *queue.Store
	ids         map[string]int64
	broadcaster *queue.Broadcaster
}

func newAPIFixture(t *testing.T, titles ...string) *apiFixture {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	broadcaster := queue.NewBroadcaster()
	t.Cleanup(broadcaster.Close)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	orderer := testsupport.NewOrderer(t, cfg, store, queue.WithNotifier(broadcaster), queue.WithObserver(m))
	ids := testsupport.SeedQueue(t, store, orderer, titles...)

	router := api.NewRouter(api.RouterOptions{
		Service:  api.NewQueueService(store, orderer, cfg.Paths.StorageDir),
		Changes:  broadcaster,
		Gatherer: reg,
	})
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	return &apiFixture{server: server, store: store, ids: ids, broadcaster: broadcaster}
}

func (f *apiFixture) do(t *testing.T, method, path, body string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, f.server.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.server.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func (f *apiFixture) queueTitles(t *testing.T) []string {
	t.Helper()

	resp, data := f.do(t, http.MethodGet, "/podcasts/queue", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /podcasts/queue status %d: %s", resp.StatusCode, data)
	}
	var payload api.EpisodeListResponse
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("decode queue: %v", err)
	}
	titles := make([]string, 0, len(payload.Episodes))
	for _, ep := range payload.Episodes {
		titles = append(titles, ep.Title)
	}
	return titles
}

func episodePath(id int64, suffix string) string {
	return "/podcasts/" + strconv.FormatInt(id, 10) + suffix
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)
	resp, body := f.do(t, http.MethodGet, "/health", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"ok"`) {
		t.Fatalf("unexpected body %s", body)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Fatal("expected request id header")
	}
}

func TestPutPositionMovesEpisode(t *testing.T) {
	f := newAPIFixture(t, "A", "B", "C")

	resp, body := f.do(t, http.MethodPut, episodePath(f.ids["C"], "/position"), `{"position": 0}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, body)
	}
	var payload api.EpisodeResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rank, ok := payload.Episode.QueuePosition.Rank(); !ok || rank != 0 {
		t.Fatalf("expected C at 0, got %s", payload.Episode.QueuePosition)
	}
	if diff := cmp.Diff([]string{"C", "A", "B"}, f.queueTitles(t)); diff != "" {
		t.Fatalf("unexpected queue (-want +got):\n%s", diff)
	}
}

func TestPutPositionKeywords(t *testing.T) {
	f := newAPIFixture(t, "A", "B", "C")

	if resp, body := f.do(t, http.MethodPut, episodePath(f.ids["A"], "/position"), `{"position": "end"}`); resp.StatusCode != http.StatusOK {
		t.Fatalf("end: status %d: %s", resp.StatusCode, body)
	}
	if diff := cmp.Diff([]string{"B", "C", "A"}, f.queueTitles(t)); diff != "" {
		t.Fatalf("after end (-want +got):\n%s", diff)
	}

	resp, body := f.do(t, http.MethodPut, episodePath(f.ids["C"], "/position"), `{"position": null}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("null: status %d: %s", resp.StatusCode, body)
	}
	if !strings.Contains(string(body), `"queuePosition":null`) {
		t.Fatalf("expected null position in %s", body)
	}
	if diff := cmp.Diff([]string{"B", "A"}, f.queueTitles(t)); diff != "" {
		t.Fatalf("after null (-want +got):\n%s", diff)
	}
}

func TestPutPositionRejectsBlankKeyword(t *testing.T) {
	f := newAPIFixture(t, "A", "B", "C")

	for _, body := range []string{`{"position": ""}`, `{"position": "  "}`, `{"position": "null"}`} {
		resp, data := f.do(t, http.MethodPut, episodePath(f.ids["B"], "/position"), body)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d: %s", body, resp.StatusCode, data)
		}
		var payload api.ErrorResponse
		if err := json.Unmarshal(data, &payload); err != nil {
			t.Fatalf("%s: decode error body: %v", body, err)
		}
		if payload.Kind != "validation" {
			t.Fatalf("%s: expected validation kind, got %q", body, payload.Kind)
		}
	}
	if diff := cmp.Diff([]string{"A", "B", "C"}, f.queueTitles(t)); diff != "" {
		t.Fatalf("queue changed after rejected requests (-want +got):\n%s", diff)
	}
}

func TestEnqueueAndDequeue(t *testing.T) {
	f := newAPIFixture(t, "A", "B")
	extra := testsupport.NewEpisode(t, f.store, "X")

	if resp, body := f.do(t, http.MethodPost, episodePath(extra.ID, "/queue"), ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("enqueue status %d: %s", resp.StatusCode, body)
	}
	if diff := cmp.Diff([]string{"A", "B", "X"}, f.queueTitles(t)); diff != "" {
		t.Fatalf("after enqueue (-want +got):\n%s", diff)
	}
	if resp, body := f.do(t, http.MethodDelete, episodePath(f.ids["A"], "/queue"), ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("dequeue status %d: %s", resp.StatusCode, body)
	}
	if diff := cmp.Diff([]string{"B", "X"}, f.queueTitles(t)); diff != "" {
		t.Fatalf("after dequeue (-want +got):\n%s", diff)
	}
}

func TestErrorStatuses(t *testing.T) {
	f := newAPIFixture(t, "A")

	cases := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		kind   string
	}{
		{"unknown episode", http.MethodGet, "/podcasts/999", "", http.StatusNotFound, "not_found"},
		{"unknown episode move", http.MethodPut, "/podcasts/999/position", `{"position": 0}`, http.StatusNotFound, "not_found"},
		{"negative rank", http.MethodPut, episodePath(f.ids["A"], "/position"), `{"position": -1}`, http.StatusBadRequest, "validation"},
		{"missing position", http.MethodPut, episodePath(f.ids["A"], "/position"), `{}`, http.StatusBadRequest, "validation"},
		{"bad keyword", http.MethodPut, episodePath(f.ids["A"], "/position"), `{"position": "soon"}`, http.StatusBadRequest, "validation"},
		{"bad json", http.MethodPut, episodePath(f.ids["A"], "/position"), `{`, http.StatusBadRequest, "validation"},
		{"bad id", http.MethodGet, "/podcasts/abc", "", http.StatusBadRequest, "validation"},
	}
	for _, tc := range cases {
		resp, body := f.do(t, tc.method, tc.path, tc.body)
		if resp.StatusCode != tc.status {
			t.Fatalf("%s: expected %d, got %d: %s", tc.name, tc.status, resp.StatusCode, body)
		}
		var payload api.ErrorResponse
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("%s: decode error body: %v", tc.name, err)
		}
		if payload.Kind != tc.kind {
			t.Fatalf("%s: expected kind %q, got %q", tc.name, tc.kind, payload.Kind)
		}
	}
}

func TestListAndDescribe(t *testing.T) {
	f := newAPIFixture(t, "A")
	testsupport.NewEpisode(t, f.store, "unqueued")

	resp, body := f.do(t, http.MethodGet, "/podcasts", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("list status %d", resp.StatusCode)
	}
	var list api.EpisodeListResponse
	if err := json.Unmarshal(body, &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list.Episodes) != 2 {
		t.Fatalf("expected 2 episodes, got %d", len(list.Episodes))
	}

	resp, body = f.do(t, http.MethodGet, episodePath(f.ids["A"], ""), "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("describe status %d: %s", resp.StatusCode, body)
	}
	var one api.EpisodeResponse
	if err := json.Unmarshal(body, &one); err != nil {
		t.Fatalf("decode episode: %v", err)
	}
	if one.Episode.Title != "A" || one.Episode.Downloaded {
		t.Fatalf("unexpected episode %#v", one.Episode)
	}
}

func TestCheckAndRepair(t *testing.T) {
	f := newAPIFixture(t, "A", "B")

	resp, body := f.do(t, http.MethodGet, "/podcasts/queue/check", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("check status %d", resp.StatusCode)
	}
	var report api.QueueCheckResponse
	if err := json.Unmarshal(body, &report); err != nil {
		t.Fatalf("decode check: %v", err)
	}
	if !report.OK || report.Length != 2 {
		t.Fatalf("unexpected report %#v", report)
	}

	resp, body = f.do(t, http.MethodPost, "/podcasts/queue/repair", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("repair status %d", resp.StatusCode)
	}
	var repaired api.QueueRepairResponse
	if err := json.Unmarshal(body, &repaired); err != nil {
		t.Fatalf("decode repair: %v", err)
	}
	if repaired.Changed != 0 {
		t.Fatalf("expected no changes on a dense queue, got %d", repaired.Changed)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	f := newAPIFixture(t, "A", "B")

	resp, body := f.do(t, http.MethodGet, "/metrics", "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics status %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `podqueue_queue_mutations_total{kind="insert"} 2`) {
		t.Fatalf("expected insert counter in scrape:\n%s", body)
	}
}

func TestChangeStream(t *testing.T) {
	f := newAPIFixture(t, "A", "B")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.server.URL+"/podcasts/changes", nil)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := f.server.Client().Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	if r, body := f.do(t, http.MethodPut, episodePath(f.ids["B"], "/position"), `{"position": 0}`); r.StatusCode != http.StatusOK {
		t.Fatalf("move status %d: %s", r.StatusCode, body)
	}

	var got []string
	scanner := bufio.NewScanner(resp.Body)
	for len(got) < 2 && scanner.Scan() {
		if data, ok := strings.CutPrefix(scanner.Text(), "data: "); ok {
			got = append(got, data)
		}
	}
	want := []string{"podcasts/" + strconv.FormatInt(f.ids["B"], 10), "podcasts/queue"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("unexpected change events (-want +got):\n%s", diff)
	}
}
