package queue_test

import (
	"os"
	"path/filepath"
	"testing"

	"podqueue/internal/queue"
)

func TestFilenameUsesMediaExtension(t *testing.T) {
	dir := t.TempDir()
	cases := []struct {
		url  string
		want string
	}{
		{"https://cdn.example.com/show/ep.M4A?sig=1", "7.m4a"},
		{"https://cdn.example.com/show/episode", "7.mp3"},
		{"", "7.mp3"},
	}
	for _, tc := range cases {
		ep := queue.Episode{ID: 7, MediaURL: tc.url}
		if got := ep.Filename(dir); got != filepath.Join(dir, tc.want) {
			t.Fatalf("Filename(%q) = %q, want %q", tc.url, got, tc.want)
		}
	}
	if got := (queue.Episode{MediaURL: "x.mp3"}).Filename(dir); got != "" {
		t.Fatalf("expected empty filename for unsaved episode, got %q", got)
	}
}

func TestIsDownloaded(t *testing.T) {
	dir := t.TempDir()
	ep := queue.Episode{ID: 5, MediaURL: "https://example.com/a.ogg", FileSize: 4}

	if ep.IsDownloaded(dir) {
		t.Fatal("expected missing file to be not downloaded")
	}

	if err := os.WriteFile(ep.Filename(dir), []byte("abc"), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	if ep.IsDownloaded(dir) {
		t.Fatal("expected partial file to be not downloaded")
	}

	if err := os.WriteFile(ep.Filename(dir), []byte("abcd"), 0o644); err != nil {
		t.Fatalf("write payload: %v", err)
	}
	if !ep.IsDownloaded(dir) {
		t.Fatal("expected complete file to be downloaded")
	}

	unknown := ep
	unknown.FileSize = 0
	if unknown.IsDownloaded(dir) {
		t.Fatal("expected unknown size to never count as downloaded")
	}
}
