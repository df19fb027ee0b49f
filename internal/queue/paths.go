package queue

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
)

const defaultMediaExtension = "mp3"

// Filename returns where the episode payload is stored under storageDir:
// <storageDir>/<id>.<ext>, with the extension taken from the media URL.
func (e Episode) Filename(storageDir string) string {
	storageDir = strings.TrimSpace(storageDir)
	if storageDir == "" || e.ID == 0 {
		return ""
	}
	name := strconv.FormatInt(e.ID, 10) + "." + mediaExtension(e.MediaURL)
	return filepath.Join(storageDir, name)
}

// IsDownloaded reports whether the payload exists with the expected size.
// An episode whose size is unknown never counts as downloaded.
func (e Episode) IsDownloaded(storageDir string) bool {
	if e.FileSize <= 0 {
		return false
	}
	target := e.Filename(storageDir)
	if target == "" {
		return false
	}
	info, err := os.Stat(target)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return info.Size() == e.FileSize
}

func mediaExtension(mediaURL string) string {
	mediaURL = strings.TrimSpace(mediaURL)
	if mediaURL == "" {
		return defaultMediaExtension
	}
	p := mediaURL
	if parsed, err := url.Parse(mediaURL); err == nil && parsed.Path != "" {
		p = parsed.Path
	}
	ext := strings.TrimPrefix(path.Ext(p), ".")
	if ext == "" || strings.ContainsAny(ext, `/\`) {
		return defaultMediaExtension
	}
	return strings.ToLower(ext)
}
