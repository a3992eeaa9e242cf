package e2e

import (
	"net/http"
	"os"
	"path/filepath"
	"testing"
)

func TestAudioServesFile(t *testing.T) {
	ta := setupApp(t)

	content := []byte("fake mp3 bytes")
	if err := os.WriteFile(filepath.Join(ta.audioDir, "doc_es.mp3"), content, 0o644); err != nil {
		t.Fatalf("failed to write audio file: %v", err)
	}

	resp, err := doRequest(ta.app, http.MethodGet, "/audio/doc_es.mp3", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	if ct := resp.Header.Get("Content-Type"); ct != "audio/mpeg" {
		t.Errorf("Content-Type = %q, want audio/mpeg", ct)
	}
	if body := readBody(t, resp); body != string(content) {
		t.Errorf("body = %q, want file content", body)
	}
}

func TestAudioNotFound(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/audio/missing.mp3", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}

func TestAudioRejectsTraversal(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/audio/..%2F..%2Fetc%2Fpasswd", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode == http.StatusOK {
		t.Fatalf("traversal path returned 200")
	}
}
