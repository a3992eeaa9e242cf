package e2e

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/polyvox/api/internal/model"
)

func seedJob(t *testing.T, ta *testApp, id, userID string, status model.JobStatus) *model.Job {
	t.Helper()
	job := &model.Job{
		ID:             id,
		UserID:         userID,
		Status:         status,
		SourceFilename: "doc.pdf",
		TargetLang:     "es",
		CreatedAt:      time.Now(),
	}
	if err := ta.store.Create(context.Background(), job); err != nil {
		t.Fatalf("failed to seed job: %v", err)
	}
	return job
}

func TestJobsListOwnedOnly(t *testing.T) {
	ta := setupApp(t)
	seedJob(t, ta, "job-mine-1", testUserID, model.JobStatusSuccess)
	seedJob(t, ta, "job-mine-2", testUserID, model.JobStatusPending)
	seedJob(t, ta, "job-other", "someone-else", model.JobStatusSuccess)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/jobs", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	body := readBody(t, resp)
	if !strings.Contains(body, `"job-mine-1"`) {
		t.Errorf("list missing own job: %s", body)
	}
	if strings.Contains(body, "job-other") {
		t.Errorf("list leaked another user's job: %s", body)
	}
}

func TestJobsGet(t *testing.T) {
	ta := setupApp(t)
	seedJob(t, ta, "job-1", testUserID, model.JobStatusRunning)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/jobs/job-1", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	if body["status"] != "RUNNING" {
		t.Errorf("status = %v, want RUNNING", body["status"])
	}
}

func TestJobsGetNotFound(t *testing.T) {
	ta := setupApp(t)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/jobs/missing", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}

func TestJobsGetForbiddenForOtherUser(t *testing.T) {
	ta := setupApp(t)
	seedJob(t, ta, "job-1", "someone-else", model.JobStatusSuccess)

	resp, err := doAuthRequest(t, ta.app, http.MethodGet, "/api/jobs/job-1", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusForbidden)
}

func TestJobsDeleteRemovesAudio(t *testing.T) {
	ta := setupApp(t)
	job := seedJob(t, ta, "job-1", testUserID, model.JobStatusSuccess)

	audioName := "doc_es.mp3"
	job.AudioFilename = &audioName
	if err := ta.store.Update(context.Background(), job); err != nil {
		t.Fatalf("failed to update job: %v", err)
	}
	audioPath := filepath.Join(ta.audioDir, audioName)
	if err := os.WriteFile(audioPath, []byte("mp3 bytes"), 0o644); err != nil {
		t.Fatalf("failed to write audio file: %v", err)
	}

	resp, err := doAuthRequest(t, ta.app, http.MethodDelete, "/api/jobs/job-1", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNoContent)

	if _, err := os.Stat(audioPath); !os.IsNotExist(err) {
		t.Error("audio file survived job deletion")
	}

	resp, err = doAuthRequest(t, ta.app, http.MethodGet, "/api/jobs/job-1", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusNotFound)
}
