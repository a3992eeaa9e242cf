package e2e

import (
	"net/http"
	"testing"
)

func TestRootReturnsTimestamp(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	if _, ok := body["timestamp"]; !ok {
		t.Error("response missing timestamp field")
	}
}

func TestHealthCheck(t *testing.T) {
	ta := setupApp(t)

	resp, err := doRequest(ta.app, http.MethodGet, "/health", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)

	body := parseJSON(t, resp)
	if body["status"] != "ok" {
		t.Errorf("status = %v, want ok", body["status"])
	}
	if _, ok := body["services"].(map[string]interface{}); !ok {
		t.Error("response missing services map")
	}
}

func TestAuthVerify(t *testing.T) {
	ta := setupApp(t)

	// no token
	resp, err := doRequest(ta.app, http.MethodGet, "/auth/verify", "", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusUnauthorized)

	// valid token returns identity headers for the gateway
	resp, err = doAuthRequest(t, ta.app, http.MethodGet, "/auth/verify", "")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	assertStatus(t, resp, http.StatusOK)
	if got := resp.Header.Get("X-User-Id"); got != testUserID {
		t.Errorf("X-User-Id = %q, want %q", got, testUserID)
	}
}
