package e2e

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/hibiken/asynq"

	"github.com/polyvox/api/internal/auth"
	"github.com/polyvox/api/internal/handler"
	"github.com/polyvox/api/internal/middleware"
	"github.com/polyvox/api/internal/service"
	"github.com/polyvox/api/internal/store"
)

const testJWTSecret = "test-secret-for-e2e"

const testUserID = "test-user-123"

// fakeEnqueuer records tasks instead of pushing them to Redis
type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{ID: "task-1", Queue: "process"}, nil
}

// testApp holds all components needed for testing
type testApp struct {
	app      *fiber.App
	store    *store.MemoryStore
	enqueuer *fakeEnqueuer
	audioDir string
}

// setupApp creates a Fiber app wired like main.go but with an in-memory job
// store and a recording enqueuer, so tests run without Redis.
func setupApp(t *testing.T) *testApp {
	t.Helper()

	validate := validator.New()
	memStore := store.NewMemoryStore()
	enqueuer := &fakeEnqueuer{}

	uploadsDir := t.TempDir()
	audioDir := t.TempDir()

	jobService := service.NewJobService(memStore, enqueuer, nil, audioDir)

	processHandler := handler.NewProcessHandler(jobService, validate, uploadsDir)
	jobsHandler := handler.NewJobsHandler(jobService)
	audioHandler := handler.NewAudioHandler(audioDir)
	authHandler := handler.NewAuthHandler(nil, testJWTSecret)

	// Auth middleware, legacy HMAC only. Rate limiting needs live Redis and
	// is left out of the handler tests.
	authMiddleware := middleware.NewLegacyAuthMiddleware(testJWTSecret)

	app := fiber.New(fiber.Config{
		BodyLimit: 50 * 1024 * 1024,
	})

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"timestamp": 1234567890})
	})
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"document": false,
				"ocr":      false,
				"gemini":   false,
				"speech":   false,
				"auth":     true,
			},
		})
	})
	app.Get("/auth/verify", authHandler.Verify)

	api := app.Group("/api", authMiddleware.Authenticate())
	api.Post("/process", processHandler.Process)

	jobs := api.Group("/jobs")
	jobs.Get("/", jobsHandler.List)
	jobs.Get("/:jobId", jobsHandler.Get)
	jobs.Delete("/:jobId", jobsHandler.Delete)

	app.Get("/audio/:filename", audioHandler.Serve)

	return &testApp{
		app:      app,
		store:    memStore,
		enqueuer: enqueuer,
		audioDir: audioDir,
	}
}

// generateToken creates a legacy HMAC JWT token for test requests.
func generateToken(t *testing.T, userID string) string {
	t.Helper()
	claims := auth.LegacyClaims{
		UserID: userID,
		Email:  "test@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer: "polyvox-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(testJWTSecret))
	if err != nil {
		t.Fatalf("failed to generate test token: %v", err)
	}
	return signed
}

// doRequest is a helper to perform HTTP requests against the test app.
func doRequest(app *fiber.App, method, path string, body string, headers map[string]string) (*http.Response, error) {
	var bodyReader io.Reader
	if body != "" {
		bodyReader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, path, bodyReader)
	if err != nil {
		return nil, err
	}

	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return app.Test(req, -1)
}

// doAuthRequest performs an authenticated request as the default test user.
func doAuthRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, error) {
	t.Helper()
	token := generateToken(t, testUserID)
	return doRequest(app, method, path, body, map[string]string{
		"Authorization": "Bearer " + token,
	})
}

// uploadPDF performs an authenticated multipart upload to /api/process.
func uploadPDF(t *testing.T, app *fiber.App, filename, contentType string, fields map[string]string) (*http.Response, error) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("failed to write form field: %v", err)
		}
	}

	hdr := textproto.MIMEHeader{}
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", contentType)
	part, err := w.CreatePart(hdr)
	if err != nil {
		t.Fatalf("failed to create form file: %v", err)
	}
	if _, err := part.Write([]byte("%PDF-1.4 fake content")); err != nil {
		t.Fatalf("failed to write file body: %v", err)
	}
	w.Close()

	req, err := http.NewRequest(http.MethodPost, "/api/process", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+generateToken(t, testUserID))

	return app.Test(req, -1)
}

// readBody reads and returns the response body as a string.
func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}
	return string(b)
}

// parseJSON parses response body into a map.
func parseJSON(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	body := readBody(t, resp)
	var result map[string]interface{}
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		t.Fatalf("failed to parse JSON: %v\nbody: %s", err, body)
	}
	return result
}

// assertStatus checks the HTTP status code.
func assertStatus(t *testing.T, resp *http.Response, expected int) {
	t.Helper()
	if resp.StatusCode != expected {
		t.Errorf("expected status %d, got %d", expected, resp.StatusCode)
	}
}
