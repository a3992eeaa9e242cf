package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/polyvox/api/internal/auth"
	"github.com/polyvox/api/internal/client"
	"github.com/polyvox/api/internal/config"
	"github.com/polyvox/api/internal/handler"
	"github.com/polyvox/api/internal/middleware"
	"github.com/polyvox/api/internal/service"
	"github.com/polyvox/api/internal/store"
	ws "github.com/polyvox/api/internal/websocket"
	"github.com/polyvox/api/internal/worker"
	"github.com/polyvox/api/pkg/executor"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx := context.Background()
	redisUp := true
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Warning: Redis not available: %v", err)
		redisUp = false
	}

	// Initialize Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	// Initialize validator
	validate := validator.New()

	// Initialize WebSocket hub
	hub := ws.NewHub()
	go hub.Run()

	// Initialize engine clients
	exec := executor.New()
	documentClient := client.NewPopplerClient(exec)
	if !documentClient.IsConfigured() {
		log.Println("Warning: poppler-utils not found, document processing will fail")
	}
	ocrClient := client.NewTesseractClient(exec)
	if !ocrClient.Available() {
		log.Println("Warning: tesseract not found, scanned documents cannot be processed")
	}
	silenceClient := client.NewFFmpegClient(exec)
	if !silenceClient.IsConfigured() {
		log.Println("Warning: ffmpeg not found, timestamps will be skipped")
	}

	groqClient := client.NewGroqClient(&cfg.Groq)
	geminiClient := client.NewGeminiClient(&cfg.Gemini)
	speechClient := client.NewSpeechClient(&cfg.Speech)

	// Initialize R2 client (optional - continues if not configured)
	var r2Client *client.R2Client
	if cfg.R2.AccessKeyID != "" && cfg.R2.SecretAccessKey != "" {
		var err error
		r2Client, err = client.NewR2Client(&cfg.R2)
		if err != nil {
			log.Printf("Warning: R2 client not initialized: %v", err)
		}
	} else {
		log.Println("Info: R2 storage not configured, audio is served locally only")
	}

	// Initialize JWKS verifier (optional - falls back to legacy JWT)
	var jwksVerifier *auth.JWKSVerifier
	if cfg.Zitadel.Issuer != "" {
		var err error
		jwksVerifier, err = auth.NewJWKSVerifier(&cfg.Zitadel)
		if err != nil {
			log.Printf("Warning: JWKS verifier not initialized: %v", err)
		} else {
			defer jwksVerifier.Close()
		}
	}

	// Initialize job store
	var jobStore store.JobStore
	if redisUp {
		jobStore = store.NewRedisStore(redisClient)
	} else {
		log.Println("Warning: using in-memory job store, records will not survive restarts")
		jobStore = store.NewMemoryStore()
	}

	// r2Client is a typed nil unless configured; keep the interface nil then
	var storageClient client.StorageClient
	if r2Client != nil {
		storageClient = r2Client
	}

	// Initialize services
	jobService := service.NewJobService(jobStore, asynqClient, storageClient, cfg.Storage.AudioDir)
	extractService := service.NewExtractService(documentClient, ocrClient, &cfg.Pipeline)

	// Initialize handlers
	processHandler := handler.NewProcessHandler(jobService, validate, cfg.Storage.UploadsDir)
	jobsHandler := handler.NewJobsHandler(jobService)
	audioHandler := handler.NewAudioHandler(cfg.Storage.AudioDir)

	// Initialize auth handler for ForwardAuth verification
	var tokenVerifier auth.TokenVerifier
	if jwksVerifier != nil {
		tokenVerifier = jwksVerifier
	}
	authHandler := handler.NewAuthHandler(tokenVerifier, cfg.JWT.Secret)

	// Initialize middleware (with fallback support)
	var apiAuthMiddleware fiber.Handler
	if cfg.Gateway.Enabled {
		// Behind the edge proxy: auth is handled by ForwardAuth, read X-User-* headers
		log.Println("Info: Gateway mode enabled, using header-based auth")
		apiAuthMiddleware = middleware.GatewayAuthMiddleware()
	} else {
		var authMiddleware *middleware.AuthMiddleware
		if jwksVerifier != nil && cfg.JWT.Secret != "" {
			authMiddleware = middleware.NewAuthMiddlewareWithFallback(jwksVerifier, cfg.JWT.Secret)
		} else if jwksVerifier != nil {
			authMiddleware = middleware.NewAuthMiddleware(jwksVerifier)
		} else {
			authMiddleware = middleware.NewLegacyAuthMiddleware(cfg.JWT.Secret)
		}
		apiAuthMiddleware = authMiddleware.Authenticate()
	}
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		BodyLimit:    50 * 1024 * 1024, // 50MB
	})

	// Global middleware
	app.Use(recover.New())
	isDebug := strings.EqualFold(cfg.Server.LogLevel, "debug")
	logFormat := "[${time}] ${status} - ${latency} ${method} ${path}\n"
	if isDebug {
		logFormat = "[${time}] ${status} - ${latency} ${method} ${path} ${queryParams} ${body} ${reqHeaders}\n"
		log.Println("Debug logging enabled")
	}
	app.Use(logger.New(logger.Config{
		Format: logFormat,
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Base URL - timestamp
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"timestamp": time.Now().Unix(),
		})
	})

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
			"services": fiber.Map{
				"document": documentClient.IsConfigured(),
				"ocr":      ocrClient.Available(),
				"groq":     groqClient.IsConfigured(),
				"gemini":   geminiClient.IsConfigured(),
				"speech":   speechClient.IsConfigured(),
				"ffmpeg":   silenceClient.IsConfigured(),
				"r2":       r2Client != nil,
				"redis":    redisUp,
				"auth":     jwksVerifier != nil || cfg.JWT.Secret != "",
			},
		})
	})

	// ForwardAuth verification endpoint (internal, called by the edge proxy)
	app.Get("/auth/verify", authHandler.Verify)

	// API routes
	api := app.Group("/api", apiAuthMiddleware)

	api.Post("/process", rateLimiter.ProcessLimit(cfg.RateLimit.ProcessPerHour), processHandler.Process)

	jobs := api.Group("/jobs", rateLimiter.JobsLimit(cfg.RateLimit.JobsPerMin))
	jobs.Get("/", jobsHandler.List)
	jobs.Get("/:jobId", jobsHandler.Get)
	jobs.Delete("/:jobId", jobsHandler.Delete)

	// Audio downloads are public; filenames carry enough entropy via job scoping
	app.Get("/audio/:filename", audioHandler.Serve)

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		jobID := c.Params("jobId")
		hub.HandleConnection(c, jobID)
	}))

	// Start Asynq worker server
	processWorker := worker.NewProcessWorker(
		jobService,
		extractService,
		groqClient,
		geminiClient,
		speechClient,
		silenceClient,
		storageClient,
		hub,
		&cfg.Pipeline,
		cfg.Storage.AudioDir,
	)
	go startWorkerServer(cfg, processWorker)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
	}()

	// Start server
	addr := ":" + cfg.Server.Port
	log.Printf("Server starting on %s", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func startWorkerServer(cfg *config.Config, processWorker *worker.ProcessWorker) {
	asynqLogLevel := asynq.InfoLevel
	if strings.EqualFold(cfg.Server.LogLevel, "debug") {
		asynqLogLevel = asynq.DebugLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "warn") {
		asynqLogLevel = asynq.WarnLevel
	} else if strings.EqualFold(cfg.Server.LogLevel, "error") {
		asynqLogLevel = asynq.ErrorLevel
	}

	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Concurrency: cfg.Worker.Concurrency,
			Queues: map[string]int{
				"process": 10,
			},
			LogLevel: asynqLogLevel,
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(service.TaskTypeProcess, processWorker.ProcessTask)

	if err := srv.Run(mux); err != nil {
		log.Printf("Asynq worker error: %v", err)
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "SERVICE_ERROR",
			"message": message,
		},
	})
}
