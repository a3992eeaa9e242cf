package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

// readSecret reads a Docker secret from a file path specified by an env var
// with _FILE suffix. If FOO is already set directly, the file is skipped.
// If FOO_FILE is set, reads the file content and sets FOO.
func readSecret(envKey string) {
	if os.Getenv(envKey) != "" {
		return
	}
	fileKey := envKey + "_FILE"
	filePath := os.Getenv(fileKey)
	if filePath == "" {
		return
	}
	data, err := os.ReadFile(filePath)
	if err != nil {
		return
	}
	val := strings.TrimSpace(string(data))
	os.Setenv(envKey, val)
}

type Config struct {
	Server    ServerConfig
	Redis     RedisConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Groq      GroqConfig
	Gemini    GeminiConfig
	Speech    SpeechConfig
	Pipeline  PipelineConfig
	Worker    WorkerConfig
	R2        R2Config
	Zitadel   ZitadelConfig
	Gateway   GatewayConfig
}

type ServerConfig struct {
	Port      string
	Env       string
	LogLevel  string
	ApiDomain string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration int // hours
}

type RateLimitConfig struct {
	ProcessPerHour int
	JobsPerMin     int
}

type StorageConfig struct {
	UploadsDir string
	AudioDir   string
}

type GroqConfig struct {
	APIKey  string
	BaseURL string
	Model   string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type SpeechConfig struct {
	ServiceURL string
	Timeout    int // seconds
}

// PipelineConfig holds the tuning values of the processing pipeline
type PipelineConfig struct {
	MinEmbeddedChars   int     // below this, extraction falls back to OCR
	OCRDPI             int     // page rasterization resolution
	SummaryInputChars  int     // summarizer input cap
	SummaryMaxTokens   int
	SummaryMinTokens   int
	MinSilenceMS       int     // gap length that counts as silence
	SilenceThresholdDB float64 // amplitude below this is silence
	ChunkSize          int     // words per timestamp chunk
	ExcerptChars       int     // persisted result text cap
}

type WorkerConfig struct {
	Concurrency int
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	PublicURL       string
}

type ZitadelConfig struct {
	Domain   string
	ClientID string
	Issuer   string
}

type GatewayConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	// Read Docker Swarm secrets from _FILE env vars before Viper binds
	readSecret("REDIS_PASSWORD")
	readSecret("GROQ_API_KEY")
	readSecret("GEMINI_API_KEY")
	readSecret("R2_ACCOUNT_ID")
	readSecret("R2_ACCESS_KEY_ID")
	readSecret("R2_SECRET_ACCESS_KEY")
	readSecret("ZITADEL_CLIENT_ID")

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Environment variables
	viper.AutomaticEnv()

	// Bind environment variables with underscores to nested config keys
	_ = viper.BindEnv("server.port", "SERVER_PORT")
	_ = viper.BindEnv("server.env", "SERVER_ENV")
	_ = viper.BindEnv("server.log_level", "LOG_LEVEL")
	_ = viper.BindEnv("server.api_domain", "API_DOMAIN")
	_ = viper.BindEnv("redis.addr", "REDIS_ADDR")
	_ = viper.BindEnv("redis.password", "REDIS_PASSWORD")
	_ = viper.BindEnv("redis.db", "REDIS_DB")
	_ = viper.BindEnv("jwt.secret", "JWT_SECRET")
	_ = viper.BindEnv("jwt.expiration", "JWT_EXPIRATION")
	_ = viper.BindEnv("storage.uploads_dir", "UPLOADS_DIR")
	_ = viper.BindEnv("storage.audio_dir", "AUDIO_DIR")
	_ = viper.BindEnv("groq.api_key", "GROQ_API_KEY")
	_ = viper.BindEnv("groq.base_url", "GROQ_BASE_URL")
	_ = viper.BindEnv("groq.model", "GROQ_MODEL")
	_ = viper.BindEnv("gemini.api_key", "GEMINI_API_KEY")
	_ = viper.BindEnv("gemini.model", "GEMINI_MODEL")
	_ = viper.BindEnv("speech.service_url", "SPEECH_SERVICE_URL")
	_ = viper.BindEnv("speech.timeout", "SPEECH_SERVICE_TIMEOUT")
	_ = viper.BindEnv("worker.concurrency", "WORKER_CONCURRENCY")
	_ = viper.BindEnv("r2.account_id", "R2_ACCOUNT_ID")
	_ = viper.BindEnv("r2.access_key_id", "R2_ACCESS_KEY_ID")
	_ = viper.BindEnv("r2.secret_access_key", "R2_SECRET_ACCESS_KEY")
	_ = viper.BindEnv("r2.bucket_name", "R2_BUCKET_NAME")
	_ = viper.BindEnv("r2.public_url", "R2_PUBLIC_URL")
	_ = viper.BindEnv("zitadel.domain", "ZITADEL_DOMAIN")
	_ = viper.BindEnv("zitadel.client_id", "ZITADEL_CLIENT_ID")
	_ = viper.BindEnv("zitadel.issuer", "ZITADEL_ISSUER")
	_ = viper.BindEnv("gateway.enabled", "GATEWAY_ENABLED")

	// Defaults
	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")
	viper.SetDefault("server.log_level", "info")
	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("jwt.secret", "change-me-in-production")
	viper.SetDefault("jwt.expiration", 24)
	viper.SetDefault("ratelimit.process_per_hour", 20)
	viper.SetDefault("ratelimit.jobs_per_min", 120)
	viper.SetDefault("storage.uploads_dir", "uploads")
	viper.SetDefault("storage.audio_dir", "audio_outputs")

	// Groq defaults (summarization)
	viper.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	viper.SetDefault("groq.model", "llama-3.3-70b-versatile")

	// Gemini defaults (translation)
	viper.SetDefault("gemini.model", "gemini-2.5-flash")

	// Speech service defaults
	viper.SetDefault("speech.service_url", "http://localhost:8084")
	viper.SetDefault("speech.timeout", 120)

	// Pipeline defaults
	viper.SetDefault("pipeline.min_embedded_chars", 100)
	viper.SetDefault("pipeline.ocr_dpi", 300)
	viper.SetDefault("pipeline.summary_input_chars", 10000)
	viper.SetDefault("pipeline.summary_max_tokens", 250)
	viper.SetDefault("pipeline.summary_min_tokens", 50)
	viper.SetDefault("pipeline.min_silence_ms", 500)
	viper.SetDefault("pipeline.silence_threshold_db", -40.0)
	viper.SetDefault("pipeline.chunk_size", 5)
	viper.SetDefault("pipeline.excerpt_chars", 1000)

	// Worker defaults
	viper.SetDefault("worker.concurrency", 4)

	// Gateway defaults
	viper.SetDefault("gateway.enabled", false)

	// Try to read config file (optional)
	_ = viper.ReadInConfig()

	cfg := &Config{
		Server: ServerConfig{
			Port:      viper.GetString("server.port"),
			Env:       viper.GetString("server.env"),
			LogLevel:  viper.GetString("server.log_level"),
			ApiDomain: viper.GetString("server.api_domain"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		JWT: JWTConfig{
			Secret:     viper.GetString("jwt.secret"),
			Expiration: viper.GetInt("jwt.expiration"),
		},
		RateLimit: RateLimitConfig{
			ProcessPerHour: viper.GetInt("ratelimit.process_per_hour"),
			JobsPerMin:     viper.GetInt("ratelimit.jobs_per_min"),
		},
		Storage: StorageConfig{
			UploadsDir: viper.GetString("storage.uploads_dir"),
			AudioDir:   viper.GetString("storage.audio_dir"),
		},
		Groq: GroqConfig{
			APIKey:  viper.GetString("groq.api_key"),
			BaseURL: viper.GetString("groq.base_url"),
			Model:   viper.GetString("groq.model"),
		},
		Gemini: GeminiConfig{
			APIKey: viper.GetString("gemini.api_key"),
			Model:  viper.GetString("gemini.model"),
		},
		Speech: SpeechConfig{
			ServiceURL: viper.GetString("speech.service_url"),
			Timeout:    viper.GetInt("speech.timeout"),
		},
		Pipeline: PipelineConfig{
			MinEmbeddedChars:   viper.GetInt("pipeline.min_embedded_chars"),
			OCRDPI:             viper.GetInt("pipeline.ocr_dpi"),
			SummaryInputChars:  viper.GetInt("pipeline.summary_input_chars"),
			SummaryMaxTokens:   viper.GetInt("pipeline.summary_max_tokens"),
			SummaryMinTokens:   viper.GetInt("pipeline.summary_min_tokens"),
			MinSilenceMS:       viper.GetInt("pipeline.min_silence_ms"),
			SilenceThresholdDB: viper.GetFloat64("pipeline.silence_threshold_db"),
			ChunkSize:          viper.GetInt("pipeline.chunk_size"),
			ExcerptChars:       viper.GetInt("pipeline.excerpt_chars"),
		},
		Worker: WorkerConfig{
			Concurrency: viper.GetInt("worker.concurrency"),
		},
		R2: R2Config{
			AccountID:       viper.GetString("r2.account_id"),
			AccessKeyID:     viper.GetString("r2.access_key_id"),
			SecretAccessKey: viper.GetString("r2.secret_access_key"),
			BucketName:      viper.GetString("r2.bucket_name"),
			PublicURL:       viper.GetString("r2.public_url"),
		},
		Zitadel: ZitadelConfig{
			Domain:   viper.GetString("zitadel.domain"),
			ClientID: viper.GetString("zitadel.client_id"),
			Issuer:   viper.GetString("zitadel.issuer"),
		},
		Gateway: GatewayConfig{
			Enabled: viper.GetBool("gateway.enabled"),
		},
	}

	return cfg, nil
}
