package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/docker/go-units"
)

const (
	defaultMaxUploadSize = 10 << 20
	defaultLLMTimeout    = 120 * time.Second
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	AppID           string
	CORSAllowOrigin []string
	MaxUploadSize   int64
	LogLevel        string

	ObjectStoreType string
	LocalStoreDir   string
	AWSRegion       string
	S3Bucket        string
	S3Prefix        string
	SSEKMSKeyID     string

	RecordStoreType string
	DatabaseURL     string
	MongoURI        string
	MongoDatabase   string
	MongoCollection string

	OCRProvider           string
	GoogleAPIKey          string
	GoogleCredentialsJSON string
	GoogleCredentialsFile string

	LLMProvider  string
	LLMModel     string
	GeminiAPIKey string
	OpenAIAPIKey string
	LLMTimeout   time.Duration

	AuthRequired bool
	JWTSecret    string
	JWTIssuer    string

	RateLimitRPS         float64
	RateLimitBurst       int
	UploadRateLimitRPS   float64
	UploadRateLimitBurst int

	BreakerEnabled bool
}

// Load reads configuration from environment variables, seeded from local .env
// files when present, and validates it. Every problem found is reported at once.
func Load() (Config, error) {
	loadEnvFiles(".env", "cmd/.env")

	var errs []error
	env := normalizeEnv(getEnv("ENV", "dev"))

	maxUpload, err := getSize("MAX_UPLOAD_SIZE", defaultMaxUploadSize)
	errs = appendErr(errs, err)
	llmTimeout, err := getDuration("LLM_TIMEOUT", defaultLLMTimeout)
	errs = appendErr(errs, err)
	authRequired, err := getBool("AUTH_REQUIRED", env == "production")
	errs = appendErr(errs, err)
	breakerEnabled, err := getBool("BREAKER_ENABLED", true)
	errs = appendErr(errs, err)
	rps, err := getFloat("RATE_LIMIT_RPS", 10)
	errs = appendErr(errs, err)
	burst, err := getInt("RATE_LIMIT_BURST", 20)
	errs = appendErr(errs, err)
	uploadRPS, err := getFloat("UPLOAD_RATE_LIMIT_RPS", 0.5)
	errs = appendErr(errs, err)
	uploadBurst, err := getInt("UPLOAD_RATE_LIMIT_BURST", 5)
	errs = appendErr(errs, err)

	cfg := Config{
		Port:            getEnv("PORT", "5000"),
		Env:             env,
		AppID:           getEnv("APP_ID", "default-app-id"),
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		MaxUploadSize:   maxUpload,
		LogLevel:        getEnv("LOG_LEVEL", "info"),

		ObjectStoreType: normalizeChoice(getEnv("OBJECT_STORE", "local")),
		LocalStoreDir:   getEnv("LOCAL_STORE_DIR", "./data"),
		AWSRegion:       getEnv("AWS_REGION", ""),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Prefix:        getEnv("S3_PREFIX", ""),
		SSEKMSKeyID:     getEnv("SSE_KMS_KEY_ID", ""),

		RecordStoreType: normalizeChoice(getEnv("RECORD_STORE", "memory")),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		MongoURI:        os.Getenv("MONGO_URI"),
		MongoDatabase:   getEnv("MONGO_DATABASE", "healthdocs"),
		MongoCollection: getEnv("MONGO_COLLECTION", "documents"),

		OCRProvider:           normalizeChoice(getEnv("OCR_PROVIDER", "pdf")),
		GoogleAPIKey:          os.Getenv("GOOGLE_API_KEY"),
		GoogleCredentialsJSON: os.Getenv("GOOGLE_CREDENTIALS_JSON"),
		GoogleCredentialsFile: os.Getenv("GOOGLE_CREDENTIALS_FILE"),

		LLMProvider:  normalizeChoice(getEnv("LLM_PROVIDER", "none")),
		LLMModel:     os.Getenv("LLM_MODEL"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		LLMTimeout:   llmTimeout,

		AuthRequired: authRequired,
		JWTSecret:    os.Getenv("JWT_SECRET"),
		JWTIssuer:    os.Getenv("JWT_ISSUER"),

		RateLimitRPS:         rps,
		RateLimitBurst:       burst,
		UploadRateLimitRPS:   uploadRPS,
		UploadRateLimitBurst: uploadBurst,

		BreakerEnabled: breakerEnabled,
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = defaultModel(cfg.LLMProvider)
	}

	errs = append(errs, cfg.Validate())
	if err := errors.Join(errs...); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports missing or inconsistent settings for the selected providers.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.AppID) == "" {
		errs = append(errs, errors.New("APP_ID is required"))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, errors.New("MAX_UPLOAD_SIZE must be positive"))
	}

	switch c.ObjectStoreType {
	case "local":
		if strings.TrimSpace(c.LocalStoreDir) == "" {
			errs = append(errs, errors.New("LOCAL_STORE_DIR is required for OBJECT_STORE=local"))
		}
	case "s3":
		if strings.TrimSpace(c.S3Bucket) == "" {
			errs = append(errs, errors.New("S3_BUCKET is required for OBJECT_STORE=s3"))
		}
	default:
		errs = append(errs, fmt.Errorf("OBJECT_STORE %q is not supported", c.ObjectStoreType))
	}

	switch c.RecordStoreType {
	case "memory":
		if c.Env == "production" {
			errs = append(errs, errors.New("RECORD_STORE=memory is not allowed in production"))
		}
	case "postgres":
		if strings.TrimSpace(c.DatabaseURL) == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for RECORD_STORE=postgres"))
		}
	case "mongo":
		if strings.TrimSpace(c.MongoURI) == "" {
			errs = append(errs, errors.New("MONGO_URI is required for RECORD_STORE=mongo"))
		}
		if strings.TrimSpace(c.MongoDatabase) == "" {
			errs = append(errs, errors.New("MONGO_DATABASE is required for RECORD_STORE=mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("RECORD_STORE %q is not supported", c.RecordStoreType))
	}

	switch c.OCRProvider {
	case "vision":
		if c.GoogleAPIKey == "" && c.GoogleCredentialsJSON == "" && c.GoogleCredentialsFile == "" &&
			os.Getenv("GOOGLE_APPLICATION_CREDENTIALS") == "" {
			errs = append(errs, errors.New("OCR_PROVIDER=vision requires GOOGLE_API_KEY, GOOGLE_CREDENTIALS_JSON, GOOGLE_CREDENTIALS_FILE or GOOGLE_APPLICATION_CREDENTIALS"))
		}
	case "pdf", "none":
	default:
		errs = append(errs, fmt.Errorf("OCR_PROVIDER %q is not supported", c.OCRProvider))
	}

	switch c.LLMProvider {
	case "gemini":
		if strings.TrimSpace(c.GeminiAPIKey) == "" {
			errs = append(errs, errors.New("GEMINI_API_KEY is required for LLM_PROVIDER=gemini"))
		}
	case "openai":
		if strings.TrimSpace(c.OpenAIAPIKey) == "" {
			errs = append(errs, errors.New("OPENAI_API_KEY is required for LLM_PROVIDER=openai"))
		}
	case "none":
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER %q is not supported", c.LLMProvider))
	}

	if c.AuthRequired && strings.TrimSpace(c.JWTSecret) == "" {
		errs = append(errs, errors.New("JWT_SECRET is required when AUTH_REQUIRED=true"))
	}
	return errors.Join(errs...)
}

func defaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-1.5-flash"
	case "openai":
		return "gpt-4o-mini"
	default:
		return ""
	}
}

func appendErr(errs []error, err error) []error {
	if err != nil {
		return append(errs, err)
	}
	return errs
}

func getEnv(key, def string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return def
}

func getSize(key string, def int64) (int64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	size, err := units.RAMInBytes(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return size, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, def bool) (bool, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s: %w", key, err)
	}
	return b, nil
}

func getFloat(key string, def float64) (float64, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, def int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	default:
		return "dev"
	}
}

func normalizeChoice(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// LoadDatabaseURL returns DATABASE_URL for tools that only need the database,
// such as cmd/migrate.
func LoadDatabaseURL() (string, error) {
	loadEnvFiles(".env", "cmd/.env")
	url := getEnv("DATABASE_URL", "")
	if url == "" {
		return "", errors.New("DATABASE_URL is required")
	}
	return url, nil
}
