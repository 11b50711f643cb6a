package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
)

// DefaultUserID is the placeholder identity used before a login has happened.
const DefaultUserID = "00000000-0000-0000-0000-000000000001"

type Config struct {
	Environment string
	APIBaseURL  string
	UserID      string
	SessionFile string
	JWKSURL     string // optional; when set, stored tokens are signature-checked
	// Synchronizer
	PollInterval      time.Duration
	StatusConcurrency int
	IntakeFolderName  string
	// Gateway transport
	HTTPTimeout       time.Duration
	RequestsPerSecond float64
	// Uploads and queries
	MaxUploadBytes int64
	VerifyPDF      bool
	TopK           int
	// Logging
	LogDir      string
	LogMaxFiles int
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Environment:       env,
		APIBaseURL:        getEnv("DRAFTDESK_API_BASE_URL", "http://127.0.0.1:8000"),
		UserID:            getEnv("DRAFTDESK_USER_ID", DefaultUserID),
		SessionFile:       getEnv("DRAFTDESK_SESSION_FILE", defaultSessionFile()),
		JWKSURL:           getEnv("DRAFTDESK_JWKS_URL", ""),
		PollInterval:      getDuration("DRAFTDESK_POLL_INTERVAL", DefaultPollInterval),
		StatusConcurrency: getInt("DRAFTDESK_STATUS_CONCURRENCY", DefaultStatusConcurrency),
		IntakeFolderName:  getEnv("DRAFTDESK_INTAKE_FOLDER", DefaultIntakeFolderName),
		HTTPTimeout:       getDuration("DRAFTDESK_HTTP_TIMEOUT", 30*time.Second),
		RequestsPerSecond: getFloat("DRAFTDESK_REQUESTS_PER_SECOND", 10),
		MaxUploadBytes:    int64(getInt("DRAFTDESK_MAX_UPLOAD_BYTES", MaxUploadBytes)),
		VerifyPDF:         getEnv("DRAFTDESK_VERIFY_PDF", "true") == "true",
		TopK:              getInt("DRAFTDESK_TOP_K", DefaultTopK),
		LogDir:            getEnv("DRAFTDESK_LOG_DIR", "logs"),
		LogMaxFiles:       getInt("DRAFTDESK_LOG_MAX_FILES", 10),
	}
}

// Validate checks values that would otherwise fail late and confusingly.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.APIBaseURL,
			validation.Required.Error("DRAFTDESK_API_BASE_URL must be set"),
		),
		validation.Field(&c.UserID,
			validation.Required.Error("DRAFTDESK_USER_ID must be set"),
			validation.By(isUUID),
		),
		validation.Field(&c.PollInterval,
			validation.Required.Error("DRAFTDESK_POLL_INTERVAL must be positive"),
			validation.Min(time.Nanosecond).Error("DRAFTDESK_POLL_INTERVAL must be positive"),
		),
		validation.Field(&c.StatusConcurrency,
			validation.Required.Error("DRAFTDESK_STATUS_CONCURRENCY must be at least 1"),
			validation.Min(1).Error("DRAFTDESK_STATUS_CONCURRENCY must be at least 1"),
		),
		validation.Field(&c.TopK,
			validation.Required.Error(fmt.Sprintf("DRAFTDESK_TOP_K must be between 1 and %d", MaxTopK)),
			validation.Min(1).Error(fmt.Sprintf("DRAFTDESK_TOP_K must be between 1 and %d", MaxTopK)),
			validation.Max(MaxTopK).Error(fmt.Sprintf("DRAFTDESK_TOP_K must be between 1 and %d", MaxTopK)),
		),
		validation.Field(&c.MaxUploadBytes,
			validation.Required.Error("DRAFTDESK_MAX_UPLOAD_BYTES must be positive"),
			validation.Min(int64(1)).Error("DRAFTDESK_MAX_UPLOAD_BYTES must be positive"),
		),
	)
}

func isUUID(value interface{}) error {
	s, _ := value.(string)
	if _, err := uuid.Parse(s); err != nil {
		return validation.NewError("validation_is_uuid", "DRAFTDESK_USER_ID must be a UUID")
	}
	return nil
}

// defaultSessionFile returns ~/.draftdesk/session.yaml, or a relative path
// when the home directory cannot be determined.
func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".draftdesk", "session.yaml")
	}
	return filepath.Join(home, ".draftdesk", "session.yaml")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getFloat(key string, defaultValue float64) float64 {
	f, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return f
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return d
}
