package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string

	DynamoTables DynamoTables
	S3BucketName string

	// SNSEnabled opts in the SMS mirror of issued codes. Off by default so
	// a fresh deployment never publishes to live phone numbers by accident.
	SNSEnabled bool
	SNSRegion  string

	TelegramBotToken string

	// CodeTTL is how long an issued verification code stays valid.
	CodeTTL time.Duration

	AllowedOrigins []string // CORS allowed origins
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	UserVerifications string
	AnalysisResults   string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),

		DynamoTables: DynamoTables{
			UserVerifications: getEnv("DYNAMO_TABLE_USER_VERIFICATIONS", "UserVerification"),
			AnalysisResults:   getEnv("DYNAMO_TABLE_ANALYSIS_RESULTS", "AnalysisResult"),
		},
		S3BucketName: getEnv("S3_BUCKET_NAME", "lab-report-attachments"),
		SNSEnabled:   getEnvBool("SNS_ENABLED", false),
		SNSRegion:    getEnv("SNS_REGION", "us-east-1"),

		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),

		CodeTTL: time.Duration(getEnvInt("CODE_TTL_SECONDS", 120)) * time.Second,

		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
