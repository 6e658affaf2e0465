package config

import "time"

// APIConfig holds runtime configuration for the API service.
type APIConfig struct {
	Environment    string
	Addr           string
	LogLevel       string
	DatabaseURL    string
	MigrationsDir  string
	MigrateOnStart bool

	JWTSecret string
	TokenTTL  time.Duration

	UploadsDir     string
	MaxUploadBytes int64

	CountryPrefix string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioVerifySID  string

	RateLimitRedisAddr string
	RateLimitRedisPass string
	RateLimitRedisDB   int
}

// LoadAPIConfig constructs an APIConfig from environment variables.
func LoadAPIConfig() APIConfig {
	return APIConfig{
		Environment:        GetString("APP_ENV", "development"),
		Addr:               GetString("API_ADDR", ":3000"),
		LogLevel:           GetString("LOG_LEVEL", "info"),
		DatabaseURL:        GetString("DATABASE_URL", "postgres://sevasathi:sevasathi@db:5432/sevasathi?sslmode=disable"),
		MigrationsDir:      GetString("DB_MIGRATIONS_DIR", "db/migrations"),
		MigrateOnStart:     GetBool("MIGRATE_ON_START", true),
		JWTSecret:          GetString("JWT_SECRET", "supersecuresecret"),
		TokenTTL:           time.Duration(GetInt("TOKEN_TTL_HOURS", 168)) * time.Hour,
		UploadsDir:         GetString("UPLOADS_DIR", "uploads"),
		MaxUploadBytes:     int64(GetInt("MAX_UPLOAD_MB", 5)) << 20,
		CountryPrefix:      GetString("PHONE_COUNTRY_PREFIX", "+91"),
		TwilioAccountSID:   GetString("TWILIO_ACCOUNT_SID", ""),
		TwilioAuthToken:    GetString("TWILIO_AUTH_TOKEN", ""),
		TwilioVerifySID:    GetString("TWILIO_VERIFY_SERVICE_SID", ""),
		RateLimitRedisAddr: GetString("RATE_LIMIT_REDIS_ADDR", ""),
		RateLimitRedisPass: GetString("RATE_LIMIT_REDIS_PASSWORD", ""),
		RateLimitRedisDB:   GetInt("RATE_LIMIT_REDIS_DB", 0),
	}
}
