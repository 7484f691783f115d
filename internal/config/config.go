package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	App     AppConfig
	Storage StorageConfig
	Google  GoogleConfig
	Notify  NotifyConfig
	Server  ServerConfig
	Tracing TracingConfig
}

type AppConfig struct {
	APIBaseURL   string
	WSBaseURL    string
	Environment  string
	LogFilePath  string
	HistoryLimit int
}

type StorageConfig struct {
	Driver    string // "file", "redis" or "memory"
	FilePath  string
	RedisURL  string
	KeyPrefix string
}

type GoogleConfig struct {
	ClientID        string
	ClientSecret    string
	Scopes          []string
	RevokeURL       string
	CallbackTimeout time.Duration
	OpenBrowser     bool
}

type NotifyConfig struct {
	Terminal bool
	NatsURL  string // empty disables the NATS sink
}

// ServerConfig is only read by the development backend.
type ServerConfig struct {
	Port               string
	DBConnection       string
	JWTSecret          string
	TokenTTL           time.Duration
	CorsAllowedOrigins string
	RateLimitMax       int
	RateLimitWindow    time.Duration
	RedisURL           string
	GoogleClientID     string
	GoogleUserInfoURL  string
	GoogleTokenInfoURL string
	EventTopic         string
}

type TracingConfig struct {
	Enabled     bool
	Endpoint    string
	ServiceName string
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			APIBaseURL:   getEnv("API_BASE_URL", "http://localhost:8000"),
			WSBaseURL:    getEnv("WS_BASE_URL", "ws://localhost:8000"),
			Environment:  getEnv("GO_ENV", "development"),
			LogFilePath:  getEnv("LOG_FILE_PATH", "logs/urlchat.log"),
			HistoryLimit: getEnvAsInt("HISTORY_LIMIT", 100),
		},
		Storage: StorageConfig{
			Driver:    getEnv("STORAGE_DRIVER", "file"),
			FilePath:  getEnv("STORAGE_FILE_PATH", defaultStatePath()),
			RedisURL:  getEnv("STORAGE_REDIS_URL", "redis://localhost:6379"),
			KeyPrefix: getEnv("STORAGE_KEY_PREFIX", "urlchat:"),
		},
		Google: GoogleConfig{
			ClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			ClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			Scopes: getEnvAsList("GOOGLE_SCOPES", []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			}),
			RevokeURL:       getEnv("GOOGLE_REVOKE_URL", "https://oauth2.googleapis.com/revoke"),
			CallbackTimeout: getEnvAsDuration("GOOGLE_CALLBACK_TIMEOUT", 3*time.Minute),
			OpenBrowser:     getEnvAsBool("GOOGLE_OPEN_BROWSER", true),
		},
		Notify: NotifyConfig{
			Terminal: getEnvAsBool("NOTIFY_TERMINAL", true),
			NatsURL:  getEnv("NOTIFY_NATS_URL", ""),
		},
		Server: ServerConfig{
			Port:               getEnv("APP_PORT", "8000"),
			DBConnection:       getEnv("DB_CONNECTION_STRING", ""),
			JWTSecret:          getEnv("AUTH_SECRET", "change-this-in-production"),
			TokenTTL:           getEnvAsDuration("ACCESS_TOKEN_TTL", 7*24*time.Hour),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "*"),
			RateLimitMax:       getEnvAsInt("POST_RATE_LIMIT_MAX", 15),
			RateLimitWindow:    getEnvAsDuration("POST_RATE_LIMIT_WINDOW", time.Minute),
			RedisURL:           getEnv("REDIS_URL", ""),
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleUserInfoURL:  getEnv("GOOGLE_USERINFO_URL", "https://www.googleapis.com/oauth2/v3/userinfo"),
			GoogleTokenInfoURL: getEnv("GOOGLE_TOKENINFO_URL", "https://www.googleapis.com/oauth2/v3/tokeninfo"),
			EventTopic:         getEnv("MESSAGE_CREATED_TOPIC", "MESSAGE_CREATED"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvAsBool("OTEL_ENABLED", false),
			Endpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318"),
			ServiceName: getEnv("OTEL_SERVICE_NAME", "url-chatroom-devserver"),
		},
	}
}

func defaultStatePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".urlchat/state.json"
	}
	return dir + string(os.PathSeparator) + "urlchat" + string(os.PathSeparator) + "state.json"
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsBool(key string, fallback bool) bool {
	strValue := getEnv(key, "")
	if value, err := strconv.ParseBool(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if value, err := time.ParseDuration(strValue); err == nil {
		return value
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	strValue := strings.TrimSpace(getEnv(key, ""))
	if strValue == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(strValue, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
