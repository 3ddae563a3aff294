package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds process-wide settings read from the environment.
type Config struct {
	HTTPPort           string
	MongoURI           string
	MongoDatabase      string
	RedisAddr          string
	JWTSecret          string
	LogLevel           string
	CORSAllowedOrigins string

	Zoom ZoomConfig
	AI   *AIConfig
}

// ZoomConfig covers both the REST (server-to-server OAuth) app and the meeting SDK app.
type ZoomConfig struct {
	AccountID    string
	ClientID     string
	ClientSecret string
	SDKKey       string `json:"-"`
	SDKSecret    string `json:"-"`
	APIBaseURL   string
	TokenURL     string
	TimeoutMS    int
}

// MissingError reports required variables that are not set for a feature.
type MissingError struct {
	Feature string
	Keys    []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s is not configured: missing %s", e.Feature, strings.Join(e.Keys, ", "))
}

// Load reads the environment. Infrastructure settings fall back to local defaults;
// feature credentials are checked by the Require* methods when a feature is built.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	port := getString(k, "PORT", "")
	if port == "" {
		port = getString(k, "HTTP_PORT", "8080")
	}

	redisAddr := getString(k, "REDIS_URI", "localhost:6379")
	redisAddr = strings.TrimPrefix(redisAddr, "redis://")

	return &Config{
		HTTPPort:           port,
		MongoURI:           getString(k, "MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getString(k, "MONGO_DATABASE", "studyhub"),
		RedisAddr:          redisAddr,
		JWTSecret:          k.String("JWT_SECRET"),
		LogLevel:           getString(k, "LOG_LEVEL", "info"),
		CORSAllowedOrigins: getString(k, "CORS_ALLOWED_ORIGINS", "*"),
		Zoom: ZoomConfig{
			AccountID:    k.String("ZOOM_ACCOUNT_ID"),
			ClientID:     k.String("ZOOM_CLIENT_ID"),
			ClientSecret: k.String("ZOOM_CLIENT_SECRET"),
			SDKKey:       k.String("ZOOM_SDK_KEY"),
			SDKSecret:    k.String("ZOOM_SDK_SECRET"),
			APIBaseURL:   getString(k, "ZOOM_API_BASE_URL", "https://api.zoom.us/v2"),
			TokenURL:     getString(k, "ZOOM_TOKEN_URL", "https://zoom.us/oauth/token"),
			TimeoutMS:    getInt(k, "ZOOM_TIMEOUT_MS", 15000),
		},
		AI: loadAIConfig(k),
	}, nil
}

// RequireAuth checks the token signing secret.
func (c *Config) RequireAuth() error {
	if c.JWTSecret == "" {
		return &MissingError{Feature: "authentication", Keys: []string{"JWT_SECRET"}}
	}
	return nil
}

// RequireMeetings checks the credentials used to create meetings.
func (z ZoomConfig) RequireMeetings() error {
	return requireKeys("meeting provisioning", map[string]string{
		"ZOOM_ACCOUNT_ID":    z.AccountID,
		"ZOOM_CLIENT_ID":     z.ClientID,
		"ZOOM_CLIENT_SECRET": z.ClientSecret,
	}, "ZOOM_ACCOUNT_ID", "ZOOM_CLIENT_ID", "ZOOM_CLIENT_SECRET")
}

// RequireSDK checks the credentials used to sign SDK join requests.
func (z ZoomConfig) RequireSDK() error {
	return requireKeys("meeting SDK signatures", map[string]string{
		"ZOOM_SDK_KEY":    z.SDKKey,
		"ZOOM_SDK_SECRET": z.SDKSecret,
	}, "ZOOM_SDK_KEY", "ZOOM_SDK_SECRET")
}

func requireKeys(feature string, values map[string]string, order ...string) error {
	var missing []string
	for _, key := range order {
		if values[key] == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return &MissingError{Feature: feature, Keys: missing}
	}
	return nil
}

func getString(k *koanf.Koanf, key, defaultVal string) string {
	if v := k.String(key); v != "" {
		return v
	}
	return defaultVal
}

func getInt(k *koanf.Koanf, key string, defaultVal int) int {
	if !k.Exists(key) {
		return defaultVal
	}
	if v := k.Int(key); v > 0 {
		return v
	}
	return defaultVal
}
