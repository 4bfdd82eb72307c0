// ABOUTME: Configuration loader for the lottery backend
// ABOUTME: Reads an optional .env file, then environment variables with defaults

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port               string
	ConfigDir          string   // holds settings.json (cookie, rooms, background)
	CORSAllowedOrigins []string // empty = no cross-origin access

	// Caches
	AccountCacheTTL int // seconds, account info from the nav endpoint (default 60)
	RoomCacheTTL    int // seconds, resolved room id and danmaku hosts (default 300)

	// Rate limiting
	RateLimitEnabled bool
	RateLimitAuth    int // requests per minute per IP for /auth endpoints (default 30)
	RateLimitDefault int // requests per minute per IP for everything else (default 600)

	// Platform endpoints
	PassportBaseURL string
	APIBaseURL      string
	LiveAPIBaseURL  string
	UserAgent       string

	// Optional SSH+SOCKS5 proxy for outbound platform traffic
	// Format: ssh+socks5://user@host:port?private-key=/path/to/key
	AllProxy string
}

const (
	defaultPassportBaseURL = "https://passport.bilibili.com"
	defaultAPIBaseURL      = "https://api.bilibili.com"
	defaultLiveAPIBaseURL  = "https://api.live.bilibili.com"
	defaultUserAgent       = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Load reads configuration. Values already in the environment win over the
// .env file (ENV_FILE, default ".env"), which is optional.
func Load() (*Config, error) {
	envFile := getEnv("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", envFile, err)
	}

	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		ConfigDir:          getEnv("LUCKYDRAW_CONFIG_DIR", defaultConfigDir()),
		CORSAllowedOrigins: getEnvStringList("CORS_ALLOWED_ORIGINS"),

		AccountCacheTTL: getEnvInt("ACCOUNT_CACHE_TTL", 60),
		RoomCacheTTL:    getEnvInt("ROOM_CACHE_TTL", 300),

		RateLimitEnabled: getEnvBool("RATE_LIMIT_ENABLED", true),
		RateLimitAuth:    getEnvInt("RATE_LIMIT_AUTH", 30),
		RateLimitDefault: getEnvInt("RATE_LIMIT_DEFAULT", 600),

		PassportBaseURL: strings.TrimRight(getEnv("PASSPORT_BASE_URL", defaultPassportBaseURL), "/"),
		APIBaseURL:      strings.TrimRight(getEnv("API_BASE_URL", defaultAPIBaseURL), "/"),
		LiveAPIBaseURL:  strings.TrimRight(getEnv("LIVE_API_BASE_URL", defaultLiveAPIBaseURL), "/"),
		UserAgent:       getEnv("LUCKYDRAW_USER_AGENT", defaultUserAgent),

		AllProxy: os.Getenv("LUCKYDRAW_ALL_PROXY"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.ConfigDir == "" {
		return fmt.Errorf("LUCKYDRAW_CONFIG_DIR is required when no home directory is available")
	}

	for _, u := range []struct {
		name  string
		value string
	}{
		{"PASSPORT_BASE_URL", c.PassportBaseURL},
		{"API_BASE_URL", c.APIBaseURL},
		{"LIVE_API_BASE_URL", c.LiveAPIBaseURL},
	} {
		parsed, err := url.Parse(u.value)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", u.name, u.value)
		}
	}

	for _, ttl := range []struct {
		name  string
		value int
	}{
		{"ACCOUNT_CACHE_TTL", c.AccountCacheTTL},
		{"ROOM_CACHE_TTL", c.RoomCacheTTL},
	} {
		if ttl.value < 0 {
			return fmt.Errorf("%s must not be negative, got %d", ttl.name, ttl.value)
		}
	}

	for _, rl := range []struct {
		name  string
		value int
	}{
		{"RATE_LIMIT_AUTH", c.RateLimitAuth},
		{"RATE_LIMIT_DEFAULT", c.RateLimitDefault},
	} {
		if rl.value < 1 || rl.value > 10000 {
			return fmt.Errorf("%s must be between 1 and 10000, got %d", rl.name, rl.value)
		}
	}

	if c.AllProxy != "" && !strings.HasPrefix(c.AllProxy, "ssh+socks5://") {
		return fmt.Errorf("LUCKYDRAW_ALL_PROXY must start with ssh+socks5://")
	}

	return nil
}

// SettingsPath is the JSON file holding persisted settings
func (c *Config) SettingsPath() string {
	return filepath.Join(c.ConfigDir, "settings.json")
}

func defaultConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "luckydraw")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "luckydraw")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvStringList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
