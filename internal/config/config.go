package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Admin API
	AdminAPIBaseURL string
	APITimeout      time.Duration
	APIRetryBase    time.Duration
	APIRetryCap     time.Duration
	APIReadRetries  int
	APIRateLimit    float64
	APIRateBurst    int

	// Console
	ConsoleBaseURL string
	PageLimit      int

	// Notifications
	ToastSuccessTTL time.Duration
	ToastErrorTTL   time.Duration

	// Logging
	LogLevel string

	// Server
	ServerPort string

	// 起動時ログイン（任意）
	AdminEmail    string
	AdminPassword string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	var missing []string

	cfg.AdminAPIBaseURL = strings.TrimRight(os.Getenv("ADMIN_API_BASE_URL"), "/")
	if cfg.AdminAPIBaseURL == "" {
		missing = append(missing, "ADMIN_API_BASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	cfg.APITimeout = getEnvDuration("API_TIMEOUT", 15*time.Second)
	cfg.APIRetryBase = getEnvDuration("API_RETRY_BASE", time.Second)
	cfg.APIRetryCap = getEnvDuration("API_RETRY_CAP", 30*time.Second)
	cfg.APIReadRetries = getEnvInt("API_READ_RETRIES", 1)
	cfg.APIRateLimit = getEnvFloat("API_RATE_LIMIT", 0)
	cfg.APIRateBurst = getEnvInt("API_RATE_BURST", 5)
	cfg.ConsoleBaseURL = strings.TrimRight(getEnvString("CONSOLE_BASE_URL", "http://localhost:5173"), "/")
	cfg.PageLimit = getEnvInt("PAGE_LIMIT", 10)
	cfg.ToastSuccessTTL = getEnvDuration("TOAST_SUCCESS_TTL", 3*time.Second)
	cfg.ToastErrorTTL = getEnvDuration("TOAST_ERROR_TTL", 5*time.Second)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.AdminEmail = os.Getenv("ADMIN_EMAIL")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")

	if cfg.APIReadRetries < 0 {
		cfg.APIReadRetries = 0
	}
	if cfg.APIReadRetries > 1 {
		cfg.APIReadRetries = 1
	}
	if cfg.PageLimit < 1 {
		cfg.PageLimit = 10
	}

	return cfg, nil
}

// LoginURL はルーター登録前のハードナビゲーション先を返す。
func (c *Config) LoginURL(path string) string {
	return c.ConsoleBaseURL + path
}

// HasAdminCredentials は起動時ログイン用の認証情報が設定されているかを返す。
func (c *Config) HasAdminCredentials() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvFloat(key string, defaultVal float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}
