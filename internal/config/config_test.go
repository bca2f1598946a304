package config

import (
	"strings"
	"testing"
	"time"
)

func setRequiredEnvVars(t *testing.T) {
	t.Helper()
	t.Setenv("ADMIN_API_BASE_URL", "http://localhost:5000/api/")
}

func TestLoad_AllRequiredVarsSet_ReturnsConfig(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.AdminAPIBaseURL != "http://localhost:5000/api" {
		t.Errorf("AdminAPIBaseURL = %q, want %q", cfg.AdminAPIBaseURL, "http://localhost:5000/api")
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	setRequiredEnvVars(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.APITimeout != 15*time.Second {
		t.Errorf("APITimeout = %v, want %v", cfg.APITimeout, 15*time.Second)
	}
	if cfg.APIRetryBase != time.Second {
		t.Errorf("APIRetryBase = %v, want %v", cfg.APIRetryBase, time.Second)
	}
	if cfg.APIRetryCap != 30*time.Second {
		t.Errorf("APIRetryCap = %v, want %v", cfg.APIRetryCap, 30*time.Second)
	}
	if cfg.APIReadRetries != 1 {
		t.Errorf("APIReadRetries = %d, want %d", cfg.APIReadRetries, 1)
	}
	if cfg.APIRateLimit != 0 {
		t.Errorf("APIRateLimit = %v, want 0", cfg.APIRateLimit)
	}
	if cfg.PageLimit != 10 {
		t.Errorf("PageLimit = %d, want %d", cfg.PageLimit, 10)
	}
	if cfg.ToastSuccessTTL != 3*time.Second {
		t.Errorf("ToastSuccessTTL = %v, want %v", cfg.ToastSuccessTTL, 3*time.Second)
	}
	if cfg.ToastErrorTTL != 5*time.Second {
		t.Errorf("ToastErrorTTL = %v, want %v", cfg.ToastErrorTTL, 5*time.Second)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.ServerPort != "8080" {
		t.Errorf("ServerPort = %q, want %q", cfg.ServerPort, "8080")
	}
	if cfg.ConsoleBaseURL != "http://localhost:5173" {
		t.Errorf("ConsoleBaseURL = %q", cfg.ConsoleBaseURL)
	}
	if cfg.HasAdminCredentials() {
		t.Error("HasAdminCredentials() = true, want false")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("API_TIMEOUT", "5s")
	t.Setenv("API_RETRY_BASE", "200ms")
	t.Setenv("API_RETRY_CAP", "2s")
	t.Setenv("API_READ_RETRIES", "3")
	t.Setenv("API_RATE_LIMIT", "2.5")
	t.Setenv("API_RATE_BURST", "4")
	t.Setenv("CONSOLE_BASE_URL", "https://admin.example.com/")
	t.Setenv("PAGE_LIMIT", "20")
	t.Setenv("TOAST_SUCCESS_TTL", "1s")
	t.Setenv("TOAST_ERROR_TTL", "2s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("SERVER_PORT", "3000")
	t.Setenv("ADMIN_EMAIL", "admin@example.com")
	t.Setenv("ADMIN_PASSWORD", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.APITimeout != 5*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.APIRetryBase != 200*time.Millisecond || cfg.APIRetryCap != 2*time.Second {
		t.Errorf("retry = %v / %v", cfg.APIRetryBase, cfg.APIRetryCap)
	}
	if cfg.APIReadRetries != 1 {
		t.Errorf("読み取りの追加試行は1回までに丸めるべき: %d", cfg.APIReadRetries)
	}
	if cfg.APIRateLimit != 2.5 || cfg.APIRateBurst != 4 {
		t.Errorf("rate = %v / %d", cfg.APIRateLimit, cfg.APIRateBurst)
	}
	if cfg.PageLimit != 20 {
		t.Errorf("PageLimit = %d", cfg.PageLimit)
	}
	if cfg.ToastSuccessTTL != time.Second || cfg.ToastErrorTTL != 2*time.Second {
		t.Errorf("toast = %v / %v", cfg.ToastSuccessTTL, cfg.ToastErrorTTL)
	}
	if cfg.LogLevel != "debug" || cfg.ServerPort != "3000" {
		t.Errorf("LogLevel = %q, ServerPort = %q", cfg.LogLevel, cfg.ServerPort)
	}
	if !cfg.HasAdminCredentials() {
		t.Error("HasAdminCredentials() = false, want true")
	}
	if got := cfg.LoginURL("/login"); got != "https://admin.example.com/login" {
		t.Errorf("LoginURL = %q", got)
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("ADMIN_API_BASE_URL", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for missing required env vars")
	}
	if !strings.Contains(err.Error(), "ADMIN_API_BASE_URL") {
		t.Errorf("error should mention ADMIN_API_BASE_URL, got %v", err)
	}
}

func TestLoad_InvalidValuesFallBackToDefaults(t *testing.T) {
	setRequiredEnvVars(t)
	t.Setenv("API_TIMEOUT", "not-a-duration")
	t.Setenv("API_READ_RETRIES", "-2")
	t.Setenv("PAGE_LIMIT", "abc")
	t.Setenv("API_RATE_LIMIT", "fast")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.APITimeout != 15*time.Second {
		t.Errorf("APITimeout = %v", cfg.APITimeout)
	}
	if cfg.APIReadRetries != 0 {
		t.Errorf("負のリトライ回数は0に丸めるべき: %d", cfg.APIReadRetries)
	}
	if cfg.PageLimit != 10 {
		t.Errorf("PageLimit = %d", cfg.PageLimit)
	}
	if cfg.APIRateLimit != 0 {
		t.Errorf("APIRateLimit = %v", cfg.APIRateLimit)
	}
}
