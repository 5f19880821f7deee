package config

import (
	"os"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	// Set only required env var
	os.Setenv("RMS_BASE_URL", "http://localhost:5000")
	defer os.Unsetenv("RMS_BASE_URL")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	// Verify defaults
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}
	if cfg.Upload.MaxConcurrent != 8 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 8)
	}
	if cfg.Upload.MaxImageSize != 20971520 {
		t.Errorf("Upload.MaxImageSize = %d, want %d", cfg.Upload.MaxImageSize, 20971520)
	}
	if cfg.Rate.RequestsPerMinute != 100 {
		t.Errorf("Rate.RequestsPerMinute = %d, want %d", cfg.Rate.RequestsPerMinute, 100)
	}
	if cfg.Journal.Enabled() {
		t.Error("Journal.Enabled() = true without DATABASE_URL")
	}
}

func TestLoad_OverrideDefaults(t *testing.T) {
	os.Setenv("RMS_BASE_URL", "http://localhost:5000")
	os.Setenv("SERVER_PORT", "9090")
	os.Setenv("UPLOAD_MAX_CONCURRENT", "16")
	os.Setenv("LOG_LEVEL", "debug")
	defer func() {
		os.Unsetenv("RMS_BASE_URL")
		os.Unsetenv("SERVER_PORT")
		os.Unsetenv("UPLOAD_MAX_CONCURRENT")
		os.Unsetenv("LOG_LEVEL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 9090)
	}
	if cfg.Upload.MaxConcurrent != 16 {
		t.Errorf("Upload.MaxConcurrent = %d, want %d", cfg.Upload.MaxConcurrent, 16)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
}

func TestLoad_AltEnvVar(t *testing.T) {
	// DB_URL works as a fallback for DATABASE_URL
	os.Setenv("RMS_BASE_URL", "http://localhost:5000")
	os.Setenv("DB_URL", "postgres://localhost/alttest")
	defer func() {
		os.Unsetenv("RMS_BASE_URL")
		os.Unsetenv("DB_URL")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Journal.DatabaseURL != "postgres://localhost/alttest" {
		t.Errorf("Journal.DatabaseURL = %q, want %q", cfg.Journal.DatabaseURL, "postgres://localhost/alttest")
	}
	if !cfg.Journal.Enabled() {
		t.Error("Journal.Enabled() = false with DB_URL set")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	os.Unsetenv("RMS_BASE_URL")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() expected error for missing RMS_BASE_URL")
	}
}

func TestLoad_Duration(t *testing.T) {
	os.Setenv("RMS_BASE_URL", "http://localhost:5000")
	os.Setenv("SERVER_READ_TIMEOUT", "45s")
	os.Setenv("UPLOAD_MAX_WAIT_TIME", "1m30s")
	defer func() {
		os.Unsetenv("RMS_BASE_URL")
		os.Unsetenv("SERVER_READ_TIMEOUT")
		os.Unsetenv("UPLOAD_MAX_WAIT_TIME")
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.ReadTimeout != 45*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want %v", cfg.Server.ReadTimeout, 45*time.Second)
	}
	if cfg.Upload.MaxWaitTime != 90*time.Second {
		t.Errorf("Upload.MaxWaitTime = %v, want %v", cfg.Upload.MaxWaitTime, 90*time.Second)
	}
}

func validConfig() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080, ShutdownTimeout: 30 * time.Second},
		Backend: BackendConfig{BaseURL: "http://localhost:5000"},
		Upload:  UploadConfig{MaxImageSize: 1 << 20, MaxFormSize: 10 << 20, MaxConcurrent: 8, MaxWaitTime: 30 * time.Second},
		Rate:    RateLimitConfig{Enabled: true, RequestsPerMinute: 100, SubmitLimit: 10},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Journal: JournalConfig{MaxConns: 4},
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.Server.Port = 99999

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for invalid port")
	}
	if !strings.Contains(err.Error(), "SERVER_PORT") {
		t.Errorf("error should mention SERVER_PORT: %v", err)
	}
}

func TestValidate_BaseURLScheme(t *testing.T) {
	cfg := validConfig()
	cfg.Backend.BaseURL = "localhost:5000"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for URL without scheme")
	}
	if !strings.Contains(err.Error(), "RMS_BASE_URL") {
		t.Errorf("error should mention RMS_BASE_URL: %v", err)
	}
}

func TestValidate_FormSizeBelowImageSize(t *testing.T) {
	cfg := validConfig()
	cfg.Upload.MaxFormSize = cfg.Upload.MaxImageSize - 1

	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for MaxFormSize < MaxImageSize")
	}
	if !strings.Contains(err.Error(), "UPLOAD_MAX_FORM_SIZE") {
		t.Errorf("error should mention UPLOAD_MAX_FORM_SIZE: %v", err)
	}
}

func TestServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"0.0.0.0", 8080, "0.0.0.0:8080"},
		{"", 9090, ":9090"},
		{"127.0.0.1", 80, "127.0.0.1:80"},
	}

	for _, tt := range tests {
		sc := ServerConfig{Host: tt.host, Port: tt.port}
		if got := sc.Addr(); got != tt.want {
			t.Errorf("Addr() with host=%q port=%d = %q, want %q", tt.host, tt.port, got, tt.want)
		}
	}
}
