package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRequireEnv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		file      map[string]string
		want      string
		wantPanic bool
	}{
		{
			name:  "variable set",
			key:   "TEST_VAR",
			value: "test_value",
			want:  "test_value",
		},
		{
			name: "value from file",
			key:  "TEST_VAR_FILE",
			file: map[string]string{"TEST_VAR_FILE": "from_file"},
			want: "from_file",
		},
		{
			name:  "environment beats file",
			key:   "TEST_VAR_BOTH",
			value: "from_env",
			file:  map[string]string{"TEST_VAR_BOTH": "from_file"},
			want:  "from_env",
		},
		{
			name:      "variable not set",
			key:       "TEST_VAR_MISSING",
			wantPanic: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}
			l := &loader{file: tt.file}

			if tt.wantPanic {
				defer func() {
					if r := recover(); r == nil {
						t.Errorf("requireEnv() should have panicked")
					}
				}()
			}

			result := l.requireEnv(tt.key)
			if !tt.wantPanic && result != tt.want {
				t.Errorf("requireEnv() = %v, want %v", result, tt.want)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "5s",
			def:      1 * time.Second,
			expected: 5 * time.Second,
		},
		{
			name:     "invalid duration uses default",
			key:      "TEST_DURATION_INVALID",
			value:    "invalid",
			def:      10 * time.Second,
			expected: 10 * time.Second,
		},
		{
			name:     "missing variable uses default",
			key:      "TEST_DURATION_MISSING",
			value:    "",
			def:      15 * time.Second,
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := (&loader{}).mustDuration(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      bool
		expected bool
	}{
		{"true value", "TEST_BOOL", "true", false, true},
		{"false value", "TEST_BOOL_FALSE", "false", true, false},
		{"invalid value uses default", "TEST_BOOL_INVALID", "invalid", true, true},
		{"missing variable uses default", "TEST_BOOL_MISSING", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}

			result := (&loader{}).mustBool(tt.key, tt.def)
			if result != tt.expected {
				t.Errorf("mustBool() = %v, want %v", result, tt.expected)
			}
		})
	}
}

func TestSplitAndTrim(t *testing.T) {
	got := splitAndTrim(` a , "b",, 'c' `)
	want := []string{"a", "b", "c"}
	if len(got) != len(want) {
		t.Fatalf("splitAndTrim() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitAndTrim()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if splitAndTrim("") != nil {
		t.Error("splitAndTrim(\"\") should be nil")
	}
}

func TestLoadMemoryBackendDefaults(t *testing.T) {
	t.Setenv("SHELF_BACKEND", "memory")
	t.Setenv("SHELF_LOG_LEVEL", "error")

	cfg := Load()

	if cfg.Backend != BackendMemory {
		t.Errorf("Backend = %q, want memory", cfg.Backend)
	}
	if cfg.ListenPort != ":5000" {
		t.Errorf("ListenPort = %q, want :5000", cfg.ListenPort)
	}
	if cfg.RedisConnectTimeout != 5*time.Second {
		t.Errorf("RedisConnectTimeout = %v, want 5s", cfg.RedisConnectTimeout)
	}
	if cfg.SecretKey == "" || !cfg.SecretKeyGenerated {
		t.Error("a random secret key should be generated when none is configured")
	}
	if cfg.AllowedHosts != nil {
		t.Errorf("AllowedHosts = %v, want nil (passthrough)", cfg.AllowedHosts)
	}
}

func TestLoadRedisRequiresAddr(t *testing.T) {
	t.Setenv("SHELF_BACKEND", "redis")
	t.Setenv("SHELF_REDIS_ADDR", "")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic without SHELF_REDIS_ADDR")
		}
	}()
	Load()
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("SHELF_BACKEND", "mongo")

	defer func() {
		if r := recover(); r == nil {
			t.Error("Load() should panic on unknown backend")
		}
	}()
	Load()
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shelf.yaml")
	content := `
backend: redis
redis_addr: cache.internal:6379
redis_db: 2
request_timeout: 7s
pretty_log: false
allowed_cidrs:
  - 10.0.0.0/8
  - 192.168.1.10
listen_port: ":9000"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("SHELF_CONFIG_FILE", path)
	t.Setenv("SHELF_LISTEN_PORT", ":7000")
	t.Setenv("SHELF_SECRET_KEY", "s3cret")

	cfg := Load()

	if cfg.RedisAddr != "cache.internal:6379" {
		t.Errorf("RedisAddr = %q", cfg.RedisAddr)
	}
	if cfg.RedisDB != 2 {
		t.Errorf("RedisDB = %d, want 2", cfg.RedisDB)
	}
	if cfg.RequestTimeout != 7*time.Second {
		t.Errorf("RequestTimeout = %v, want 7s", cfg.RequestTimeout)
	}
	if cfg.PrettyLog {
		t.Error("PrettyLog = true, want false from file")
	}
	if len(cfg.AllowedCIDRS) != 2 || cfg.AllowedCIDRS[0] != "10.0.0.0/8" {
		t.Errorf("AllowedCIDRS = %v", cfg.AllowedCIDRS)
	}
	if cfg.ListenPort != ":7000" {
		t.Errorf("ListenPort = %q, environment should win over file", cfg.ListenPort)
	}
	if cfg.SecretKey != "s3cret" || cfg.SecretKeyGenerated {
		t.Errorf("SecretKey = %q, generated = %v", cfg.SecretKey, cfg.SecretKeyGenerated)
	}
}

func TestReadFileErrors(t *testing.T) {
	if _, err := readFile("/nonexistent/shelf.yaml"); err == nil {
		t.Error("readFile() with missing file should fail")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("::: not yaml\n\t- ["), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	if _, err := readFile(path); err == nil {
		t.Error("readFile() with invalid yaml should fail")
	}
}
