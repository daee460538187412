package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "SHELF_"

// Backend names accepted by SHELF_BACKEND.
const (
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

type Config struct {
	ListenPort      string        // ex: ":5000"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request deadline

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	Backend            string // "redis" | "memory"
	SecretKey          string // signs flash cookies
	SecretKeyGenerated bool   // true when no key was configured and a random one was used

	// Redis
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisKeyPrefix        string        // key namespace (default "shelf")
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 2s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 2s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 5s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 500ms, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict access to specific Host headers
	AllowedCIDRS []string // optional, restrict ops endpoints to specific IPs/CIDRs
	TrustProxy   bool     // true => trust X-Forwarded-For headers

	RateLimitBurst  int // write requests allowed in a burst per client IP
	RateLimitPerMin int // refill rate per client IP
}

// Load reads the configuration from the environment, falling back to the
// optional YAML file named by SHELF_CONFIG_FILE, then to defaults.
// It panics on invalid or missing required values.
func Load() *Config {
	l := &loader{}
	if path := os.Getenv(envPrefix + "CONFIG_FILE"); path != "" {
		file, err := readFile(path)
		if err != nil {
			panic(fmt.Sprintf("❌ FATAL: %v", err))
		}
		l.file = file
	}
	return l.load()
}

func (l *loader) load() *Config {
	cfg := &Config{
		// Server settings
		ListenPort:      l.getenv("SHELF_LISTEN_PORT", ":5000"),
		ShutdownTimeout: l.mustDuration("SHELF_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  l.mustDuration("SHELF_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  l.getenv("SHELF_LOG_LEVEL", "info"),
		PrettyLog: l.mustBool("SHELF_PRETTY_LOG", true),

		Backend:   strings.ToLower(l.getenv("SHELF_BACKEND", BackendRedis)),
		SecretKey: l.getenv("SHELF_SECRET_KEY", ""),

		// Redis settings
		RedisUser:             l.getenv("SHELF_REDIS_USERNAME", ""),
		RedisPasswordRequired: l.mustBool("SHELF_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         l.getenv("SHELF_REDIS_PASSWORD", ""),
		RedisDB:               l.getenvInt("SHELF_REDIS_DB", 0),
		RedisKeyPrefix:        l.getenv("SHELF_REDIS_KEY_PREFIX", "shelf"),
		RedisDT:               l.mustDuration("SHELF_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               l.mustDuration("SHELF_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               l.mustDuration("SHELF_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          l.mustDuration("SHELF_REDIS_MAX_WAIT", 2*time.Second),
		RedisPingTimeout:      l.mustDuration("SHELF_REDIS_PING_TIMEOUT", 2*time.Second),
		RedisPoolSize:         l.getenvInt("SHELF_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   l.mustDuration("SHELF_REDIS_CONNECT_TIMEOUT", 5*time.Second),
		RedisRetryInterval:    l.mustDuration("SHELF_REDIS_RETRY_INTERVAL", 500*time.Millisecond),
		RedisWarnThreshold:    l.getenvInt("SHELF_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(l.getenv("SHELF_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(l.getenv("SHELF_ALLOWED_CIDRS", "")),
		TrustProxy:   l.mustBool("SHELF_TRUST_PROXY", false),

		RateLimitBurst:  l.getenvInt("SHELF_RATE_LIMIT_BURST", 30),
		RateLimitPerMin: l.getenvInt("SHELF_RATE_LIMIT_PER_MIN", 60),
	}

	switch cfg.Backend {
	case BackendRedis:
		cfg.RedisAddr = l.requireEnv("SHELF_REDIS_ADDR")
	case BackendMemory:
		cfg.RedisAddr = l.getenv("SHELF_REDIS_ADDR", "")
	default:
		panic(fmt.Sprintf("❌ FATAL: SHELF_BACKEND must be %q or %q, got %q", BackendRedis, BackendMemory, cfg.Backend))
	}

	// Validate Redis password configuration
	if cfg.Backend == BackendRedis && cfg.RedisPasswordRequired && cfg.RedisPassword == "" {
		panic("❌ FATAL: SHELF_REDIS_PASSWORD is required when SHELF_REDIS_PASSWORD_REQUIRED=true")
	}

	if cfg.SecretKey == "" {
		cfg.SecretKey = randomKey()
		cfg.SecretKeyGenerated = true
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		cfgCopy.SecretKey = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// loader resolves settings from the environment first, then the file.
type loader struct {
	file map[string]string
}

// readFile parses a flat YAML mapping of setting names to values.
// Keys are the environment names without the SHELF_ prefix, in any case:
//
//	redis_addr: localhost:6379
//	rate_limit_burst: 10
func readFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	raw := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse config yaml: %w", err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		key := envPrefix + strings.ToUpper(strings.TrimSpace(k))
		switch tv := v.(type) {
		case nil:
			continue
		case []interface{}:
			parts := make([]string, 0, len(tv))
			for _, p := range tv {
				parts = append(parts, fmt.Sprint(p))
			}
			values[key] = strings.Join(parts, ",")
		default:
			values[key] = fmt.Sprint(tv)
		}
	}
	return values, nil
}

// helpers
func (l *loader) lookup(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return l.file[key]
}

func (l *loader) getenv(key, def string) string {
	if v := l.lookup(key); v != "" {
		return v
	}
	return def
}

func (l *loader) requireEnv(key string) string {
	v := l.lookup(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func (l *loader) getenvInt(key string, def int) int {
	if v := l.lookup(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func (l *loader) mustBool(key string, def bool) bool {
	if v := l.lookup(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func (l *loader) mustDuration(key string, def time.Duration) time.Duration {
	if v := l.lookup(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}

func randomKey() string {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		panic(fmt.Sprintf("❌ FATAL: cannot generate secret key: %v", err))
	}
	return hex.EncodeToString(buf)
}
