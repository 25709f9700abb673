package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	minJWTSecretLength = 32
)

type Config struct {
	ListenPort      string        // ex: ":5000"
	ShutdownTimeout time.Duration // ex: 5s
	Env             string        // "development" | "production"

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Google OAuth (login)
	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string // ex: "http://localhost:5000/api/auth/google/callback"

	// Session tokens
	JWTSecret    string        // at least 32 characters
	JWTExpiresIn time.Duration // ex: 168h

	// Google Sheets (storage)
	SheetsID            string
	ServiceAccountEmail string
	PrivateKey          string // PEM, "\n" escapes allowed
	SheetName           string // tab holding the collection
	LocationsFile       string // optional YAML list of range candidates

	FrontendURL string // OAuth redirects land here
	CORSOrigin  string // defaults to FrontendURL

	// Cache
	EnableCache               bool
	CacheTTL                  time.Duration // ex: 5m
	CacheInvalidationInterval time.Duration // ex: 30m
	CacheBackend              string        // "memory" | "redis"
	CacheWarmup               bool          // read the collection once at startup

	// Redis (only when CacheBackend=redis)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	// Metadata enrichment
	MusicBrainzURL       string
	CoverArtURL          string
	MetadataUserAgent    string
	MetadataTimeout      time.Duration
	CoverArtProbeTimeout time.Duration
	MetadataRateBurst    int // per-IP burst on upstream-backed routes
	MetadataRatePerMin   int // per-IP refill per minute

	// Access restrictions
	AllowPublicRead bool     // true => read routes accept anonymous requests
	AdminCIDRS      []string // optional, restrict cache admin routes to specific IPs/CIDRs
	TrustProxy      bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

func Load() *Config {
	frontend := strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:3000"), "/")

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("DISCO_LISTEN_PORT", ":5000"),
		ShutdownTimeout: mustDuration("DISCO_SHUTDOWN_TIMEOUT", 5*time.Second),
		Env:             strings.ToLower(getenv("DISCO_ENV", EnvDevelopment)),

		// Logging
		LogLevel:  getenv("DISCO_LOG_LEVEL", "info"),
		PrettyLog: mustBool("DISCO_PRETTY_LOG", false),

		// Login
		GoogleClientID:     requireEnv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: requireEnv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  getenv("GOOGLE_CALLBACK_URL", "http://localhost:5000/api/auth/google/callback"),
		JWTSecret:          requireEnv("JWT_SECRET"),
		JWTExpiresIn:       mustDuration("JWT_EXPIRES_IN", 168*time.Hour),

		// Storage
		SheetsID:            requireEnv("GOOGLE_SHEETS_ID"),
		ServiceAccountEmail: requireEnv("GOOGLE_SERVICE_ACCOUNT_EMAIL"),
		PrivateKey:          requireEnv("GOOGLE_PRIVATE_KEY"),
		SheetName:           getenv("SHEET_NAME", "Vinyl_Collection"),
		LocationsFile:       getenv("SHEETS_LOCATIONS_FILE", ""), // Optional, empty = built-in candidates

		FrontendURL: frontend,
		CORSOrigin:  getenv("DISCO_CORS_ORIGIN", frontend),

		// Cache
		EnableCache:               mustBool("ENABLE_CACHE", true),
		CacheTTL:                  mustDuration("CACHE_TTL", 5*time.Minute),
		CacheInvalidationInterval: mustDuration("CACHE_INVALIDATION_INTERVAL", 30*time.Minute),
		CacheBackend:              strings.ToLower(getenv("CACHE_BACKEND", CacheBackendMemory)),
		CacheWarmup:               mustBool("CACHE_WARMUP", true),

		// Redis settings
		RedisAddr:             getenv("DISCO_REDIS_ADDR", ""),
		RedisUser:             getenv("DISCO_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("DISCO_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("DISCO_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("DISCO_REDIS_DB", 0),
		RedisDT:               mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Metadata
		MusicBrainzURL:       getenv("MUSICBRAINZ_URL", "https://musicbrainz.org/ws/2"),
		CoverArtURL:          getenv("COVERART_URL", "https://coverartarchive.org"),
		MetadataUserAgent:    getenv("METADATA_USER_AGENT", "DiscoVinylApp/1.0"),
		MetadataTimeout:      mustDuration("METADATA_TIMEOUT", 10*time.Second),
		CoverArtProbeTimeout: mustDuration("COVERART_PROBE_TIMEOUT", 5*time.Second),
		MetadataRateBurst:    getenvInt("METADATA_RATE_BURST", 20),
		MetadataRatePerMin:   getenvInt("METADATA_RATE_PER_MIN", 60),

		// Access restrictions
		AllowPublicRead: mustBool("ALLOW_PUBLIC_READ", false),
		AdminCIDRS:      parseAllowedIPs(getenv("DISCO_ADMIN_CIDRS", "")),
		TrustProxy:      mustBool("DISCO_TRUST_PROXY", false),
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// Production reports whether internal error details must stay hidden.
func (c *Config) Production() bool {
	return c.Env == EnvProduction
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	for _, s := range []*string{&cp.GoogleClientSecret, &cp.JWTSecret, &cp.PrivateKey, &cp.RedisPassword} {
		if *s != "" {
			*s = "***REDACTED***"
		}
	}
	return cp
}

// Validate reports every semantic problem Load cannot catch.
func (c *Config) Validate() error {
	var errs []error

	if len(c.JWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters long", minJWTSecretLength))
	}
	if c.Env != EnvDevelopment && c.Env != EnvProduction {
		errs = append(errs, fmt.Errorf("DISCO_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, c.Env))
	}
	if c.JWTExpiresIn <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if c.EnableCache && c.CacheTTL <= 0 {
		errs = append(errs, errors.New("CACHE_TTL must be positive when the cache is enabled"))
	}
	if c.CacheInvalidationInterval <= 0 {
		errs = append(errs, errors.New("CACHE_INVALIDATION_INTERVAL must be positive"))
	}

	switch c.CacheBackend {
	case CacheBackendMemory:
	case CacheBackendRedis:
		if c.RedisAddr == "" {
			errs = append(errs, errors.New("DISCO_REDIS_ADDR is required when CACHE_BACKEND=redis"))
		}
		if c.RedisPasswordRequired && c.RedisPassword == "" {
			errs = append(errs, errors.New("DISCO_REDIS_PASSWORD is required when DISCO_REDIS_PASSWORD_REQUIRED=true"))
		}
	default:
		errs = append(errs, fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", CacheBackendMemory, CacheBackendRedis, c.CacheBackend))
	}

	return errors.Join(errs...)
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
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
