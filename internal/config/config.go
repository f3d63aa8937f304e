package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Chat platform
	BotToken    string // bot credential, required
	ChatAPIBase string // Bot API base URL, overridable for tests
	OwnerID     int64  // fixed owner user id, always authorized

	// Keep-alive target
	TargetURL      string        // web endpoint to keep awake
	PingInterval   time.Duration // background ping period (default: 10m)
	PingTimeout    time.Duration // per-ping timeout (default: 30s)
	WakeRetryDelay time.Duration // wait before the wake retry (default: 30s)

	// File relay
	PixeldrainURL      string        // file host base URL, overridable for tests
	PixeldrainKey      string        // file host API key (optional, empty = host disabled)
	TransferTimeout    time.Duration // whole-transfer timeout (default: 1h)
	LargeFileThreshold int64         // bytes; above this the file host is mandatory

	// Catalog backend
	CatalogURL string // backend API base URL
	CatalogKey string // backend API key (optional, empty = matching disabled)

	AllowlistFile string // path to the allow-list seed file (optional)

	// Redis (optional, empty addr = memory-only)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // initial wait between retries (grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts
}

func Load() *Config {
	// Local .env is a convenience for development; absence is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("KEEPER_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("KEEPER_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("KEEPER_LOG_LEVEL", "info"),
		PrettyLog: mustBool("KEEPER_PRETTY_LOG", true),

		// Chat platform
		BotToken:    requireEnv("KEEPER_BOT_TOKEN"),
		ChatAPIBase: getenv("KEEPER_CHAT_API_BASE", "https://api.telegram.org"),
		OwnerID:     requireEnvInt64("KEEPER_OWNER_ID"),

		// Keep-alive target
		TargetURL:      getenv("KEEPER_TARGET_URL", "https://iso-toolkit.onrender.com/"),
		PingInterval:   mustDuration("KEEPER_PING_INTERVAL", 10*time.Minute),
		PingTimeout:    mustDuration("KEEPER_PING_TIMEOUT", 30*time.Second),
		WakeRetryDelay: mustDuration("KEEPER_WAKE_RETRY_DELAY", 30*time.Second),

		// File relay
		PixeldrainURL:      getenv("KEEPER_PIXELDRAIN_URL", "https://pixeldrain.com"),
		PixeldrainKey:      getenv("KEEPER_PIXELDRAIN_API_KEY", ""),
		TransferTimeout:    mustDuration("KEEPER_TRANSFER_TIMEOUT", time.Hour),
		LargeFileThreshold: getenvInt64("KEEPER_LARGE_FILE_THRESHOLD", 7<<30),

		// Catalog backend
		CatalogURL: getenv("KEEPER_API_URL", "https://iso-toolkit.onrender.com/api"),
		CatalogKey: getenv("KEEPER_API_KEY", ""),

		AllowlistFile: getenv("KEEPER_ALLOWLIST_FILE", ""),

		// Redis settings
		RedisAddr:           getenv("KEEPER_REDIS_ADDR", ""),
		RedisUser:           getenv("KEEPER_REDIS_USERNAME", "default"),
		RedisPassword:       getenv("KEEPER_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("KEEPER_REDIS_DB", 0),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),
	}

	if cfg.LargeFileThreshold <= 0 {
		panic("❌ FATAL: KEEPER_LARGE_FILE_THRESHOLD must be positive")
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.BotToken = "***REDACTED***"
		if cfgCopy.PixeldrainKey != "" {
			cfgCopy.PixeldrainKey = "***REDACTED***"
		}
		if cfgCopy.CatalogKey != "" {
			cfgCopy.CatalogKey = "***REDACTED***"
		}
		if cfgCopy.RedisPassword != "" {
			cfgCopy.RedisPassword = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
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

func requireEnvInt64(key string) int64 {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid integer value for %s: %s", key, v))
	}
	return i
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
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
