// Package config handles runtime settings for the API server: defaults,
// environment overlay, then command-line flags.
package config

import (
	"flag"
	"os"
	"strconv"
	"time"

	"studentdocs.org/internal/throttle"
)

// Config holds runtime settings for the document portal server.
//
// The token signing secret is deliberately absent: it is read from
// STUDENTDOCS_AUTH_SECRET by the auth package and never passes through flags.
type Config struct {
	Addr              string
	DatabaseDSN       string
	UploadDir         string
	AuditLogPath      string
	MaxUploadBytes    int64
	TokenTTL          time.Duration
	ThrottleThreshold int
	BlockDuration     time.Duration
	SeedUsers         bool
}

// defaults mirror the portal's original deployment values.
func defaults() *Config {
	return &Config{
		Addr:              ":8080",
		UploadDir:         "uploads",
		AuditLogPath:      "security.log",
		MaxUploadBytes:    10 << 20,
		TokenTTL:          3600 * time.Second,
		ThrottleThreshold: throttle.DefaultThreshold,
		BlockDuration:     throttle.DefaultBlockDuration,
		SeedUsers:         true,
	}
}

// Load builds a Config from defaults, STUDENTDOCS_* environment variables and
// finally the given command-line arguments.
func Load(args []string) (*Config, error) {
	cfg := defaults()
	applyEnv(cfg)
	if err := applyFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("STUDENTDOCS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("STUDENTDOCS_PG_DSN"); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := os.Getenv("STUDENTDOCS_UPLOAD_DIR"); v != "" {
		cfg.UploadDir = v
	}
	if v := os.Getenv("STUDENTDOCS_AUDIT_LOG"); v != "" {
		cfg.AuditLogPath = v
	}
	if v := os.Getenv("STUDENTDOCS_MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("STUDENTDOCS_SEED_USERS"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.SeedUsers = b
		}
	}
}

func applyFlags(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("studentdocs-api", flag.ContinueOnError)

	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "listen address")
	fs.StringVar(&cfg.DatabaseDSN, "dsn", cfg.DatabaseDSN, "PostgreSQL DSN (empty runs in-memory)")
	fs.StringVar(&cfg.UploadDir, "uploads", cfg.UploadDir, "directory for uploaded files")
	fs.StringVar(&cfg.AuditLogPath, "audit-log", cfg.AuditLogPath, "append-only security audit log file")
	fs.Int64Var(&cfg.MaxUploadBytes, "max-upload", cfg.MaxUploadBytes, "maximum request body size in bytes")
	fs.IntVar(&cfg.ThrottleThreshold, "throttle-threshold", cfg.ThrottleThreshold, "failed attempts before an address is blocked")
	fs.DurationVar(&cfg.BlockDuration, "block-duration", cfg.BlockDuration, "how long a triggered block lasts")
	fs.DurationVar(&cfg.TokenTTL, "token-ttl", cfg.TokenTTL, "issued token lifetime")
	fs.BoolVar(&cfg.SeedUsers, "seed", cfg.SeedUsers, "create the demo accounts at startup if absent")

	return fs.Parse(args)
}
