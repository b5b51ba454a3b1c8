// Package config loads the demo server settings from the environment,
// with an optional dotenv file on top.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Upload store backends.
const (
	StoreDisk = "disk"
	StoreS3   = "s3"
)

// DefaultEnvFile is the dotenv file Load reads when given no path.
const DefaultEnvFile = ".env"

// Config is the demo server configuration. Every field maps to one
// WEFT_* environment variable.
type Config struct {
	// Addr is the HTTP listen address (WEFT_ADDR).
	Addr string

	// StaticDir is served under /static/ (WEFT_STATIC_DIR). Empty
	// disables static serving.
	StaticDir string

	// Store selects the upload backend: "disk" or "s3" (WEFT_STORE).
	Store string

	// UploadDir is the disk store root (WEFT_UPLOAD_DIR). Empty lets
	// the framework pick a temp directory.
	UploadDir string

	// MaxUploadBytes caps a single upload (WEFT_UPLOAD_MAX_BYTES,
	// plain bytes).
	MaxUploadBytes int64

	// UploadTTL is how long unclaimed uploads live before cleanup
	// (WEFT_UPLOAD_TTL, Go duration syntax).
	UploadTTL time.Duration

	// S3Bucket, S3Prefix, and S3Region configure the S3 store
	// (WEFT_S3_BUCKET, WEFT_S3_PREFIX, WEFT_S3_REGION).
	S3Bucket string
	S3Prefix string
	S3Region string

	// ProductAPI is the product service base URL the widget posts
	// images to (WEFT_PRODUCT_API).
	ProductAPI string

	// DevMode disables origin checks and caching (WEFT_DEV).
	DevMode bool
}

// Load reads the dotenv file at path when it exists (a missing file is
// fine; variables already set in the environment win), then builds the
// config from the environment. An empty path means DefaultEnvFile.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load %s: %w", path, err)
	}

	cfg := &Config{
		Addr:       getString("WEFT_ADDR", ":8080"),
		StaticDir:  getString("WEFT_STATIC_DIR", ""),
		Store:      getString("WEFT_STORE", StoreDisk),
		UploadDir:  getString("WEFT_UPLOAD_DIR", ""),
		S3Bucket:   getString("WEFT_S3_BUCKET", ""),
		S3Prefix:   getString("WEFT_S3_PREFIX", "uploads/temp/"),
		S3Region:   getString("WEFT_S3_REGION", "us-east-1"),
		ProductAPI: getString("WEFT_PRODUCT_API", "http://localhost:9000"),
	}

	var err error
	if cfg.MaxUploadBytes, err = getInt64("WEFT_UPLOAD_MAX_BYTES", 10<<20); err != nil {
		return nil, err
	}
	if cfg.UploadTTL, err = getDuration("WEFT_UPLOAD_TTL", time.Hour); err != nil {
		return nil, err
	}
	if cfg.DevMode, err = getBool("WEFT_DEV", false); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Store {
	case StoreDisk, StoreS3:
	default:
		return fmt.Errorf("config: WEFT_STORE must be %q or %q, got %q",
			StoreDisk, StoreS3, c.Store)
	}
	if c.Store == StoreS3 && c.S3Bucket == "" {
		return errors.New("config: WEFT_S3_BUCKET is required when WEFT_STORE=s3")
	}
	if c.MaxUploadBytes <= 0 {
		return fmt.Errorf("config: WEFT_UPLOAD_MAX_BYTES must be positive, got %d",
			c.MaxUploadBytes)
	}
	if c.UploadTTL <= 0 {
		return fmt.Errorf("config: WEFT_UPLOAD_TTL must be positive, got %s",
			c.UploadTTL)
	}
	return nil
}

func getString(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getInt64(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func getBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}
