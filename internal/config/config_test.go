package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// missingEnvFile returns a path no dotenv file exists at.
func missingEnvFile(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), ".env")
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":8080" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":8080")
	}
	if cfg.Store != StoreDisk {
		t.Errorf("Store = %q, want %q", cfg.Store, StoreDisk)
	}
	if cfg.MaxUploadBytes != 10<<20 {
		t.Errorf("MaxUploadBytes = %d, want %d", cfg.MaxUploadBytes, 10<<20)
	}
	if cfg.UploadTTL != time.Hour {
		t.Errorf("UploadTTL = %v, want %v", cfg.UploadTTL, time.Hour)
	}
	if cfg.S3Prefix != "uploads/temp/" {
		t.Errorf("S3Prefix = %q, want %q", cfg.S3Prefix, "uploads/temp/")
	}
	if cfg.DevMode {
		t.Error("DevMode = true, want false")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("WEFT_ADDR", ":3000")
	t.Setenv("WEFT_STATIC_DIR", "public")
	t.Setenv("WEFT_STORE", StoreS3)
	t.Setenv("WEFT_S3_BUCKET", "demo-bucket")
	t.Setenv("WEFT_S3_PREFIX", "tmp/")
	t.Setenv("WEFT_S3_REGION", "eu-west-1")
	t.Setenv("WEFT_UPLOAD_MAX_BYTES", "123456")
	t.Setenv("WEFT_UPLOAD_TTL", "90s")
	t.Setenv("WEFT_PRODUCT_API", "http://api.internal:9000")
	t.Setenv("WEFT_DEV", "true")

	cfg, err := Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Addr != ":3000" {
		t.Errorf("Addr = %q", cfg.Addr)
	}
	if cfg.StaticDir != "public" {
		t.Errorf("StaticDir = %q", cfg.StaticDir)
	}
	if cfg.Store != StoreS3 || cfg.S3Bucket != "demo-bucket" ||
		cfg.S3Prefix != "tmp/" || cfg.S3Region != "eu-west-1" {
		t.Errorf("S3 settings = %q %q %q %q",
			cfg.Store, cfg.S3Bucket, cfg.S3Prefix, cfg.S3Region)
	}
	if cfg.MaxUploadBytes != 123456 {
		t.Errorf("MaxUploadBytes = %d", cfg.MaxUploadBytes)
	}
	if cfg.UploadTTL != 90*time.Second {
		t.Errorf("UploadTTL = %v", cfg.UploadTTL)
	}
	if cfg.ProductAPI != "http://api.internal:9000" {
		t.Errorf("ProductAPI = %q", cfg.ProductAPI)
	}
	if !cfg.DevMode {
		t.Error("DevMode = false, want true")
	}
}

func TestLoadDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	content := "WEFT_ADDR=:7070\nWEFT_PRODUCT_API=http://dotenv.example\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	// godotenv sets process env; undo after the test.
	t.Cleanup(func() {
		os.Unsetenv("WEFT_ADDR")
		os.Unsetenv("WEFT_PRODUCT_API")
	})

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Errorf("Addr = %q, want %q", cfg.Addr, ":7070")
	}
	if cfg.ProductAPI != "http://dotenv.example" {
		t.Errorf("ProductAPI = %q", cfg.ProductAPI)
	}
}

func TestEnvWinsOverDotenv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("WEFT_ADDR=:7070\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	t.Setenv("WEFT_ADDR", ":9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9999" {
		t.Fatalf("Addr = %q, want the environment value %q", cfg.Addr, ":9999")
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "unknown store",
			env:     map[string]string{"WEFT_STORE": "redis"},
			wantErr: "WEFT_STORE",
		},
		{
			name:    "s3 without bucket",
			env:     map[string]string{"WEFT_STORE": StoreS3},
			wantErr: "WEFT_S3_BUCKET",
		},
		{
			name:    "non-numeric size",
			env:     map[string]string{"WEFT_UPLOAD_MAX_BYTES": "12MB"},
			wantErr: "WEFT_UPLOAD_MAX_BYTES",
		},
		{
			name:    "zero size",
			env:     map[string]string{"WEFT_UPLOAD_MAX_BYTES": "0"},
			wantErr: "WEFT_UPLOAD_MAX_BYTES",
		},
		{
			name:    "bad duration",
			env:     map[string]string{"WEFT_UPLOAD_TTL": "soon"},
			wantErr: "WEFT_UPLOAD_TTL",
		},
		{
			name:    "negative duration",
			env:     map[string]string{"WEFT_UPLOAD_TTL": "-1h"},
			wantErr: "WEFT_UPLOAD_TTL",
		},
		{
			name:    "bad bool",
			env:     map[string]string{"WEFT_DEV": "yep"},
			wantErr: "WEFT_DEV",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(missingEnvFile(t))
			if err == nil {
				t.Fatal("Load succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}
