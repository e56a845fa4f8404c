package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SLUGGO_DB_DSN", "postgres://localhost/sluggo")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Errorf("Addr = %q, want :8080", cfg.HTTP.Addr)
	}
	if cfg.Auth.TokenTTL != 12*time.Hour {
		t.Errorf("TokenTTL = %v, want 12h", cfg.Auth.TokenTTL)
	}
	if cfg.Paging.PageSize != 25 || cfg.Paging.MaxPageSize != 100 {
		t.Errorf("paging = %d/%d, want 25/100", cfg.Paging.PageSize, cfg.Paging.MaxPageSize)
	}
}

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("SLUGGO_DB_DSN", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load() with no DSN should fail")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SLUGGO_DB_DSN", "postgres://localhost/sluggo")
	t.Setenv("SLUGGO_HTTP_ADDR", ":9090")
	t.Setenv("SLUGGO_TOKEN_TTL", "30m")
	t.Setenv("SLUGGO_PAGE_SIZE", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":9090" {
		t.Errorf("Addr = %q, want :9090", cfg.HTTP.Addr)
	}
	if cfg.Auth.TokenTTL != 30*time.Minute {
		t.Errorf("TokenTTL = %v, want 30m", cfg.Auth.TokenTTL)
	}
	if cfg.Paging.PageSize != 10 {
		t.Errorf("PageSize = %d, want 10", cfg.Paging.PageSize)
	}
}

func TestLoadYAMLFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	body := `
http:
  addr: ":7070"
db:
  dsn: postgres://filehost/sluggo
paging:
  page_size: 50
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("SLUGGO_CONFIG", path)
	t.Setenv("SLUGGO_HTTP_ADDR", ":9999")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTP.Addr != ":9999" {
		t.Errorf("Addr = %q, env should override file", cfg.HTTP.Addr)
	}
	if cfg.DB.DSN != "postgres://filehost/sluggo" {
		t.Errorf("DSN = %q, want value from file", cfg.DB.DSN)
	}
	if cfg.Paging.PageSize != 50 {
		t.Errorf("PageSize = %d, want 50", cfg.Paging.PageSize)
	}
}

func TestLoadRejectsInvertedPaging(t *testing.T) {
	t.Setenv("SLUGGO_DB_DSN", "postgres://localhost/sluggo")
	t.Setenv("SLUGGO_PAGE_SIZE", "200")
	t.Setenv("SLUGGO_MAX_PAGE_SIZE", "100")

	if _, err := Load(); err == nil {
		t.Fatal("Load() should reject page size above the maximum")
	}
}
