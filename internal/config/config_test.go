package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/mebel/internal/listquery"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, ModeLive, cfg.Mode)
	assert.Equal(t, 15*time.Second, cfg.API.Timeout)
	assert.Equal(t, "password123", cfg.Users.DefaultPassword)
}

func TestLoadFillsDefaults(t *testing.T) {
	dir := t.TempDir()
	p := write(t, dir, "mebel.yaml", `
mode: mock
views:
  products:
    page_size: 25
mock:
  latency: 250ms
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, ModeMock, cfg.Mode)
	assert.Equal(t, 25, cfg.Views.Products.PageSize)
	assert.Equal(t, "updated_at", cfg.Views.Products.SortBy)
	assert.Equal(t, 10, cfg.Views.Users.PageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.Mock.Latency)
	assert.Equal(t, ":8000", cfg.Mock.Addr)
	assert.Equal(t, "http://127.0.0.1:8000/api/v1", cfg.API.BaseURL)
	require.NoError(t, cfg.Validate())
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("MEBEL_TEST_URL", "https://api.example.com/v1")
	p := write(t, t.TempDir(), "mebel.yaml", "api:\n  base_url: ${MEBEL_TEST_URL}\n")
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "https://api.example.com/v1", cfg.API.BaseURL)
}

func TestIncludesMergeWithoutOverriding(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "conf.d/a.yaml", `
api:
  base_url: https://included.example.com
  timeout: 3s
mock:
  allow_origins: [http://a.example]
`)
	write(t, dir, "conf.d/b.yaml", `
mock:
  allow_origins: [http://b.example]
`)
	p := write(t, dir, "mebel.yaml", `
api:
  base_url: https://main.example.com
mock:
  allow_origins: [http://main.example]
includes:
  - conf.d/*.yaml
`)
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, "https://main.example.com", cfg.API.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.API.Timeout)
	assert.Equal(t, []string{"http://main.example", "http://a.example", "http://b.example"}, cfg.Mock.AllowOrigins)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	p := write(t, t.TempDir(), "bad.yaml", "mode: [unterminated")
	_, err = Load(p)
	assert.ErrorContains(t, err, "failed to parse config file")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"mode", func(c *Config) { c.Mode = "staging" }, "mode must be"},
		{"url", func(c *Config) { c.API.BaseURL = "localhost:8000" }, "api.base_url"},
		{"page size", func(c *Config) { c.Views.Users.PageSize = 500 }, "views.users.page_size"},
		{"sort field", func(c *Config) { c.Views.Products.SortBy = "warna" }, "views.products.sort_by"},
		{"sort order", func(c *Config) { c.Views.Products.SortOrder = "up" }, "sort_order"},
		{"log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			assert.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}

	mock := Default()
	mock.Mode = ModeMock
	mock.API.BaseURL = ""
	assert.NoError(t, mock.Validate())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAPIURL, "https://env.example.com")
	t.Setenv(EnvMode, "MOCK")
	t.Setenv(EnvSessionFile, "/tmp/s.json")

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "https://env.example.com", cfg.API.BaseURL)
	assert.Equal(t, ModeMock, cfg.Mode)
	assert.Equal(t, "/tmp/s.json", cfg.Session.Path)
}

func TestLoadEnvIgnoresMissingFiles(t *testing.T) {
	dir := t.TempDir()
	envFile := write(t, dir, ".env", "MEBEL_TEST_FROM_DOTENV=yes\n")
	require.NoError(t, LoadEnv(filepath.Join(dir, "nope.env"), envFile))
	t.Cleanup(func() { os.Unsetenv("MEBEL_TEST_FROM_DOTENV") })
	assert.Equal(t, "yes", os.Getenv("MEBEL_TEST_FROM_DOTENV"))
}

func TestDefaultTemplateLoads(t *testing.T) {
	t.Setenv(EnvAPIURL, "")
	p := write(t, t.TempDir(), "mebel.yaml", DefaultTemplate())
	cfg, err := Load(p)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "http://127.0.0.1:8000/api/v1", cfg.API.BaseURL)
	assert.Equal(t, 300*time.Millisecond, cfg.Mock.Latency)
}

func TestViewConfig(t *testing.T) {
	v := ViewConfig{PageSize: 5, SortBy: "harga", SortOrder: "asc"}.View(listquery.View{})
	assert.Equal(t, 5, v.PageSize)
	assert.Equal(t, "harga", v.SortField)
	assert.Equal(t, listquery.Asc, v.SortOrder)
}
