/*
Package config loads the console configuration: backend location, list view
defaults, the session file and the development backend.
*/
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/oarkflow/mebel/internal/gateway"
	"github.com/oarkflow/mebel/internal/listquery"
)

// Modes
const (
	ModeLive = "live"
	ModeMock = "mock"
)

// FileName is the configuration file looked up in the working directory.
const FileName = ".mebel.yaml"

// Environment overrides
const (
	EnvAPIURL      = "MEBEL_API_URL"
	EnvMode        = "MEBEL_MODE"
	EnvSessionFile = "MEBEL_SESSION_FILE"
)

// Config is the complete console configuration
type Config struct {
	// Mode selects the live backend or the in-memory strategies
	Mode string `yaml:"mode"`

	API     APIConfig     `yaml:"api"`
	Session SessionConfig `yaml:"session,omitempty"`
	Views   ViewsConfig   `yaml:"views,omitempty"`
	Users   UsersConfig   `yaml:"users,omitempty"`
	Mock    MockConfig    `yaml:"mock,omitempty"`
	Log     LogConfig     `yaml:"log,omitempty"`

	// Include other configuration files
	Includes []string `yaml:"includes,omitempty"`
}

// APIConfig locates the backend
type APIConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout,omitempty"`
	UserAgent string        `yaml:"user_agent,omitempty"`
}

// SessionConfig configures where the token is kept
type SessionConfig struct {
	// Path of the session file; empty uses the user config dir
	Path string `yaml:"path,omitempty"`
}

// ViewConfig is the initial query of a list view
type ViewConfig struct {
	PageSize  int    `yaml:"page_size,omitempty"`
	SortBy    string `yaml:"sort_by,omitempty"`
	SortOrder string `yaml:"sort_order,omitempty"`
}

// ViewsConfig holds the per-resource list defaults
type ViewsConfig struct {
	Products ViewConfig `yaml:"products,omitempty"`
	Users    ViewConfig `yaml:"users,omitempty"`
}

// UsersConfig configures user management
type UsersConfig struct {
	// DefaultPassword is sent when a user is created without one
	DefaultPassword string `yaml:"default_password,omitempty"`
}

// MockConfig configures the in-memory strategies and serve-mock
type MockConfig struct {
	Latency                time.Duration `yaml:"latency,omitempty"`
	Addr                   string        `yaml:"addr,omitempty"`
	BasePath               string        `yaml:"base_path,omitempty"`
	JWTSecret              string        `yaml:"jwt_secret,omitempty"`
	UploadDir              string        `yaml:"upload_dir,omitempty"`
	PublicURL              string        `yaml:"public_url,omitempty"`
	AllowOrigins           []string      `yaml:"allow_origins,omitempty"`
	DisableUserStatusPatch bool          `yaml:"disable_user_status_patch,omitempty"`
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Mode: ModeLive,
		API: APIConfig{
			BaseURL:   "http://127.0.0.1:8000/api/v1",
			Timeout:   15 * time.Second,
			UserAgent: "mebel",
		},
		Views: ViewsConfig{
			Products: ViewConfig{PageSize: listquery.DefaultPageSize, SortBy: gateway.SortUpdatedAt, SortOrder: string(listquery.Desc)},
			Users:    ViewConfig{PageSize: listquery.DefaultPageSize, SortBy: "nama", SortOrder: string(listquery.Asc)},
		},
		Users: UsersConfig{DefaultPassword: gateway.DefaultUserPassword},
		Mock: MockConfig{
			Addr:      ":8000",
			BasePath:  "/api/v1",
			JWTSecret: "mebel-dev-secret",
		},
		Log: LogConfig{Level: "warn"},
	}
}

// FindPath returns the first existing configuration file: ./.mebel.yaml,
// then <user config dir>/mebel/config.yaml. It returns "" when none exists.
func FindPath() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "mebel", "config.yaml"))
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadEnv loads .env files into the environment without overriding
// variables that are already set. Missing files are ignored.
func LoadEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", f, err)
		}
		log.Debug("Loaded environment file", "path", f)
	}
	return nil
}

// Resolve loads path, or the defaults when path is empty, and applies the
// environment overrides.
func Resolve(path string) (*Config, error) {
	var cfg *Config
	if path == "" {
		d := Default()
		cfg = &d
	} else {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	cfg.ApplyEnv()
	return cfg, nil
}

// Load loads configuration from a file and fills unset values from Default.
func Load(path string) (*Config, error) {
	cfg, err := load(path, 0)
	if err != nil {
		return nil, err
	}
	if err := mergo.Merge(cfg, Default()); err != nil {
		return nil, fmt.Errorf("failed to apply defaults: %w", err)
	}
	return cfg, nil
}

const maxIncludeDepth = 8

func load(path string, depth int) (*Config, error) {
	if depth > maxIncludeDepth {
		return nil, fmt.Errorf("includes nested too deeply at %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Process includes; values in the including file win
	baseDir := filepath.Dir(path)
	for _, include := range cfg.Includes {
		includePath := include
		if !filepath.IsAbs(includePath) {
			includePath = filepath.Join(baseDir, include)
		}

		matches, err := filepath.Glob(includePath)
		if err != nil {
			return nil, fmt.Errorf("invalid include pattern %s: %w", include, err)
		}

		for _, match := range matches {
			includeCfg, err := load(match, depth+1)
			if err != nil {
				return nil, fmt.Errorf("failed to load include %s: %w", match, err)
			}
			includeCfg.Includes = nil

			if err := mergo.Merge(&cfg, includeCfg, mergo.WithAppendSlice); err != nil {
				return nil, fmt.Errorf("failed to merge include %s: %w", match, err)
			}
		}
	}

	return &cfg, nil
}

// ApplyEnv applies MEBEL_* overrides.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		c.API.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMode)); v != "" {
		c.Mode = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSessionFile)); v != "" {
		c.Session.Path = v
	}
}

var sortFields = map[string][]string{
	"products": {gateway.SortUpdatedAt, gateway.SortName, gateway.SortPrice, gateway.SortStock, gateway.SortCategory},
	"users":    {"nama"},
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeLive, ModeMock:
	default:
		return fmt.Errorf("mode must be %q or %q, got %q", ModeLive, ModeMock, c.Mode)
	}

	if c.Mode == ModeLive {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("api.base_url must be an absolute http(s) URL, got %q", c.API.BaseURL)
		}
	}
	if c.API.Timeout < 0 {
		return fmt.Errorf("api.timeout must not be negative")
	}

	views := map[string]ViewConfig{"products": c.Views.Products, "users": c.Views.Users}
	for name, v := range views {
		if v.PageSize < 1 || v.PageSize > 100 {
			return fmt.Errorf("views.%s.page_size must be between 1 and 100", name)
		}
		if !contains(sortFields[name], v.SortBy) {
			return fmt.Errorf("views.%s.sort_by %q is not one of %s", name, v.SortBy, strings.Join(sortFields[name], ", "))
		}
		if _, ok := listquery.ParseSortOrder(v.SortOrder); !ok {
			return fmt.Errorf("views.%s.sort_order must be asc or desc", name)
		}
	}

	if c.Log.Level != "" {
		if _, err := log.ParseLevel(c.Log.Level); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// View converts a view config into the list view's initial state.
func (v ViewConfig) View(base listquery.View) listquery.View {
	base.PageSize = v.PageSize
	base.SortField = v.SortBy
	if o, ok := listquery.ParseSortOrder(v.SortOrder); ok {
		base.SortOrder = o
	}
	return base
}

// DefaultTemplate returns the default configuration template
func DefaultTemplate() string {
	return `# mebel configuration file

# live talks to the backend below; mock serves built-in data in memory
mode: live

api:
  base_url: ${MEBEL_API_URL}
  timeout: 15s

session:
  # path: ~/.config/mebel/session.json

views:
  products:
    page_size: 10
    sort_by: updated_at
    sort_order: desc
  users:
    page_size: 10
    sort_by: nama
    sort_order: asc

users:
  default_password: password123

# development backend (mebel serve-mock) and mock mode
mock:
  addr: ":8000"
  base_path: /api/v1
  latency: 300ms
  jwt_secret: change-me
  disable_user_status_patch: false

log:
  level: warn

# includes:
#   - ./config.d/*.yaml
`
}
