package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for sharectl.
type Config struct {
	ServerURL      string           `toml:"server_url"`
	Username       string           `toml:"username"`
	BaseDir        string           `toml:"base_dir"`
	LogDir         string           `toml:"log_dir"`
	LogLevel       string           `toml:"log_level"` // debug, info, warn or error
	Locale         string           `toml:"locale"`
	RequestTimeout time.Duration    `toml:"request_timeout"`
	SessionCookie  string           `toml:"session_cookie"`
	Pages          PagesConfig      `toml:"pages"`
	CSRF           CSRFConfig       `toml:"csrf"`
	Database       DatabaseConfig   `toml:"database"`
	Encryption     EncryptionConfig `toml:"encryption"`
}

// PagesConfig holds the server-relative paths of the rendered pages.
type PagesConfig struct {
	Files       string `toml:"files"`
	Directories string `toml:"directories"`
	SharedFiles string `toml:"shared_files"`
}

// CSRFConfig names the meta tags that carry the anti-forgery token and header name.
type CSRFConfig struct {
	TokenMeta  string `toml:"token_meta"`
	HeaderMeta string `toml:"header_meta"`
}

// DatabaseConfig represents configuration for the local journal database.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// EncryptionConfig locates the age identity that seals stored sessions.
type EncryptionConfig struct {
	Type         string `toml:"type"` // "age" (default) or "test"
	IdentityPath string `toml:"identity_path"`
}

// NewConfig creates a new Config for serverURL with defaults rooted at baseDir.
func NewConfig(serverURL, username, baseDir string) *Config {
	return &Config{
		ServerURL:      serverURL,
		Username:       username,
		BaseDir:        baseDir,
		LogDir:         filepath.Join(baseDir, "log"),
		LogLevel:       "info",
		Locale:         "en",
		RequestTimeout: 30 * time.Second,
		SessionCookie:  "JSESSIONID",
		Pages: PagesConfig{
			Files:       "/files",
			Directories: "/directories",
			SharedFiles: "/shared-files",
		},
		CSRF: CSRFConfig{
			TokenMeta:  "_csrf",
			HeaderMeta: "_csrf_header",
		},
		Database: DatabaseConfig{
			Type:    "sqlite",
			DataDir: filepath.Join(baseDir, "db"),
		},
		Encryption: EncryptionConfig{
			Type:         "age",
			IdentityPath: filepath.Join(baseDir, "keys", "session.key"),
		},
	}
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return errors.New("server_url is required")
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil {
		return fmt.Errorf("parsing server_url: %w", err)
	}
	if !u.IsAbs() || u.Host == "" {
		return fmt.Errorf("server_url must be absolute: %q", c.ServerURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	return nil
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path. It refuses to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
