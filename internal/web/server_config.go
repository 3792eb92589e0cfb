package web

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	EnvPort            = "UPLOADER_PORT"
	EnvHost            = "UPLOADER_HOST"
	EnvDir             = "UPLOADER_DIR"
	EnvDirListing      = "UPLOADER_DIR_LISTING"
	EnvConfigFile      = "UPLOADER_CONFIG"
	EnvLogLevel        = "UPLOADER_LOG_LEVEL"
	EnvLogFormat       = "UPLOADER_LOG_FORMAT"
	EnvShowQR          = "UPLOADER_QR"
	EnvShutdownTimeout = "UPLOADER_SHUTDOWN_TIMEOUT"

	DefaultPort = 8080
	// DefaultShutdownTimeout of zero lets Stop wait for every in-flight
	// request.
	DefaultShutdownTimeout time.Duration = 0
)

// ServerConfig contains settings for running the HTTP server.
// It is built once at startup and passed by value; nothing mutates it afterwards.
type ServerConfig struct {
	// Host is the listen host. Empty binds all interfaces.
	Host string
	// Port 0 asks the kernel for an ephemeral port.
	Port int
	// BaseDir is the absolute directory files are served from.
	BaseDir string
	// DirListing selects between a generated index and 403 for directories
	// without an index.html.
	DirListing bool

	ShutdownTimeout time.Duration
	LogLevel        string
	LogFormat       string
	ShowQR          bool
}

// fileConfig mirrors the optional YAML config file. Pointers distinguish
// "unset" from zero values.
type fileConfig struct {
	Host            *string `yaml:"host"`
	Port            *int    `yaml:"port"`
	Dir             *string `yaml:"dir"`
	DirListing      *bool   `yaml:"dir_listing"`
	ShutdownTimeout *string `yaml:"shutdown_timeout"`
	LogLevel        *string `yaml:"log_level"`
	LogFormat       *string `yaml:"log_format"`
	QR              *bool   `yaml:"qr"`
}

// DefaultServerConfig returns the built-in defaults with BaseDir set to
// defaultDir.
func DefaultServerConfig(defaultDir string) ServerConfig {
	return ServerConfig{
		Port:            DefaultPort,
		BaseDir:         defaultDir,
		DirListing:      true,
		ShutdownTimeout: DefaultShutdownTimeout,
		LogLevel:        "info",
		LogFormat:       "text",
	}
}

// LoadServerConfig layers the optional YAML file and then the UPLOADER_*
// environment over the defaults. configPath wins over UPLOADER_CONFIG when
// both are set. Command line flags are applied on top by the caller.
func LoadServerConfig(defaultDir, configPath string) (ServerConfig, error) {
	return loadServerConfig(defaultDir, configPath, os.Getenv)
}

func loadServerConfig(defaultDir, configPath string, getenv func(string) string) (ServerConfig, error) {
	cfg := DefaultServerConfig(defaultDir)

	if configPath == "" {
		configPath = getenv(EnvConfigFile)
	}
	if configPath != "" {
		if err := cfg.ApplyFile(configPath); err != nil {
			return ServerConfig{}, err
		}
	}

	if err := cfg.applyEnv(getenv); err != nil {
		return ServerConfig{}, err
	}
	return cfg, nil
}

// ApplyFile overlays the keys present in the YAML file at path.
// A relative dir in the file is resolved against the file's directory.
func (c *ServerConfig) ApplyFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.UnmarshalStrict(raw, &fc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if fc.Host != nil {
		c.Host = *fc.Host
	}
	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.Dir != nil {
		dir := *fc.Dir
		if dir != "" && !filepath.IsAbs(dir) {
			dir = filepath.Join(filepath.Dir(path), dir)
		}
		c.BaseDir = dir
	}
	if fc.DirListing != nil {
		c.DirListing = *fc.DirListing
	}
	if fc.ShutdownTimeout != nil {
		d, err := time.ParseDuration(*fc.ShutdownTimeout)
		if err != nil {
			return fmt.Errorf("config %s: shutdown_timeout must be a duration (got %q): %w", path, *fc.ShutdownTimeout, err)
		}
		c.ShutdownTimeout = d
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		c.LogFormat = *fc.LogFormat
	}
	if fc.QR != nil {
		c.ShowQR = *fc.QR
	}
	return nil
}

func (c *ServerConfig) applyEnv(getenv func(string) string) error {
	if raw := getenv(EnvHost); raw != "" {
		c.Host = raw
	}
	if raw := getenv(EnvPort); raw != "" {
		port, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("%s must be an integer (got %q): %w", EnvPort, raw, err)
		}
		c.Port = port
	}
	if raw := getenv(EnvDir); raw != "" {
		c.BaseDir = raw
	}
	if raw := getenv(EnvDirListing); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s must be a boolean (got %q): %w", EnvDirListing, raw, err)
		}
		c.DirListing = parsed
	}
	if raw := getenv(EnvShowQR); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("%s must be a boolean (got %q): %w", EnvShowQR, raw, err)
		}
		c.ShowQR = parsed
	}
	if raw := getenv(EnvShutdownTimeout); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("%s must be a duration (got %q): %w", EnvShutdownTimeout, raw, err)
		}
		c.ShutdownTimeout = d
	}
	if raw := getenv(EnvLogLevel); raw != "" {
		c.LogLevel = raw
	}
	if raw := getenv(EnvLogFormat); raw != "" {
		c.LogFormat = raw
	}
	return nil
}

// Resolve makes BaseDir absolute and validates the result.
func (c ServerConfig) Resolve() (ServerConfig, error) {
	if c.BaseDir == "" {
		return ServerConfig{}, errors.New("base directory is not set")
	}
	abs, err := filepath.Abs(c.BaseDir)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("resolve base directory %q: %w", c.BaseDir, err)
	}
	c.BaseDir = abs
	if err := c.Validate(); err != nil {
		return ServerConfig{}, err
	}
	return c, nil
}

func (c ServerConfig) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port must be between 0 and 65535 (got %d)", c.Port)
	}
	if !filepath.IsAbs(c.BaseDir) {
		return fmt.Errorf("base directory must be absolute (got %q)", c.BaseDir)
	}
	st, err := os.Stat(c.BaseDir)
	if err != nil {
		return fmt.Errorf("base directory %s: %w", c.BaseDir, err)
	}
	if !st.IsDir() {
		return fmt.Errorf("base directory %s is not a directory", c.BaseDir)
	}
	if c.ShutdownTimeout < 0 {
		return fmt.Errorf("shutdown timeout must not be negative (got %s)", c.ShutdownTimeout)
	}
	return nil
}

// ListenAddr is host:port as passed to net.Listen.
func (c ServerConfig) ListenAddr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// URLForAddr turns a listen address into a browsable http URL, mapping
// wildcard hosts to localhost.
func URLForAddr(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	switch strings.Trim(host, "[]") {
	case "", "0.0.0.0", "::":
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// DefaultBaseDir is the directory holding the running executable. Under
// `go run` the binary lives in a temp build dir, so the working directory
// is used instead.
func DefaultBaseDir() string {
	wd, _ := os.Getwd()

	exe, err := os.Executable()
	if err != nil {
		return wd
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	dir := filepath.Dir(exe)

	tmp := os.TempDir()
	if resolved, err := filepath.EvalSymlinks(tmp); err == nil {
		tmp = resolved
	}
	if rel, err := filepath.Rel(tmp, dir); err == nil && !strings.HasPrefix(rel, "..") && wd != "" {
		return wd
	}
	return dir
}
