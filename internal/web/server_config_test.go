package web

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadServerConfig_Defaults(t *testing.T) {
	cfg, err := loadServerConfig("/srv/site", "", envMap(nil))
	require.NoError(t, err)

	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "/srv/site", cfg.BaseDir)
	assert.True(t, cfg.DirListing)
	assert.Equal(t, DefaultShutdownTimeout, cfg.ShutdownTimeout)
	assert.Zero(t, cfg.ShutdownTimeout, "default stop waits for every request")
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.False(t, cfg.ShowQR)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Equal(t, "http://localhost:8080", URLForAddr(cfg.ListenAddr()))
}

func TestLoadServerConfig_Env(t *testing.T) {
	cfg, err := loadServerConfig("/srv/site", "", envMap(map[string]string{
		EnvHost:            "127.0.0.1",
		EnvPort:            "9090",
		EnvDir:             "/tmp/other",
		EnvDirListing:      "false",
		EnvShowQR:          "1",
		EnvShutdownTimeout: "250ms",
		EnvLogLevel:        "debug",
		EnvLogFormat:       "json",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Host)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "/tmp/other", cfg.BaseDir)
	assert.False(t, cfg.DirListing)
	assert.True(t, cfg.ShowQR)
	assert.Equal(t, 250*time.Millisecond, cfg.ShutdownTimeout)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "http://127.0.0.1:9090", URLForAddr(cfg.ListenAddr()))
}

func TestLoadServerConfig_EnvErrors(t *testing.T) {
	tests := map[string]string{
		EnvPort:            "eighty",
		EnvDirListing:      "sometimes",
		EnvShowQR:          "maybe",
		EnvShutdownTimeout: "soon",
	}
	for key, val := range tests {
		_, err := loadServerConfig("/srv", "", envMap(map[string]string{key: val}))
		require.Error(t, err, key)
		assert.Contains(t, err.Error(), key)
	}
}

func TestLoadServerConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "uploader.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
host: 0.0.0.0
port: 3000
dir: public
dir_listing: false
shutdown_timeout: 1s
log_level: warn
qr: true
`), 0o644))

	cfg, err := loadServerConfig("/srv", path, envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0", cfg.Host)
	assert.Equal(t, 3000, cfg.Port)
	assert.Equal(t, filepath.Join(dir, "public"), cfg.BaseDir)
	assert.False(t, cfg.DirListing)
	assert.Equal(t, time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat, "unset keys keep defaults")
	assert.True(t, cfg.ShowQR)

	// Env overrides the file; the file path can also come from env.
	cfg, err = loadServerConfig("/srv", "", envMap(map[string]string{EnvConfigFile: path, EnvPort: "4000"}))
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.False(t, cfg.DirListing)
}

func TestLoadServerConfig_FileErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := loadServerConfig("/srv", filepath.Join(dir, "missing.yaml"), envMap(nil))
	assert.ErrorIs(t, err, os.ErrNotExist)

	unknown := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknown, []byte("prot: 80\n"), 0o644))
	_, err = loadServerConfig("/srv", unknown, envMap(nil))
	assert.Error(t, err)

	badDuration := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badDuration, []byte("shutdown_timeout: forever\n"), 0o644))
	_, err = loadServerConfig("/srv", badDuration, envMap(nil))
	assert.Error(t, err)
}

func TestServerConfig_Resolve(t *testing.T) {
	dir := t.TempDir()

	cfg := DefaultServerConfig(dir)
	resolved, err := cfg.Resolve()
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(resolved.BaseDir))

	file := filepath.Join(dir, "f.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	bad := []ServerConfig{
		DefaultServerConfig(""),
		DefaultServerConfig(filepath.Join(dir, "nope")),
		DefaultServerConfig(file),
		func() ServerConfig { c := DefaultServerConfig(dir); c.Port = 70000; return c }(),
		func() ServerConfig { c := DefaultServerConfig(dir); c.Port = -1; return c }(),
		func() ServerConfig { c := DefaultServerConfig(dir); c.ShutdownTimeout = -time.Second; return c }(),
	}
	for i, c := range bad {
		_, err := c.Resolve()
		assert.Error(t, err, "case %d", i)
	}
}

func TestURLForAddr(t *testing.T) {
	tests := map[string]string{
		":8080":          "http://localhost:8080",
		"0.0.0.0:8080":   "http://localhost:8080",
		"[::]:8080":      "http://localhost:8080",
		"127.0.0.1:9000": "http://127.0.0.1:9000",
		"[::1]:9000":     "http://[::1]:9000",
	}
	for in, want := range tests {
		assert.Equal(t, want, URLForAddr(in), in)
	}
}

func TestDefaultBaseDir(t *testing.T) {
	dir := DefaultBaseDir()
	assert.NotEmpty(t, dir)
	st, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, st.IsDir())
}
