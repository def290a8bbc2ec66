package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSettings struct {
	values map[string]string
	err    error
}

func (f *fakeSettings) GetSetting(ctx context.Context, key string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.values[key], nil
}

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_FileAndDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
listen_addr: ":9090"
database:
  driver: postgres
  dsn: postgres://localhost/foodrec
request_timeout: 10s
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.ListenAddr)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.AllowedOrigins)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_InvalidDriver(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("database:\n  driver: mysql\n"), 0o600))

	_, err := Load(path)
	assert.ErrorContains(t, err, "database.driver")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	applyEnv(&cfg, envMap(map[string]string{
		"PORT":                    "3000",
		"DATABASE_URL":            "file.db",
		"APP_API_URL":             "https://example.hf.space",
		"FOODREC_ALLOWED_ORIGINS": "http://a,http://b",
	}))

	assert.Equal(t, ":3000", cfg.ListenAddr)
	assert.Equal(t, "file.db", cfg.Database.DSN)
	assert.Equal(t, "https://example.hf.space", cfg.APIURL)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.AllowedOrigins)
}

func TestResolveEndpoint(t *testing.T) {
	ctx := context.Background()
	stored := &fakeSettings{values: map[string]string{SettingAPIURL: "owner/stored-space"}}
	env := envMap(map[string]string{"NEXT_PUBLIC_API_URL": "owner/next", "VITE_API_URL": "owner/vite"})

	assert.Equal(t, "https://override", ResolveEndpoint(ctx, "https://override", stored, env))
	assert.Equal(t, "owner/stored-space", ResolveEndpoint(ctx, "", stored, env))

	short := &fakeSettings{values: map[string]string{SettingAPIURL: "abc"}}
	assert.Equal(t, "owner/next", ResolveEndpoint(ctx, "", short, env))

	failing := &fakeSettings{err: errors.New("db down")}
	assert.Equal(t, "owner/vite", ResolveEndpoint(ctx, "", failing, envMap(map[string]string{"VITE_API_URL": "owner/vite"})))

	assert.Equal(t, DefaultEndpoint, ResolveEndpoint(ctx, "", nil, envMap(nil)))
}
