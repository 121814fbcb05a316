package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG", "")
	t.Setenv("S3_BUCKET", "")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, "mongo", cfg.StoreDriver)
	assert.Equal(t, time.Hour, cfg.TokenValidity)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Empty(t, cfg.RedisAddr)
	assert.Empty(t, cfg.S3Bucket, "media uploads are opt-in")
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http_addr: ":8080"
store_driver: postgres
database_uri: postgres://localhost/commonroom
token_validity: 2h
bcrypt_cost: 10
`), 0o600))

	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("IDENTITY_CACHE_TTL_MINUTES", "5")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, "postgres://localhost/commonroom", cfg.DatabaseURI)
	assert.Equal(t, 2*time.Hour, cfg.TokenValidity)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.Equal(t, 5*time.Minute, cfg.IdentityCacheTTL)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("STORE_DRIVER=memory\nTOKEN_VALIDITY_MINUTES=30\n"), 0o600))
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("TOKEN_VALIDITY_MINUTES", "")
	// t.Setenv with "" still sets the variable, godotenv only fills unset ones
	require.NoError(t, os.Unsetenv("STORE_DRIVER"))
	require.NoError(t, os.Unsetenv("TOKEN_VALIDITY_MINUTES"))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.Equal(t, 30*time.Minute, cfg.TokenValidity)
}

func TestLoad_MissingFile(t *testing.T) {
	chdirTemp(t)
	_, err := Load("does-not-exist.yaml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults are valid", func(c *Config) {}, ""},
		{"unknown driver", func(c *Config) { c.StoreDriver = "sqlite" }, "unknown STORE_DRIVER"},
		{"memory needs no uri", func(c *Config) { c.StoreDriver = "memory"; c.DatabaseURI = "" }, ""},
		{"mongo needs uri", func(c *Config) { c.DatabaseURI = "" }, "DATABASE_URI is required"},
		{"empty secret", func(c *Config) { c.SecretKey = "" }, "JWT_KEY is required"},
		{"default secret in production", func(c *Config) { c.Env = "production" }, "must be changed in production"},
		{"bcrypt cost too low", func(c *Config) { c.BcryptCost = 2 }, "BCRYPT_COST"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
