package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  DBConfig
		want string
	}{
		{
			name: "dsn_wins",
			cfg:  DBConfig{DSN: "postgres://x@y/z", Host: "ignored"},
			want: "postgres://x@y/z",
		},
		{
			name: "composed",
			cfg:  DBConfig{Host: "db", Port: 5432, User: "club", Password: "p@ss", Name: "fulbito", SSLMode: "disable"},
			want: "postgres://club:p%40ss@db:5432/fulbito?sslmode=disable",
		},
		{
			name: "default_sslmode",
			cfg:  DBConfig{Host: "db", Port: 5432, User: "club", Password: "pw", Name: "fulbito"},
			want: "postgres://club:pw@db:5432/fulbito?sslmode=require",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.DatabaseURL())
		})
	}
}

func TestMustLoadByPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.yaml")
	content := `
env: test
log:
  level: debug
http:
  port: 9090
  allowed_origins: ["http://localhost:3000"]
auth:
  secret: s3cret
cache:
  players_ttl: 1m
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg := MustLoadByPath(path)

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "0.0.0.0:9090", cfg.HTTP.Addr())
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.HTTP.AllowedOrigins)
	assert.Equal(t, time.Minute, cfg.Cache.PlayersTTL)
	assert.Equal(t, 10*time.Minute, cfg.Cache.MatchesTTL)
	assert.Equal(t, 168*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, 10, cfg.Auth.BcryptCost)
}

func TestMustLoadByPath_MissingFilePanics(t *testing.T) {
	assert.Panics(t, func() {
		MustLoadByPath(filepath.Join(t.TempDir(), "absent.yaml"))
	})
}
