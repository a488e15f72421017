package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, configName+".yaml"), []byte(body), 0644))
	return dir
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := writeConfig(t, "log:\n  level: debug\n")

	cfg, err := LoadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 60*time.Second, cfg.Cache.TTL())
	assert.Equal(t, 10, cfg.RateLimit.Limit)
	assert.Equal(t, 10*time.Second, cfg.RateLimit.Window())
	assert.Equal(t, "https://api.dexscreener.com/tokens/v1/solana", cfg.DexScreener.BaseURL)
	assert.False(t, cfg.Archive.Enable)
	assert.Equal(t, 30*24*time.Hour, cfg.Archive.Retention())
	assert.Equal(t, time.Hour, cfg.Archive.CleanupInterval())
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	dir := writeConfig(t, `
redis:
  address: 127.0.0.1:6379
  db: 3
helius:
  rpc_url: https://rpc.example.com/
  api_key: k1
rate_limit:
  limit: 5
  window_seconds: 2
archive:
  enable: true
`)

	cfg, err := LoadConfig(viper.New(), dir)
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Address)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, "https://rpc.example.com/?api-key=k1", cfg.Helius.Endpoint())
	assert.Equal(t, 5, cfg.RateLimit.Limit)
	assert.Equal(t, 2*time.Second, cfg.RateLimit.Window())
	assert.True(t, cfg.Archive.Enable)
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := writeConfig(t, "server:\n  addr: \":8080\"\n")
	t.Setenv("TOKEN_GUARD_SERVER_ADDR", ":7070")

	cfg, err := LoadConfig(viper.New(), dir)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig(viper.New(), t.TempDir())
	assert.Error(t, err)
}

func TestHeliusEndpoint(t *testing.T) {
	assert.Equal(t, "https://rpc.example.com", HeliusConfig{RpcURL: "https://rpc.example.com"}.Endpoint())
	assert.Equal(t, "https://rpc.example.com/?x=1&api-key=abc", HeliusConfig{RpcURL: "https://rpc.example.com/?x=1", APIKey: "abc"}.Endpoint())
}
