package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetConfig_Defaults(t *testing.T) {
	t.Setenv(ConfigFileEnvVariable, filepath.Join(t.TempDir(), "missing.yml"))

	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, uint16(51820), cfg.Core.DefaultListenPort)
	assert.True(t, cfg.Core.RollbackOnFailure)
	assert.Equal(t, LinkDriverIproute2, cfg.Backend.LinkDriver)
	assert.Equal(t, DatabaseSQLite, cfg.Database.Type)
	assert.False(t, cfg.Web.AuthEnabled())
}

func TestGetConfig_FileWithEnvSubstitution(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte(`
core:
  default_listen_port: 51900
  local_endpoint: ${WG_AGENT_TEST_ENDPOINT}
  rollback_on_failure: false
backend:
  link_driver: netlink
  config_dir: /tmp/wg
  command_timeout: 5s
web:
  basic_auth_user: "  admin  "
  basic_auth_password_hash: "bcrypt-hash"
`), 0o600))
	t.Setenv(ConfigFileEnvVariable, cfgFile)
	t.Setenv("WG_AGENT_TEST_ENDPOINT", "vpn.example.com:51900")

	cfg, err := GetConfig()
	require.NoError(t, err)

	assert.Equal(t, uint16(51900), cfg.Core.DefaultListenPort)
	assert.Equal(t, "vpn.example.com:51900", cfg.Core.LocalEndpoint)
	assert.False(t, cfg.Core.RollbackOnFailure)
	assert.Equal(t, LinkDriverNetlink, cfg.Backend.LinkDriver)
	assert.Equal(t, "/tmp/wg", cfg.Backend.ConfigDir)
	assert.Equal(t, 5*time.Second, cfg.Backend.CommandTimeout)
	assert.Equal(t, "wg", cfg.Backend.WgBinary, "unset values keep their defaults")
	assert.Equal(t, "admin", cfg.Web.BasicAuthUser)
	assert.True(t, cfg.Web.AuthEnabled())
}

func TestGetConfig_InvalidFile(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("core: ["), 0o600))
	t.Setenv(ConfigFileEnvVariable, cfgFile)

	_, err := GetConfig()
	assert.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(cfg *Config)
		wantErr bool
	}{
		{name: "defaults", modify: func(*Config) {}},
		{name: "unknown platform", modify: func(c *Config) { c.Backend.Platform = "plan9" }, wantErr: true},
		{name: "unknown link driver", modify: func(c *Config) { c.Backend.LinkDriver = "ioctl" }, wantErr: true},
		{name: "empty link driver", modify: func(c *Config) { c.Backend.LinkDriver = "" }},
		{name: "empty config dir", modify: func(c *Config) { c.Backend.ConfigDir = "" }, wantErr: true},
		{name: "empty wg binary", modify: func(c *Config) { c.Backend.WgBinary = "" }, wantErr: true},
		{name: "negative timeout", modify: func(c *Config) { c.Backend.CommandTimeout = -time.Second }, wantErr: true},
		{name: "unknown database", modify: func(c *Config) { c.Database.Type = "oracle" }, wantErr: true},
		{name: "empty dsn", modify: func(c *Config) { c.Database.DSN = "" }, wantErr: true},
		{name: "zero listen port", modify: func(c *Config) { c.Core.DefaultListenPort = 0 }, wantErr: true},
		{name: "zero interval", modify: func(c *Config) { c.Statistics.CollectionInterval = 0 }, wantErr: true},
		{
			name: "ping without workers",
			modify: func(c *Config) {
				c.Statistics.UsePingChecks = true
				c.Statistics.PingCheckWorkers = 0
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
