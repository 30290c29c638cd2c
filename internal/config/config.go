package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/a8m/envsubst"
	"gopkg.in/yaml.v3"
)

// ConfigFileEnvVariable names the environment variable that points to the YAML configuration file.
const ConfigFileEnvVariable = "WG_AGENT_CONFIG"

// Config is the root configuration of the agent.
type Config struct {
	Core struct {
		// DefaultListenPort is used if a request does not specify a listen port.
		DefaultListenPort uint16 `yaml:"default_listen_port"`
		// DefaultKeepalive is the persistent keepalive (seconds) written into provisioned peer configs.
		DefaultKeepalive uint32 `yaml:"default_keepalive"`
		// LocalEndpoint is the public endpoint (host:port) of this host, handed out to provisioned peers.
		LocalEndpoint string `yaml:"local_endpoint"`
		// DefaultLocalAllowedIPs are the allowed IPs a provisioned peer routes through this host.
		DefaultLocalAllowedIPs []string `yaml:"default_local_allowed_ips"`
		// RollbackOnFailure undoes the completed steps of a failed create or provision operation.
		RollbackOnFailure bool `yaml:"rollback_on_failure"`
		// SyncPersistedConfig re-writes the persisted wg-quick file after peer changes.
		SyncPersistedConfig bool `yaml:"sync_persisted_config"`
		// AuditLog enables the audit trail of all state changing operations.
		AuditLog bool `yaml:"audit_log"`
	} `yaml:"core"`

	Advanced struct {
		LogLevel  string `yaml:"log_level"`
		LogPretty bool   `yaml:"log_pretty"`
		LogJson   bool   `yaml:"log_json"`
	} `yaml:"advanced"`

	Backend Backend `yaml:"backend"`

	Statistics struct {
		// Collect enables the periodic transfer / handshake collection.
		Collect            bool          `yaml:"collect"`
		CollectionInterval time.Duration `yaml:"collection_interval"`
		UsePingChecks      bool          `yaml:"use_ping_checks"`
		PingCheckWorkers   int           `yaml:"ping_check_workers"`
		PingUnprivileged   bool          `yaml:"ping_unprivileged"`
		// ListeningAddress of the prometheus metrics endpoint. Empty disables the endpoint.
		ListeningAddress string `yaml:"listening_address"`
	} `yaml:"statistics"`

	Database DatabaseConfig `yaml:"database"`

	Web WebConfig `yaml:"web"`
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if err := c.Backend.Validate(); err != nil {
		return fmt.Errorf("invalid backend configuration: %w", err)
	}
	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}
	if c.Core.DefaultListenPort == 0 {
		return fmt.Errorf("default listen port must not be 0")
	}
	if c.Statistics.Collect && c.Statistics.CollectionInterval <= 0 {
		return fmt.Errorf("statistics collection interval must be positive")
	}
	if c.Statistics.UsePingChecks && c.Statistics.PingCheckWorkers <= 0 {
		return fmt.Errorf("ping check workers must be positive")
	}

	return nil
}

// LogStartupValues logs the most important configuration values at startup.
func (c *Config) LogStartupValues() {
	slog.Debug("configuration loaded",
		"platform", c.Backend.Platform,
		"linkDriver", c.Backend.LinkDriver,
		"configDir", c.Backend.ConfigDir,
		"useSudo", c.Backend.UseSudo,
		"nativeKeys", c.Backend.NativeKeys,
		"defaultListenPort", c.Core.DefaultListenPort,
		"rollbackOnFailure", c.Core.RollbackOnFailure,
		"auditLog", c.Core.AuditLog,
		"databaseType", c.Database.Type,
		"webListeningAddress", c.Web.ListeningAddress,
		"metricsListeningAddress", c.Statistics.ListeningAddress,
	)
}

func defaultConfig() *Config {
	cfg := &Config{}

	cfg.Core.DefaultListenPort = 51820
	cfg.Core.DefaultKeepalive = 25
	cfg.Core.DefaultLocalAllowedIPs = []string{"0.0.0.0/0"}
	cfg.Core.RollbackOnFailure = true
	cfg.Core.SyncPersistedConfig = true
	cfg.Core.AuditLog = true

	cfg.Advanced.LogLevel = "info"

	cfg.Backend = Backend{
		Platform:        "",
		LinkDriver:      LinkDriverIproute2,
		ConfigDir:       "/etc/wireguard",
		WgBinary:        "wg",
		IpBinary:        "ip",
		SystemctlBinary: "systemctl",
		WireGuardBinary: "wireguard.exe",
	}

	cfg.Statistics.Collect = true
	cfg.Statistics.CollectionInterval = 30 * time.Second
	cfg.Statistics.UsePingChecks = false
	cfg.Statistics.PingCheckWorkers = 4
	cfg.Statistics.PingUnprivileged = false
	cfg.Statistics.ListeningAddress = ":8787"

	cfg.Database = DatabaseConfig{
		Type: DatabaseSQLite,
		DSN:  "data/wg-agent.db",
	}

	cfg.Web = WebConfig{
		RequestLogging:   false,
		ListeningAddress: ":8123",
	}

	return cfg
}

// GetConfig returns the default configuration, overlaid with the values of the YAML configuration file.
// A missing configuration file is not an error.
func GetConfig() (*Config, error) {
	cfg := defaultConfig()

	cfgFileName := "config.yml"
	if envCfgFileName := os.Getenv(ConfigFileEnvVariable); envCfgFileName != "" {
		cfgFileName = envCfgFileName
	}

	if err := loadConfigFile(cfg, cfgFileName); err != nil {
		return nil, fmt.Errorf("failed to load config from yaml: %w", err)
	}

	cfg.Web.Sanitize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadConfigFile(cfg any, filename string) error {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		slog.Debug("config file does not exist, using defaults", "file", filename)
		return nil
	}

	data, err := envsubst.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	return nil
}
