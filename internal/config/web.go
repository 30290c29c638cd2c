package config

import "strings"

// WebConfig contains the configuration for the web server.
type WebConfig struct {
	// RequestLogging enables logging of all HTTP requests.
	RequestLogging bool `yaml:"request_logging"`
	// ExposeHostInfo sets whether the host information should be exposed in a response header.
	ExposeHostInfo bool `yaml:"expose_host_info"`
	// ListeningAddress is the address and port for the web server.
	ListeningAddress string `yaml:"listening_address"`
	// BasicAuthUser enables HTTP basic authentication for the API if set.
	BasicAuthUser string `yaml:"basic_auth_user"`
	// BasicAuthPasswordHash is the bcrypt hash of the basic auth password.
	BasicAuthPasswordHash string `yaml:"basic_auth_password_hash"`
	// CertFile is the path to the TLS certificate file.
	CertFile string `yaml:"cert_file"`
	// KeyFile is the path to the TLS certificate key file.
	KeyFile string `yaml:"key_file"`
}

func (c *WebConfig) Sanitize() {
	c.BasicAuthUser = strings.TrimSpace(c.BasicAuthUser)
	c.BasicAuthPasswordHash = strings.TrimSpace(c.BasicAuthPasswordHash)
}

// AuthEnabled returns true if basic authentication is configured.
func (c *WebConfig) AuthEnabled() bool {
	return c.BasicAuthUser != "" && c.BasicAuthPasswordHash != ""
}
