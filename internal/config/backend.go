package config

import (
	"fmt"
	"time"
)

const (
	LinkDriverIproute2 = "iproute2"
	LinkDriverNetlink  = "netlink"
)

const (
	PlatformLinux   = "linux"
	PlatformWindows = "windows"
)

// Backend configures how the agent talks to the operating system.
type Backend struct {
	// Platform selects the platform command strategy. Empty means the platform the binary runs on.
	Platform string `yaml:"platform"`
	// LinkDriver selects how links and addresses are managed: iproute2 (ip tool) or netlink.
	LinkDriver string `yaml:"link_driver"`
	// ConfigDir holds the persisted wg-quick configuration files and the private key files.
	ConfigDir string `yaml:"config_dir"`
	// UseSudo prefixes every command with sudo.
	UseSudo bool `yaml:"use_sudo"`
	// NativeKeys generates and derives keys in-process instead of calling the wg tool.
	NativeKeys bool `yaml:"native_keys"`
	// CommandTimeout limits the runtime of a single command. 0 disables the limit.
	CommandTimeout time.Duration `yaml:"command_timeout"`

	WgBinary        string `yaml:"wg_binary"`
	IpBinary        string `yaml:"ip_binary"`
	SystemctlBinary string `yaml:"systemctl_binary"`
	// WireGuardBinary is the tunnel service manager used on windows.
	WireGuardBinary string `yaml:"wireguard_binary"`
}

// Validate checks the backend configuration for errors.
func (b *Backend) Validate() error {
	switch b.Platform {
	case "", PlatformLinux, PlatformWindows:
	default:
		return fmt.Errorf("unsupported platform %q", b.Platform)
	}

	switch b.LinkDriver {
	case "":
		b.LinkDriver = LinkDriverIproute2
	case LinkDriverIproute2, LinkDriverNetlink:
	default:
		return fmt.Errorf("unsupported link driver %q", b.LinkDriver)
	}

	if b.ConfigDir == "" {
		return fmt.Errorf("config directory must not be empty")
	}
	if b.WgBinary == "" || b.IpBinary == "" || b.SystemctlBinary == "" {
		return fmt.Errorf("tool binaries must not be empty")
	}
	if b.CommandTimeout < 0 {
		return fmt.Errorf("command timeout must not be negative")
	}

	return nil
}
