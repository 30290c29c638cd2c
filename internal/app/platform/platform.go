// Package platform contains the operating system specific command strategies. A strategy is selected once at
// startup and used for all key generation, link state, config file and service operations.
package platform

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/h44z/wg-agent/internal/config"
	"github.com/h44z/wg-agent/internal/domain"
)

// Strategy bundles the platform specific primitives used by the interface lifecycle.
type Strategy interface {
	// Name returns the platform name, e.g. linux.
	Name() string
	// GenPrivateKey generates a new WireGuard private key.
	GenPrivateKey(ctx context.Context) (domain.Key, error)
	// BringUp activates the interface.
	BringUp(ctx context.Context, name string) error
	// BringDown deactivates the interface. A missing interface is not an error.
	BringDown(ctx context.Context, name string) error
	// DeleteConfig removes the persisted configuration and key files. Missing files are not an error.
	DeleteConfig(ctx context.Context, name string) error
	// EnableService registers the persisted configuration to be started at boot.
	EnableService(ctx context.Context, name string) error
	// DisableService removes the boot registration. A missing registration is not an error.
	DisableService(ctx context.Context, name string) error
	// ConfigFileName returns the name of the persisted configuration file, relative to the config directory.
	ConfigFileName(name string) string
	// KeyFileName returns the name of the private key file, relative to the config directory.
	KeyFileName(name string) string
}

// region dependencies

type CommandRunner interface {
	// Run executes the command and returns its stdout.
	Run(ctx context.Context, name string, args ...string) (string, error)
	// RunWithInput executes the command with the given stdin and returns its stdout.
	RunWithInput(ctx context.Context, input string, name string, args ...string) (string, error)
}

type LinkStateController interface {
	// SetUp sets the link state to up.
	SetUp(ctx context.Context, name string) error
	// SetDown sets the link state to down.
	SetDown(ctx context.Context, name string) error
}

type FileStore interface {
	// Path returns the absolute path of a file.
	Path(name string) string
	// WriteFile atomically replaces the file.
	WriteFile(name string, contents io.Reader) error
	// RemoveFile removes the file. A missing file is not an error.
	RemoveFile(name string) error
	// Exists returns true if the file exists.
	Exists(name string) bool
}

// endregion dependencies

// Select returns the strategy for the configured platform, or for the platform the binary runs on.
func Select(cfg *config.Config, runner CommandRunner, links LinkStateController, files FileStore) (Strategy, error) {
	platform := cfg.Backend.Platform
	if platform == "" {
		platform = runtime.GOOS
	}

	switch platform {
	case config.PlatformLinux:
		return NewLinux(cfg.Backend, runner, links, files), nil
	case config.PlatformWindows:
		return NewWindows(cfg.Backend, runner, files), nil
	default:
		return nil, fmt.Errorf("unsupported platform %q", platform)
	}
}

func configFileName(name string) string {
	return name + ".conf"
}

func keyFileName(name string) string {
	return name + ".private.key"
}

func removeConfigFiles(files FileStore, name string) error {
	if err := files.RemoveFile(configFileName(name)); err != nil {
		return fmt.Errorf("failed to remove config file of %s: %w", name, err)
	}
	if err := files.RemoveFile(keyFileName(name)); err != nil {
		return fmt.Errorf("failed to remove key file of %s: %w", name, err)
	}
	return nil
}
