package platform

import (
	"context"
	"fmt"

	"github.com/h44z/wg-agent/internal/app/wgshow"
	"github.com/h44z/wg-agent/internal/config"
	"github.com/h44z/wg-agent/internal/domain"
)

// Windows manages interfaces as WireGuard tunnel services. Installing the tunnel service creates and starts
// the interface from its persisted configuration file, so boot registration is implied.
type Windows struct {
	cfg    config.Backend
	runner CommandRunner
	files  FileStore
}

func NewWindows(cfg config.Backend, runner CommandRunner, files FileStore) *Windows {
	return &Windows{
		cfg:    cfg,
		runner: runner,
		files:  files,
	}
}

func (w *Windows) Name() string {
	return config.PlatformWindows
}

func (w *Windows) GenPrivateKey(ctx context.Context) (domain.Key, error) {
	out, err := w.runner.Run(ctx, w.cfg.WgBinary, "genkey")
	if err != nil {
		return "", fmt.Errorf("failed to generate private key: %w", err)
	}
	return wgshow.ParseKey(out), nil
}

func (w *Windows) BringUp(ctx context.Context, name string) error {
	confPath := w.files.Path(configFileName(name))
	if !w.files.Exists(configFileName(name)) {
		return fmt.Errorf("%w: tunnel configuration %s", domain.ErrNotFound, confPath)
	}
	if _, err := w.runner.Run(ctx, w.cfg.WireGuardBinary, "/installtunnelservice", confPath); err != nil {
		return fmt.Errorf("failed to install tunnel service %s: %w", name, err)
	}
	return nil
}

func (w *Windows) BringDown(ctx context.Context, name string) error {
	_, err := w.runner.Run(ctx, w.cfg.WireGuardBinary, "/uninstalltunnelservice", name)
	if domain.IgnoreNotFound(err) != nil {
		return fmt.Errorf("failed to uninstall tunnel service %s: %w", name, err)
	}
	return nil
}

func (w *Windows) DeleteConfig(_ context.Context, name string) error {
	return removeConfigFiles(w.files, name)
}

func (w *Windows) EnableService(_ context.Context, _ string) error {
	return nil
}

func (w *Windows) DisableService(_ context.Context, _ string) error {
	return nil
}

func (w *Windows) ConfigFileName(name string) string {
	return configFileName(name)
}

func (w *Windows) KeyFileName(name string) string {
	return keyFileName(name)
}
