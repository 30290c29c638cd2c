package platform

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/h44z/wg-agent/internal/app/wgshow"
	"github.com/h44z/wg-agent/internal/config"
	"github.com/h44z/wg-agent/internal/domain"
)

// Linux manages interfaces with the wg tool, a link driver and wg-quick systemd units.
type Linux struct {
	cfg    config.Backend
	runner CommandRunner
	links  LinkStateController
	files  FileStore
}

func NewLinux(cfg config.Backend, runner CommandRunner, links LinkStateController, files FileStore) *Linux {
	return &Linux{
		cfg:    cfg,
		runner: runner,
		links:  links,
		files:  files,
	}
}

func (l *Linux) Name() string {
	return config.PlatformLinux
}

func (l *Linux) GenPrivateKey(ctx context.Context) (domain.Key, error) {
	out, err := l.runner.Run(ctx, l.cfg.WgBinary, "genkey")
	if err != nil {
		return "", fmt.Errorf("failed to generate private key: %w", err)
	}
	return wgshow.ParseKey(out), nil
}

func (l *Linux) BringUp(ctx context.Context, name string) error {
	return l.links.SetUp(ctx, name)
}

func (l *Linux) BringDown(ctx context.Context, name string) error {
	return domain.IgnoreNotFound(l.links.SetDown(ctx, name))
}

func (l *Linux) DeleteConfig(_ context.Context, name string) error {
	return removeConfigFiles(l.files, name)
}

func (l *Linux) EnableService(ctx context.Context, name string) error {
	if _, err := l.runner.Run(ctx, l.cfg.SystemctlBinary, "enable", serviceUnitName(name)); err != nil {
		return fmt.Errorf("failed to enable %s: %w", serviceUnitName(name), err)
	}
	return nil
}

// DisableService stops and disables the wg-quick unit of the interface and clears its failed state.
// Nothing is done if no such unit is known to systemd.
func (l *Linux) DisableService(ctx context.Context, name string) error {
	out, err := l.runner.Run(ctx, l.cfg.SystemctlBinary,
		"list-units", "wg-quick*", "-t", "service", "--full", "--all", "--plain", "--no-legend")
	if err != nil {
		return fmt.Errorf("failed to list wg-quick units: %w", err)
	}

	unit := serviceUnitName(name)
	if !slices.Contains(ParseUnitList(out), unit) {
		slog.Debug("no wg-quick unit registered", "interface", name)
		return nil
	}

	steps := [][]string{
		{"stop", unit},
		{"disable", unit},
		{"daemon-reload"},
		{"reset-failed"},
	}
	for _, args := range steps {
		if _, err := l.runner.Run(ctx, l.cfg.SystemctlBinary, args...); domain.IgnoreNotFound(err) != nil {
			return fmt.Errorf("failed to %s %s: %w", args[0], unit, err)
		}
	}

	return nil
}

func (l *Linux) ConfigFileName(name string) string {
	return configFileName(name)
}

func (l *Linux) KeyFileName(name string) string {
	return keyFileName(name)
}

func serviceUnitName(name string) string {
	return "wg-quick@" + name + ".service"
}

// ParseUnitList returns the unit names of a "systemctl list-units --plain --no-legend" output.
func ParseUnitList(output string) []string {
	units := make([]string, 0)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		// failed units may still carry a status bullet
		for len(fields) > 0 && (fields[0] == "●" || fields[0] == "*") {
			fields = fields[1:]
		}
		if len(fields) == 0 {
			continue
		}
		units = append(units, fields[0])
	}
	return units
}
