// Package wireguard drives the wg tool, the link driver and the platform strategy to manage WireGuard
// interfaces and their peers. Nothing is cached, every query reflects the live system state.
package wireguard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/h44z/wg-agent/internal/app"
	"github.com/h44z/wg-agent/internal/app/wgshow"
	"github.com/h44z/wg-agent/internal/config"
	"github.com/h44z/wg-agent/internal/domain"
)

type Manager struct {
	cfg *config.Config
	bus EventBus

	runner   CommandRunner
	links    LinkDriver
	platform PlatformStrategy
	files    FileStore
	keys     *KeyManager
}

func NewWireGuardManager(
	cfg *config.Config,
	bus EventBus,
	runner CommandRunner,
	links LinkDriver,
	platform PlatformStrategy,
	files FileStore,
	keys *KeyManager,
) *Manager {
	return &Manager{
		cfg:      cfg,
		bus:      bus,
		runner:   runner,
		links:    links,
		platform: platform,
		files:    files,
		keys:     keys,
	}
}

// Keys returns the key manager used by the manager.
func (m *Manager) Keys() *KeyManager {
	return m.keys
}

func (m *Manager) wg(ctx context.Context, args ...string) (string, error) {
	return m.runner.Run(ctx, m.cfg.Backend.WgBinary, args...)
}

// ListNames returns the names of all WireGuard interfaces.
func (m *Manager) ListNames(ctx context.Context) ([]string, error) {
	out, err := m.wg(ctx, "show", "interfaces")
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}
	return wgshow.ParseInterfaceNames(out), nil
}

// List returns all WireGuard interfaces with their peers.
func (m *Manager) List(ctx context.Context) ([]domain.Interface, error) {
	out, err := m.wg(ctx, "show")
	if err != nil {
		return nil, fmt.Errorf("failed to show interfaces: %w", err)
	}

	interfaces, err := wgshow.ParseShow(out)
	if err != nil {
		return nil, err
	}
	for i := range interfaces {
		m.fillAddress(ctx, &interfaces[i])
	}

	return interfaces, nil
}

// Get returns the interface with the given name. A missing interface yields an error matching
// domain.ErrNotFound.
func (m *Manager) Get(ctx context.Context, name string) (*domain.Interface, error) {
	if err := domain.ValidateInterfaceName(name); err != nil {
		return nil, err
	}

	out, err := m.wg(ctx, "show", name)
	if err != nil {
		return nil, fmt.Errorf("failed to show interface %s: %w", name, err)
	}

	interfaces, err := wgshow.ParseShow(out)
	if err != nil {
		return nil, err
	}
	if len(interfaces) == 0 {
		return nil, fmt.Errorf("interface %s: %w", name, domain.ErrNotFound)
	}

	iface := interfaces[0]
	m.fillAddress(ctx, &iface)

	return &iface, nil
}

// ShowElement returns the parsed output of "wg show <name> <element>".
func (m *Manager) ShowElement(ctx context.Context, name string, element string) (any, error) {
	if err := domain.ValidateInterfaceName(name); err != nil {
		return nil, err
	}
	showElement, err := domain.ParseShowElement(element)
	if err != nil {
		return nil, err
	}

	out, err := m.wg(ctx, "show", name, string(showElement))
	if err != nil {
		return nil, fmt.Errorf("failed to show %s of interface %s: %w", element, name, err)
	}

	return wgshow.ParseElement(showElement, out)
}

// ShowConf returns the output of "wg showconf <name>".
func (m *Manager) ShowConf(ctx context.Context, name string) (string, error) {
	if err := domain.ValidateInterfaceName(name); err != nil {
		return "", err
	}

	out, err := m.wg(ctx, "showconf", name)
	if err != nil {
		return "", fmt.Errorf("failed to show config of interface %s: %w", name, err)
	}
	return out, nil
}

// fillAddress sets the address of the interface from the link driver. Failures are only logged.
func (m *Manager) fillAddress(ctx context.Context, iface *domain.Interface) {
	addrs, err := m.links.Addresses(ctx, iface.Name)
	if err != nil {
		slog.Debug("failed to load interface addresses", "interface", iface.Name, "error", err)
		return
	}
	iface.Address = strings.Join(addrs, ",")
}

func (m *Manager) publishInterfaceEvent(topic, name, action string, err error) {
	event := app.InterfaceEvent{Interface: name, Action: action}
	if err != nil {
		event.Error = err.Error()
	}
	m.bus.Publish(topic, event)
}
