package wireguard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/h44z/wg-agent/internal/app"
	"github.com/h44z/wg-agent/internal/domain"
)

// Create creates, addresses and keys a new interface. Optionally the link is brought up and the
// configuration is persisted as wg-quick file with an enabled service.
// If a step fails, the completed steps are undone when core.rollback_on_failure is set.
func (m *Manager) Create(ctx context.Context, req domain.InterfaceCreateRequest) (*domain.Interface, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	name := req.Name
	address := strings.TrimSpace(req.Address)
	listenPort := m.cfg.Core.DefaultListenPort
	if req.ListenPort != nil {
		listenPort = *req.ListenPort
	}

	var keys domain.KeyPair
	keyFile := m.platform.KeyFileName(name)

	s := newSaga("create", name, domain.InterfaceStateAbsent, m.cfg.Core.RollbackOnFailure)
	s.add(sagaStep{
		name: "generate private key",
		run: func(ctx context.Context) error {
			if req.PrivateKey != nil && !req.PrivateKey.IsEmpty() {
				keys.PrivateKey = *req.PrivateKey
				return nil
			}
			priv, err := m.keys.GeneratePrivateKey(ctx)
			keys.PrivateKey = priv
			return err
		},
	}).add(sagaStep{
		name: "derive public key",
		run: func(ctx context.Context) error {
			pub, err := m.keys.PublicKey(ctx, keys.PrivateKey)
			keys.PublicKey = pub
			return err
		},
	}).add(sagaStep{
		name:    "add link",
		reached: domain.InterfaceStateLinkCreated,
		run: func(ctx context.Context) error {
			return m.links.AddLink(ctx, name)
		},
		compensate: func(ctx context.Context) error {
			return domain.IgnoreNotFound(m.links.DeleteLink(ctx, name))
		},
	}).add(sagaStep{
		name:    "add address",
		reached: domain.InterfaceStateAddressed,
		run: func(ctx context.Context) error {
			return m.links.AddAddress(ctx, name, address)
		},
	}).add(sagaStep{
		name: "write private key",
		run: func(_ context.Context) error {
			return m.files.WriteFile(keyFile, strings.NewReader(keys.PrivateKey.String()+"\n"))
		},
		compensate: func(_ context.Context) error {
			return m.files.RemoveFile(keyFile)
		},
	}).add(sagaStep{
		name:    "install private key",
		reached: domain.InterfaceStateKeyed,
		run: func(ctx context.Context) error {
			_, err := m.wg(ctx, "set", name, "private-key", m.files.Path(keyFile))
			return err
		},
	}).add(sagaStep{
		name:    "set listen port",
		reached: domain.InterfaceStateKeyed,
		run: func(ctx context.Context) error {
			_, err := m.wg(ctx, "set", name, "listen-port", strconv.Itoa(int(listenPort)))
			return err
		},
	})

	if req.SetLinkUp {
		s.add(sagaStep{
			name:    "bring up link",
			reached: domain.InterfaceStateLinkUp,
			run: func(ctx context.Context) error {
				return m.platform.BringUp(ctx, name)
			},
			compensate: func(ctx context.Context) error {
				return m.platform.BringDown(ctx, name)
			},
		})
	}

	if req.Persist {
		s.add(sagaStep{
			name:    "persist config",
			reached: domain.InterfaceStatePersisted,
			run: func(ctx context.Context) error {
				return m.persist(ctx, name, address)
			},
			compensate: func(ctx context.Context) error {
				return m.files.RemoveFile(m.platform.ConfigFileName(name))
			},
		}).add(sagaStep{
			name:    "enable service",
			reached: domain.InterfaceStatePersisted,
			run: func(ctx context.Context) error {
				return m.platform.EnableService(ctx, name)
			},
			compensate: func(ctx context.Context) error {
				return m.platform.DisableService(ctx, name)
			},
		})
	}

	if err := s.execute(ctx); err != nil {
		slog.Error("failed to create interface", "interface", name, "error", err)
		m.publishInterfaceEvent(app.TopicInterfaceCreated, name, "create", err)
		return nil, err
	}

	slog.Info("created interface", "interface", name, "state", s.State(), "listenPort", listenPort)
	m.publishInterfaceEvent(app.TopicInterfaceCreated, name, "create", nil)

	iface, err := m.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to load created interface %s: %w", name, err)
	}
	iface.PrivateKey = keys.PrivateKey
	if iface.Address == "" {
		iface.Address = address
	}

	return iface, nil
}

// Remove tears down the interface and all of its persisted state. Already absent parts are skipped, so
// removing a missing interface succeeds.
func (m *Manager) Remove(ctx context.Context, name string) error {
	if err := domain.ValidateInterfaceName(name); err != nil {
		return err
	}

	err := m.remove(ctx, name)
	if err != nil {
		slog.Error("failed to remove interface", "interface", name, "error", err)
	} else {
		slog.Info("removed interface", "interface", name)
	}
	m.publishInterfaceEvent(app.TopicInterfaceRemoved, name, "remove", err)

	return err
}

func (m *Manager) remove(ctx context.Context, name string) error {
	if err := m.platform.BringDown(ctx, name); err != nil {
		return fmt.Errorf("failed to bring down %s: %w", name, err)
	}
	if err := domain.IgnoreNotFound(m.links.DeleteLink(ctx, name)); err != nil {
		return fmt.Errorf("failed to delete link %s: %w", name, err)
	}
	if err := m.platform.DeleteConfig(ctx, name); err != nil {
		return fmt.Errorf("failed to delete config of %s: %w", name, err)
	}
	if err := m.platform.DisableService(ctx, name); err != nil {
		return fmt.Errorf("failed to disable service of %s: %w", name, err)
	}
	return nil
}

// SaveConfig writes the current runtime configuration of the interface to its wg-quick file.
func (m *Manager) SaveConfig(ctx context.Context, name string) error {
	iface, err := m.Get(ctx, name)
	if err != nil {
		return err
	}

	err = m.persist(ctx, name, iface.Address)
	m.publishInterfaceEvent(app.TopicInterfaceUpdated, name, "save", err)
	if err != nil {
		return err
	}

	slog.Debug("saved interface config", "interface", name, "file", m.platform.ConfigFileName(name))
	return nil
}

// persist captures "wg showconf" of the interface, adds the address and writes the wg-quick file.
func (m *Manager) persist(ctx context.Context, name, address string) error {
	conf, err := m.ShowConf(ctx, name)
	if err != nil {
		return err
	}
	if address == "" {
		addrs, err := m.links.Addresses(ctx, name)
		if err != nil {
			return fmt.Errorf("failed to load addresses of %s: %w", name, err)
		}
		address = strings.Join(addrs, ", ")
	}

	contents, err := injectAddress(conf, address)
	if err != nil {
		return fmt.Errorf("invalid config of %s: %w", name, err)
	}

	return m.files.WriteFile(m.platform.ConfigFileName(name), strings.NewReader(contents))
}

// syncPersisted re-writes the wg-quick file if it exists and syncing is enabled.
func (m *Manager) syncPersisted(ctx context.Context, name string) error {
	if !m.cfg.Core.SyncPersistedConfig || !m.files.Exists(m.platform.ConfigFileName(name)) {
		return nil
	}
	return m.persist(ctx, name, "")
}

// injectAddress adds an Address line to the [Interface] section of a wg showconf output.
// Existing Address lines are kept.
func injectAddress(conf, address string) (string, error) {
	lines := strings.Split(conf, "\n")
	interfaceLine := -1
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "[Interface]" && interfaceLine == -1 {
			interfaceLine = i
		}
		if key, _, ok := strings.Cut(trimmed, "="); ok && strings.EqualFold(strings.TrimSpace(key), "address") {
			return conf, nil
		}
	}

	if interfaceLine == -1 {
		return "", errors.New("missing [Interface] section")
	}
	if address == "" {
		return conf, nil
	}

	result := make([]string, 0, len(lines)+1)
	result = append(result, lines[:interfaceLine+1]...)
	result = append(result, "Address = "+address)
	result = append(result, lines[interfaceLine+1:]...)
	return strings.Join(result, "\n"), nil
}
