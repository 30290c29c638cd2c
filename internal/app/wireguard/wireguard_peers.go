package wireguard

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/h44z/wg-agent/internal/app"
	"github.com/h44z/wg-agent/internal/domain"
)

// ApplySet applies a sparse update to the interface. Interface fields and the peer update are applied
// with one "wg set" call each. The fresh interface record is returned.
func (m *Manager) ApplySet(ctx context.Context, name string, params domain.InterfaceParameters) (
	*domain.Interface,
	error,
) {
	if err := domain.ValidateInterfaceName(name); err != nil {
		return nil, err
	}
	if !params.HasInterfaceFields() && params.Peer == nil {
		return nil, fmt.Errorf("%w: no parameters given", domain.ErrInvalidData)
	}

	if params.HasInterfaceFields() {
		if err := m.setInterface(ctx, name, params); err != nil {
			m.publishInterfaceEvent(app.TopicInterfaceUpdated, name, "set", err)
			return nil, err
		}
	}

	if params.Peer != nil {
		if err := m.setPeer(ctx, name, *params.Peer); err != nil {
			m.publishInterfaceEvent(app.TopicInterfaceUpdated, name, "set", err)
			return nil, err
		}
	}

	if err := m.syncPersisted(ctx, name); err != nil {
		m.publishInterfaceEvent(app.TopicInterfaceUpdated, name, "set", err)
		return nil, fmt.Errorf("failed to sync persisted config of %s: %w", name, err)
	}

	m.publishInterfaceEvent(app.TopicInterfaceUpdated, name, "set", nil)

	return m.Get(ctx, name)
}

func (m *Manager) setInterface(ctx context.Context, name string, params domain.InterfaceParameters) error {
	args := []string{"set", name}

	if params.ListenPort != nil {
		args = append(args, "listen-port", strconv.Itoa(int(*params.ListenPort)))
	}
	if params.PrivateKey != nil {
		keyFile := m.platform.KeyFileName(name)
		key := strings.TrimSpace(*params.PrivateKey)
		if key == "" {
			return fmt.Errorf("%w: empty private key", domain.ErrInvalidData)
		}
		if err := m.files.WriteFile(keyFile, strings.NewReader(key+"\n")); err != nil {
			return err
		}
		args = append(args, "private-key", m.files.Path(keyFile))
	}
	if params.FwMark != nil {
		args = append(args, "fwmark", *params.FwMark)
	}

	if _, err := m.wg(ctx, args...); err != nil {
		return fmt.Errorf("failed to update interface %s: %w", name, err)
	}

	slog.Debug("updated interface", "interface", name)
	return nil
}

func (m *Manager) setPeer(ctx context.Context, name string, peer domain.PeerParameters) error {
	if peer.PublicKey.IsEmpty() {
		return fmt.Errorf("%w: missing peer public key", domain.ErrInvalidData)
	}

	args := []string{"set", name, "peer", peer.PublicKey.String()}

	if peer.IsRemoval() {
		args = append(args, "remove")
		if _, err := m.wg(ctx, args...); err != nil {
			return fmt.Errorf("failed to remove peer %s from %s: %w", peer.PublicKey, name, err)
		}
		slog.Debug("removed peer", "interface", name, "peer", peer.PublicKey)
		return nil
	}

	if peer.AllowedIPs != nil {
		args = append(args, "allowed-ips", *peer.AllowedIPs)
	}
	if peer.Endpoint != nil {
		args = append(args, "endpoint", *peer.Endpoint)
	}
	if peer.PersistentKeepalive != nil {
		args = append(args, "persistent-keepalive", strconv.FormatUint(uint64(*peer.PersistentKeepalive), 10))
	}
	if peer.PresharedKey != nil {
		pskPath, err := m.files.WriteTempFile(".psk-*", strings.NewReader(strings.TrimSpace(*peer.PresharedKey)+"\n"))
		if err != nil {
			return err
		}
		defer func() {
			if err := m.files.RemovePath(pskPath); err != nil {
				slog.Warn("failed to remove temporary preshared key file", "path", pskPath, "error", err)
			}
		}()
		args = append(args, "preshared-key", pskPath)
	}

	if _, err := m.wg(ctx, args...); err != nil {
		return fmt.Errorf("failed to update peer %s on %s: %w", peer.PublicKey, name, err)
	}

	slog.Debug("updated peer", "interface", name, "peer", peer.PublicKey)
	return nil
}

// AddPeer adds or updates a peer of the interface.
func (m *Manager) AddPeer(ctx context.Context, name string, peer domain.PeerParameters) (*domain.Interface, error) {
	peer.Remove = nil
	return m.ApplySet(ctx, name, domain.InterfaceParameters{Peer: &peer})
}

// RemovePeer removes the peer with the given public key from the interface.
func (m *Manager) RemovePeer(ctx context.Context, name string, publicKey domain.Key) (*domain.Interface, error) {
	remove := true
	iface, err := m.ApplySet(ctx, name, domain.InterfaceParameters{
		Peer: &domain.PeerParameters{PublicKey: publicKey, Remove: &remove},
	})
	if err != nil {
		return nil, err
	}

	m.bus.Publish(app.TopicPeerRemoved, app.PeerEvent{Interface: name, PeerKey: publicKey.String(), Action: "remove"})

	return iface, nil
}
