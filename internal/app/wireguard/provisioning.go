package wireguard

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/h44z/wg-agent/internal/app"
	"github.com/h44z/wg-agent/internal/app/configfile"
	"github.com/h44z/wg-agent/internal/config"
	"github.com/h44z/wg-agent/internal/domain"
)

type ConfigRenderer interface {
	RenderInterface(block configfile.InterfaceBlock) (string, error)
	RenderPeer(block configfile.PeerBlock) (string, error)
	QrCode(config string) (io.Reader, error)
}

// Provisioner creates a new remote peer for an existing interface and returns its complete configuration.
type Provisioner struct {
	cfg *config.Config
	bus EventBus

	wg       *Manager
	renderer ConfigRenderer
}

func NewProvisioner(cfg *config.Config, bus EventBus, wg *Manager, renderer ConfigRenderer) *Provisioner {
	return &Provisioner{
		cfg:      cfg,
		bus:      bus,
		wg:       wg,
		renderer: renderer,
	}
}

// Provision generates a key pair for a new peer, registers the peer on the interface and renders the
// configuration of the new peer: its own [Interface] section followed by a [Peer] section for the interface.
// If a later step fails, the registered peer is removed again when core.rollback_on_failure is set.
func (p *Provisioner) Provision(ctx context.Context, name string, req domain.ProvisionRequest) (
	*domain.ProvisionResult,
	error,
) {
	if err := domain.ValidateInterfaceName(name); err != nil {
		return nil, err
	}
	hostPrefix, err := domain.HostPrefix(req.Address)
	if err != nil {
		return nil, err
	}

	remoteAllowedIPs := joinNonEmpty(req.RemoteAllowedIPs)
	if remoteAllowedIPs == "" {
		remoteAllowedIPs = hostPrefix
	}
	localAllowedIPs := joinNonEmpty(req.LocalAllowedIPs)
	if localAllowedIPs == "" {
		localAllowedIPs = joinNonEmpty(p.cfg.Core.DefaultLocalAllowedIPs)
	}
	if localAllowedIPs == "" {
		localAllowedIPs = "0.0.0.0/0"
	}
	listenPort := p.cfg.Core.DefaultListenPort
	if req.ListenPort != nil {
		listenPort = *req.ListenPort
	}
	keepalive := p.cfg.Core.DefaultKeepalive
	if req.Keepalive != nil {
		keepalive = *req.Keepalive
	}
	localEndpoint := req.LocalEndpoint
	if localEndpoint == "" {
		localEndpoint = p.cfg.Core.LocalEndpoint
	}

	var peerKeys domain.KeyPair
	var interfaceKey domain.Key
	var interfaceSection, peerSection string

	s := newSaga("provision", name, domain.InterfaceStateKeyed, p.cfg.Core.RollbackOnFailure)
	s.add(sagaStep{
		name: "generate private key",
		run: func(ctx context.Context) error {
			priv, err := p.wg.keys.GeneratePrivateKey(ctx)
			peerKeys.PrivateKey = priv
			return err
		},
	}).add(sagaStep{
		name: "derive public key",
		run: func(ctx context.Context) error {
			pub, err := p.wg.keys.PublicKey(ctx, peerKeys.PrivateKey)
			peerKeys.PublicKey = pub
			return err
		},
	}).add(sagaStep{
		name: "read interface public key",
		run: func(ctx context.Context) error {
			element, err := p.wg.ShowElement(ctx, name, string(domain.ElementPublicKey))
			if err != nil {
				return err
			}
			interfaceKey = element.(domain.ShowPublicKey).PublicKey
			return nil
		},
	}).add(sagaStep{
		name: "register peer",
		run: func(ctx context.Context) error {
			peer := domain.PeerParameters{
				PublicKey:  peerKeys.PublicKey,
				AllowedIPs: &remoteAllowedIPs,
				Endpoint:   req.RemoteEndpoint,
			}
			return p.wg.setPeer(ctx, name, peer)
		},
		compensate: func(ctx context.Context) error {
			remove := true
			return p.wg.setPeer(ctx, name, domain.PeerParameters{PublicKey: peerKeys.PublicKey, Remove: &remove})
		},
	}).add(sagaStep{
		name: "render interface section",
		run: func(_ context.Context) error {
			block := configfile.InterfaceBlock{
				Address:    strings.TrimSpace(req.Address),
				ListenPort: listenPort,
				PrivateKey: peerKeys.PrivateKey,
			}
			if req.Dns != nil {
				block.Dns = *req.Dns
			}
			if req.Mtu != nil {
				block.Mtu = *req.Mtu
			}
			var err error
			interfaceSection, err = p.renderer.RenderInterface(block)
			return err
		},
	}).add(sagaStep{
		name: "render peer section",
		run: func(_ context.Context) error {
			var err error
			peerSection, err = p.renderer.RenderPeer(configfile.PeerBlock{
				PublicKey:           interfaceKey,
				AllowedIPs:          localAllowedIPs,
				Endpoint:            localEndpoint,
				PersistentKeepalive: keepalive,
			})
			return err
		},
	}).add(sagaStep{
		// last step, the file is replaced atomically and nothing runs after it
		name: "sync persisted config",
		run: func(ctx context.Context) error {
			return p.wg.syncPersisted(ctx, name)
		},
	})

	if err := s.execute(ctx); err != nil {
		slog.Error("failed to provision peer", "interface", name, "error", err)
		return nil, err
	}

	slog.Info("provisioned peer", "interface", name, "peer", peerKeys.PublicKey, "allowedIPs", remoteAllowedIPs)
	p.bus.Publish(app.TopicPeerProvisioned, app.PeerEvent{
		Interface: name,
		PeerKey:   peerKeys.PublicKey.String(),
		Action:    "provision",
	})

	return &domain.ProvisionResult{
		InterfaceConfig:    configfile.Concat(interfaceSection, peerSection),
		PublicKey:          peerKeys.PublicKey,
		InterfacePublicKey: interfaceKey,
	}, nil
}

// ProvisionQrCode provisions a new peer and returns its configuration as PNG encoded QR code.
func (p *Provisioner) ProvisionQrCode(ctx context.Context, name string, req domain.ProvisionRequest) (
	io.Reader,
	error,
) {
	result, err := p.Provision(ctx, name, req)
	if err != nil {
		return nil, err
	}

	img, err := p.renderer.QrCode(result.InterfaceConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to encode config of peer %s: %w", result.PublicKey, err)
	}
	return img, nil
}

func joinNonEmpty(values []string) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, ",")
}
