package wireguard

import (
	"context"
	"fmt"

	"golang.zx2c4.com/wireguard/wgctrl/wgtypes"

	"github.com/h44z/wg-agent/internal/app/wgshow"
	"github.com/h44z/wg-agent/internal/domain"
)

// KeyManager generates and derives WireGuard keys, either through the wg tool or in-process.
type KeyManager struct {
	wgBinary string
	native   bool

	runner   CommandRunner
	platform PlatformStrategy
}

func NewKeyManager(wgBinary string, native bool, runner CommandRunner, platform PlatformStrategy) *KeyManager {
	return &KeyManager{
		wgBinary: wgBinary,
		native:   native,
		runner:   runner,
		platform: platform,
	}
}

func (k *KeyManager) GeneratePrivateKey(ctx context.Context) (domain.Key, error) {
	if k.native {
		key, err := wgtypes.GeneratePrivateKey()
		if err != nil {
			return "", fmt.Errorf("failed to generate private key: %w", err)
		}
		return domain.Key(key.String()), nil
	}

	return k.platform.GenPrivateKey(ctx)
}

func (k *KeyManager) GeneratePresharedKey(ctx context.Context) (domain.Key, error) {
	if k.native {
		key, err := wgtypes.GenerateKey()
		if err != nil {
			return "", fmt.Errorf("failed to generate preshared key: %w", err)
		}
		return domain.Key(key.String()), nil
	}

	out, err := k.runner.Run(ctx, k.wgBinary, "genpsk")
	if err != nil {
		return "", fmt.Errorf("failed to generate preshared key: %w", err)
	}
	return wgshow.ParseKey(out), nil
}

// PublicKey derives the public key of the given private key. The wg tool receives the private key on stdin.
func (k *KeyManager) PublicKey(ctx context.Context, privateKey domain.Key) (domain.Key, error) {
	if k.native {
		key, err := wgtypes.ParseKey(privateKey.String())
		if err != nil {
			return "", fmt.Errorf("%w: invalid private key: %v", domain.ErrInvalidData, err)
		}
		return domain.Key(key.PublicKey().String()), nil
	}

	out, err := k.runner.RunWithInput(ctx, privateKey.String()+"\n", k.wgBinary, "pubkey")
	if err != nil {
		return "", fmt.Errorf("failed to derive public key: %w", err)
	}
	return wgshow.ParseKey(out), nil
}

// KeyPair generates a new private key and derives its public key.
func (k *KeyManager) KeyPair(ctx context.Context) (domain.KeyPair, error) {
	priv, err := k.GeneratePrivateKey(ctx)
	if err != nil {
		return domain.KeyPair{}, err
	}
	pub, err := k.PublicKey(ctx, priv)
	if err != nil {
		return domain.KeyPair{}, err
	}
	return domain.KeyPair{PrivateKey: priv, PublicKey: pub}, nil
}
