package wireguard

import (
	"context"
	"io"

	"github.com/h44z/wg-agent/internal/domain"
)

// CommandRunner executes external tools. A command that exits with a non-zero status or writes to stderr
// returns a *domain.CommandError.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) (string, error)
	RunWithInput(ctx context.Context, input string, name string, args ...string) (string, error)
}

// LinkDriver manages network links and their addresses.
type LinkDriver interface {
	AddLink(ctx context.Context, name string) error
	DeleteLink(ctx context.Context, name string) error
	AddAddress(ctx context.Context, name, cidr string) error
	SetUp(ctx context.Context, name string) error
	SetDown(ctx context.Context, name string) error
	Addresses(ctx context.Context, name string) ([]string, error)
}

// PlatformStrategy bundles the operating system specific primitives.
type PlatformStrategy interface {
	Name() string
	GenPrivateKey(ctx context.Context) (domain.Key, error)
	BringUp(ctx context.Context, name string) error
	BringDown(ctx context.Context, name string) error
	DeleteConfig(ctx context.Context, name string) error
	EnableService(ctx context.Context, name string) error
	DisableService(ctx context.Context, name string) error
	ConfigFileName(name string) string
	KeyFileName(name string) string
}

type FileStore interface {
	Path(name string) string
	WriteFile(name string, contents io.Reader) error
	WriteTempFile(pattern string, contents io.Reader) (string, error)
	RemoveFile(name string) error
	RemovePath(path string) error
	Exists(name string) bool
}

type EventBus interface {
	// Publish sends a message to the message bus.
	Publish(topic string, args ...any)
}

type MetricsRecorder interface {
	UpdateInterfaceMetrics(iface domain.Interface)
	UpdatePeerTransferMetrics(iface string, transfer domain.PeerTransfer)
	UpdatePeerHandshakeMetrics(iface string, handshake domain.PeerHandshake)
	UpdatePeerPingMetrics(iface string, peer domain.Key, pingable bool)
	RemoveInterfaceMetrics(iface string)
}
