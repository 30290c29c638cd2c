package wireguard

import (
	"context"
	"fmt"
	"os"
	"slices"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/h44z/wg-agent/internal/adapters"
	"github.com/h44z/wg-agent/internal/app/configfile"
	"github.com/h44z/wg-agent/internal/app/platform"
	"github.com/h44z/wg-agent/internal/config"
	"github.com/h44z/wg-agent/internal/domain"
)

// --- fake host ---

type fakePeer struct {
	key        string
	allowedIPs []string
	endpoint   string
	keepalive  int
	psk        string
	received   uint64
	sent       uint64
	handshake  uint64
}

type fakeLink struct {
	name       string
	addrs      []string
	up         bool
	privateKey string
	listenPort int
	fwmark     string
	peers      []*fakePeer
}

// fakeHost simulates the wg, ip and systemctl tools of a linux host.
type fakeHost struct {
	mu sync.Mutex

	links map[string]*fakeLink
	units map[string]bool
	calls []string

	failures   map[string]error // command line prefix -> error
	keyCounter int
}

func newFakeHost() *fakeHost {
	return &fakeHost{
		links:    make(map[string]*fakeLink),
		units:    make(map[string]bool),
		failures: make(map[string]error),
	}
}

func (h *fakeHost) failOn(prefix string, err error) {
	h.failures[prefix] = err
}

func (h *fakeHost) callsWithPrefix(prefix string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	result := make([]string, 0)
	for _, c := range h.calls {
		if strings.HasPrefix(c, prefix) {
			result = append(result, c)
		}
	}
	return result
}

func commandError(name string, args []string, stderr string) error {
	return &domain.CommandError{Command: name, Args: args, ExitCode: 1, Stderr: stderr}
}

func (h *fakeHost) Run(_ context.Context, name string, args ...string) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	cmdLine := strings.TrimSpace(name + " " + strings.Join(args, " "))
	h.calls = append(h.calls, cmdLine)
	for prefix, err := range h.failures {
		if strings.HasPrefix(cmdLine, prefix) {
			return "", err
		}
	}

	switch name {
	case "wg":
		return h.wg(args)
	case "ip":
		return h.ip(args)
	case "systemctl":
		return h.systemctl(args)
	default:
		return "", commandError(name, args, "command not found")
	}
}

func (h *fakeHost) RunWithInput(ctx context.Context, input string, name string, args ...string) (string, error) {
	if name == "wg" && len(args) == 1 && args[0] == "pubkey" {
		h.mu.Lock()
		h.calls = append(h.calls, "wg pubkey")
		h.mu.Unlock()
		return derivePublicKey(strings.TrimSpace(input)) + "\n", nil
	}
	return h.Run(ctx, name, args...)
}

func derivePublicKey(privateKey string) string {
	return "pub-" + privateKey
}

func (h *fakeHost) link(name string, args []string) (*fakeLink, error) {
	l, ok := h.links[name]
	if !ok {
		return nil, commandError("wg", args, "Unable to access interface: No such device")
	}
	return l, nil
}

func (h *fakeHost) sortedLinks() []*fakeLink {
	names := make([]string, 0, len(h.links))
	for name := range h.links {
		names = append(names, name)
	}
	sort.Strings(names)
	links := make([]*fakeLink, 0, len(names))
	for _, name := range names {
		links = append(links, h.links[name])
	}
	return links
}

func (h *fakeHost) wg(args []string) (string, error) {
	switch {
	case args[0] == "genkey":
		h.keyCounter++
		return fmt.Sprintf("priv%d=\n", h.keyCounter), nil
	case args[0] == "genpsk":
		return "psk=\n", nil
	case args[0] == "show" && len(args) == 1:
		sb := strings.Builder{}
		for _, l := range h.sortedLinks() {
			sb.WriteString(renderShow(l))
		}
		return sb.String(), nil
	case args[0] == "show" && args[1] == "interfaces":
		names := make([]string, 0)
		for _, l := range h.sortedLinks() {
			names = append(names, l.name)
		}
		return strings.Join(names, " ") + "\n", nil
	case args[0] == "show" && len(args) == 2:
		l, err := h.link(args[1], args)
		if err != nil {
			return "", err
		}
		return renderShow(l), nil
	case args[0] == "show" && len(args) == 3:
		l, err := h.link(args[1], args)
		if err != nil {
			return "", err
		}
		return renderElement(l, args[2]), nil
	case args[0] == "showconf":
		l, err := h.link(args[1], args)
		if err != nil {
			return "", err
		}
		return renderShowConf(l), nil
	case args[0] == "set":
		l, err := h.link(args[1], args)
		if err != nil {
			return "", err
		}
		return "", h.wgSet(l, args[2:])
	}
	return "", commandError("wg", args, "Invalid subcommand")
}

func (h *fakeHost) wgSet(l *fakeLink, args []string) error {
	var peer *fakePeer
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "listen-port":
			i++
			port, err := strconv.Atoi(args[i])
			if err != nil {
				return commandError("wg", args, "Listen port is not a valid port")
			}
			l.listenPort = port
		case "private-key":
			i++
			data, err := os.ReadFile(args[i])
			if err != nil {
				return commandError("wg", args, err.Error())
			}
			l.privateKey = strings.TrimSpace(string(data))
		case "fwmark":
			i++
			l.fwmark = args[i]
		case "peer":
			i++
			key := args[i]
			idx := slices.IndexFunc(l.peers, func(p *fakePeer) bool { return p.key == key })
			if i+1 < len(args) && args[i+1] == "remove" {
				if idx >= 0 {
					l.peers = slices.Delete(l.peers, idx, idx+1)
				}
				return nil
			}
			if idx >= 0 {
				peer = l.peers[idx]
			} else {
				peer = &fakePeer{key: key}
				l.peers = append(l.peers, peer)
			}
		case "allowed-ips":
			i++
			peer.allowedIPs = strings.Split(args[i], ",")
		case "endpoint":
			i++
			peer.endpoint = args[i]
		case "persistent-keepalive":
			i++
			peer.keepalive, _ = strconv.Atoi(args[i])
		case "preshared-key":
			i++
			data, err := os.ReadFile(args[i])
			if err != nil {
				return commandError("wg", args, err.Error())
			}
			peer.psk = strings.TrimSpace(string(data))
		default:
			return commandError("wg", args, "Invalid argument: "+args[i])
		}
	}
	return nil
}

func (h *fakeHost) ip(args []string) (string, error) {
	cmdLine := strings.Join(args, " ")
	switch {
	case strings.HasPrefix(cmdLine, "link add dev "):
		name := args[3]
		if _, ok := h.links[name]; ok {
			return "", commandError("ip", args, "RTNETLINK answers: File exists")
		}
		h.links[name] = &fakeLink{name: name}
		return "", nil
	case strings.HasPrefix(cmdLine, "link del dev "):
		name := args[3]
		if _, ok := h.links[name]; !ok {
			return "", commandError("ip", args, fmt.Sprintf("Cannot find device \"%s\"", name))
		}
		delete(h.links, name)
		return "", nil
	case strings.HasPrefix(cmdLine, "link set "):
		l, ok := h.links[args[2]]
		if !ok {
			return "", commandError("ip", args, fmt.Sprintf("Cannot find device \"%s\"", args[2]))
		}
		l.up = args[3] == "up"
		return "", nil
	case strings.HasPrefix(cmdLine, "addr add "):
		l, ok := h.links[args[4]]
		if !ok {
			return "", commandError("ip", args, fmt.Sprintf("Cannot find device \"%s\"", args[4]))
		}
		l.addrs = append(l.addrs, args[2])
		return "", nil
	case strings.HasPrefix(cmdLine, "-o addr show dev "):
		l, ok := h.links[args[4]]
		if !ok {
			return "", commandError("ip", args, fmt.Sprintf("Device \"%s\" does not exist.", args[4]))
		}
		sb := strings.Builder{}
		for _, addr := range l.addrs {
			family := "inet"
			if strings.Contains(addr, ":") {
				family = "inet6"
			}
			sb.WriteString(fmt.Sprintf("5: %s    %s %s scope global %s\\       valid_lft forever preferred_lft forever\n",
				l.name, family, addr, l.name))
		}
		return sb.String(), nil
	}
	return "", commandError("ip", args, "Object unknown")
}

func (h *fakeHost) systemctl(args []string) (string, error) {
	switch args[0] {
	case "enable":
		h.units[args[1]] = true
		return "", nil
	case "list-units":
		sb := strings.Builder{}
		for unit := range h.units {
			sb.WriteString(unit + " loaded active exited WireGuard via wg-quick(8)\n")
		}
		return sb.String(), nil
	case "stop":
		if !h.units[args[1]] {
			return "", commandError("systemctl", args, "Failed to stop "+args[1]+": Unit "+args[1]+" not loaded.")
		}
		return "", nil
	case "disable":
		delete(h.units, args[1])
		return "", nil
	case "daemon-reload", "reset-failed":
		return "", nil
	}
	return "", commandError("systemctl", args, "Unknown command verb "+args[0])
}

func renderShow(l *fakeLink) string {
	sb := strings.Builder{}
	sb.WriteString("interface: " + l.name + "\n")
	if l.privateKey != "" {
		sb.WriteString("  public key: " + derivePublicKey(l.privateKey) + "\n")
		sb.WriteString("  private key: (hidden)\n")
	}
	sb.WriteString(fmt.Sprintf("  listening port: %d\n", l.listenPort))
	for _, p := range l.peers {
		sb.WriteString("\npeer: " + p.key + "\n")
		if p.endpoint != "" {
			sb.WriteString("  endpoint: " + p.endpoint + "\n")
		}
		allowed := "(none)"
		if len(p.allowedIPs) > 0 {
			allowed = strings.Join(p.allowedIPs, ", ")
		}
		sb.WriteString("  allowed ips: " + allowed + "\n")
		if p.keepalive > 0 {
			sb.WriteString(fmt.Sprintf("  persistent keepalive: every %d seconds\n", p.keepalive))
		}
	}
	return sb.String()
}

func renderElement(l *fakeLink, element string) string {
	sb := strings.Builder{}
	switch element {
	case "public-key":
		sb.WriteString(derivePublicKey(l.privateKey) + "\n")
	case "listen-port":
		sb.WriteString(strconv.Itoa(l.listenPort) + "\n")
	case "peers":
		for _, p := range l.peers {
			sb.WriteString(p.key + "\n")
		}
	case "transfer":
		for _, p := range l.peers {
			sb.WriteString(fmt.Sprintf("%s\t%d\t%d\n", p.key, p.sent, p.received))
		}
	case "latest-handshakes":
		for _, p := range l.peers {
			sb.WriteString(fmt.Sprintf("%s\t%d\n", p.key, p.handshake))
		}
	}
	return sb.String()
}

func renderShowConf(l *fakeLink) string {
	sb := strings.Builder{}
	sb.WriteString("[Interface]\n")
	sb.WriteString(fmt.Sprintf("ListenPort = %d\n", l.listenPort))
	sb.WriteString("PrivateKey = " + l.privateKey + "\n")
	for _, p := range l.peers {
		sb.WriteString("\n[Peer]\nPublicKey = " + p.key + "\n")
		if len(p.allowedIPs) > 0 {
			sb.WriteString("AllowedIPs = " + strings.Join(p.allowedIPs, ", ") + "\n")
		}
		if p.endpoint != "" {
			sb.WriteString("Endpoint = " + p.endpoint + "\n")
		}
	}
	return sb.String()
}

// --- fake bus ---

type publishedEvent struct {
	topic string
	args  []any
}

type fakeBus struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (b *fakeBus) Publish(topic string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, publishedEvent{topic: topic, args: args})
}

func (b *fakeBus) topics() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	topics := make([]string, 0, len(b.events))
	for _, e := range b.events {
		topics = append(topics, e.topic)
	}
	return topics
}

// --- fake metrics ---

type fakeMetrics struct {
	mu         sync.Mutex
	interfaces map[string]domain.Interface
	transfers  map[domain.Key]domain.PeerTransfer
	handshakes map[domain.Key]uint64
	pings      map[domain.Key]bool
	removed    []string
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{
		interfaces: make(map[string]domain.Interface),
		transfers:  make(map[domain.Key]domain.PeerTransfer),
		handshakes: make(map[domain.Key]uint64),
		pings:      make(map[domain.Key]bool),
	}
}

func (f *fakeMetrics) UpdateInterfaceMetrics(iface domain.Interface) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.interfaces[iface.Name] = iface
}

func (f *fakeMetrics) UpdatePeerTransferMetrics(_ string, transfer domain.PeerTransfer) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.transfers[transfer.Peer] = transfer
}

func (f *fakeMetrics) UpdatePeerHandshakeMetrics(_ string, handshake domain.PeerHandshake) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handshakes[handshake.Peer] = handshake.Handshake
}

func (f *fakeMetrics) UpdatePeerPingMetrics(_ string, peer domain.Key, pingable bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pings[peer] = pingable
}

func (f *fakeMetrics) RemoveInterfaceMetrics(iface string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.interfaces, iface)
	f.removed = append(f.removed, iface)
}

// --- setup helpers ---

type testEnv struct {
	cfg         *config.Config
	host        *fakeHost
	bus         *fakeBus
	files       *adapters.FilesystemRepo
	manager     *Manager
	provisioner *Provisioner
}

func testConfig(t *testing.T) *config.Config {
	cfg := &config.Config{}
	cfg.Core.DefaultListenPort = 51820
	cfg.Core.DefaultKeepalive = 25
	cfg.Core.LocalEndpoint = "vpn.example.com:51820"
	cfg.Core.DefaultLocalAllowedIPs = []string{"0.0.0.0/0"}
	cfg.Core.RollbackOnFailure = true
	cfg.Core.SyncPersistedConfig = true
	cfg.Backend = config.Backend{
		Platform:        config.PlatformLinux,
		LinkDriver:      config.LinkDriverIproute2,
		ConfigDir:       t.TempDir(),
		WgBinary:        "wg",
		IpBinary:        "ip",
		SystemctlBinary: "systemctl",
		WireGuardBinary: "wireguard.exe",
	}
	return cfg
}

func newTestEnv(t *testing.T, mutators ...func(cfg *config.Config)) *testEnv {
	cfg := testConfig(t)
	for _, mutate := range mutators {
		mutate(cfg)
	}

	host := newFakeHost()
	bus := &fakeBus{}
	files, err := adapters.NewFileSystemRepository(cfg.Backend.ConfigDir)
	require.NoError(t, err)

	links := NewIpLinkDriver(cfg.Backend.IpBinary, host)
	strategy, err := platform.Select(cfg, host, links, files)
	require.NoError(t, err)
	keys := NewKeyManager(cfg.Backend.WgBinary, cfg.Backend.NativeKeys, host, strategy)

	renderer, err := configfile.NewRenderer()
	require.NoError(t, err)

	manager := NewWireGuardManager(cfg, bus, host, links, strategy, files, keys)
	return &testEnv{
		cfg:         cfg,
		host:        host,
		bus:         bus,
		files:       files,
		manager:     manager,
		provisioner: NewProvisioner(cfg, bus, manager, renderer),
	}
}
