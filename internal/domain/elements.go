package domain

import (
	"fmt"
	"slices"
)

// ShowElement is the name of a wg show sub-command that prints a single element of an interface.
type ShowElement string

const (
	ElementPublicKey           ShowElement = "public-key"
	ElementPrivateKey          ShowElement = "private-key"
	ElementListenPort          ShowElement = "listen-port"
	ElementFwMark              ShowElement = "fwmark"
	ElementPeers               ShowElement = "peers"
	ElementPresharedKeys       ShowElement = "preshared-keys"
	ElementEndpoints           ShowElement = "endpoints"
	ElementAllowedIPs          ShowElement = "allowed-ips"
	ElementLatestHandshakes    ShowElement = "latest-handshakes"
	ElementPersistentKeepalive ShowElement = "persistent-keepalive"
	ElementTransfer            ShowElement = "transfer"
)

// ShowElements returns all supported elements.
func ShowElements() []ShowElement {
	return []ShowElement{
		ElementPublicKey,
		ElementPrivateKey,
		ElementListenPort,
		ElementFwMark,
		ElementPeers,
		ElementPresharedKeys,
		ElementEndpoints,
		ElementAllowedIPs,
		ElementLatestHandshakes,
		ElementPersistentKeepalive,
		ElementTransfer,
	}
}

// ParseShowElement validates the given element name.
func ParseShowElement(s string) (ShowElement, error) {
	e := ShowElement(s)
	if !slices.Contains(ShowElements(), e) {
		return "", fmt.Errorf("%w: unknown element %q", ErrInvalidData, s)
	}
	return e, nil
}

type ShowPublicKey struct {
	PublicKey Key
}

type ShowPrivateKey struct {
	PrivateKey Key
}

type ShowListenPort struct {
	ListenPort uint16
}

type ShowFwMark struct {
	FwMark string // "off" or the hex value
}

type ShowPeers struct {
	Peers []Key
}

type PeerPresharedKey struct {
	Peer         Key
	PresharedKey string // "(none)" is kept verbatim
}

type ShowPresharedKeys struct {
	PresharedKeys []PeerPresharedKey
}

type PeerEndpoint struct {
	Peer     Key
	Endpoint string
}

type ShowEndpoints struct {
	Endpoints []PeerEndpoint
}

type PeerAllowedIPs struct {
	Peer       Key
	AllowedIPs string
}

type ShowAllowedIPs struct {
	AllowedIPs []PeerAllowedIPs
}

type PeerHandshake struct {
	Peer      Key
	Handshake uint64 // unix seconds, 0 means no handshake yet
}

type ShowLatestHandshakes struct {
	LatestHandshakes []PeerHandshake
}

type PeerKeepalive struct {
	Peer                Key
	PersistentKeepalive string
}

type ShowPersistentKeepalives struct {
	PersistentKeepalives []PeerKeepalive
}

// PeerTransfer holds the byte counters of a peer. The first counter of a transfer line is the transmitted
// value, the second one the received value.
type PeerTransfer struct {
	Peer        Key
	Transmitted uint64
	Received    uint64
}

type ShowTransfer struct {
	Transfers []PeerTransfer
}
