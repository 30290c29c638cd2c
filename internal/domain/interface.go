package domain

import (
	"strings"
)

// Interface is the projection of one live WireGuard interface, reconstructed from the output of wg show.
// It is never cached, every query builds a new one.
type Interface struct {
	Name       string
	PublicKey  Key
	PrivateKey Key // only set right after creation, empty otherwise
	ListenPort uint16
	Address    string // comma separated list of CIDRs assigned to the link, may be empty
	Peers      []Peer
}

// PeerByKey returns the peer with the given public key or nil.
func (i *Interface) PeerByKey(publicKey Key) *Peer {
	for idx := range i.Peers {
		if i.Peers[idx].PublicKey == publicKey {
			return &i.Peers[idx]
		}
	}
	return nil
}

// HasPeer returns true if the interface has a peer with the given public key.
func (i *Interface) HasPeer(publicKey Key) bool {
	return i.PeerByKey(publicKey) != nil
}

// Peer is one peer of a WireGuard interface. Its identity is the public key within the interface.
type Peer struct {
	PublicKey           Key
	AllowedIPs          string // comma separated, as printed by wg show
	Endpoint            string
	PersistentKeepalive string // "off" or "every N seconds" style value as printed by wg show
	PresharedKey        string
}

// AllowedIPList returns the allowed IPs of the peer as a slice.
func (p Peer) AllowedIPList() []string {
	parts := strings.Split(p.AllowedIPs, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" || part == "(none)" {
			continue
		}
		result = append(result, part)
	}
	return result
}
