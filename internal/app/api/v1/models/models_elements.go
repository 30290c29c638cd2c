package models

import (
	"fmt"
	"strconv"

	"github.com/h44z/wg-agent/internal/domain"
)

type ShowPublicKey struct {
	PublicKey string `json:"public_key"`
}

type ShowPrivateKey struct {
	PrivateKey string `json:"private_key"`
}

type ShowListenPort struct {
	ListenPort uint16 `json:"listen_port"`
}

type ShowFwMark struct {
	FwMark string `json:"fwmark"`
}

type ShowPeers struct {
	Peers []string `json:"peers"`
}

type PresharedKey struct {
	Peer         string `json:"peer"`
	PresharedKey string `json:"preshared_key"`
}

type ShowPresharedKeys struct {
	PresharedKeys []PresharedKey `json:"preshared_keys"`
}

type Endpoint struct {
	Peer     string `json:"peer"`
	Endpoint string `json:"endpoint"`
}

type ShowEndpoints struct {
	Endpoints []Endpoint `json:"endpoints"`
}

type AllowedIPs struct {
	Peer       string `json:"peer"`
	AllowedIPs string `json:"allowed_ips"`
}

type ShowAllowedIPs struct {
	AllowedIPs []AllowedIPs `json:"allowed_ips"`
}

// Handshake carries the unix timestamp as a decimal string, 0 means no handshake yet.
type Handshake struct {
	Peer      string `json:"peer"`
	Handshake string `json:"handshake"`
}

type ShowLatestHandshakes struct {
	LatestHandshakes []Handshake `json:"latest_handshakes"`
}

type PersistentKeepalive struct {
	Peer                string `json:"peer"`
	PersistentKeepalive string `json:"persistent_keepalive"`
}

type ShowPersistentKeepalives struct {
	PersistentKeepalives []PersistentKeepalive `json:"persistent_keepalives"`
}

type Transfer struct {
	Peer        string `json:"peer"`
	Transmitted uint64 `json:"transmitted"`
	Received    uint64 `json:"received"`
}

type ShowTransfer struct {
	Transfers []Transfer `json:"transfers"`
}

// NewShowElement converts the typed result of an element parser into its response model.
func NewShowElement(src any) (any, error) {
	switch v := src.(type) {
	case domain.ShowPublicKey:
		return ShowPublicKey{PublicKey: v.PublicKey.String()}, nil
	case domain.ShowPrivateKey:
		return ShowPrivateKey{PrivateKey: v.PrivateKey.String()}, nil
	case domain.ShowListenPort:
		return ShowListenPort{ListenPort: v.ListenPort}, nil
	case domain.ShowFwMark:
		return ShowFwMark{FwMark: v.FwMark}, nil
	case domain.ShowPeers:
		peers := make([]string, len(v.Peers))
		for i, p := range v.Peers {
			peers[i] = p.String()
		}
		return ShowPeers{Peers: peers}, nil
	case domain.ShowPresharedKeys:
		res := ShowPresharedKeys{PresharedKeys: make([]PresharedKey, len(v.PresharedKeys))}
		for i, e := range v.PresharedKeys {
			res.PresharedKeys[i] = PresharedKey{Peer: e.Peer.String(), PresharedKey: e.PresharedKey}
		}
		return res, nil
	case domain.ShowEndpoints:
		res := ShowEndpoints{Endpoints: make([]Endpoint, len(v.Endpoints))}
		for i, e := range v.Endpoints {
			res.Endpoints[i] = Endpoint{Peer: e.Peer.String(), Endpoint: e.Endpoint}
		}
		return res, nil
	case domain.ShowAllowedIPs:
		res := ShowAllowedIPs{AllowedIPs: make([]AllowedIPs, len(v.AllowedIPs))}
		for i, e := range v.AllowedIPs {
			res.AllowedIPs[i] = AllowedIPs{Peer: e.Peer.String(), AllowedIPs: e.AllowedIPs}
		}
		return res, nil
	case domain.ShowLatestHandshakes:
		res := ShowLatestHandshakes{LatestHandshakes: make([]Handshake, len(v.LatestHandshakes))}
		for i, e := range v.LatestHandshakes {
			res.LatestHandshakes[i] = Handshake{Peer: e.Peer.String(), Handshake: strconv.FormatUint(e.Handshake, 10)}
		}
		return res, nil
	case domain.ShowPersistentKeepalives:
		res := ShowPersistentKeepalives{PersistentKeepalives: make([]PersistentKeepalive, len(v.PersistentKeepalives))}
		for i, e := range v.PersistentKeepalives {
			res.PersistentKeepalives[i] = PersistentKeepalive{Peer: e.Peer.String(), PersistentKeepalive: e.PersistentKeepalive}
		}
		return res, nil
	case domain.ShowTransfer:
		res := ShowTransfer{Transfers: make([]Transfer, len(v.Transfers))}
		for i, e := range v.Transfers {
			res.Transfers[i] = Transfer{Peer: e.Peer.String(), Transmitted: e.Transmitted, Received: e.Received}
		}
		return res, nil
	default:
		return nil, fmt.Errorf("unsupported element result %T", src)
	}
}
