package models

import "github.com/h44z/wg-agent/internal/domain"

// PeerParameters is a sparse peer update. Omitted fields are left untouched.
type PeerParameters struct {
	PublicKey           string  `json:"public_key" validate:"required"`
	Remove              *bool   `json:"remove,omitempty"`
	PresharedKey        *string `json:"preshared_key,omitempty"`
	Endpoint            *string `json:"endpoint,omitempty" validate:"omitempty,endpoint"`
	PersistentKeepalive *uint32 `json:"persistent_keepalive,omitempty" validate:"omitempty,max=65535"`
	AllowedIPs          *string `json:"allowed_ips,omitempty"`
}

// InterfaceParameters is a sparse interface update, mirrors the arguments of wg set.
type InterfaceParameters struct {
	ListenPort *uint16         `json:"listen_port,omitempty"`
	PrivateKey *string         `json:"private_key,omitempty"`
	FwMark     *string         `json:"fwmark,omitempty"`
	Peer       *PeerParameters `json:"peer,omitempty"`
}

func NewDomainPeerParameters(src *PeerParameters) *domain.PeerParameters {
	if src == nil {
		return nil
	}

	return &domain.PeerParameters{
		PublicKey:           domain.Key(src.PublicKey),
		Remove:              src.Remove,
		PresharedKey:        src.PresharedKey,
		Endpoint:            src.Endpoint,
		PersistentKeepalive: src.PersistentKeepalive,
		AllowedIPs:          src.AllowedIPs,
	}
}

func NewDomainInterfaceParameters(src InterfaceParameters) domain.InterfaceParameters {
	return domain.InterfaceParameters{
		ListenPort: src.ListenPort,
		PrivateKey: src.PrivateKey,
		FwMark:     src.FwMark,
		Peer:       NewDomainPeerParameters(src.Peer),
	}
}
