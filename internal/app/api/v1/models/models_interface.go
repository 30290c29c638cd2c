package models

import (
	"github.com/h44z/wg-agent/internal"
	"github.com/h44z/wg-agent/internal/domain"
)

// Interface is the live state of a WireGuard interface.
type Interface struct {
	Name       string `json:"name" example:"wg0"`
	PublicKey  string `json:"public_key"`
	PrivateKey string `json:"private_key"` // only filled in the response of a create call
	ListenPort uint16 `json:"listen_port" example:"51820"`
	Address    string `json:"address" example:"10.0.0.1/24"`
	Peers      []Peer `json:"peers"`
}

// Peer is one peer of an interface, as reported by wg show.
type Peer struct {
	PublicKey           string `json:"public_key"`
	AllowedIPs          string `json:"allowed_ips" example:"10.0.0.2/32"`
	PersistentKeepalive string `json:"persistent_keepalive" example:"every 25 seconds"`
	Endpoint            string `json:"endpoint" example:"192.0.2.1:51820"`
	PresharedKey        string `json:"preshared_key"`
}

func NewInterface(src *domain.Interface) Interface {
	peers := make([]Peer, len(src.Peers))
	for i, p := range src.Peers {
		peers[i] = Peer{
			PublicKey:           p.PublicKey.String(),
			AllowedIPs:          p.AllowedIPs,
			PersistentKeepalive: p.PersistentKeepalive,
			Endpoint:            p.Endpoint,
			PresharedKey:        p.PresharedKey,
		}
	}

	return Interface{
		Name:       src.Name,
		PublicKey:  src.PublicKey.String(),
		PrivateKey: src.PrivateKey.String(),
		ListenPort: src.ListenPort,
		Address:    src.Address,
		Peers:      peers,
	}
}

// ShowAll is the response of wg show.
type ShowAll struct {
	Interfaces []Interface `json:"interfaces"`
}

func NewShowAll(src []domain.Interface) ShowAll {
	interfaces := make([]Interface, len(src))
	for i := range src {
		interfaces[i] = NewInterface(&src[i])
	}
	return ShowAll{Interfaces: interfaces}
}

// ShowInterfaces is the response of wg show interfaces.
type ShowInterfaces struct {
	Interfaces []string `json:"interfaces"`
}

// CreateInterfaceRequest describes a new interface.
type CreateInterfaceRequest struct {
	Name       string  `json:"ifc_name" validate:"required,max=15"`
	Address    string  `json:"address" validate:"required,cidr"`
	ListenPort uint16  `json:"listen_port"` // 0 uses the configured default
	PrivateKey *string `json:"private_key,omitempty"`
	SetLinkUp  bool    `json:"set_link_up"`
	Persist    bool    `json:"persist"`
}

func NewDomainCreateRequest(src CreateInterfaceRequest) domain.InterfaceCreateRequest {
	req := domain.InterfaceCreateRequest{
		Name:      src.Name,
		Address:   src.Address,
		SetLinkUp: src.SetLinkUp,
		Persist:   src.Persist,
	}
	if src.ListenPort != 0 {
		req.ListenPort = internal.Ptr(src.ListenPort)
	}
	if src.PrivateKey != nil {
		req.PrivateKey = internal.Ptr(domain.Key(*src.PrivateKey))
	}
	return req
}
