package models

import "github.com/h44z/wg-agent/internal/domain"

// ProvisionRequest describes a new remote peer for an existing interface.
type ProvisionRequest struct {
	Address          string   `json:"address" validate:"required"`
	RemoteAllowedIPs []string `json:"remote_allowed_ips" validate:"omitempty,dive,cidr"`
	LocalAllowedIPs  []string `json:"local_allowed_ips" validate:"omitempty,dive,cidr"`
	ListenPort       *uint16  `json:"listen_port,omitempty"`
	RemoteEndpoint   *string  `json:"remote_endpoint,omitempty" validate:"omitempty,endpoint"`
	LocalEndpoint    string   `json:"local_endpoint" validate:"omitempty,endpoint"`
	Keepalive        *uint32  `json:"keepalive,omitempty"`
	Dns              *string  `json:"dns,omitempty"`
	Mtu              *int     `json:"mtu,omitempty" validate:"omitempty,min=576,max=65535"`
}

func NewDomainProvisionRequest(src ProvisionRequest) domain.ProvisionRequest {
	return domain.ProvisionRequest{
		Address:          src.Address,
		RemoteAllowedIPs: src.RemoteAllowedIPs,
		LocalAllowedIPs:  src.LocalAllowedIPs,
		ListenPort:       src.ListenPort,
		RemoteEndpoint:   src.RemoteEndpoint,
		LocalEndpoint:    src.LocalEndpoint,
		Keepalive:        src.Keepalive,
		Dns:              src.Dns,
		Mtu:              src.Mtu,
	}
}

// ProvisionResult contains the configuration file for the new peer.
type ProvisionResult struct {
	InterfaceConfig    string `json:"interface_config"`
	PublicKey          string `json:"public_key"`
	InterfacePublicKey string `json:"interface_public_key"`
}

func NewProvisionResult(src *domain.ProvisionResult) ProvisionResult {
	return ProvisionResult{
		InterfaceConfig:    src.InterfaceConfig,
		PublicKey:          src.PublicKey.String(),
		InterfacePublicKey: src.InterfacePublicKey.String(),
	}
}
