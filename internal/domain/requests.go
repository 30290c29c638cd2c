package domain

import (
	"fmt"
	"net/netip"
	"strings"
)

// InterfaceCreateRequest describes a new WireGuard interface.
type InterfaceCreateRequest struct {
	Name       string
	Address    string  // CIDR assigned to the link, e.g. 10.0.0.1/24
	ListenPort *uint16 // nil uses the configured default
	PrivateKey *Key    // nil generates a new key
	SetLinkUp  bool
	Persist    bool
}

// Validate checks the request for obviously invalid values.
func (r InterfaceCreateRequest) Validate() error {
	if err := ValidateInterfaceName(r.Name); err != nil {
		return err
	}
	if _, err := netip.ParsePrefix(strings.TrimSpace(r.Address)); err != nil {
		return fmt.Errorf("%w: invalid address %q: %v", ErrInvalidData, r.Address, err)
	}
	if r.ListenPort != nil && *r.ListenPort == 0 {
		return fmt.Errorf("%w: listen port must not be 0", ErrInvalidData)
	}
	return nil
}

// ValidateInterfaceName checks that the name is usable as a linux link name and as a file name.
func ValidateInterfaceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: missing interface name", ErrInvalidData)
	}
	if len(name) > 15 {
		return fmt.Errorf("%w: interface name %q longer than 15 characters", ErrInvalidData, name)
	}
	for _, c := range name {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_', c == '.':
		default:
			return fmt.Errorf("%w: interface name %q contains invalid character %q", ErrInvalidData, name, c)
		}
	}
	if name == "." || name == ".." {
		return fmt.Errorf("%w: invalid interface name %q", ErrInvalidData, name)
	}
	return nil
}

// PeerParameters is a sparse peer update. Nil fields are left untouched.
// Remove short-circuits every other field.
type PeerParameters struct {
	PublicKey           Key
	Remove              *bool
	PresharedKey        *string
	Endpoint            *string
	PersistentKeepalive *uint32
	AllowedIPs          *string
}

// IsRemoval returns true if the peer should be removed.
func (p PeerParameters) IsRemoval() bool {
	return p.Remove != nil && *p.Remove
}

// InterfaceParameters is a sparse interface update. Nil fields are left untouched.
type InterfaceParameters struct {
	ListenPort *uint16
	PrivateKey *string
	FwMark     *string
	Peer       *PeerParameters
}

// HasInterfaceFields returns true if at least one interface level field is set.
func (p InterfaceParameters) HasInterfaceFields() bool {
	return p.ListenPort != nil || p.PrivateKey != nil || p.FwMark != nil
}

// ProvisionRequest describes a new remote peer that should be registered on an existing interface.
type ProvisionRequest struct {
	Address          string   // tunnel address of the new peer, e.g. 10.0.0.2/24
	RemoteAllowedIPs []string // allowed IPs registered for the new peer on the local interface
	LocalAllowedIPs  []string // allowed IPs the new peer routes to the local interface
	ListenPort       *uint16
	RemoteEndpoint   *string
	LocalEndpoint    string
	Keepalive        *uint32
	Dns              *string
	Mtu              *int
}

// ProvisionResult is the outcome of a successful provisioning operation.
type ProvisionResult struct {
	InterfaceConfig    string // complete configuration file for the new peer
	PublicKey          Key    // public key of the new peer
	InterfacePublicKey Key    // public key of the local interface
}

// HostPrefix returns the host prefix (/32 or /128) of the given address. The address may carry a prefix length.
func HostPrefix(address string) (string, error) {
	address = strings.TrimSpace(address)
	var addr netip.Addr
	if strings.Contains(address, "/") {
		prefix, err := netip.ParsePrefix(address)
		if err != nil {
			return "", fmt.Errorf("%w: invalid address %q: %v", ErrInvalidData, address, err)
		}
		addr = prefix.Addr()
	} else {
		a, err := netip.ParseAddr(address)
		if err != nil {
			return "", fmt.Errorf("%w: invalid address %q: %v", ErrInvalidData, address, err)
		}
		addr = a
	}

	return netip.PrefixFrom(addr, addr.BitLen()).String(), nil
}
