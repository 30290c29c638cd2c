package adapters

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/vishvananda/netlink"

	"github.com/h44z/wg-agent/internal/domain"
)

// NetlinkClient is the subset of the netlink API used by the NetlinkDriver.
type NetlinkClient interface {
	LinkAdd(link netlink.Link) error
	LinkDel(link netlink.Link) error
	LinkByName(name string) (netlink.Link, error)
	LinkSetUp(link netlink.Link) error
	LinkSetDown(link netlink.Link) error
	AddrAdd(link netlink.Link, addr *netlink.Addr) error
	AddrList(link netlink.Link, family int) ([]netlink.Addr, error)
}

type netlinkManager struct{}

func (netlinkManager) LinkAdd(link netlink.Link) error { return netlink.LinkAdd(link) }

func (netlinkManager) LinkDel(link netlink.Link) error { return netlink.LinkDel(link) }

func (netlinkManager) LinkByName(name string) (netlink.Link, error) { return netlink.LinkByName(name) }

func (netlinkManager) LinkSetUp(link netlink.Link) error { return netlink.LinkSetUp(link) }

func (netlinkManager) LinkSetDown(link netlink.Link) error { return netlink.LinkSetDown(link) }

func (netlinkManager) AddrAdd(link netlink.Link, addr *netlink.Addr) error {
	return netlink.AddrAdd(link, addr)
}

func (netlinkManager) AddrList(link netlink.Link, family int) ([]netlink.Addr, error) {
	return netlink.AddrList(link, family)
}

// NetlinkDriver manages WireGuard links and their addresses through the kernel netlink API
// instead of the ip tool.
type NetlinkDriver struct {
	nl NetlinkClient
}

// NewNetlinkDriver creates a NetlinkDriver that talks to the kernel of the current network namespace.
func NewNetlinkDriver() *NetlinkDriver {
	return &NetlinkDriver{nl: netlinkManager{}}
}

func (d *NetlinkDriver) link(name string) (netlink.Link, error) {
	link, err := d.nl.LinkByName(name)
	if err != nil {
		var linkNotFoundError netlink.LinkNotFoundError
		if errors.As(err, &linkNotFoundError) {
			return nil, fmt.Errorf("link %s: %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find link %s: %w", name, err)
	}
	return link, nil
}

// AddLink creates a new link of type wireguard.
func (d *NetlinkDriver) AddLink(_ context.Context, name string) error {
	link := &netlink.GenericLink{
		LinkAttrs: netlink.LinkAttrs{
			Name: name,
		},
		LinkType: "wireguard",
	}
	if err := d.nl.LinkAdd(link); err != nil {
		return fmt.Errorf("link add %s failed: %w", name, err)
	}
	slog.Debug("added wireguard link", "interface", name)
	return nil
}

// DeleteLink removes the link.
func (d *NetlinkDriver) DeleteLink(_ context.Context, name string) error {
	link, err := d.link(name)
	if err != nil {
		return err
	}
	if err := d.nl.LinkDel(link); err != nil {
		return fmt.Errorf("link delete %s failed: %w", name, err)
	}
	return nil
}

// AddAddress assigns the given CIDR to the link.
func (d *NetlinkDriver) AddAddress(_ context.Context, name, cidr string) error {
	link, err := d.link(name)
	if err != nil {
		return err
	}
	addr, err := netlink.ParseAddr(cidr)
	if err != nil {
		return fmt.Errorf("%w: invalid address %q: %v", domain.ErrInvalidData, cidr, err)
	}
	if err := d.nl.AddrAdd(link, addr); err != nil {
		return fmt.Errorf("address add %s on %s failed: %w", cidr, name, err)
	}
	return nil
}

// SetUp sets the link state to up.
func (d *NetlinkDriver) SetUp(_ context.Context, name string) error {
	link, err := d.link(name)
	if err != nil {
		return err
	}
	if err := d.nl.LinkSetUp(link); err != nil {
		return fmt.Errorf("link up %s failed: %w", name, err)
	}
	return nil
}

// SetDown sets the link state to down.
func (d *NetlinkDriver) SetDown(_ context.Context, name string) error {
	link, err := d.link(name)
	if err != nil {
		return err
	}
	if err := d.nl.LinkSetDown(link); err != nil {
		return fmt.Errorf("link down %s failed: %w", name, err)
	}
	return nil
}

// Addresses lists the CIDRs assigned to the link.
func (d *NetlinkDriver) Addresses(_ context.Context, name string) ([]string, error) {
	link, err := d.link(name)
	if err != nil {
		return nil, err
	}
	addrs, err := d.nl.AddrList(link, netlink.FAMILY_ALL)
	if err != nil {
		return nil, fmt.Errorf("address list of %s failed: %w", name, err)
	}
	result := make([]string, 0, len(addrs))
	for _, addr := range addrs {
		if addr.IPNet == nil {
			continue
		}
		result = append(result, addr.IPNet.String())
	}
	return result, nil
}
