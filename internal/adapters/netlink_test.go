package adapters

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vishvananda/netlink"

	"github.com/h44z/wg-agent/internal/domain"
)

type fakeNetlink struct {
	links map[string]netlink.Link
	up    map[string]bool
	addrs map[string][]netlink.Addr
	err   error
}

func newFakeNetlink() *fakeNetlink {
	return &fakeNetlink{
		links: map[string]netlink.Link{},
		up:    map[string]bool{},
		addrs: map[string][]netlink.Addr{},
	}
}

func (f *fakeNetlink) LinkAdd(link netlink.Link) error {
	if f.err != nil {
		return f.err
	}
	f.links[link.Attrs().Name] = link
	return nil
}

func (f *fakeNetlink) LinkDel(link netlink.Link) error {
	delete(f.links, link.Attrs().Name)
	delete(f.addrs, link.Attrs().Name)
	return nil
}

func (f *fakeNetlink) LinkByName(name string) (netlink.Link, error) {
	link, ok := f.links[name]
	if !ok {
		return nil, netlink.LinkNotFoundError{}
	}
	return link, nil
}

func (f *fakeNetlink) LinkSetUp(link netlink.Link) error {
	f.up[link.Attrs().Name] = true
	return nil
}

func (f *fakeNetlink) LinkSetDown(link netlink.Link) error {
	f.up[link.Attrs().Name] = false
	return nil
}

func (f *fakeNetlink) AddrAdd(link netlink.Link, addr *netlink.Addr) error {
	f.addrs[link.Attrs().Name] = append(f.addrs[link.Attrs().Name], *addr)
	return nil
}

func (f *fakeNetlink) AddrList(link netlink.Link, _ int) ([]netlink.Addr, error) {
	return f.addrs[link.Attrs().Name], nil
}

func TestNetlinkDriver_Lifecycle(t *testing.T) {
	nl := newFakeNetlink()
	d := &NetlinkDriver{nl: nl}
	ctx := context.Background()

	require.NoError(t, d.AddLink(ctx, "wg0"))
	assert.Equal(t, "wireguard", nl.links["wg0"].Type())

	require.NoError(t, d.AddAddress(ctx, "wg0", "10.0.0.1/24"))
	require.NoError(t, d.AddAddress(ctx, "wg0", "fd00::1/64"))
	require.NoError(t, d.SetUp(ctx, "wg0"))
	assert.True(t, nl.up["wg0"])

	addrs, err := d.Addresses(ctx, "wg0")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.1/24", "fd00::1/64"}, addrs)

	require.NoError(t, d.SetDown(ctx, "wg0"))
	assert.False(t, nl.up["wg0"])

	require.NoError(t, d.DeleteLink(ctx, "wg0"))
	assert.Empty(t, nl.links)
}

func TestNetlinkDriver_Errors(t *testing.T) {
	nl := newFakeNetlink()
	d := &NetlinkDriver{nl: nl}
	ctx := context.Background()

	assert.ErrorIs(t, d.DeleteLink(ctx, "wg9"), domain.ErrNotFound)
	assert.ErrorIs(t, d.SetUp(ctx, "wg9"), domain.ErrNotFound)

	require.NoError(t, d.AddLink(ctx, "wg0"))
	assert.ErrorIs(t, d.AddAddress(ctx, "wg0", "not-a-cidr"), domain.ErrInvalidData)

	nl.err = errors.New("operation not permitted")
	assert.ErrorContains(t, d.AddLink(ctx, "wg1"), "operation not permitted")
}
