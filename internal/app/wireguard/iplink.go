package wireguard

import (
	"context"
	"strings"
)

// IpLinkDriver manages links and addresses with the iproute2 ip tool.
type IpLinkDriver struct {
	ipBinary string
	runner   CommandRunner
}

func NewIpLinkDriver(ipBinary string, runner CommandRunner) *IpLinkDriver {
	return &IpLinkDriver{
		ipBinary: ipBinary,
		runner:   runner,
	}
}

func (d *IpLinkDriver) AddLink(ctx context.Context, name string) error {
	_, err := d.runner.Run(ctx, d.ipBinary, "link", "add", "dev", name, "type", "wireguard")
	return err
}

func (d *IpLinkDriver) DeleteLink(ctx context.Context, name string) error {
	_, err := d.runner.Run(ctx, d.ipBinary, "link", "del", "dev", name)
	return err
}

func (d *IpLinkDriver) AddAddress(ctx context.Context, name, cidr string) error {
	_, err := d.runner.Run(ctx, d.ipBinary, "addr", "add", cidr, "dev", name)
	return err
}

func (d *IpLinkDriver) SetUp(ctx context.Context, name string) error {
	_, err := d.runner.Run(ctx, d.ipBinary, "link", "set", name, "up")
	return err
}

func (d *IpLinkDriver) SetDown(ctx context.Context, name string) error {
	_, err := d.runner.Run(ctx, d.ipBinary, "link", "set", name, "down")
	return err
}

// Addresses lists the CIDRs assigned to the link, as reported by "ip -o addr show dev <name>".
func (d *IpLinkDriver) Addresses(ctx context.Context, name string) ([]string, error) {
	out, err := d.runner.Run(ctx, d.ipBinary, "-o", "addr", "show", "dev", name)
	if err != nil {
		return nil, err
	}
	return parseAddrShow(out), nil
}

// parseAddrShow extracts the CIDRs of one-line "ip -o addr show" output:
// "5: wg0    inet 10.0.0.1/24 scope global wg0\       valid_lft forever preferred_lft forever"
func parseAddrShow(output string) []string {
	addrs := make([]string, 0)
	for _, line := range strings.Split(output, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		if fields[2] != "inet" && fields[2] != "inet6" {
			continue
		}
		addrs = append(addrs, fields[3])
	}
	return addrs
}
