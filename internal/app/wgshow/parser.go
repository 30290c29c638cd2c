// Package wgshow parses the human readable output of the wg tool into domain records.
package wgshow

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/h44z/wg-agent/internal/domain"
)

// ParseShow parses the output of "wg show" or "wg show <interface>".
// Interfaces and peers are returned in the order they appear in the output.
// Empty output yields an empty list. A block without a header section is a hard error.
func ParseShow(output string) ([]domain.Interface, error) {
	interfaces := make([]domain.Interface, 0)

	blocks := strings.Split(strings.TrimSpace(output), interfaceDelimiter)
	for _, block := range blocks {
		if strings.TrimSpace(block) == "" {
			continue // text before the first interface delimiter
		}

		iface, err := parseInterfaceBlock(block)
		if err != nil {
			return nil, err
		}
		interfaces = append(interfaces, iface)
	}

	return interfaces, nil
}

func parseInterfaceBlock(block string) (domain.Interface, error) {
	segments := strings.Split(block, peerDelimiter)
	if !isHeaderSegment(segments[0]) {
		return domain.Interface{}, &domain.ParseError{
			Source: "wg show",
			Line:   firstLine(segments[0]),
			Reason: "interface block without listening port",
		}
	}

	var iface domain.Interface
	iface.Peers = make([]domain.Peer, 0, len(segments)-1)
	for i, segment := range segments {
		if isHeaderSegment(segment) {
			if i != 0 {
				return domain.Interface{}, &domain.ParseError{
					Source: "wg show",
					Line:   firstLine(segment),
					Reason: "unexpected header section inside peer list",
				}
			}
			if err := parseHeader(segment, &iface); err != nil {
				return domain.Interface{}, err
			}
			continue
		}

		peer, ok := parsePeer(iface.Name, segment)
		if ok {
			iface.Peers = append(iface.Peers, peer)
		}
	}

	return iface, nil
}

func parseHeader(segment string, iface *domain.Interface) error {
	lines := splitLines(segment)
	if len(lines) == 0 {
		return &domain.ParseError{Source: "wg show", Reason: "empty interface header"}
	}
	iface.Name = lines[0]

	for _, line := range lines[1:] {
		kind, value := classifyHeaderLine(line)
		switch kind {
		case headerLinePublicKey:
			iface.PublicKey = domain.Key(value)
		case headerLineListeningPort:
			port, err := parseUint16(value)
			if err != nil {
				return &domain.ParseError{Source: "wg show", Line: line, Reason: "invalid listening port", Err: err}
			}
			iface.ListenPort = port
		case headerLinePrivateKey, headerLineFwMark:
			// not part of the interface record
		default:
			slog.Debug("skipping unknown interface header line", "interface", iface.Name, "line", line)
		}
	}

	return nil
}

// parsePeer parses one peer section. Malformed optional lines are skipped.
func parsePeer(ifaceName, segment string) (domain.Peer, bool) {
	lines := splitLines(segment)
	if len(lines) == 0 {
		slog.Warn("skipping empty peer section", "interface", ifaceName)
		return domain.Peer{}, false
	}

	peer := domain.Peer{PublicKey: domain.Key(lines[0])}
	for _, line := range lines[1:] {
		kind, value := classifyPeerLine(line)
		switch kind {
		case peerLineEndpoint:
			peer.Endpoint = value
		case peerLineAllowedIPs:
			peer.AllowedIPs = normalizeAllowedIPs(value)
		case peerLinePersistentKeepalive:
			peer.PersistentKeepalive = value
		case peerLineLatestHandshake, peerLineTransfer, peerLinePresharedKey:
			// runtime data, available through the element queries
		default:
			slog.Warn("skipping unknown peer line", "interface", ifaceName, "peer", peer.PublicKey, "line", line)
		}
	}

	return peer, true
}

// ParseInterfaceNames parses the output of "wg show interfaces".
func ParseInterfaceNames(output string) []string {
	return strings.Fields(output)
}

// ParseKey parses the output of wg genkey, wg genpsk and wg pubkey. The key is not validated.
func ParseKey(output string) domain.Key {
	return domain.Key(strings.TrimSpace(output))
}

// region helpers

func splitLines(segment string) []string {
	raw := strings.Split(segment, "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

func firstLine(segment string) string {
	lines := splitLines(segment)
	if len(lines) == 0 {
		return ""
	}
	return lines[0]
}

func parseUint16(value string) (uint16, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(value), 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}

// normalizeAllowedIPs turns the ", " separated list of wg show into a "," separated list.
func normalizeAllowedIPs(value string) string {
	parts := strings.Split(value, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return strings.Join(parts, ",")
}

func mustNotBeEmpty(source, output string) (string, error) {
	trimmed := strings.TrimSpace(output)
	if trimmed == "" {
		return "", &domain.ParseError{Source: source, Reason: "empty output"}
	}
	return trimmed, nil
}

// endregion helpers
