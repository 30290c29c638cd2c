package wgshow

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/h44z/wg-agent/internal/domain"
)

// ParseElement parses the output of "wg show <interface> <element>" into the matching domain.Show* type.
func ParseElement(element domain.ShowElement, output string) (any, error) {
	switch element {
	case domain.ElementPublicKey:
		return ParsePublicKey(output)
	case domain.ElementPrivateKey:
		return ParsePrivateKey(output)
	case domain.ElementListenPort:
		return ParseListenPort(output)
	case domain.ElementFwMark:
		return ParseFwMark(output)
	case domain.ElementPeers:
		return ParsePeers(output), nil
	case domain.ElementPresharedKeys:
		return ParsePresharedKeys(output)
	case domain.ElementEndpoints:
		return ParseEndpoints(output)
	case domain.ElementAllowedIPs:
		return ParseAllowedIPs(output)
	case domain.ElementLatestHandshakes:
		return ParseLatestHandshakes(output)
	case domain.ElementPersistentKeepalive:
		return ParsePersistentKeepalives(output)
	case domain.ElementTransfer:
		return ParseTransfer(output)
	default:
		return nil, fmt.Errorf("%w: unknown element %q", domain.ErrInvalidData, element)
	}
}

func ParsePublicKey(output string) (domain.ShowPublicKey, error) {
	value, err := mustNotBeEmpty(string(domain.ElementPublicKey), output)
	if err != nil {
		return domain.ShowPublicKey{}, err
	}
	return domain.ShowPublicKey{PublicKey: domain.Key(value)}, nil
}

func ParsePrivateKey(output string) (domain.ShowPrivateKey, error) {
	value, err := mustNotBeEmpty(string(domain.ElementPrivateKey), output)
	if err != nil {
		return domain.ShowPrivateKey{}, err
	}
	return domain.ShowPrivateKey{PrivateKey: domain.Key(value)}, nil
}

func ParseListenPort(output string) (domain.ShowListenPort, error) {
	value, err := mustNotBeEmpty(string(domain.ElementListenPort), output)
	if err != nil {
		return domain.ShowListenPort{}, err
	}
	port, err := parseUint16(value)
	if err != nil {
		return domain.ShowListenPort{}, &domain.ParseError{
			Source: string(domain.ElementListenPort), Line: value, Reason: "invalid port", Err: err,
		}
	}
	return domain.ShowListenPort{ListenPort: port}, nil
}

func ParseFwMark(output string) (domain.ShowFwMark, error) {
	value, err := mustNotBeEmpty(string(domain.ElementFwMark), output)
	if err != nil {
		return domain.ShowFwMark{}, err
	}
	return domain.ShowFwMark{FwMark: value}, nil
}

// ParsePeers parses one public key per line.
func ParsePeers(output string) domain.ShowPeers {
	lines := splitLines(output)
	peers := make([]domain.Key, 0, len(lines))
	for _, line := range lines {
		peers = append(peers, domain.Key(line))
	}
	return domain.ShowPeers{Peers: peers}
}

func ParsePresharedKeys(output string) (domain.ShowPresharedKeys, error) {
	result := domain.ShowPresharedKeys{PresharedKeys: make([]domain.PeerPresharedKey, 0)}
	err := forEachPeerLine(domain.ElementPresharedKeys, output, 2, func(peer domain.Key, values []string) error {
		result.PresharedKeys = append(result.PresharedKeys, domain.PeerPresharedKey{
			Peer: peer, PresharedKey: values[0],
		})
		return nil
	})
	return result, err
}

func ParseEndpoints(output string) (domain.ShowEndpoints, error) {
	result := domain.ShowEndpoints{Endpoints: make([]domain.PeerEndpoint, 0)}
	err := forEachPeerLine(domain.ElementEndpoints, output, 2, func(peer domain.Key, values []string) error {
		result.Endpoints = append(result.Endpoints, domain.PeerEndpoint{Peer: peer, Endpoint: values[0]})
		return nil
	})
	return result, err
}

// ParseAllowedIPs parses lines of a peer key followed by a space separated list of CIDRs.
// The CIDRs are joined with ",".
func ParseAllowedIPs(output string) (domain.ShowAllowedIPs, error) {
	result := domain.ShowAllowedIPs{AllowedIPs: make([]domain.PeerAllowedIPs, 0)}
	err := forEachPeerLine(domain.ElementAllowedIPs, output, 2, func(peer domain.Key, values []string) error {
		result.AllowedIPs = append(result.AllowedIPs, domain.PeerAllowedIPs{
			Peer: peer, AllowedIPs: strings.Join(values, ","),
		})
		return nil
	})
	return result, err
}

func ParseLatestHandshakes(output string) (domain.ShowLatestHandshakes, error) {
	result := domain.ShowLatestHandshakes{LatestHandshakes: make([]domain.PeerHandshake, 0)}
	err := forEachPeerLine(domain.ElementLatestHandshakes, output, 2, func(peer domain.Key, values []string) error {
		ts, err := strconv.ParseUint(values[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid handshake timestamp: %w", err)
		}
		result.LatestHandshakes = append(result.LatestHandshakes, domain.PeerHandshake{Peer: peer, Handshake: ts})
		return nil
	})
	return result, err
}

func ParsePersistentKeepalives(output string) (domain.ShowPersistentKeepalives, error) {
	result := domain.ShowPersistentKeepalives{PersistentKeepalives: make([]domain.PeerKeepalive, 0)}
	err := forEachPeerLine(domain.ElementPersistentKeepalive, output, 2, func(peer domain.Key, values []string) error {
		result.PersistentKeepalives = append(result.PersistentKeepalives, domain.PeerKeepalive{
			Peer: peer, PersistentKeepalive: values[0],
		})
		return nil
	})
	return result, err
}

// ParseTransfer parses lines of a peer key followed by the transmitted and received byte counters.
func ParseTransfer(output string) (domain.ShowTransfer, error) {
	result := domain.ShowTransfer{Transfers: make([]domain.PeerTransfer, 0)}
	err := forEachPeerLine(domain.ElementTransfer, output, 3, func(peer domain.Key, values []string) error {
		transmitted, err := strconv.ParseUint(values[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid transmitted counter: %w", err)
		}
		received, err := strconv.ParseUint(values[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid received counter: %w", err)
		}
		result.Transfers = append(result.Transfers, domain.PeerTransfer{
			Peer: peer, Transmitted: transmitted, Received: received,
		})
		return nil
	})
	return result, err
}

// forEachPeerLine splits each non-empty line on whitespace. Token 0 is the peer key, the remaining
// tokens are passed as values. Lines with less than minTokens tokens are rejected.
func forEachPeerLine(
	element domain.ShowElement,
	output string,
	minTokens int,
	fn func(peer domain.Key, values []string) error,
) error {
	for _, line := range splitLines(output) {
		tokens := strings.Fields(line)
		if len(tokens) < minTokens {
			return &domain.ParseError{
				Source: string(element),
				Line:   line,
				Reason: fmt.Sprintf("expected at least %d tokens, got %d", minTokens, len(tokens)),
			}
		}
		if err := fn(domain.Key(tokens[0]), tokens[1:]); err != nil {
			return &domain.ParseError{Source: string(element), Line: line, Reason: "invalid value", Err: err}
		}
	}
	return nil
}
