package wgshow

import "strings"

// headerLineKind enumerates the lines that can appear in the header section of an interface block.
type headerLineKind int

const (
	headerLineUnknown headerLineKind = iota
	headerLinePublicKey
	headerLinePrivateKey
	headerLineListeningPort
	headerLineFwMark
)

// peerLineKind enumerates the lines that can appear in a peer section of an interface block.
type peerLineKind int

const (
	peerLineUnknown peerLineKind = iota
	peerLineEndpoint
	peerLineAllowedIPs
	peerLinePersistentKeepalive
	peerLineLatestHandshake
	peerLineTransfer
	peerLinePresharedKey
)

const (
	interfaceDelimiter = "interface: "
	peerDelimiter      = "peer: "
	headerMarker       = "listening port"
)

type linePrefix[K any] struct {
	kind   K
	prefix string
}

// header lines are matched by prefix
var headerPrefixes = []linePrefix[headerLineKind]{
	{headerLinePublicKey, "public key: "},
	{headerLinePrivateKey, "private key: "},
	{headerLineListeningPort, "listening port: "},
	{headerLineFwMark, "fwmark: "},
}

// peer lines are matched by substring, the label ends at the first colon
var peerMarkers = []linePrefix[peerLineKind]{
	{peerLineEndpoint, "endpoint"},
	{peerLineAllowedIPs, "allowed ips"},
	{peerLinePersistentKeepalive, "persistent keepalive"},
	{peerLineLatestHandshake, "latest handshake"},
	{peerLineTransfer, "transfer"},
	{peerLinePresharedKey, "preshared key"},
}

// classifyHeaderLine returns the kind of the trimmed header line and its value without the label.
func classifyHeaderLine(line string) (headerLineKind, string) {
	for _, p := range headerPrefixes {
		if strings.HasPrefix(line, p.prefix) {
			return p.kind, strings.TrimSpace(strings.TrimPrefix(line, p.prefix))
		}
	}
	return headerLineUnknown, line
}

// classifyPeerLine returns the kind of the trimmed peer line and its value without the label.
func classifyPeerLine(line string) (peerLineKind, string) {
	for _, m := range peerMarkers {
		if !strings.Contains(line, m.prefix) {
			continue
		}
		_, value, found := strings.Cut(line, ":")
		if !found {
			return peerLineUnknown, line
		}
		return m.kind, strings.TrimSpace(value)
	}
	return peerLineUnknown, line
}

// isHeaderSegment reports whether a segment of an interface block is the interface header.
func isHeaderSegment(segment string) bool {
	return strings.Contains(segment, headerMarker)
}
