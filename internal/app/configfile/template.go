// Package configfile renders wg-quick style configuration documents for provisioned peers.
package configfile

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"strings"
	"text/template"

	"github.com/yeqown/go-qrcode/v2"
	"github.com/yeqown/go-qrcode/writer/compressed"

	"github.com/h44z/wg-agent/internal/domain"
)

//go:embed tpl_files/*
var TemplateFiles embed.FS

// InterfaceBlock holds the values of an [Interface] section.
type InterfaceBlock struct {
	Address    string
	ListenPort uint16
	PrivateKey domain.Key
	Dns        string // optional
	Mtu        int    // optional, 0 omits the line
}

// PeerBlock holds the values of a [Peer] section.
type PeerBlock struct {
	PublicKey           domain.Key
	AllowedIPs          string // comma separated
	Endpoint            string // optional
	PersistentKeepalive uint32 // 0 omits the line
}

// Renderer renders configuration sections from the embedded templates.
// It holds no mutable state and can be shared between goroutines.
type Renderer struct {
	templates *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	templateCache, err := template.New("WireGuard").ParseFS(TemplateFiles, "tpl_files/*.tpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse config templates: %w", err)
	}

	return &Renderer{
		templates: templateCache,
	}, nil
}

// RenderInterface returns the rendered [Interface] section.
func (r *Renderer) RenderInterface(block InterfaceBlock) (string, error) {
	var tplBuff bytes.Buffer

	if err := r.templates.ExecuteTemplate(&tplBuff, "wg_interface.tpl", block); err != nil {
		return "", fmt.Errorf("failed to execute interface template for %s: %w", block.Address, err)
	}

	return tplBuff.String(), nil
}

// RenderPeer returns the rendered [Peer] section.
func (r *Renderer) RenderPeer(block PeerBlock) (string, error) {
	var tplBuff bytes.Buffer

	if err := r.templates.ExecuteTemplate(&tplBuff, "wg_peer.tpl", block); err != nil {
		return "", fmt.Errorf("failed to execute peer template for %s: %w", block.PublicKey, err)
	}

	return tplBuff.String(), nil
}

// Concat joins rendered sections into one document, separated by an empty line.
func Concat(sections ...string) string {
	trimmed := make([]string, 0, len(sections))
	for _, section := range sections {
		section = strings.TrimRight(section, "\n")
		if section != "" {
			trimmed = append(trimmed, section)
		}
	}
	return strings.Join(trimmed, "\n\n") + "\n"
}

// QrCode encodes the given configuration document as a PNG image.
// Comment lines are dropped to keep the code small.
func (r *Renderer) QrCode(config string) (io.Reader, error) {
	sb := strings.Builder{}
	for _, line := range strings.Split(config, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	code, err := qrcode.New(strings.TrimSpace(sb.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize qr code: %w", err)
	}

	buf := bytes.NewBuffer(nil)
	wr := nopCloser{Writer: buf}
	option := compressed.Option{
		Padding:   8, // padding pixels around the qr code.
		BlockSize: 4, // block pixels which represents a bit data.
	}
	qrWriter := compressed.NewWithWriter(wr, &option)
	if err := code.Save(qrWriter); err != nil {
		return nil, fmt.Errorf("failed to write qr code: %w", err)
	}

	return buf, nil
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }
