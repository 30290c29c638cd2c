package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/require"

	"github.com/h44z/wg-agent/internal/app/api/core"
	"github.com/h44z/wg-agent/internal/app/api/v1/models"
	"github.com/h44z/wg-agent/internal/config"
	"github.com/h44z/wg-agent/internal/domain"
)

type fakeInterfaces struct {
	interfaces map[string]*domain.Interface
	err        error

	created  []domain.InterfaceCreateRequest
	removed  []string
	saved    []string
	applied  []domain.InterfaceParameters
	elements map[string]any
}

func newFakeInterfaces() *fakeInterfaces {
	return &fakeInterfaces{
		interfaces: map[string]*domain.Interface{
			"wg0": {
				Name:       "wg0",
				PublicKey:  "pub0=",
				ListenPort: 51820,
				Address:    "10.0.0.1/24",
				Peers:      []domain.Peer{{PublicKey: "peer=", AllowedIPs: "10.0.0.2/32"}},
			},
		},
		elements: map[string]any{},
	}
}

func (f *fakeInterfaces) get(name string) (*domain.Interface, error) {
	if f.err != nil {
		return nil, f.err
	}
	iface, ok := f.interfaces[name]
	if !ok {
		return nil, fmt.Errorf("interface %s: %w", name, domain.ErrNotFound)
	}
	return iface, nil
}

func (f *fakeInterfaces) ListNames(_ context.Context) ([]string, error) {
	if f.err != nil {
		return nil, f.err
	}
	var names []string
	for name := range f.interfaces {
		names = append(names, name)
	}
	return names, nil
}

func (f *fakeInterfaces) List(_ context.Context) ([]domain.Interface, error) {
	if f.err != nil {
		return nil, f.err
	}
	var list []domain.Interface
	for _, iface := range f.interfaces {
		list = append(list, *iface)
	}
	return list, nil
}

func (f *fakeInterfaces) Get(_ context.Context, name string) (*domain.Interface, error) {
	return f.get(name)
}

func (f *fakeInterfaces) ShowElement(_ context.Context, name string, element string) (any, error) {
	if _, err := f.get(name); err != nil {
		return nil, err
	}
	if _, err := domain.ParseShowElement(element); err != nil {
		return nil, err
	}
	return f.elements[element], nil
}

func (f *fakeInterfaces) ShowConf(_ context.Context, name string) (string, error) {
	if _, err := f.get(name); err != nil {
		return "", err
	}
	return "[Interface]\nListenPort = 51820\n", nil
}

func (f *fakeInterfaces) Create(_ context.Context, req domain.InterfaceCreateRequest) (*domain.Interface, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, req)
	iface := &domain.Interface{Name: req.Name, PublicKey: "newpub=", PrivateKey: "newpriv=", ListenPort: 51820,
		Address: req.Address}
	f.interfaces[req.Name] = iface
	return iface, nil
}

func (f *fakeInterfaces) Remove(_ context.Context, name string) error {
	if f.err != nil {
		return f.err
	}
	f.removed = append(f.removed, name)
	delete(f.interfaces, name)
	return nil
}

func (f *fakeInterfaces) SaveConfig(_ context.Context, name string) error {
	if _, err := f.get(name); err != nil {
		return err
	}
	f.saved = append(f.saved, name)
	return nil
}

func (f *fakeInterfaces) ApplySet(_ context.Context, name string, params domain.InterfaceParameters) (
	*domain.Interface,
	error,
) {
	iface, err := f.get(name)
	if err != nil {
		return nil, err
	}
	f.applied = append(f.applied, params)
	if params.ListenPort != nil {
		iface.ListenPort = *params.ListenPort
	}
	if params.Peer != nil {
		if params.Peer.IsRemoval() {
			var peers []domain.Peer
			for _, p := range iface.Peers {
				if p.PublicKey != params.Peer.PublicKey {
					peers = append(peers, p)
				}
			}
			iface.Peers = peers
		} else if !iface.HasPeer(params.Peer.PublicKey) {
			iface.Peers = append(iface.Peers, domain.Peer{PublicKey: params.Peer.PublicKey})
		}
	}
	return iface, nil
}

func (f *fakeInterfaces) AddPeer(ctx context.Context, name string, peer domain.PeerParameters) (
	*domain.Interface,
	error,
) {
	return f.ApplySet(ctx, name, domain.InterfaceParameters{Peer: &peer})
}

func (f *fakeInterfaces) RemovePeer(ctx context.Context, name string, publicKey domain.Key) (
	*domain.Interface,
	error,
) {
	remove := true
	return f.ApplySet(ctx, name, domain.InterfaceParameters{
		Peer: &domain.PeerParameters{PublicKey: publicKey, Remove: &remove},
	})
}

type fakeKeys struct {
	err error
}

func (f fakeKeys) GeneratePrivateKey(_ context.Context) (domain.Key, error) {
	return "priv=", f.err
}

func (f fakeKeys) GeneratePresharedKey(_ context.Context) (domain.Key, error) {
	return "psk=", f.err
}

func (f fakeKeys) PublicKey(_ context.Context, privateKey domain.Key) (domain.Key, error) {
	return "pub-" + privateKey, f.err
}

func (f fakeKeys) KeyPair(_ context.Context) (domain.KeyPair, error) {
	return domain.KeyPair{PrivateKey: "priv=", PublicKey: "pub-priv="}, f.err
}

type fakeProvisioning struct {
	requests []domain.ProvisionRequest
	err      error
}

func (f *fakeProvisioning) Provision(_ context.Context, name string, req domain.ProvisionRequest) (
	*domain.ProvisionResult,
	error,
) {
	if f.err != nil {
		return nil, f.err
	}
	f.requests = append(f.requests, req)
	return &domain.ProvisionResult{
		InterfaceConfig:    "[Interface]\nAddress = " + req.Address + "\n\n[Peer]\nPublicKey = pub0=\n",
		PublicKey:          "newpeer=",
		InterfacePublicKey: "pub0=",
	}, nil
}

func (f *fakeProvisioning) ProvisionQrCode(ctx context.Context, name string, req domain.ProvisionRequest) (
	io.Reader,
	error,
) {
	if _, err := f.Provision(ctx, name, req); err != nil {
		return nil, err
	}
	return strings.NewReader("\x89PNG\r\n\x1a\nfake"), nil
}

type fakeAudit struct {
	entries []domain.AuditEntry
	lastIfc string
}

func (f *fakeAudit) GetAll(_ context.Context, iface string) ([]domain.AuditEntry, error) {
	f.lastIfc = iface
	return f.entries, nil
}

type testApi struct {
	handler      http.Handler
	interfaces   *fakeInterfaces
	provisioning *fakeProvisioning
	audit        *fakeAudit
}

func newTestApi(t *testing.T) *testApi {
	t.Helper()

	api := &testApi{
		interfaces:   newFakeInterfaces(),
		provisioning: &fakeProvisioning{},
		audit:        &fakeAudit{},
	}
	validate := validator.New(validator.WithRequiredStructEnabled())
	require.NoError(t, models.RegisterValidations(validate))

	srv, err := core.NewServer(&config.Config{}, NewRestApi(
		NewShowEndpoint(api.interfaces),
		NewKeyEndpoint(fakeKeys{}, validate),
		NewInterfaceEndpoint(api.interfaces, validate),
		NewProvisioningEndpoint(api.provisioning, validate),
		NewAuditEndpoint(api.audit),
	))
	require.NoError(t, err)
	api.handler = srv.Handler()

	return api
}

func (a *testApi) do(method, path, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	rr := httptest.NewRecorder()
	a.handler.ServeHTTP(rr, req)
	return rr
}
