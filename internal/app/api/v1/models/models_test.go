package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/h44z/wg-agent/internal/domain"
)

func TestNewShowElement_Transfer(t *testing.T) {
	res, err := NewShowElement(domain.ShowTransfer{Transfers: []domain.PeerTransfer{
		{Peer: "a=", Transmitted: 100, Received: 200},
	}})
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"transfers":[{"peer":"a=","transmitted":100,"received":200}]}`, string(raw))
}

func TestNewShowElement_Handshakes(t *testing.T) {
	res, err := NewShowElement(domain.ShowLatestHandshakes{LatestHandshakes: []domain.PeerHandshake{
		{Peer: "a=", Handshake: 1700000000},
		{Peer: "b=", Handshake: 0},
	}})
	require.NoError(t, err)

	raw, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"latest_handshakes":[{"peer":"a=","handshake":"1700000000"},{"peer":"b=","handshake":"0"}]}`,
		string(raw))
}

func TestNewShowElement_Unsupported(t *testing.T) {
	_, err := NewShowElement("text")
	assert.Error(t, err)
}

func TestNewDomainCreateRequest(t *testing.T) {
	var req CreateInterfaceRequest
	require.NoError(t, json.Unmarshal(
		[]byte(`{"ifc_name":"wg0","address":"10.0.0.1/24","listen_port":0,"set_link_up":true,"persist":false}`),
		&req))

	d := NewDomainCreateRequest(req)
	assert.Equal(t, "wg0", d.Name)
	assert.Nil(t, d.ListenPort)
	assert.Nil(t, d.PrivateKey)
	assert.True(t, d.SetLinkUp)

	req.ListenPort = 51821
	req.PrivateKey = new(string)
	*req.PrivateKey = "priv="
	d = NewDomainCreateRequest(req)
	require.NotNil(t, d.ListenPort)
	assert.Equal(t, uint16(51821), *d.ListenPort)
	assert.Equal(t, domain.Key("priv="), *d.PrivateKey)
}

func TestNewDomainInterfaceParameters(t *testing.T) {
	var req InterfaceParameters
	require.NoError(t, json.Unmarshal(
		[]byte(`{"listen_port":51821,"peer":{"public_key":"p=","remove":true}}`), &req))

	d := NewDomainInterfaceParameters(req)
	require.NotNil(t, d.ListenPort)
	assert.Nil(t, d.FwMark)
	require.NotNil(t, d.Peer)
	assert.True(t, d.Peer.IsRemoval())
	assert.Equal(t, domain.Key("p="), d.Peer.PublicKey)

	assert.Nil(t, NewDomainInterfaceParameters(InterfaceParameters{}).Peer)
}

func TestNewInterface(t *testing.T) {
	iface := NewInterface(&domain.Interface{
		Name:       "wg0",
		PublicKey:  "pub=",
		ListenPort: 51820,
		Peers:      []domain.Peer{{PublicKey: "p=", AllowedIPs: "10.0.0.2/32"}},
	})

	raw, err := json.Marshal(iface)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"wg0","public_key":"pub=","private_key":"","listen_port":51820,"address":"",
		"peers":[{"public_key":"p=","allowed_ips":"10.0.0.2/32","persistent_keepalive":"","endpoint":"","preshared_key":""}]}`,
		string(raw))
}
