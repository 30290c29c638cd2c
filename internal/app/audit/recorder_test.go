package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	evbus "github.com/vardius/message-bus"

	"github.com/h44z/wg-agent/internal/adapters"
	"github.com/h44z/wg-agent/internal/app"
	"github.com/h44z/wg-agent/internal/config"
	"github.com/h44z/wg-agent/internal/domain"
)

type fakeBus struct {
	handlers map[string]interface{}
	err      error
}

func (b *fakeBus) Subscribe(topic string, fn interface{}) error {
	if b.err != nil {
		return b.err
	}
	if b.handlers == nil {
		b.handlers = map[string]interface{}{}
	}
	b.handlers[topic] = fn
	return nil
}

func newTestRepo(t *testing.T) *adapters.SqlRepo {
	t.Helper()
	db, err := adapters.NewDatabase(config.DatabaseConfig{
		Type: config.DatabaseSQLite,
		DSN:  filepath.Join(t.TempDir(), "audit.db"),
	})
	require.NoError(t, err)
	repo, err := adapters.NewSqlRepository(db)
	require.NoError(t, err)
	return repo
}

func auditConfig(enabled bool) *config.Config {
	cfg := &config.Config{}
	cfg.Core.AuditLog = enabled
	return cfg
}

func TestNewAuditRecorder_Disabled(t *testing.T) {
	bus := &fakeBus{}
	_, err := NewAuditRecorder(auditConfig(false), bus, newTestRepo(t))
	require.NoError(t, err)
	assert.Empty(t, bus.handlers)
}

func TestNewAuditRecorder_SubscribeFailure(t *testing.T) {
	_, err := NewAuditRecorder(auditConfig(true), &fakeBus{err: errors.New("closed")}, newTestRepo(t))
	assert.Error(t, err)
}

func TestRecorder_StoresEvents(t *testing.T) {
	repo := newTestRepo(t)
	bus := &fakeBus{}
	_, err := NewAuditRecorder(auditConfig(true), bus, repo)
	require.NoError(t, err)
	require.Len(t, bus.handlers, 5)

	bus.handlers[app.TopicInterfaceCreated].(func(app.InterfaceEvent))(
		app.InterfaceEvent{Interface: "wg0", Action: "create"})
	bus.handlers[app.TopicInterfaceUpdated].(func(app.InterfaceEvent))(
		app.InterfaceEvent{Interface: "wg0", Action: "set", Error: "wg exited with status 1"})
	bus.handlers[app.TopicPeerProvisioned].(func(app.PeerEvent))(
		app.PeerEvent{Interface: "wg0", PeerKey: "peer=", Action: "provision"})
	bus.handlers[app.TopicInterfaceRemoved].(func(app.InterfaceEvent))(
		app.InterfaceEvent{Interface: "wg1", Action: "remove"})

	ctx := context.Background()
	m := NewManager(repo)

	all, err := m.GetAll(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, app.TopicInterfaceRemoved, all[0].Origin)
	assert.Equal(t, domain.AuditSeverityLevelMedium, all[0].Severity)

	wg0, err := m.GetAll(ctx, "wg0")
	require.NoError(t, err)
	require.Len(t, wg0, 3)

	severities := map[string]domain.AuditSeverityLevel{}
	for _, e := range wg0 {
		severities[e.Origin] = e.Severity
	}
	assert.Equal(t, map[string]domain.AuditSeverityLevel{
		app.TopicInterfaceCreated: domain.AuditSeverityLevelLow,
		app.TopicInterfaceUpdated: domain.AuditSeverityLevelHigh,
		app.TopicPeerProvisioned:  domain.AuditSeverityLevelLow,
	}, severities)
	for _, e := range wg0 {
		if e.Origin == app.TopicInterfaceUpdated {
			assert.Contains(t, e.Message, "wg exited with status 1")
		}
	}
}

func TestAuditRecorder_MessageBus(t *testing.T) {
	bus := evbus.New(10)
	repo := newTestRepo(t)
	_, err := NewAuditRecorder(auditConfig(true), bus, repo)
	require.NoError(t, err)

	bus.Publish(app.TopicInterfaceCreated, app.InterfaceEvent{Interface: "wg0", Action: "create"})
	bus.Publish(app.TopicPeerProvisioned, app.PeerEvent{Interface: "wg0", PeerKey: "peer=", Action: "provision"})

	require.Eventually(t, func() bool {
		entries, err := repo.GetInterfaceAuditEntries(context.Background(), "wg0")
		return err == nil && len(entries) == 2
	}, 2*time.Second, 10*time.Millisecond)
}
