// Package audit records all state changing operations in the database.
package audit

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/h44z/wg-agent/internal/app"
	"github.com/h44z/wg-agent/internal/config"
	"github.com/h44z/wg-agent/internal/domain"
)

// Recorder subscribes to the interface and peer topics and stores one audit entry per event.
type Recorder struct {
	cfg *config.Config
	bus EventBus

	db DatabaseRepo
}

func NewAuditRecorder(cfg *config.Config, bus EventBus, db DatabaseRepo) (*Recorder, error) {
	r := &Recorder{
		cfg: cfg,
		bus: bus,

		db: db,
	}

	err := r.connectToMessageBus()
	if err != nil {
		return nil, fmt.Errorf("failed to setup message bus: %w", err)
	}

	return r, nil
}

func (r *Recorder) connectToMessageBus() error {
	if !r.cfg.Core.AuditLog {
		return nil // noting to do
	}

	subscriptions := map[string]any{
		app.TopicInterfaceCreated: r.handleInterfaceEvent(app.TopicInterfaceCreated),
		app.TopicInterfaceRemoved: r.handleInterfaceEvent(app.TopicInterfaceRemoved),
		app.TopicInterfaceUpdated: r.handleInterfaceEvent(app.TopicInterfaceUpdated),
		app.TopicPeerProvisioned:  r.handlePeerEvent(app.TopicPeerProvisioned),
		app.TopicPeerRemoved:      r.handlePeerEvent(app.TopicPeerRemoved),
	}
	for topic, fn := range subscriptions {
		if err := r.bus.Subscribe(topic, fn); err != nil {
			return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
	}

	return nil
}

func (r *Recorder) handleInterfaceEvent(topic string) func(event app.InterfaceEvent) {
	return func(event app.InterfaceEvent) {
		severity := domain.AuditSeverityLevelLow
		message := fmt.Sprintf("interface %s: %s succeeded", event.Interface, event.Action)
		switch {
		case event.Error != "":
			severity = domain.AuditSeverityLevelHigh
			message = fmt.Sprintf("interface %s: %s failed: %s", event.Interface, event.Action, event.Error)
		case topic == app.TopicInterfaceRemoved:
			severity = domain.AuditSeverityLevelMedium
		}

		r.save(topic, event.Interface, severity, message)
	}
}

func (r *Recorder) handlePeerEvent(topic string) func(event app.PeerEvent) {
	return func(event app.PeerEvent) {
		severity := domain.AuditSeverityLevelLow
		if topic == app.TopicPeerRemoved {
			severity = domain.AuditSeverityLevelMedium
		}

		r.save(topic, event.Interface, severity,
			fmt.Sprintf("peer %s on interface %s: %s", event.PeerKey, event.Interface, event.Action))
	}
}

func (r *Recorder) save(origin, iface string, severity domain.AuditSeverityLevel, message string) {
	err := r.db.SaveAuditEntry(context.Background(), &domain.AuditEntry{
		CreatedAt: time.Now(),
		Severity:  severity,
		Origin:    origin,
		Interface: iface,
		Message:   message,
	})
	if err != nil {
		slog.Error("failed to create audit entry", "origin", origin, "interface", iface, "error", err)
	}
}
