package audit

import (
	"context"
	"fmt"

	"github.com/h44z/wg-agent/internal/domain"
)

type ManagerDatabaseRepo interface {
	// GetAllAuditEntries retrieves all audit entries from the database.
	// The entries are ordered by timestamp, with the newest entries first.
	GetAllAuditEntries(ctx context.Context) ([]domain.AuditEntry, error)
	// GetInterfaceAuditEntries retrieves the audit entries of one interface, newest first.
	GetInterfaceAuditEntries(ctx context.Context, iface string) ([]domain.AuditEntry, error)
}

type Manager struct {
	db ManagerDatabaseRepo
}

func NewManager(db ManagerDatabaseRepo) *Manager {
	return &Manager{db: db}
}

// GetAll returns all audit entries, or only the entries of the given interface if iface is not empty.
func (m *Manager) GetAll(ctx context.Context, iface string) ([]domain.AuditEntry, error) {
	var entries []domain.AuditEntry
	var err error
	if iface == "" {
		entries, err = m.db.GetAllAuditEntries(ctx)
	} else {
		entries, err = m.db.GetInterfaceAuditEntries(ctx, iface)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}

	return entries, nil
}
