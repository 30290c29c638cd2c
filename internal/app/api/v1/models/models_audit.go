package models

import (
	"time"

	"github.com/h44z/wg-agent/internal/domain"
)

// AuditEntry is one recorded operation.
type AuditEntry struct {
	Id        uint64    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Severity  string    `json:"severity" example:"low"`
	Origin    string    `json:"origin" example:"interface:created"`
	Interface string    `json:"interface,omitempty" example:"wg0"`
	Message   string    `json:"message"`
}

func NewAuditEntries(src []domain.AuditEntry) []AuditEntry {
	entries := make([]AuditEntry, len(src))
	for i, e := range src {
		entries[i] = AuditEntry{
			Id:        e.UniqueId,
			CreatedAt: e.CreatedAt,
			Severity:  string(e.Severity),
			Origin:    e.Origin,
			Interface: e.Interface,
			Message:   e.Message,
		}
	}
	return entries
}
