package audit

import (
	"context"

	"github.com/h44z/wg-agent/internal/domain"
)

type DatabaseRepo interface {
	SaveAuditEntry(ctx context.Context, entry *domain.AuditEntry) error
}

type EventBus interface {
	// Subscribe subscribes to a topic. fn is called with the arguments of every published message.
	Subscribe(topic string, fn interface{}) error
}
