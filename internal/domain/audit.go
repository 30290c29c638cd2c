package domain

import "time"

type AuditSeverityLevel string

const AuditSeverityLevelLow AuditSeverityLevel = "low"
const AuditSeverityLevelMedium AuditSeverityLevel = "medium"
const AuditSeverityLevelHigh AuditSeverityLevel = "high"

// AuditEntry records one state changing operation. It never describes interface state.
type AuditEntry struct {
	UniqueId  uint64    `gorm:"primaryKey;autoIncrement:true;column:id"`
	CreatedAt time.Time `gorm:"column:created_at;index:idx_au_created"`

	Severity AuditSeverityLevel `gorm:"column:severity;index:idx_au_severity"`

	Origin    string `gorm:"column:origin"` // the event that triggered the entry, e.g. interface:created
	Interface string `gorm:"column:interface;index:idx_au_interface"`

	Message string `gorm:"column:message"`
}
