package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/eldorado-books/bookstore-backend/pkg/enums"
)

// AuditEntry records an immutable before/after snapshot of a book mutation.
// Entries are written in the same transaction as the mutation they describe.
type AuditEntry struct {
	ID            uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	BookID        uuid.UUID         `gorm:"column:book_id;type:uuid;not null;index"`
	Action        enums.AuditAction `gorm:"column:action;type:text;not null"`
	ChangedFields pq.StringArray    `gorm:"column:changed_fields;type:text"`
	Before        json.RawMessage   `gorm:"column:before;type:jsonb"`
	After         json.RawMessage   `gorm:"column:after;type:jsonb"`
	ActorID       uuid.UUID         `gorm:"column:actor_id;type:uuid;not null"`
	ActorName     string            `gorm:"column:actor_name;not null"`
	CreatedAt     time.Time         `gorm:"column:created_at;autoCreateTime"`
}
