package audit

import (
	"github.com/google/uuid"

	"github.com/eldorado-books/bookstore-backend/pkg/db/models"
	"github.com/eldorado-books/bookstore-backend/pkg/enums"
)

// EntryFilters narrows audit listings.
type EntryFilters struct {
	BookID *uuid.UUID
	Action *enums.AuditAction
}

// EntryList is one page of audit entries plus the cursor for the next page.
type EntryList struct {
	Entries    []models.AuditEntry `json:"entries"`
	NextCursor string              `json:"next_cursor,omitempty"`
}
