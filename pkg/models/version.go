package models

import (
	"time"

	"github.com/google/uuid"
)

// DocumentVersion is an immutable content snapshot of a planning
// document. Versions are append-only and ordered by version number; a
// restore writes a new version whose content equals an old one, it
// never rewrites history.
type DocumentVersion struct {
	ID            uuid.UUID  `json:"id"`
	DocumentID    uuid.UUID  `json:"document_id"`
	Version       int        `json:"version"`
	Title         string     `json:"title"`
	Content       string     `json:"content"`
	AuthorID      uuid.UUID  `json:"author_id"`
	ChangeSummary *string    `json:"change_summary,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
