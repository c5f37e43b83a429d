// Package search provides full-text search over the book library
// using Bleve. The index lives next to the book database and is kept
// in step with it by the library service on every save and delete.
package search

import (
	"github.com/storytimeapp/storytime-server/internal/domain"
)

// BookDocument is the indexed projection of a book. Page text is
// deliberately excluded: story text is searched by title and author in
// the reader UI, and indexing every page would bloat the index for no
// user-visible gain.
type BookDocument struct {
	ID            string  `json:"id"`
	Title         string  `json:"title"`
	Author        string  `json:"author"`
	CreatorName   string  `json:"creator_name"`
	Language      string  `json:"language"`
	AgeGroup      float64 `json:"age_group"`
	Approved      bool    `json:"approved"`
	PublishStatus string  `json:"publish_status"`
	CreatedAt     float64 `json:"created_at"` // Unix seconds for sorting
}

// ToMap converts the document to a map with field names matching the
// index mapping.
func (d *BookDocument) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"id":             d.ID,
		"title":          d.Title,
		"author":         d.Author,
		"creator_name":   d.CreatorName,
		"language":       d.Language,
		"age_group":      d.AgeGroup,
		"approved":       d.Approved,
		"publish_status": d.PublishStatus,
		"created_at":     d.CreatedAt,
	}
}

// FromBook builds the search document for one book.
func FromBook(b *domain.Book) *BookDocument {
	return &BookDocument{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		CreatorName:   b.CreatorName,
		Language:      string(b.Language),
		AgeGroup:      float64(b.AgeGroup),
		Approved:      b.IsApproved,
		PublishStatus: string(b.PublishStatus),
		CreatedAt:     float64(b.CreatedAt.Unix()),
	}
}
