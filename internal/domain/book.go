// Package domain contains the core business entities and domain logic for the StoryTime library.
package domain

import (
	"time"
)

// PublishStatus is the visibility scope of a book.
type PublishStatus string

const (
	// PublishLocal means the book is visible only to its creator.
	PublishLocal PublishStatus = "local"
	// PublishUniversal means the book is a candidate for shared visibility
	// once approved.
	PublishUniversal PublishStatus = "universal"
)

// RatingAxis selects which of the two independent rating scores a
// rating operation mutates.
type RatingAxis string

const (
	// RatingPersonal is the reader's own score for a book.
	RatingPersonal RatingAxis = "personal"
	// RatingUniversal is the community score for a book.
	RatingUniversal RatingAxis = "universal"
)

// AgeGroups are the selectable reader ages for a book.
var AgeGroups = []int{2, 3, 4, 5, 6, 7}

// Page is a single illustrated page of a book. Order within Book.Pages
// is reading order.
type Page struct {
	ID       string `json:"id"`
	ImageURL string `json:"image_url"` // data URI or remote URL
	Text     string `json:"text"`      // story text, may be empty
}

// Book is the canonical unit of content. The same record is stored in
// the local store and, for non-guest identities, mirrored to the remote
// store under the same ID.
type Book struct {
	ID          string `json:"id"`
	Title       string `json:"title" validate:"required"`
	Author      string `json:"author"`
	CreatorName string `json:"creator_name"`
	// CreatorRole is the role of the identity that created the book,
	// recorded at save time. Admin-owned books never enter the shared
	// universal library on approval.
	CreatorRole     Role          `json:"creator_role,omitempty"`
	Language        LanguageCode  `json:"language" validate:"required"`
	AgeGroup        int           `json:"age_group"`
	IsApproved      bool          `json:"is_approved"`
	PublishStatus   PublishStatus `json:"publish_status"`
	UniversalRating float64       `json:"universal_rating"`
	PersonalRating  float64       `json:"personal_rating"`
	CreatedAt       time.Time     `json:"created_at"`
	PublishedAt     *time.Time    `json:"published_at,omitempty"`
	Pages           []Page        `json:"pages" validate:"required,min=1"`
	BackgroundColor string        `json:"background_color,omitempty"`
	CoverImage      string        `json:"cover_image,omitempty"`
	// CoverHash is a BlurHash placeholder computed from the cover image
	// at save time. Empty when the cover could not be decoded.
	CoverHash string `json:"cover_hash,omitempty"`
}

// AdminOwned reports whether the book was created by an admin.
func (b *Book) AdminOwned() bool {
	return b.CreatorRole == RoleAdmin
}

// DeriveCover sets CoverImage from the first page's image.
// Called at save time; a book with no pages is never persisted.
func (b *Book) DeriveCover() {
	if len(b.Pages) > 0 {
		b.CoverImage = b.Pages[0].ImageURL
	}
}

// PageTexts returns the ordered story text of every page.
// The translation capability consumes this positionally.
func (b *Book) PageTexts() []string {
	texts := make([]string, len(b.Pages))
	for i := range b.Pages {
		texts[i] = b.Pages[i].Text
	}
	return texts
}

// Clone returns a deep copy of the book. Translation sessions build
// display copies from clones so the canonical record is never touched.
func (b *Book) Clone() *Book {
	clone := *b
	clone.Pages = make([]Page, len(b.Pages))
	copy(clone.Pages, b.Pages)
	if b.PublishedAt != nil {
		t := *b.PublishedAt
		clone.PublishedAt = &t
	}
	return &clone
}

// MarkPublished stamps the book as a member of the universal collection.
func (b *Book) MarkPublished(at time.Time) {
	b.PublishStatus = PublishUniversal
	b.IsApproved = true
	b.PublishedAt = &at
}
