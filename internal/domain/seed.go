package domain

import "time"

// SeedBookID is the well-known ID of the starter book inserted on first
// run so a fresh install never shows an empty shelf.
const SeedBookID = "seed-1"

// SeedBooks returns the initial library content for an empty store.
func SeedBooks() []*Book {
	return []*Book{
		{
			ID:              SeedBookID,
			Title:           "The Brave Little Lion",
			Author:          "Alex J.",
			CreatorName:     "System",
			IsApproved:      true,
			CoverImage:      "https://picsum.photos/seed/lion/800/450",
			Language:        LangEnglish,
			AgeGroup:        3,
			BackgroundColor: "#fffbeb",
			CreatedAt:       time.Now().Add(-24 * time.Hour),
			UniversalRating: 4.8,
			PublishStatus:   PublishUniversal,
			Pages: []Page{
				{ID: "p1", ImageURL: "https://picsum.photos/seed/lion1/800/450", Text: "Once upon a time, there was a little lion named Leo."},
				{ID: "p2", ImageURL: "https://picsum.photos/seed/lion2/800/450", Text: "Leo was very small, but he had a very big roar!"},
			},
		},
	}
}
