// Command dbinspect prints a read-only summary of a StoryTime database.
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/storytimeapp/storytime-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/StoryTime/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	bookCount := 0
	approved := 0
	published := 0
	totalPages := 0
	byLanguage := make(map[domain.LanguageCode]int)

	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte("book:")
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek([]byte("book:")); it.ValidForPrefix([]byte("book:")); it.Next() {
			err := it.Item().Value(func(val []byte) error {
				var book domain.Book
				if err := json.Unmarshal(val, &book); err != nil {
					return err
				}

				bookCount++
				totalPages += len(book.Pages)
				byLanguage[book.Language]++
				if book.IsApproved {
					approved++
				}
				if book.PublishStatus == domain.PublishUniversal {
					published++
				}

				fmt.Printf("%-28s %-24s lang=%-3s pages=%-2d age=%d approved=%-5v\n",
					book.ID, truncate(book.Title, 24), book.Language, len(book.Pages), book.AgeGroup, book.IsApproved)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan books: %v", err)
	}

	userCount := 0
	err = db.View(func(txn *badger.Txn) error {
		iterOpts := badger.DefaultIteratorOptions
		iterOpts.Prefix = []byte("user:")
		iterOpts.PrefetchValues = false
		it := txn.NewIterator(iterOpts)
		defer it.Close()

		for it.Seek([]byte("user:")); it.ValidForPrefix([]byte("user:")); it.Next() {
			userCount++
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan users: %v", err)
	}

	fmt.Println()
	fmt.Printf("Books:     %d (%d approved, %d universal)\n", bookCount, approved, published)
	fmt.Printf("Pages:     %d\n", totalPages)
	fmt.Printf("Users:     %d\n", userCount)
	fmt.Println("Languages:")
	for _, code := range domain.Languages {
		if n := byLanguage[code]; n > 0 {
			fmt.Printf("  %-3s %d\n", code, n)
		}
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-1] + "…"
}
