// Package main provides a read-only inspection tool for the BadgerDB store.
//
// Usage:
//
//	DB_PATH=~/readnest/db go run ./cmd/dbinspect
package main

import (
	"encoding/json/v2"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/readnestapp/readnest-server/internal/domain"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/readnest/db")
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

	userCount := 0
	shelfCounts := map[domain.ReadingStatus]int{}
	bookCount := 0
	followCount := 0
	activityCounts := map[domain.ActivityType]int{}
	activityCount := 0

	err = db.View(func(txn *badger.Txn) error {
		countPrefix(txn, "user:", func(val []byte) {
			userCount++
		})

		countPrefix(txn, "book:", func(val []byte) {
			var book domain.Book
			if err := json.Unmarshal(val, &book); err != nil {
				return
			}
			bookCount++
			shelfCounts[book.Status]++
		})

		countPrefix(txn, "follow:", func(val []byte) {
			followCount++
		})

		// Primary records only, the index prefixes share "activity:".
		countExactPrefix(txn, "activity:", "activity:idx:", func(val []byte) {
			var activity domain.Activity
			if err := json.Unmarshal(val, &activity); err != nil {
				return
			}
			activityCount++
			activityCounts[activity.Type]++
		})

		return nil
	})
	if err != nil {
		log.Fatalf("Inspection failed: %v", err)
	}

	fmt.Printf("Users:      %d\n", userCount)
	fmt.Printf("Books:      %d\n", bookCount)
	for _, status := range []domain.ReadingStatus{
		domain.StatusWantToRead,
		domain.StatusCurrentlyReading,
		domain.StatusRead,
	} {
		fmt.Printf("  %-18s %d\n", string(status)+":", shelfCounts[status])
	}
	fmt.Printf("Follows:    %d\n", followCount)
	fmt.Printf("Activities: %d\n", activityCount)
	for activityType, count := range activityCounts {
		fmt.Printf("  %-18s %d\n", string(activityType)+":", count)
	}
}

// countPrefix walks all values under prefix.
func countPrefix(txn *badger.Txn, prefix string, fn func(val []byte)) {
	countExactPrefix(txn, prefix, "", fn)
}

// countExactPrefix walks values under prefix, skipping keys under exclude.
func countExactPrefix(txn *badger.Txn, prefix, exclude string, fn func(val []byte)) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = []byte(prefix)

	it := txn.NewIterator(opts)
	defer it.Close()

	for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
		key := string(it.Item().Key())
		if exclude != "" && len(key) >= len(exclude) && key[:len(exclude)] == exclude {
			continue
		}

		_ = it.Item().Value(func(val []byte) error {
			fn(val)
			return nil
		})
	}
}
