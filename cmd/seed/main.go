// Package main provides a tool to seed the database with demo reading data.
//
// It creates a handful of users with shelves in every reading state plus a
// follow graph between them, so feeds, profiles, and the directory have
// something to show during development.
//
// Usage:
//
//	DB_PATH=~/readnest/db go run ./cmd/seed
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/readnestapp/readnest-server/internal/auth"
	"github.com/readnestapp/readnest-server/internal/domain"
	"github.com/readnestapp/readnest-server/internal/id"
	"github.com/readnestapp/readnest-server/internal/service"
	"github.com/readnestapp/readnest-server/internal/store"
)

var password = flag.String("password", "reading-is-fun", "Password for all seeded users")

type seedUser struct {
	email       string
	displayName string
}

type seedBook struct {
	title  string
	author string
	status string
	rating int
	pages  int
	year   int
}

var demoUsers = []seedUser{
	{"alice@example.com", "Alice"},
	{"bob@example.com", "Bob"},
	{"carol@example.com", "Carol"},
	{"dave@example.com", "Dave"},
}

var demoBooks = []seedBook{
	{"The Dispossessed", "Ursula K. Le Guin", "read", 5, 387, 1974},
	{"Piranesi", "Susanna Clarke", "read", 4, 245, 2020},
	{"Dune", "Frank Herbert", "currently-reading", 0, 412, 1965},
	{"Germinal", "Émile Zola", "want-to-read", 0, 592, 1885},
	{"The Left Hand of Darkness", "Ursula K. Le Guin", "read", 5, 304, 1969},
	{"A Memory Called Empire", "Arkady Martine", "currently-reading", 0, 462, 2019},
	{"The Name of the Rose", "Umberto Eco", "want-to-read", 0, 512, 1980},
	{"Kindred", "Octavia E. Butler", "read", 3, 264, 1979},
}

// follows is follower -> followees, by index into demoUsers.
var follows = map[int][]int{
	0: {1, 2},
	1: {0},
	2: {0, 1, 3},
	3: {0},
}

func main() {
	flag.Parse()

	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/readnest/db")
	}

	fmt.Printf("Opening database at: %s\n", dbPath)

	s, err := store.New(dbPath, nil, store.NewNoopEmitter())
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer s.Close()

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	// Go through the services so books and follows produce real activities.
	activities := service.NewActivityService(s, logger)
	books := service.NewBookService(s, activities, nil, nil, logger)
	social := service.NewSocialService(s, activities, logger)

	users := ensureUsers(ctx, s)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	for i, user := range users {
		fmt.Printf("\nSeeding shelves for %s (%s)\n", user.DisplayName, user.ID)

		existing, err := s.ListUserBooks(ctx, user.ID)
		if err != nil {
			log.Printf("Failed to list books for %s: %v", user.ID, err)
			continue
		}
		if len(existing) > 0 {
			fmt.Printf("  Already has %d books, skipping\n", len(existing))
			continue
		}

		// Each user gets a different slice of the catalog.
		shuffled := make([]seedBook, len(demoBooks))
		copy(shuffled, demoBooks)
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})

		numBooks := min(4+rng.Intn(3), len(shuffled))
		for _, b := range shuffled[:numBooks] {
			_, err := books.CreateBook(ctx, user.ID, service.CreateBookRequest{
				Title:           b.title,
				Author:          b.author,
				Status:          b.status,
				Rating:          b.rating,
				TotalPages:      b.pages,
				PublicationYear: b.year,
			})
			if err != nil {
				log.Printf("  Failed to add %q: %v", b.title, err)
				continue
			}
			fmt.Printf("  Added %q (%s)\n", b.title, b.status)
		}

		for _, j := range follows[i] {
			if j >= len(users) {
				continue
			}
			if err := social.Follow(ctx, user.ID, users[j].ID); err != nil {
				log.Printf("  Follow %s failed: %v", users[j].DisplayName, err)
				continue
			}
			fmt.Printf("  Now following %s\n", users[j].DisplayName)
		}
	}

	fmt.Println("\nDone. Log in with any seeded email and the seed password.")
}

// ensureUsers creates the demo accounts that do not exist yet and returns
// all of them in demoUsers order.
func ensureUsers(ctx context.Context, s *store.Store) []*domain.User {
	// Same argon2id encoding the auth service verifies against at login.
	hash, err := auth.HashPassword(*password)
	if err != nil {
		log.Fatalf("Failed to hash password: %v", err)
	}

	var users []*domain.User
	for _, su := range demoUsers {
		if existing, err := s.GetUserByEmail(ctx, su.email); err == nil {
			fmt.Printf("User %s already exists\n", su.email)
			users = append(users, existing)
			continue
		}

		userID, err := id.Generate("user")
		if err != nil {
			log.Fatalf("Failed to generate user ID: %v", err)
		}

		user := &domain.User{
			Syncable:     domain.Syncable{ID: userID},
			Email:        su.email,
			PasswordHash: hash,
			DisplayName:  su.displayName,
			Role:         domain.RoleMember,
		}
		user.InitTimestamps()

		if err := s.CreateUser(ctx, user); err != nil {
			log.Fatalf("Failed to create user %s: %v", su.email, err)
		}

		fmt.Printf("Created user %s (%s)\n", su.displayName, su.email)
		users = append(users, user)
	}

	return users
}
