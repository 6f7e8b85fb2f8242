package domain

import "time"

// ActivityType identifies what kind of event an activity records.
type ActivityType string

const (
	// ActivityBookAdded is emitted when a book is added to a catalog.
	ActivityBookAdded ActivityType = "book_added"
	// ActivityBookStarted is emitted when a book moves to currently-reading.
	ActivityBookStarted ActivityType = "book_started"
	// ActivityBookFinished is emitted when a book moves to read.
	ActivityBookFinished ActivityType = "book_finished"
	// ActivityBookRated is emitted when a book's rating changes to 4 or higher.
	ActivityBookRated ActivityType = "book_rated"
	// ActivityFollow is emitted when a user follows another user.
	ActivityFollow ActivityType = "follow"
)

// MaxActivitiesPerUser caps each user's retained activity history.
// Older entries are evicted when new activity pushes a user past the cap.
const MaxActivitiesPerUser = 1000

// Activity is a single entry in a user's activity log. Context about the
// actor and subject is denormalized at write time so feeds render without
// extra lookups, at the cost of stale names after renames.
type Activity struct {
	ID              string       `json:"id"`
	UserID          string       `json:"user_id"`
	Type            ActivityType `json:"type"`
	Action          string       `json:"action"` // human-readable verb phrase
	CreatedAt       time.Time    `json:"created_at"`
	UserDisplayName string       `json:"user_display_name,omitempty"`
	BookID          string       `json:"book_id,omitempty"`
	BookTitle       string       `json:"book_title,omitempty"`
	BookAuthor      string       `json:"book_author,omitempty"`
	Rating          int          `json:"rating,omitempty"`
	TargetUserID    string       `json:"target_user_id,omitempty"`
	TargetUserName  string       `json:"target_user_name,omitempty"`
}
