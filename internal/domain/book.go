package domain

import "time"

// ReadingStatus represents where a book sits in the owner's reading lifecycle.
type ReadingStatus string

const (
	// StatusWantToRead marks a book the user plans to read. Default for new books.
	StatusWantToRead ReadingStatus = "want-to-read"
	// StatusCurrentlyReading marks a book the user is actively reading.
	StatusCurrentlyReading ReadingStatus = "currently-reading"
	// StatusRead marks a finished book.
	StatusRead ReadingStatus = "read"
)

// Valid reports whether s is one of the known reading statuses.
func (s ReadingStatus) Valid() bool {
	switch s {
	case StatusWantToRead, StatusCurrentlyReading, StatusRead:
		return true
	}
	return false
}

// Book represents a single entry in a user's catalog.
//
// Rating is 0-5 where 0 means unrated. All transitions between the three
// reading statuses are allowed, including moving a finished book back to
// currently-reading for a re-read.
type Book struct {
	Syncable
	UserID          string        `json:"user_id"`
	Title           string        `json:"title"`
	Author          string        `json:"author"`
	Status          ReadingStatus `json:"status"`
	Rating          int           `json:"rating,omitempty"`
	Notes           string        `json:"notes,omitempty"`
	TotalPages      int           `json:"total_pages,omitempty"`
	CoverImageURL   string        `json:"cover_image_url,omitempty"`
	PublicationYear int           `json:"publication_year,omitempty"`
	FinishedAt      *time.Time    `json:"finished_at,omitempty"`
}

// IsFinished returns true if the book has been read to completion.
func (b *Book) IsFinished() bool {
	return b.Status == StatusRead
}
