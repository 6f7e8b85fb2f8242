// Package search provides full-text search over users and books using Bleve.
// User lookups back the member directory, book lookups back shelf filtering.
package search

import (
	"github.com/readnestapp/readnest-server/internal/domain"
	"github.com/readnestapp/readnest-server/internal/normalize"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeUser DocType = "user"
	DocTypeBook DocType = "book"
)

// SearchDocument is the unified document structure for the Bleve index.
// Folded fields hold a lowercased, diacritic-stripped copy of the display
// text. They are indexed with the keyword analyzer so wildcard queries see
// the whole value as one term, which gives case-insensitive substring
// matching ("emile" finds "Émile Zola").
type SearchDocument struct {
	// Identity
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Primary display text. User: display name, Book: title.
	Name       string `json:"name"`
	NameFolded string `json:"name_folded"`

	// User-specific fields (empty for books)
	Email       string `json:"email,omitempty"`
	EmailFolded string `json:"email_folded,omitempty"`

	// Book-specific fields (empty for users)
	Author       string `json:"author,omitempty"`
	AuthorFolded string `json:"author_folded,omitempty"`
	OwnerID      string `json:"owner_id,omitempty"`
	Status       string `json:"status,omitempty"`

	// Unix millis, for sorting by recency.
	CreatedAt int64 `json:"created_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *SearchDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":          d.ID,
		"type":        string(d.Type),
		"name":        d.Name,
		"name_folded": d.NameFolded,
		"created_at":  d.CreatedAt,
	}

	if d.Email != "" {
		m["email"] = d.Email
	}
	if d.EmailFolded != "" {
		m["email_folded"] = d.EmailFolded
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.AuthorFolded != "" {
		m["author_folded"] = d.AuthorFolded
	}
	if d.OwnerID != "" {
		m["owner_id"] = d.OwnerID
	}
	if d.Status != "" {
		m["status"] = d.Status
	}

	return m
}

// UserToSearchDocument converts a domain User to a SearchDocument.
func UserToSearchDocument(u *domain.User) *SearchDocument {
	name := u.Name()
	return &SearchDocument{
		ID:          u.ID,
		Type:        DocTypeUser,
		Name:        name,
		NameFolded:  normalize.Fold(name),
		Email:       u.Email,
		EmailFolded: normalize.Fold(u.Email),
		CreatedAt:   u.CreatedAt.UnixMilli(),
	}
}

// BookToSearchDocument converts a domain Book to a SearchDocument.
func BookToSearchDocument(b *domain.Book) *SearchDocument {
	return &SearchDocument{
		ID:           b.ID,
		Type:         DocTypeBook,
		Name:         b.Title,
		NameFolded:   normalize.Fold(b.Title),
		Author:       b.Author,
		AuthorFolded: normalize.Fold(b.Author),
		OwnerID:      b.UserID,
		Status:       string(b.Status),
		CreatedAt:    b.CreatedAt.UnixMilli(),
	}
}
