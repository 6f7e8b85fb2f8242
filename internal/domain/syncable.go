package domain

import "time"

// Syncable provides the common identity and timestamp fields shared by all
// persisted entities.
type Syncable struct {
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
	ID        string     `json:"id"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (s *Syncable) Touch() {
	s.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (s *Syncable) InitTimestamps() {
	now := time.Now()
	s.CreatedAt = now
	s.UpdatedAt = now
}

// IsDeleted returns true if this entity has been soft-deleted.
func (s *Syncable) IsDeleted() bool {
	return s.DeletedAt != nil
}

// MarkDeleted marks this entity as soft-deleted by setting DeletedAt to now.
func (s *Syncable) MarkDeleted() {
	now := time.Now()
	s.DeletedAt = &now
	s.UpdatedAt = now
}
