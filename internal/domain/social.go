package domain

import "time"

// Follow is a directed edge in the social graph: the follower sees the
// followee's activities in their feed. Edges are unique per (follower,
// followee) pair and a user can never follow themselves.
type Follow struct {
	ID         string    `json:"id"`
	FollowerID string    `json:"follower_id"`
	FolloweeID string    `json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// NetworkStats summarizes a user's position in the social graph.
type NetworkStats struct {
	Followers  int `json:"followers"`
	Following  int `json:"following"`
	TotalBooks int `json:"total_books"`
	BooksRead  int `json:"books_read"`
}
