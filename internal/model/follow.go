package model

import "github.com/google/uuid"

// Follow is a directed edge: FollowerID wants AuthorID's posts in their
// following feed. At most one row may exist per (follower, author) pair.
type Follow struct {
	ID         int64     `json:"id"`
	FollowerID uuid.UUID `json:"follower_id"`
	AuthorID   uuid.UUID `json:"author_id"`
}
