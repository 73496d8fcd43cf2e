package model

import (
	"time"

	"github.com/google/uuid"
)

type Post struct {
	ID        int64     `json:"id"`
	AuthorID  uuid.UUID `json:"author_id"`
	GroupID   *int64    `json:"group_id"`
	Content   string    `json:"content"`
	ImageURL  *string   `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

type FeedPost struct {
	Post   Post       `json:"post"`
	Author UserAuthor `json:"author"`
	Group  *GroupRef  `json:"group"`
}
