package dto

import (
	"github.com/BloggingApp/feed-service/internal/model"
	"github.com/BloggingApp/feed-service/pkg/pagination"
)

type GroupFeed struct {
	Group model.Group                      `json:"group"`
	Page  *pagination.Page[*model.FeedPost] `json:"page"`
}

type AuthorFeed struct {
	Author     model.UserAuthor                 `json:"author"`
	PostsCount int64                            `json:"posts_count"`
	Page       *pagination.Page[*model.FeedPost] `json:"page"`
	// IsFollowing is viewer-specific and never cached; nil for anonymous viewers.
	IsFollowing *bool `json:"is_following,omitempty"`
}
