package service

import (
	"context"
	"mime/multipart"

	"github.com/BloggingApp/feed-service/internal/dto"
	"github.com/BloggingApp/feed-service/internal/model"
	"github.com/BloggingApp/feed-service/internal/repository"
	"github.com/BloggingApp/feed-service/pkg/pagination"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Every listing view renders pages of this fixed size.
const POSTS_PER_PAGE = 10

const MAX_LIMIT = 50

func maxLimit(limit *int) {
	if *limit > MAX_LIMIT || *limit <= 0 {
		*limit = MAX_LIMIT
	}
}

type Post interface {
	Create(ctx context.Context, authorID uuid.UUID, dto dto.CreatePostRequest) (*model.Post, error)
	Update(ctx context.Context, actorID uuid.UUID, dto dto.EditPostRequest) (*model.FeedPost, error)
	FindByID(ctx context.Context, id int64) (*model.FeedPost, error)
	UploadPostImage(ctx context.Context, file multipart.File, fileHeader *multipart.FileHeader) (string, error)
}

type Group interface {
	Create(ctx context.Context, dto dto.CreateGroupRequest) (*model.Group, error)
	FindBySlug(ctx context.Context, slug string) (*model.Group, error)
	FindAll(ctx context.Context, limit int, offset int) ([]*model.Group, error)
}

type Comment interface {
	Create(ctx context.Context, authorID uuid.UUID, postID int64, dto dto.CreateCommentRequest) (*model.Comment, error)
	FindPostComments(ctx context.Context, postID int64, limit int, offset int) ([]*model.FullComment, error)
}

type Follow interface {
	Follow(ctx context.Context, followerID uuid.UUID, targetUsername string) error
	Unfollow(ctx context.Context, followerID uuid.UUID, targetUsername string) error
	IsFollowing(ctx context.Context, followerID uuid.UUID, authorID uuid.UUID) (bool, error)
}

type Feed interface {
	Global(ctx context.Context, page int) (*pagination.Page[*model.FeedPost], error)
	Group(ctx context.Context, slug string, page int) (*dto.GroupFeed, error)
	Author(ctx context.Context, username string, viewerID *uuid.UUID, page int) (*dto.AuthorFeed, error)
	Following(ctx context.Context, userID uuid.UUID, page int) (*pagination.Page[*model.FeedPost], error)
}

type UserCache interface {
	CreateOrGet(ctx context.Context, id uuid.UUID, accessToken string) (*model.CachedUser, error)
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error)
}

type Service struct {
	Post
	Group
	Comment
	Follow
	Feed
	UserCache
}

func New(logger *zap.Logger, repo *repository.Repository) *Service {
	return &Service{
		Post: newPostService(logger, repo),
		Group: newGroupService(logger, repo),
		Comment: newCommentService(logger, repo),
		Follow: newFollowService(logger, repo),
		Feed: newFeedService(logger, repo),
		UserCache: newUserCacheService(logger, repo),
	}
}
