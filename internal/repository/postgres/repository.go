package postgres

import (
	"context"

	"github.com/BloggingApp/feed-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Post interface {
	Create(ctx context.Context, post model.Post) (*model.Post, error)
	Update(ctx context.Context, postID int64, updates map[string]interface{}) error
	FindByID(ctx context.Context, id int64) (*model.FeedPost, error)
	CountAll(ctx context.Context) (int64, error)
	FindAll(ctx context.Context, limit int, offset int) ([]*model.FeedPost, error)
	CountByGroupID(ctx context.Context, groupID int64) (int64, error)
	FindByGroupID(ctx context.Context, groupID int64, limit int, offset int) ([]*model.FeedPost, error)
	CountByAuthorID(ctx context.Context, authorID uuid.UUID) (int64, error)
	FindByAuthorID(ctx context.Context, authorID uuid.UUID, limit int, offset int) ([]*model.FeedPost, error)
	CountByFollowedAuthors(ctx context.Context, followerID uuid.UUID) (int64, error)
	FindByFollowedAuthors(ctx context.Context, followerID uuid.UUID, limit int, offset int) ([]*model.FeedPost, error)
}

type Group interface {
	Create(ctx context.Context, group model.Group) (*model.Group, error)
	FindByID(ctx context.Context, id int64) (*model.Group, error)
	FindBySlug(ctx context.Context, slug string) (*model.Group, error)
	FindAll(ctx context.Context, limit int, offset int) ([]*model.Group, error)
}

type Comment interface {
	Create(ctx context.Context, comment model.Comment) (*model.Comment, error)
	FindPostComments(ctx context.Context, postID int64, limit int, offset int) ([]*model.FullComment, error)
}

type Follow interface {
	Create(ctx context.Context, followerID uuid.UUID, authorID uuid.UUID) error
	Delete(ctx context.Context, followerID uuid.UUID, authorID uuid.UUID) error
	Exists(ctx context.Context, followerID uuid.UUID, authorID uuid.UUID) (bool, error)
	FindFollowerIDs(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error)
}

type UserCache interface {
	Create(ctx context.Context, cachedUser model.CachedUser) error
	Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error)
	FindByUsername(ctx context.Context, username string) (*model.CachedUser, error)
}

type PostgresRepository struct {
	Post
	Group
	Comment
	Follow
	UserCache
}

func New(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{
		Post: newPostRepo(db),
		Group: newGroupRepo(db),
		Comment: newCommentRepo(db),
		Follow: newFollowRepo(db),
		UserCache: newUserCacheRepo(db),
	}
}
