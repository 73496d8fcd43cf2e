package service

import (
	"context"
	"time"

	"github.com/BloggingApp/feed-service/internal/dto"
	"github.com/BloggingApp/feed-service/internal/model"
	"github.com/BloggingApp/feed-service/internal/repository"
	"github.com/BloggingApp/feed-service/internal/repository/redisrepo"
	"github.com/BloggingApp/feed-service/pkg/pagination"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const DEFAULT_FEED_TTL = time.Second * 20

type feedService struct {
	logger *zap.Logger
	repo *repository.Repository
}

func newFeedService(logger *zap.Logger, repo *repository.Repository) Feed {
	return &feedService{
		logger: logger,
		repo: repo,
	}
}

func feedTTL() time.Duration {
	if ttl := viper.GetDuration("cache.feed_ttl"); ttl > 0 {
		return ttl
	}
	return DEFAULT_FEED_TTL
}

func (s *feedService) Global(ctx context.Context, page int) (*pagination.Page[*model.FeedPost], error) {
	key := redisrepo.GlobalFeedKey(page)
	cached, err := redisrepo.Get[pagination.Page[*model.FeedPost]](s.repo.Redis.Default, ctx, key)
	if err == nil && cached != nil {
		return cached, nil
	}
	if err != nil && err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get global feed page(%d) from redis: %s", page, err.Error())
	}

	result, err := pagination.Paginate(
		ctx,
		POSTS_PER_PAGE,
		page,
		s.repo.Postgres.Post.CountAll,
		s.repo.Postgres.Post.FindAll,
	)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find global feed page(%d) from postgres: %s", page, err.Error())
		return nil, ErrInternal
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, key, result, feedTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set global feed page(%d) in redis: %s", page, err.Error())
	}

	return result, nil
}

func (s *feedService) Group(ctx context.Context, slug string, page int) (*dto.GroupFeed, error) {
	group, err := s.repo.Postgres.Group.FindBySlug(ctx, slug)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrGroupNotFound
		}

		s.logger.Sugar().Errorf("failed to find group(%s) from postgres: %s", slug, err.Error())
		return nil, ErrInternal
	}

	key := redisrepo.GroupFeedKey(group.ID, page)
	cached, err := redisrepo.Get[dto.GroupFeed](s.repo.Redis.Default, ctx, key)
	if err == nil && cached != nil {
		return cached, nil
	}
	if err != nil && err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get group(%s) feed page(%d) from redis: %s", slug, page, err.Error())
	}

	resultPage, err := pagination.Paginate(
		ctx,
		POSTS_PER_PAGE,
		page,
		func(ctx context.Context) (int64, error) {
			return s.repo.Postgres.Post.CountByGroupID(ctx, group.ID)
		},
		func(ctx context.Context, limit int, offset int) ([]*model.FeedPost, error) {
			return s.repo.Postgres.Post.FindByGroupID(ctx, group.ID, limit, offset)
		},
	)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find group(%s) feed page(%d) from postgres: %s", slug, page, err.Error())
		return nil, ErrInternal
	}

	result := &dto.GroupFeed{
		Group: *group,
		Page: resultPage,
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, key, result, feedTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set group(%s) feed page(%d) in redis: %s", slug, page, err.Error())
	}

	return result, nil
}

func (s *feedService) Author(ctx context.Context, username string, viewerID *uuid.UUID, page int) (*dto.AuthorFeed, error) {
	author, err := s.repo.Postgres.UserCache.FindByUsername(ctx, username)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrUserNotFound
		}

		s.logger.Sugar().Errorf("failed to find user(%s) from postgres: %s", username, err.Error())
		return nil, ErrInternal
	}

	result, err := s.authorFeed(ctx, author, page)
	if err != nil {
		return nil, err
	}

	// The viewer-specific following flag is computed fresh on every request,
	// on top of the shared cached page.
	if viewerID != nil {
		isFollowing, err := s.repo.Postgres.Follow.Exists(ctx, *viewerID, author.ID)
		if err != nil {
			s.logger.Sugar().Errorf("failed to check follow(%s -> %s): %s", viewerID.String(), author.ID.String(), err.Error())
			return nil, ErrInternal
		}
		result.IsFollowing = &isFollowing
	}

	return result, nil
}

func (s *feedService) authorFeed(ctx context.Context, author *model.CachedUser, page int) (*dto.AuthorFeed, error) {
	key := redisrepo.AuthorFeedKey(author.ID.String(), page)
	cached, err := redisrepo.Get[dto.AuthorFeed](s.repo.Redis.Default, ctx, key)
	if err == nil && cached != nil {
		return cached, nil
	}
	if err != nil && err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get author(%s) feed page(%d) from redis: %s", author.Username, page, err.Error())
	}

	resultPage, err := pagination.Paginate(
		ctx,
		POSTS_PER_PAGE,
		page,
		func(ctx context.Context) (int64, error) {
			return s.repo.Postgres.Post.CountByAuthorID(ctx, author.ID)
		},
		func(ctx context.Context, limit int, offset int) ([]*model.FeedPost, error) {
			return s.repo.Postgres.Post.FindByAuthorID(ctx, author.ID, limit, offset)
		},
	)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find author(%s) feed page(%d) from postgres: %s", author.Username, page, err.Error())
		return nil, ErrInternal
	}

	userAuthor := model.UserAuthor{Username: author.Username}
	if author.DisplayName != "" {
		displayName := author.DisplayName
		userAuthor.DisplayName = &displayName
	}
	if author.AvatarURL != "" {
		avatarURL := author.AvatarURL
		userAuthor.AvatarURL = &avatarURL
	}
	result := &dto.AuthorFeed{
		Author: userAuthor,
		PostsCount: resultPage.TotalItems,
		Page: resultPage,
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, key, result, feedTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set author(%s) feed page(%d) in redis: %s", author.Username, page, err.Error())
	}

	return result, nil
}

func (s *feedService) Following(ctx context.Context, userID uuid.UUID, page int) (*pagination.Page[*model.FeedPost], error) {
	key := redisrepo.FollowingFeedKey(userID.String(), page)
	cached, err := redisrepo.Get[pagination.Page[*model.FeedPost]](s.repo.Redis.Default, ctx, key)
	if err == nil && cached != nil {
		return cached, nil
	}
	if err != nil && err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get user(%s) following feed page(%d) from redis: %s", userID.String(), page, err.Error())
	}

	result, err := pagination.Paginate(
		ctx,
		POSTS_PER_PAGE,
		page,
		func(ctx context.Context) (int64, error) {
			return s.repo.Postgres.Post.CountByFollowedAuthors(ctx, userID)
		},
		func(ctx context.Context, limit int, offset int) ([]*model.FeedPost, error) {
			return s.repo.Postgres.Post.FindByFollowedAuthors(ctx, userID, limit, offset)
		},
	)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find user(%s) following feed page(%d) from postgres: %s", userID.String(), page, err.Error())
		return nil, ErrInternal
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, key, result, feedTTL()); err != nil {
		s.logger.Sugar().Errorf("failed to set user(%s) following feed page(%d) in redis: %s", userID.String(), page, err.Error())
	}

	return result, nil
}
