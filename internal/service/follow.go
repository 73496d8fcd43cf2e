package service

import (
	"context"

	"github.com/BloggingApp/feed-service/internal/repository"
	"github.com/BloggingApp/feed-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type followService struct {
	logger *zap.Logger
	repo *repository.Repository
}

func newFollowService(logger *zap.Logger, repo *repository.Repository) Follow {
	return &followService{
		logger: logger,
		repo: repo,
	}
}

// Follow is idempotent: following an already-followed author changes nothing.
// Following yourself never creates a relation.
func (s *followService) Follow(ctx context.Context, followerID uuid.UUID, targetUsername string) error {
	target, err := s.repo.Postgres.UserCache.FindByUsername(ctx, targetUsername)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrUserNotFound
		}

		s.logger.Sugar().Errorf("failed to find user(%s) from postgres: %s", targetUsername, err.Error())
		return ErrInternal
	}

	if target.ID == followerID {
		return ErrCannotFollowSelf
	}

	if err := s.repo.Postgres.Follow.Create(ctx, followerID, target.ID); err != nil {
		s.logger.Sugar().Errorf("failed to create follow(%s -> %s): %s", followerID.String(), target.ID.String(), err.Error())
		return ErrInternal
	}

	s.invalidateFollowingFeed(ctx, followerID)

	return nil
}

// Unfollow of a relation that does not exist is a silent no-op.
func (s *followService) Unfollow(ctx context.Context, followerID uuid.UUID, targetUsername string) error {
	target, err := s.repo.Postgres.UserCache.FindByUsername(ctx, targetUsername)
	if err != nil {
		if err == pgx.ErrNoRows {
			return ErrUserNotFound
		}

		s.logger.Sugar().Errorf("failed to find user(%s) from postgres: %s", targetUsername, err.Error())
		return ErrInternal
	}

	if err := s.repo.Postgres.Follow.Delete(ctx, followerID, target.ID); err != nil {
		s.logger.Sugar().Errorf("failed to delete follow(%s -> %s): %s", followerID.String(), target.ID.String(), err.Error())
		return ErrInternal
	}

	s.invalidateFollowingFeed(ctx, followerID)

	return nil
}

func (s *followService) IsFollowing(ctx context.Context, followerID uuid.UUID, authorID uuid.UUID) (bool, error) {
	exists, err := s.repo.Postgres.Follow.Exists(ctx, followerID, authorID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to check follow(%s -> %s): %s", followerID.String(), authorID.String(), err.Error())
		return false, ErrInternal
	}

	return exists, nil
}

func (s *followService) invalidateFollowingFeed(ctx context.Context, followerID uuid.UUID) {
	pattern := redisrepo.FollowingFeedPattern(followerID.String())
	keys, err := s.repo.Redis.Default.Keys(ctx, pattern).Result()
	if err != nil {
		s.logger.Sugar().Errorf("failed to get redis keys by pattern(%s): %s", pattern, err.Error())
		return
	}
	if len(keys) == 0 {
		return
	}

	if err := s.repo.Redis.Default.Del(ctx, keys...).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete redis keys by pattern(%s): %s", pattern, err.Error())
	}
}
