package service

import (
	"context"
	"strings"

	"github.com/BloggingApp/feed-service/internal/dto"
	"github.com/BloggingApp/feed-service/internal/model"
	"github.com/BloggingApp/feed-service/internal/repository"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type groupService struct {
	logger *zap.Logger
	repo *repository.Repository
}

func newGroupService(logger *zap.Logger, repo *repository.Repository) Group {
	return &groupService{
		logger: logger,
		repo: repo,
	}
}

func (s *groupService) Create(ctx context.Context, dto dto.CreateGroupRequest) (*model.Group, error) {
	group := model.Group{
		Title: strings.TrimSpace(dto.Title),
		Slug: strings.ToLower(strings.TrimSpace(dto.Slug)),
		Description: dto.Description,
	}

	createdGroup, err := s.repo.Postgres.Group.Create(ctx, group)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create group(%s): %s", group.Slug, err.Error())
		return nil, ErrInternal
	}

	return createdGroup, nil
}

func (s *groupService) FindBySlug(ctx context.Context, slug string) (*model.Group, error) {
	group, err := s.repo.Postgres.Group.FindBySlug(ctx, slug)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrGroupNotFound
		}

		s.logger.Sugar().Errorf("failed to find group(%s) from postgres: %s", slug, err.Error())
		return nil, ErrInternal
	}

	return group, nil
}

func (s *groupService) FindAll(ctx context.Context, limit int, offset int) ([]*model.Group, error) {
	maxLimit(&limit)

	groups, err := s.repo.Postgres.Group.FindAll(ctx, limit, offset)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find groups from postgres: %s", err.Error())
		return nil, ErrInternal
	}

	return groups, nil
}
