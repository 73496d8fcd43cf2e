package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/BloggingApp/feed-service/internal/dto"
	"github.com/BloggingApp/feed-service/internal/model"
	"github.com/BloggingApp/feed-service/internal/repository"
	"github.com/BloggingApp/feed-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

type postService struct {
	logger *zap.Logger
	repo *repository.Repository
	httpClient *http.Client
}

func newPostService(logger *zap.Logger, repo *repository.Repository) Post {
	return &postService{
		logger: logger,
		repo: repo,
		httpClient: &http.Client{},
	}
}

func (s *postService) Create(ctx context.Context, authorID uuid.UUID, dto dto.CreatePostRequest) (*model.Post, error) {
	content := strings.TrimSpace(dto.Content)
	if content == "" {
		return nil, ErrPostContentEmpty
	}

	if dto.GroupID != nil {
		if _, err := s.repo.Postgres.Group.FindByID(ctx, *dto.GroupID); err != nil {
			if err == pgx.ErrNoRows {
				return nil, ErrGroupNotFound
			}

			s.logger.Sugar().Errorf("failed to find group(%d) from postgres: %s", *dto.GroupID, err.Error())
			return nil, ErrInternal
		}
	}

	post := model.Post{
		AuthorID: authorID,
		GroupID: dto.GroupID,
		Content: content,
		ImageURL: dto.ImageURL,
	}

	createdPost, err := s.repo.Postgres.Post.Create(ctx, post)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create user(%s) post: %s", authorID.String(), err.Error())
		return nil, ErrInternal
	}

	s.invalidateFeedCache(ctx, authorID, createdPost.GroupID)

	return createdPost, nil
}

func (s *postService) Update(ctx context.Context, actorID uuid.UUID, dto dto.EditPostRequest) (*model.FeedPost, error) {
	post, err := s.repo.Postgres.Post.FindByID(ctx, dto.ID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPostNotFound
		}

		s.logger.Sugar().Errorf("failed to find post(%d) from postgres: %s", dto.ID, err.Error())
		return nil, ErrInternal
	}

	if post.Post.AuthorID != actorID {
		return nil, ErrNotPostAuthor
	}

	updates := make(map[string]interface{})
	if dto.Content != nil {
		content := strings.TrimSpace(*dto.Content)
		if content == "" {
			return nil, ErrPostContentEmpty
		}
		updates["content"] = content
	}
	if dto.GroupID != nil {
		if _, err := s.repo.Postgres.Group.FindByID(ctx, *dto.GroupID); err != nil {
			if err == pgx.ErrNoRows {
				return nil, ErrGroupNotFound
			}

			s.logger.Sugar().Errorf("failed to find group(%d) from postgres: %s", *dto.GroupID, err.Error())
			return nil, ErrInternal
		}
		updates["group_id"] = *dto.GroupID
	}
	if dto.ImageURL != nil {
		updates["image_url"] = *dto.ImageURL
	}

	if len(updates) == 0 {
		return nil, ErrNothingToUpdate
	}

	if err := s.repo.Postgres.Post.Update(ctx, dto.ID, updates); err != nil {
		s.logger.Sugar().Errorf("failed to update post(%d): %s", dto.ID, err.Error())
		return nil, ErrInternal
	}

	if err := s.repo.Redis.Default.Del(ctx, redisrepo.PostKey(dto.ID)).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete post(%d) from redis: %s", dto.ID, err.Error())
	}
	s.invalidateFeedCache(ctx, actorID, post.Post.GroupID)
	if dto.GroupID != nil {
		s.invalidateFeedCache(ctx, actorID, dto.GroupID)
	}

	updatedPost, err := s.repo.Postgres.Post.FindByID(ctx, dto.ID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find post(%d) from postgres after update: %s", dto.ID, err.Error())
		return nil, ErrInternal
	}

	return updatedPost, nil
}

func (s *postService) FindByID(ctx context.Context, id int64) (*model.FeedPost, error) {
	cachedPost, err := redisrepo.Get[model.FeedPost](s.repo.Redis.Default, ctx, redisrepo.PostKey(id))
	if err == nil && cachedPost != nil {
		return cachedPost, nil
	}
	if err != nil && err != redis.Nil {
		s.logger.Sugar().Errorf("failed to get post(%d) from redis: %s", id, err.Error())
	}

	post, err := s.repo.Postgres.Post.FindByID(ctx, id)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, ErrPostNotFound
		}

		s.logger.Sugar().Errorf("failed to find post(%d) from postgres: %s", id, err.Error())
		return nil, ErrInternal
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.PostKey(id), post, time.Hour); err != nil {
		s.logger.Sugar().Errorf("failed to set post(%d) in redis: %s", id, err.Error())
	}

	return post, nil
}

func (s *postService) UploadPostImage(ctx context.Context, file multipart.File, fileHeader *multipart.FileHeader) (string, error) {
	contentType := fileHeader.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrFileMustBeImage
	}

	return s.uploadImageToCDN(ctx, "post-images", file, fileHeader)
}

// Feed pages are cached per listing scope; a created or edited post deletes
// the global, author and group scopes it touches, plus the following feeds of
// the author's followers, since those are the only viewers whose following
// pages include the author. The TTL is the backstop for anything this misses.
func (s *postService) invalidateFeedCache(ctx context.Context, authorID uuid.UUID, groupID *int64) {
	patterns := []string{
		redisrepo.GlobalFeedPattern(),
		redisrepo.AuthorFeedPattern(authorID.String()),
	}
	if groupID != nil {
		patterns = append(patterns, redisrepo.GroupFeedPattern(*groupID))
	}

	followerIDs, err := s.repo.Postgres.Follow.FindFollowerIDs(ctx, authorID)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find followers of author(%s): %s", authorID.String(), err.Error())
		patterns = append(patterns, redisrepo.AllFollowingFeedsPattern())
	} else {
		for _, followerID := range followerIDs {
			patterns = append(patterns, redisrepo.FollowingFeedPattern(followerID.String()))
		}
	}

	for _, pattern := range patterns {
		keys, err := s.repo.Redis.Default.Keys(ctx, pattern).Result()
		if err != nil {
			s.logger.Sugar().Errorf("failed to get redis keys by pattern(%s): %s", pattern, err.Error())
			continue
		}
		if len(keys) == 0 {
			continue
		}

		if err := s.repo.Redis.Default.Del(ctx, keys...).Err(); err != nil {
			s.logger.Sugar().Errorf("failed to delete redis keys by pattern(%s): %s", pattern, err.Error())
		}
	}
}

func (s *postService) uploadImageToCDN(ctx context.Context, path string, file multipart.File, fileHeader *multipart.FileHeader) (string, error) {
	endpoint := "/upload"
	url := viper.GetString("cdn.origin") + endpoint

	var requestBody bytes.Buffer
	writer := multipart.NewWriter(&requestBody)

	fileWriter, err := writer.CreateFormFile("file", fileHeader.Filename)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create file part for CDN request: %s", err.Error())
		return "", ErrInternal
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		s.logger.Sugar().Errorf("failed to seek to the start of the file: %s", err.Error())
		return "", ErrInternal
	}

	if _, err := io.Copy(fileWriter, file); err != nil {
		s.logger.Sugar().Errorf("failed to copy file content for CDN request: %s", err.Error())
		return "", ErrInternal
	}

	if err := writer.WriteField("path", path); err != nil {
		s.logger.Sugar().Errorf("failed to write path field for CDN request: %s", err.Error())
		return "", ErrInternal
	}

	if err := writer.Close(); err != nil {
		s.logger.Sugar().Errorf("failed to close writer for CDN request: %s", err.Error())
		return "", ErrInternal
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &requestBody)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create CDN request: %s", err.Error())
		return "", ErrInternal
	}

	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Add("type", "IMAGE")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Sugar().Errorf("failed to do CDN request: %s", err.Error())
		return "", ErrInternal
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.Sugar().Errorf("failed to read response body from CDN: %s", err.Error())
		return "", ErrInternal
	}

	if resp.StatusCode != http.StatusOK {
		var bodyJSON map[string]interface{}
		if err := json.Unmarshal(body, &bodyJSON); err != nil {
			s.logger.Sugar().Errorf("failed to decode error response from CDN: %s", err.Error())
		} else {
			s.logger.Sugar().Errorf("ERROR from CDN endpoint(%s), code(%d), details: %s", endpoint, resp.StatusCode, bodyJSON["details"])
		}
		return "", ErrFailedToUploadPostImageToCDN
	}

	return string(body), nil
}
