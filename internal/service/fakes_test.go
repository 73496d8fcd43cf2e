package service

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/BloggingApp/feed-service/internal/model"
	"github.com/BloggingApp/feed-service/internal/repository"
	"github.com/BloggingApp/feed-service/internal/repository/postgres"
	"github.com/BloggingApp/feed-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// fakeStore is an in-memory stand-in for the postgres repositories. It
// reproduces the storage contract the services rely on: newest-first ordering
// with id as tie-breaker, pgx.ErrNoRows on misses, and idempotent follows.
type fakeStore struct {
	mu sync.Mutex

	users    map[uuid.UUID]*model.CachedUser
	groups   map[int64]*model.Group
	posts    map[int64]*model.Post
	comments map[int64]*model.Comment
	follows  map[string]struct{}

	nextPostID    int64
	nextGroupID   int64
	nextCommentID int64

	// clock advances one second per insert so created_at ordering is stable.
	now time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users: make(map[uuid.UUID]*model.CachedUser),
		groups: make(map[int64]*model.Group),
		posts: make(map[int64]*model.Post),
		comments: make(map[int64]*model.Comment),
		follows: make(map[string]struct{}),
		now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (st *fakeStore) tick() time.Time {
	st.now = st.now.Add(time.Second)
	return st.now
}

func (st *fakeStore) addUser(username string) *model.CachedUser {
	user := &model.CachedUser{ID: uuid.New(), Username: username}
	st.users[user.ID] = user
	return user
}

func (st *fakeStore) addGroup(title string, slug string) *model.Group {
	st.nextGroupID++
	group := &model.Group{ID: st.nextGroupID, Title: title, Slug: slug}
	st.groups[group.ID] = group
	return group
}

func (st *fakeStore) addPost(authorID uuid.UUID, groupID *int64, content string) *model.Post {
	st.nextPostID++
	post := &model.Post{
		ID: st.nextPostID,
		AuthorID: authorID,
		GroupID: groupID,
		Content: content,
		CreatedAt: st.tick(),
	}
	st.posts[post.ID] = post
	return post
}

func followKey(followerID uuid.UUID, authorID uuid.UUID) string {
	return fmt.Sprintf("%s|%s", followerID.String(), authorID.String())
}

func (st *fakeStore) feedPost(post *model.Post) *model.FeedPost {
	fp := &model.FeedPost{Post: *post}
	if author, ok := st.users[post.AuthorID]; ok {
		fp.Author = model.UserAuthor{Username: author.Username}
	}
	if post.GroupID != nil {
		if group, ok := st.groups[*post.GroupID]; ok {
			fp.Group = &model.GroupRef{ID: group.ID, Title: group.Title, Slug: group.Slug}
		}
	}
	return fp
}

func (st *fakeStore) selectPosts(filter func(*model.Post) bool, limit int, offset int) []*model.FeedPost {
	var matched []*model.Post
	for _, post := range st.posts {
		if filter(post) {
			matched = append(matched, post)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	if offset >= len(matched) {
		return nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}

	var result []*model.FeedPost
	for _, post := range matched[offset:end] {
		result = append(result, st.feedPost(post))
	}
	return result
}

func (st *fakeStore) countPosts(filter func(*model.Post) bool) int64 {
	var count int64
	for _, post := range st.posts {
		if filter(post) {
			count++
		}
	}
	return count
}

func (st *fakeStore) followedBy(followerID uuid.UUID) map[uuid.UUID]struct{} {
	authors := make(map[uuid.UUID]struct{})
	for id := range st.users {
		if _, ok := st.follows[followKey(followerID, id)]; ok {
			authors[id] = struct{}{}
		}
	}
	return authors
}

type fakePostRepo struct {
	st *fakeStore
}

func (r *fakePostRepo) Create(ctx context.Context, post model.Post) (*model.Post, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	r.st.nextPostID++
	post.ID = r.st.nextPostID
	post.CreatedAt = r.st.tick()
	stored := post
	r.st.posts[post.ID] = &stored
	return &post, nil
}

func (r *fakePostRepo) Update(ctx context.Context, postID int64, updates map[string]interface{}) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	post, ok := r.st.posts[postID]
	if !ok {
		return pgx.ErrNoRows
	}
	for field, value := range updates {
		switch field {
		case "content":
			post.Content = value.(string)
		case "group_id":
			groupID := value.(int64)
			post.GroupID = &groupID
		case "image_url":
			imageURL := value.(string)
			post.ImageURL = &imageURL
		default:
			return postgres.ErrFieldsNotAllowedToUpdate
		}
	}
	return nil
}

func (r *fakePostRepo) FindByID(ctx context.Context, id int64) (*model.FeedPost, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	post, ok := r.st.posts[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return r.st.feedPost(post), nil
}

func (r *fakePostRepo) CountAll(ctx context.Context) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.st.countPosts(func(*model.Post) bool { return true }), nil
}

func (r *fakePostRepo) FindAll(ctx context.Context, limit int, offset int) ([]*model.FeedPost, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.st.selectPosts(func(*model.Post) bool { return true }, limit, offset), nil
}

func (r *fakePostRepo) CountByGroupID(ctx context.Context, groupID int64) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.st.countPosts(func(p *model.Post) bool { return p.GroupID != nil && *p.GroupID == groupID }), nil
}

func (r *fakePostRepo) FindByGroupID(ctx context.Context, groupID int64, limit int, offset int) ([]*model.FeedPost, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.st.selectPosts(func(p *model.Post) bool { return p.GroupID != nil && *p.GroupID == groupID }, limit, offset), nil
}

func (r *fakePostRepo) CountByAuthorID(ctx context.Context, authorID uuid.UUID) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.st.countPosts(func(p *model.Post) bool { return p.AuthorID == authorID }), nil
}

func (r *fakePostRepo) FindByAuthorID(ctx context.Context, authorID uuid.UUID, limit int, offset int) ([]*model.FeedPost, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()
	return r.st.selectPosts(func(p *model.Post) bool { return p.AuthorID == authorID }, limit, offset), nil
}

func (r *fakePostRepo) CountByFollowedAuthors(ctx context.Context, followerID uuid.UUID) (int64, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	authors := r.st.followedBy(followerID)
	return r.st.countPosts(func(p *model.Post) bool {
		_, ok := authors[p.AuthorID]
		return ok
	}), nil
}

func (r *fakePostRepo) FindByFollowedAuthors(ctx context.Context, followerID uuid.UUID, limit int, offset int) ([]*model.FeedPost, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	authors := r.st.followedBy(followerID)
	return r.st.selectPosts(func(p *model.Post) bool {
		_, ok := authors[p.AuthorID]
		return ok
	}, limit, offset), nil
}

type fakeGroupRepo struct {
	st *fakeStore
}

func (r *fakeGroupRepo) Create(ctx context.Context, group model.Group) (*model.Group, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	r.st.nextGroupID++
	group.ID = r.st.nextGroupID
	stored := group
	r.st.groups[group.ID] = &stored
	return &group, nil
}

func (r *fakeGroupRepo) FindByID(ctx context.Context, id int64) (*model.Group, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	group, ok := r.st.groups[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return group, nil
}

func (r *fakeGroupRepo) FindBySlug(ctx context.Context, slug string) (*model.Group, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for _, group := range r.st.groups {
		if group.Slug == slug {
			return group, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *fakeGroupRepo) FindAll(ctx context.Context, limit int, offset int) ([]*model.Group, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	var groups []*model.Group
	for _, group := range r.st.groups {
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Title < groups[j].Title })
	return groups, nil
}

type fakeCommentRepo struct {
	st *fakeStore
}

func (r *fakeCommentRepo) Create(ctx context.Context, comment model.Comment) (*model.Comment, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	r.st.nextCommentID++
	comment.ID = r.st.nextCommentID
	comment.CreatedAt = r.st.tick()
	stored := comment
	r.st.comments[comment.ID] = &stored
	return &comment, nil
}

func (r *fakeCommentRepo) FindPostComments(ctx context.Context, postID int64, limit int, offset int) ([]*model.FullComment, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	var matched []*model.Comment
	for _, comment := range r.st.comments {
		if comment.PostID == postID {
			matched = append(matched, comment)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID > matched[j].ID })

	var comments []*model.FullComment
	for _, comment := range matched {
		full := &model.FullComment{Comment: *comment}
		if author, ok := r.st.users[comment.AuthorID]; ok {
			full.Author = model.UserAuthor{Username: author.Username}
		}
		comments = append(comments, full)
	}
	return comments, nil
}

type fakeFollowRepo struct {
	st *fakeStore
}

func (r *fakeFollowRepo) Create(ctx context.Context, followerID uuid.UUID, authorID uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	r.st.follows[followKey(followerID, authorID)] = struct{}{}
	return nil
}

func (r *fakeFollowRepo) Delete(ctx context.Context, followerID uuid.UUID, authorID uuid.UUID) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	delete(r.st.follows, followKey(followerID, authorID))
	return nil
}

func (r *fakeFollowRepo) Exists(ctx context.Context, followerID uuid.UUID, authorID uuid.UUID) (bool, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	_, ok := r.st.follows[followKey(followerID, authorID)]
	return ok, nil
}

func (r *fakeFollowRepo) FindFollowerIDs(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	var followerIDs []uuid.UUID
	for id := range r.st.users {
		if _, ok := r.st.follows[followKey(id, authorID)]; ok {
			followerIDs = append(followerIDs, id)
		}
	}
	return followerIDs, nil
}

type fakeUserCacheRepo struct {
	st *fakeStore
}

func (r *fakeUserCacheRepo) Create(ctx context.Context, cachedUser model.CachedUser) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	stored := cachedUser
	r.st.users[cachedUser.ID] = &stored
	return nil
}

func (r *fakeUserCacheRepo) Update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	user, ok := r.st.users[id]
	if !ok {
		return pgx.ErrNoRows
	}
	for field, value := range updates {
		switch field {
		case "username":
			user.Username = value.(string)
		case "display_name":
			user.DisplayName = value.(string)
		case "avatar_url":
			user.AvatarURL = value.(string)
		default:
			return postgres.ErrFieldsNotAllowedToUpdate
		}
	}
	return nil
}

func (r *fakeUserCacheRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.CachedUser, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	user, ok := r.st.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (r *fakeUserCacheRepo) FindByUsername(ctx context.Context, username string) (*model.CachedUser, error) {
	r.st.mu.Lock()
	defer r.st.mu.Unlock()

	for _, user := range r.st.users {
		if user.Username == username {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fakeRedisEntry struct {
	value    string
	deadline time.Time
}

type fakeRedis struct {
	mu     sync.Mutex
	values map[string]fakeRedisEntry
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{values: make(map[string]fakeRedisEntry)}
}

func (r *fakeRedis) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	valueJSON, err := json.Marshal(value)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = fakeRedisEntry{value: string(valueJSON), deadline: time.Now().Add(ttl)}
	return nil
}

func (r *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.values[key]
	if !ok || time.Now().After(entry.deadline) {
		delete(r.values, key)
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(entry.value, nil)
}

func (r *fakeRedis) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	r.mu.Lock()
	defer r.mu.Unlock()

	var deleted int64
	for _, key := range keys {
		if _, ok := r.values[key]; ok {
			delete(r.values, key)
			deleted++
		}
	}
	return redis.NewIntResult(deleted, nil)
}

func (r *fakeRedis) Keys(ctx context.Context, pattern string) *redis.StringSliceCmd {
	r.mu.Lock()
	defer r.mu.Unlock()

	var keys []string
	for key := range r.values {
		if ok, _ := filepath.Match(pattern, key); ok {
			keys = append(keys, key)
		}
	}
	return redis.NewStringSliceResult(keys, nil)
}

func newTestService() (*Service, *fakeStore, *fakeRedis) {
	st := newFakeStore()
	rdb := newFakeRedis()
	repo := &repository.Repository{
		Postgres: &postgres.PostgresRepository{
			Post: &fakePostRepo{st: st},
			Group: &fakeGroupRepo{st: st},
			Comment: &fakeCommentRepo{st: st},
			Follow: &fakeFollowRepo{st: st},
			UserCache: &fakeUserCacheRepo{st: st},
		},
		Redis: &redisrepo.RedisRepository{Default: rdb},
	}
	return New(zap.NewNop(), repo), st, rdb
}
