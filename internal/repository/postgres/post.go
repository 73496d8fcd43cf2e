package postgres

import (
	"context"
	"strconv"
	"time"

	"github.com/BloggingApp/feed-service/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const feedPostColumns = `
	p.id, p.author_id, p.group_id, p.content, p.image_url, p.created_at,
	u.username, u.display_name, u.avatar_url,
	g.id, g.title, g.slug`

const feedPostFrom = `
	FROM posts p
	JOIN cached_users u ON p.author_id = u.id
	LEFT JOIN groups g ON p.group_id = g.id`

// Listing order is fixed: publish time descending, id descending to break ties.
const feedPostOrder = " ORDER BY p.created_at DESC, p.id DESC"

type postRepo struct {
	db *pgxpool.Pool
}

func newPostRepo(db *pgxpool.Pool) Post {
	return &postRepo{
		db: db,
	}
}

func (r *postRepo) Create(ctx context.Context, post model.Post) (*model.Post, error) {
	post.CreatedAt = time.Now()
	if err := r.db.QueryRow(
		ctx,
		"INSERT INTO posts(author_id, group_id, content, image_url, created_at) VALUES($1, $2, $3, $4, $5) RETURNING id",
		post.AuthorID,
		post.GroupID,
		post.Content,
		post.ImageURL,
		post.CreatedAt,
	).Scan(&post.ID); err != nil {
		return nil, err
	}

	return &post, nil
}

// Update never touches author_id or created_at: the publish timestamp is set
// once at creation and immutable after that.
func (r *postRepo) Update(ctx context.Context, postID int64, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return nil
	}

	allowedFields := []string{"content", "group_id", "image_url"}
	allowedFieldsSet := make(map[string]struct{}, len(allowedFields))
	for _, field := range allowedFields {
		allowedFieldsSet[field] = struct{}{}
	}

	for field := range updates {
		if _, ok := allowedFieldsSet[field]; !ok {
			return ErrFieldsNotAllowedToUpdate
		}
	}

	query := "UPDATE posts SET "
	args := []interface{}{}
	i := 1

	for column, value := range updates {
		query += (column + " = $" + strconv.Itoa(i) + ", ")
		args = append(args, value)
		i++
	}

	query = query[:len(query)-2] + " WHERE id = $" + strconv.Itoa(i)
	args = append(args, postID)

	_, err := r.db.Exec(ctx, query, args...)
	return err
}

func (r *postRepo) FindByID(ctx context.Context, id int64) (*model.FeedPost, error) {
	rows, err := r.db.Query(
		ctx,
		"SELECT"+feedPostColumns+feedPostFrom+" WHERE p.id = $1",
		id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts, err := scanFeedPosts(rows)
	if err != nil {
		return nil, err
	}

	if len(posts) == 0 {
		return nil, pgx.ErrNoRows
	}

	return posts[0], nil
}

func (r *postRepo) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM posts").Scan(&count)
	return count, err
}

func (r *postRepo) FindAll(ctx context.Context, limit int, offset int) ([]*model.FeedPost, error) {
	rows, err := r.db.Query(
		ctx,
		"SELECT"+feedPostColumns+feedPostFrom+feedPostOrder+" LIMIT $1 OFFSET $2",
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFeedPosts(rows)
}

func (r *postRepo) CountByGroupID(ctx context.Context, groupID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM posts WHERE group_id = $1", groupID).Scan(&count)
	return count, err
}

func (r *postRepo) FindByGroupID(ctx context.Context, groupID int64, limit int, offset int) ([]*model.FeedPost, error) {
	rows, err := r.db.Query(
		ctx,
		"SELECT"+feedPostColumns+feedPostFrom+" WHERE p.group_id = $1"+feedPostOrder+" LIMIT $2 OFFSET $3",
		groupID,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFeedPosts(rows)
}

func (r *postRepo) CountByAuthorID(ctx context.Context, authorID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM posts WHERE author_id = $1", authorID).Scan(&count)
	return count, err
}

func (r *postRepo) FindByAuthorID(ctx context.Context, authorID uuid.UUID, limit int, offset int) ([]*model.FeedPost, error) {
	rows, err := r.db.Query(
		ctx,
		"SELECT"+feedPostColumns+feedPostFrom+" WHERE p.author_id = $1"+feedPostOrder+" LIMIT $2 OFFSET $3",
		authorID,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFeedPosts(rows)
}

func (r *postRepo) CountByFollowedAuthors(ctx context.Context, followerID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.QueryRow(
		ctx,
		"SELECT COUNT(*) FROM posts p WHERE p.author_id IN (SELECT f.author_id FROM follows f WHERE f.follower_id = $1)",
		followerID,
	).Scan(&count)
	return count, err
}

func (r *postRepo) FindByFollowedAuthors(ctx context.Context, followerID uuid.UUID, limit int, offset int) ([]*model.FeedPost, error) {
	rows, err := r.db.Query(
		ctx,
		"SELECT"+feedPostColumns+feedPostFrom+
			" WHERE p.author_id IN (SELECT f.author_id FROM follows f WHERE f.follower_id = $1)"+
			feedPostOrder+" LIMIT $2 OFFSET $3",
		followerID,
		limit,
		offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanFeedPosts(rows)
}

func scanFeedPosts(rows pgx.Rows) ([]*model.FeedPost, error) {
	var posts []*model.FeedPost
	for rows.Next() {
		var (
			post       model.FeedPost
			groupID    *int64
			groupTitle *string
			groupSlug  *string
		)
		if err := rows.Scan(
			&post.Post.ID,
			&post.Post.AuthorID,
			&post.Post.GroupID,
			&post.Post.Content,
			&post.Post.ImageURL,
			&post.Post.CreatedAt,
			&post.Author.Username,
			&post.Author.DisplayName,
			&post.Author.AvatarURL,
			&groupID,
			&groupTitle,
			&groupSlug,
		); err != nil {
			return nil, err
		}

		if groupID != nil {
			post.Group = &model.GroupRef{
				ID: *groupID,
				Title: *groupTitle,
				Slug: *groupSlug,
			}
		}

		posts = append(posts, &post)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}
