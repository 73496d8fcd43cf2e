package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type followRepo struct {
	db *pgxpool.Pool
}

func newFollowRepo(db *pgxpool.Pool) Follow {
	return &followRepo{
		db: db,
	}
}

// Create is idempotent: the exists-check and insert run in one transaction so
// two concurrent follows of the same pair cannot race into a duplicate, and
// the unique index on (follower_id, author_id) is the backstop.
func (r *followRepo) Create(ctx context.Context, followerID uuid.UUID, authorID uuid.UUID) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var exists bool
	if err := tx.QueryRow(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM follows f WHERE f.follower_id = $1 AND f.author_id = $2)",
		followerID,
		authorID,
	).Scan(&exists); err != nil {
		return err
	}

	if !exists {
		if _, err := tx.Exec(
			ctx,
			"INSERT INTO follows(follower_id, author_id) VALUES($1, $2) ON CONFLICT (follower_id, author_id) DO NOTHING",
			followerID,
			authorID,
		); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *followRepo) Delete(ctx context.Context, followerID uuid.UUID, authorID uuid.UUID) error {
	_, err := r.db.Exec(ctx, "DELETE FROM follows WHERE follower_id = $1 AND author_id = $2", followerID, authorID)
	return err
}

func (r *followRepo) Exists(ctx context.Context, followerID uuid.UUID, authorID uuid.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRow(
		ctx,
		"SELECT EXISTS(SELECT 1 FROM follows f WHERE f.follower_id = $1 AND f.author_id = $2)",
		followerID,
		authorID,
	).Scan(&exists)
	return exists, err
}

func (r *followRepo) FindFollowerIDs(ctx context.Context, authorID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, "SELECT f.follower_id FROM follows f WHERE f.author_id = $1", authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var followerIDs []uuid.UUID
	for rows.Next() {
		var followerID uuid.UUID
		if err := rows.Scan(&followerID); err != nil {
			return nil, err
		}

		followerIDs = append(followerIDs, followerID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return followerIDs, nil
}
