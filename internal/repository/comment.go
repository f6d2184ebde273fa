package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/oyishomapeter-tech/blog-app/internal/model"
)

const pqForeignKeyViolation = "23503"

type commentRepository struct {
	db *sqlx.DB
}

func NewCommentRepository(db *sqlx.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment. A missing post surfaces as ErrPostNotFound
// through the foreign key.
func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
	query := `
		INSERT INTO post_comments (id, post_id, user_id, body)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	err := r.db.QueryRowxContext(ctx, query, c.ID, c.PostID, c.UserID, c.Body).Scan(&c.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqForeignKeyViolation {
			return model.ErrPostNotFound
		}
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// GetByPostID returns all comments on a post, newest first, with authors.
func (r *commentRepository) GetByPostID(ctx context.Context, postID uuid.UUID) ([]model.Comment, error) {
	query := `
		SELECT c.id, c.post_id, c.user_id, c.body, c.created_at,
		       u.first_name AS author_first_name, u.last_name AS author_last_name
		FROM post_comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC, c.id DESC
	`
	type row struct {
		ID              uuid.UUID `db:"id"`
		PostID          uuid.UUID `db:"post_id"`
		UserID          uuid.UUID `db:"user_id"`
		Body            string    `db:"body"`
		CreatedAt       time.Time `db:"created_at"`
		AuthorFirstName string    `db:"author_first_name"`
		AuthorLastName  string    `db:"author_last_name"`
	}

	var rows []row
	if err := r.db.SelectContext(ctx, &rows, query, postID); err != nil {
		return nil, fmt.Errorf("get comments: %w", err)
	}

	comments := make([]model.Comment, len(rows))
	for i, r := range rows {
		comments[i] = model.Comment{
			ID:        r.ID,
			PostID:    r.PostID,
			UserID:    r.UserID,
			Body:      r.Body,
			CreatedAt: r.CreatedAt,
			Author: &model.UserSummary{
				ID:        r.UserID,
				FirstName: r.AuthorFirstName,
				LastName:  r.AuthorLastName,
			},
		}
	}
	return comments, nil
}

// CountByPostID returns the number of comments on a post.
func (r *commentRepository) CountByPostID(ctx context.Context, postID uuid.UUID) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM post_comments WHERE post_id = $1`, postID)
	if err != nil {
		return 0, fmt.Errorf("count comments: %w", err)
	}
	return count, nil
}
