package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pandamarket/apiserver/types"
)

// CommentRepository handles persistence for comments.
type CommentRepository struct {
	db *sql.DB
}

func NewCommentRepository(db *sql.DB) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) ListByArticle(ctx context.Context, articleID int64, offset, limit int) ([]types.Comment, int, error) {
	return r.list(ctx, "article_id", articleID, offset, limit)
}

func (r *CommentRepository) ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]types.Comment, int, error) {
	return r.list(ctx, "product_id", productID, offset, limit)
}

func (r *CommentRepository) list(ctx context.Context, parentColumn string, parentID int64, offset, limit int) ([]types.Comment, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	countQuery := `SELECT COUNT(1) FROM comments WHERE ` + parentColumn + ` = $1`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, parentID).Scan(&total); err != nil {
		return nil, 0, err
	}

	listQuery := `
		SELECT id, user_id, article_id, product_id, content, created_at, updated_at
		FROM comments
		WHERE ` + parentColumn + ` = $1
		ORDER BY id
		OFFSET $2 LIMIT $3`
	rows, err := r.db.QueryContext(ctx, listQuery, parentID, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	comments := make([]types.Comment, 0, limit)
	for rows.Next() {
		var comment types.Comment
		if err := rows.Scan(
			&comment.ID,
			&comment.UserID,
			&comment.ArticleID,
			&comment.ProductID,
			&comment.Content,
			&comment.CreatedAt,
			&comment.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		comments = append(comments, comment)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return comments, total, nil
}

func (r *CommentRepository) Get(ctx context.Context, id int64) (types.Comment, error) {
	const query = `
		SELECT id, user_id, article_id, product_id, content, created_at, updated_at
		FROM comments
		WHERE id = $1`
	var comment types.Comment
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&comment.ID,
		&comment.UserID,
		&comment.ArticleID,
		&comment.ProductID,
		&comment.Content,
		&comment.CreatedAt,
		&comment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Comment{}, ErrNotFound
		}
		return types.Comment{}, err
	}
	return comment, nil
}

func (r *CommentRepository) Create(ctx context.Context, comment types.Comment) (types.Comment, error) {
	now := time.Now()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	const query = `
		INSERT INTO comments (user_id, article_id, product_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		comment.UserID,
		comment.ArticleID,
		comment.ProductID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	).Scan(&comment.ID); err != nil {
		return types.Comment{}, err
	}
	return comment, nil
}

func (r *CommentRepository) Update(ctx context.Context, comment types.Comment) (types.Comment, error) {
	comment.UpdatedAt = time.Now()

	const query = `
		UPDATE comments
		SET content = $1,
			updated_at = $2
		WHERE id = $3`
	result, err := r.db.ExecContext(ctx, query, comment.Content, comment.UpdatedAt, comment.ID)
	if err != nil {
		return types.Comment{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Comment{}, err
	}
	if affected == 0 {
		return types.Comment{}, ErrNotFound
	}
	return comment, nil
}

func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM comments WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
