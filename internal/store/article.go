package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/pandamarket/apiserver/types"
)

// ArticleRepository handles persistence for articles.
type ArticleRepository struct {
	db *sql.DB
}

func NewArticleRepository(db *sql.DB) *ArticleRepository {
	return &ArticleRepository{db: db}
}

func (r *ArticleRepository) List(ctx context.Context, offset, limit int) ([]types.Article, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM articles`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, user_id, title, content, image, created_at, updated_at
		FROM articles
		ORDER BY id DESC
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	articles := make([]types.Article, 0, limit)
	for rows.Next() {
		var article types.Article
		if err := rows.Scan(
			&article.ID,
			&article.UserID,
			&article.Title,
			&article.Content,
			&article.Image,
			&article.CreatedAt,
			&article.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		articles = append(articles, article)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return articles, total, nil
}

func (r *ArticleRepository) Get(ctx context.Context, id int64) (types.Article, error) {
	const query = `
		SELECT id, user_id, title, content, image, created_at, updated_at
		FROM articles
		WHERE id = $1`
	var article types.Article
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&article.ID,
		&article.UserID,
		&article.Title,
		&article.Content,
		&article.Image,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Article{}, ErrNotFound
		}
		return types.Article{}, err
	}
	return article, nil
}

func (r *ArticleRepository) Create(ctx context.Context, article types.Article) (types.Article, error) {
	now := time.Now()
	article.CreatedAt = now
	article.UpdatedAt = now

	const query = `
		INSERT INTO articles (user_id, title, content, image, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		article.UserID,
		article.Title,
		article.Content,
		article.Image,
		article.CreatedAt,
		article.UpdatedAt,
	).Scan(&article.ID); err != nil {
		return types.Article{}, err
	}
	return article, nil
}

func (r *ArticleRepository) Update(ctx context.Context, article types.Article) (types.Article, error) {
	article.UpdatedAt = time.Now()

	const query = `
		UPDATE articles
		SET title = $1,
			content = $2,
			image = $3,
			updated_at = $4
		WHERE id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		article.Title,
		article.Content,
		article.Image,
		article.UpdatedAt,
		article.ID,
	)
	if err != nil {
		return types.Article{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Article{}, err
	}
	if affected == 0 {
		return types.Article{}, ErrNotFound
	}
	return article, nil
}

// Delete removes the article and, in the same transaction, its reaction
// edges. Comments cascade through the foreign key.
func (r *ArticleRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM reactions WHERE kind = $1 AND resource_id = $2`,
		types.ReactionLike,
		id,
	); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
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

	return tx.Commit()
}
