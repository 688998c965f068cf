package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/pandamarket/apiserver/types"
)

// ProductRepository handles persistence for products.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) List(ctx context.Context, offset, limit int) ([]types.Product, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	const countQuery = `SELECT COUNT(1) FROM products`
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery).Scan(&total); err != nil {
		return nil, 0, err
	}

	const listQuery = `
		SELECT id, user_id, name, description, price, tags, images, created_at, updated_at
		FROM products
		ORDER BY id DESC
		OFFSET $1 LIMIT $2`
	rows, err := r.db.QueryContext(ctx, listQuery, offset, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	products := make([]types.Product, 0, limit)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, 0, err
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (types.Product, error) {
	const query = `
		SELECT id, user_id, name, description, price, tags, images, created_at, updated_at
		FROM products
		WHERE id = $1`
	product, err := scanProduct(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Product{}, ErrNotFound
		}
		return types.Product{}, err
	}
	return product, nil
}

func (r *ProductRepository) Create(ctx context.Context, product types.Product) (types.Product, error) {
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	tagsJSON, imagesJSON, err := marshalProductJSON(product)
	if err != nil {
		return types.Product{}, err
	}

	const query = `
		INSERT INTO products (user_id, name, description, price, tags, images, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		product.UserID,
		product.Name,
		product.Description,
		product.Price,
		tagsJSON,
		imagesJSON,
		product.CreatedAt,
		product.UpdatedAt,
	).Scan(&product.ID); err != nil {
		return types.Product{}, err
	}
	return product, nil
}

func (r *ProductRepository) Update(ctx context.Context, product types.Product) (types.Product, error) {
	product.UpdatedAt = time.Now()

	tagsJSON, imagesJSON, err := marshalProductJSON(product)
	if err != nil {
		return types.Product{}, err
	}

	const query = `
		UPDATE products
		SET name = $1,
			description = $2,
			price = $3,
			tags = $4,
			images = $5,
			updated_at = $6
		WHERE id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		product.Name,
		product.Description,
		product.Price,
		tagsJSON,
		imagesJSON,
		product.UpdatedAt,
		product.ID,
	)
	if err != nil {
		return types.Product{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Product{}, err
	}
	if affected == 0 {
		return types.Product{}, ErrNotFound
	}
	return product, nil
}

// Delete removes the product and, in the same transaction, its reaction
// edges. Comments cascade through the foreign key.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(
		ctx,
		`DELETE FROM reactions WHERE kind = $1 AND resource_id = $2`,
		types.ReactionFavorite,
		id,
	); err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (types.Product, error) {
	var product types.Product
	var tagsJSON, imagesJSON []byte
	if err := row.Scan(
		&product.ID,
		&product.UserID,
		&product.Name,
		&product.Description,
		&product.Price,
		&tagsJSON,
		&imagesJSON,
		&product.CreatedAt,
		&product.UpdatedAt,
	); err != nil {
		return types.Product{}, err
	}

	_ = json.Unmarshal(tagsJSON, &product.Tags)
	_ = json.Unmarshal(imagesJSON, &product.Images)
	return product, nil
}

func marshalProductJSON(product types.Product) (tags []byte, images []byte, err error) {
	if product.Tags == nil {
		product.Tags = []string{}
	}
	if product.Images == nil {
		product.Images = []string{}
	}
	tags, err = json.Marshal(product.Tags)
	if err != nil {
		return nil, nil, err
	}
	images, err = json.Marshal(product.Images)
	if err != nil {
		return nil, nil, err
	}
	return tags, images, nil
}
