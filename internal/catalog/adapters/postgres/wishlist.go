package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/storefront/internal/catalog/domain"
	"github.com/dejobratic/storefront/internal/catalog/ports"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const foreignKeyViolation = "23503"

type WishlistRepository struct {
	pool *pgxpool.Pool
}

func NewWishlistRepository(pool *pgxpool.Pool) *WishlistRepository {
	return &WishlistRepository{pool: pool}
}

func (r *WishlistRepository) Add(ctx context.Context, userID, productID string) (bool, error) {
	query := `
		INSERT INTO wishlist_items (user_id, product_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, product_id) DO NOTHING
	`

	tag, err := r.pool.Exec(ctx, query, userID, productID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return false, ports.ErrNotFound
		}
		return false, fmt.Errorf("insert wishlist item: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *WishlistRepository) Remove(ctx context.Context, userID, productID string) (bool, error) {
	query := `DELETE FROM wishlist_items WHERE user_id = $1 AND product_id = $2`

	tag, err := r.pool.Exec(ctx, query, userID, productID)
	if err != nil {
		return false, fmt.Errorf("delete wishlist item: %w", err)
	}

	return tag.RowsAffected() == 1, nil
}

func (r *WishlistRepository) Contains(ctx context.Context, userID, productID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM wishlist_items WHERE user_id = $1 AND product_id = $2)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, userID, productID).Scan(&exists); err != nil {
		return false, fmt.Errorf("select wishlist item: %w", err)
	}

	return exists, nil
}

func (r *WishlistRepository) List(ctx context.Context, userID string) ([]domain.WishlistItem, error) {
	query := `
		SELECT p.id, p.name, p.slug, p.price_cents, p.currency, p.image_url, w.created_at
		FROM wishlist_items w
		JOIN products p ON p.id = w.product_id
		WHERE w.user_id = $1
		ORDER BY w.created_at DESC, p.id
	`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query wishlist: %w", err)
	}
	defer rows.Close()

	var items []domain.WishlistItem
	for rows.Next() {
		var item domain.WishlistItem
		p := &item.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Slug, &p.PriceCents, &p.Currency, &p.ImageURL, &item.AddedAt); err != nil {
			return nil, fmt.Errorf("scan wishlist item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate wishlist: %w", err)
	}

	return items, nil
}
