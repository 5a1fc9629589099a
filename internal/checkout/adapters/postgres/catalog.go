package postgres

import (
	"context"
	"fmt"

	"github.com/dejobratic/storefront/internal/checkout/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Catalog struct {
	pool *pgxpool.Pool
}

func NewCatalog(pool *pgxpool.Pool) *Catalog {
	return &Catalog{pool: pool}
}

func (c *Catalog) ShippingMethods(ctx context.Context) ([]domain.ShippingMethod, error) {
	query := `
		SELECT id, name, description, fee_cents, estimated_days
		FROM shipping_methods
		WHERE active
		ORDER BY position, id
	`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query shipping methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.ShippingMethod
	for rows.Next() {
		var m domain.ShippingMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.Fee, &m.EstimatedDays); err != nil {
			return nil, fmt.Errorf("scan shipping method: %w", err)
		}
		methods = append(methods, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate shipping methods: %w", err)
	}

	return methods, nil
}

func (c *Catalog) PaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	query := `
		SELECT id, name, description, requires_card
		FROM payment_methods
		WHERE active
		ORDER BY position, id
	`

	rows, err := c.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query payment methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		var m domain.PaymentMethod
		if err := rows.Scan(&m.ID, &m.Name, &m.Description, &m.RequiresCard); err != nil {
			return nil, fmt.Errorf("scan payment method: %w", err)
		}
		methods = append(methods, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment methods: %w", err)
	}

	return methods, nil
}
