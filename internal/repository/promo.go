package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/bensaadi/parapharma/internal/domain"
)

const getActivePromoByCode = `
SELECT id, code, type, usage_type, discount_value, client_id, expires_at, is_active, created_at
FROM promo_codes
WHERE code = $1 AND is_active = TRUE
`

// GetActivePromoByCode looks up an active promo code. Expiry and personal
// scoping are checked by the domain entity, not here.
func (q *Queries) GetActivePromoByCode(ctx context.Context, code string) (*domain.PromoCode, error) {
	p, err := scanPromo(q.db.QueryRow(ctx, getActivePromoByCode, code))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get promo by code: %w", err)
	}
	return p, nil
}

// CreatePromoParams creates a promo code.
type CreatePromoParams struct {
	Code          string
	Type          domain.PromoType
	UsageType     domain.PromoUsageType
	DiscountValue int64
	ClientID      *int64
	ExpiresAt     *time.Time
}

const createPromo = `
INSERT INTO promo_codes (code, type, usage_type, discount_value, client_id, expires_at, is_active)
VALUES ($1, $2, $3, $4, $5, $6, TRUE)
RETURNING id, code, type, usage_type, discount_value, client_id, expires_at, is_active, created_at
`

func (q *Queries) CreatePromo(ctx context.Context, arg CreatePromoParams) (*domain.PromoCode, error) {
	p, err := scanPromo(q.db.QueryRow(ctx, createPromo,
		arg.Code, arg.Type, arg.UsageType, arg.DiscountValue, arg.ClientID, arg.ExpiresAt))
	if err != nil {
		return nil, fmt.Errorf("create promo: %w", err)
	}
	return p, nil
}

const setPromoActive = `
UPDATE promo_codes SET is_active = $2 WHERE id = $1
`

func (q *Queries) SetPromoActive(ctx context.Context, id int64, active bool) error {
	if _, err := q.db.Exec(ctx, setPromoActive, id, active); err != nil {
		return fmt.Errorf("set promo active: %w", err)
	}
	return nil
}

const listPromos = `
SELECT id, code, type, usage_type, discount_value, client_id, expires_at, is_active, created_at
FROM promo_codes
ORDER BY created_at DESC
`

func (q *Queries) ListPromos(ctx context.Context) ([]domain.PromoCode, error) {
	rows, err := q.db.Query(ctx, listPromos)
	if err != nil {
		return nil, fmt.Errorf("list promos: %w", err)
	}
	defer rows.Close()

	var promos []domain.PromoCode
	for rows.Next() {
		p, err := scanPromo(rows)
		if err != nil {
			return nil, fmt.Errorf("list promos: %w", err)
		}
		promos = append(promos, *p)
	}
	return promos, rows.Err()
}

func scanPromo(row pgx.Row) (*domain.PromoCode, error) {
	var (
		p         domain.PromoCode
		promoType string
		usageType string
	)
	err := row.Scan(&p.ID, &p.Code, &promoType, &usageType, &p.DiscountValue,
		&p.ClientID, &p.ExpiresAt, &p.IsActive, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	p.Type = domain.PromoType(promoType)
	p.UsageType = domain.PromoUsageType(usageType)
	return &p, nil
}
