package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/bensaadi/parapharma/internal/domain"
)

const getWilaya = `
SELECT id, code, name, is_active FROM wilayas WHERE id = $1
`

func (q *Queries) GetWilaya(ctx context.Context, id int64) (*domain.Wilaya, error) {
	var (
		w        domain.Wilaya
		nameJSON []byte
	)
	err := q.db.QueryRow(ctx, getWilaya, id).Scan(&w.ID, &w.Code, &nameJSON, &w.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get wilaya: %w", err)
	}
	if err := json.Unmarshal(nameJSON, &w.Name); err != nil {
		return nil, fmt.Errorf("decode wilaya name: %w", err)
	}
	return &w, nil
}

const getCommune = `
SELECT id, wilaya_id, name, is_active FROM communes WHERE id = $1
`

func (q *Queries) GetCommune(ctx context.Context, id int64) (*domain.Commune, error) {
	var (
		c        domain.Commune
		nameJSON []byte
	)
	err := q.db.QueryRow(ctx, getCommune, id).Scan(&c.ID, &c.WilayaID, &nameJSON, &c.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get commune: %w", err)
	}
	if err := json.Unmarshal(nameJSON, &c.Name); err != nil {
		return nil, fmt.Errorf("decode commune name: %w", err)
	}
	return &c, nil
}

const listActiveWilayas = `
SELECT id, code, name, is_active FROM wilayas WHERE is_active = TRUE ORDER BY code
`

func (q *Queries) ListActiveWilayas(ctx context.Context) ([]domain.Wilaya, error) {
	rows, err := q.db.Query(ctx, listActiveWilayas)
	if err != nil {
		return nil, fmt.Errorf("list active wilayas: %w", err)
	}
	defer rows.Close()

	var wilayas []domain.Wilaya
	for rows.Next() {
		var (
			w        domain.Wilaya
			nameJSON []byte
		)
		if err := rows.Scan(&w.ID, &w.Code, &nameJSON, &w.IsActive); err != nil {
			return nil, fmt.Errorf("list active wilayas: %w", err)
		}
		if err := json.Unmarshal(nameJSON, &w.Name); err != nil {
			return nil, fmt.Errorf("decode wilaya name: %w", err)
		}
		wilayas = append(wilayas, w)
	}
	return wilayas, rows.Err()
}

const getActiveTariff = `
SELECT id, wilaya_id, delivery_type, price, is_active
FROM delivery_tariffs
WHERE wilaya_id = $1 AND delivery_type = $2 AND is_active = TRUE
`

// GetActiveTariff returns the active tariff for (wilaya, delivery type).
// Called inside the order transaction so the price reflects commit time.
func (q *Queries) GetActiveTariff(ctx context.Context, wilayaID int64, dt domain.DeliveryType) (*domain.DeliveryTariff, error) {
	t, err := scanTariff(q.db.QueryRow(ctx, getActiveTariff, wilayaID, dt))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get active tariff: %w", err)
	}
	return t, nil
}

const listTariffs = `
SELECT id, wilaya_id, delivery_type, price, is_active
FROM delivery_tariffs
WHERE wilaya_id = $1
ORDER BY delivery_type
`

func (q *Queries) ListTariffs(ctx context.Context, wilayaID int64) ([]domain.DeliveryTariff, error) {
	rows, err := q.db.Query(ctx, listTariffs, wilayaID)
	if err != nil {
		return nil, fmt.Errorf("list tariffs: %w", err)
	}
	defer rows.Close()

	var tariffs []domain.DeliveryTariff
	for rows.Next() {
		t, err := scanTariff(rows)
		if err != nil {
			return nil, fmt.Errorf("list tariffs: %w", err)
		}
		tariffs = append(tariffs, *t)
	}
	return tariffs, rows.Err()
}

// UpsertTariffParams sets the price for a (wilaya, delivery type) pair.
type UpsertTariffParams struct {
	WilayaID     int64
	DeliveryType domain.DeliveryType
	Price        int64
}

const upsertTariff = `
INSERT INTO delivery_tariffs (wilaya_id, delivery_type, price, is_active)
VALUES ($1, $2, $3, TRUE)
ON CONFLICT (wilaya_id, delivery_type)
DO UPDATE SET price = EXCLUDED.price, is_active = TRUE
RETURNING id, wilaya_id, delivery_type, price, is_active
`

func (q *Queries) UpsertTariff(ctx context.Context, arg UpsertTariffParams) (*domain.DeliveryTariff, error) {
	t, err := scanTariff(q.db.QueryRow(ctx, upsertTariff, arg.WilayaID, arg.DeliveryType, arg.Price))
	if err != nil {
		return nil, fmt.Errorf("upsert tariff: %w", err)
	}
	return t, nil
}

const setTariffActive = `
UPDATE delivery_tariffs SET is_active = $3 WHERE wilaya_id = $1 AND delivery_type = $2
`

// SetTariffActive flips one tariff's active flag, returning rows affected.
func (q *Queries) SetTariffActive(ctx context.Context, wilayaID int64, dt domain.DeliveryType, active bool) (int64, error) {
	tag, err := q.db.Exec(ctx, setTariffActive, wilayaID, dt, active)
	if err != nil {
		return 0, fmt.Errorf("set tariff active: %w", err)
	}
	return tag.RowsAffected(), nil
}

const setAllTariffsActive = `
UPDATE delivery_tariffs SET is_active = $2 WHERE wilaya_id = $1
`

func (q *Queries) SetAllTariffsActive(ctx context.Context, wilayaID int64, active bool) error {
	if _, err := q.db.Exec(ctx, setAllTariffsActive, wilayaID, active); err != nil {
		return fmt.Errorf("set all tariffs active: %w", err)
	}
	return nil
}

const countActiveTariffs = `
SELECT COUNT(*) FROM delivery_tariffs WHERE wilaya_id = $1 AND is_active = TRUE
`

func (q *Queries) CountActiveTariffs(ctx context.Context, wilayaID int64) (int64, error) {
	var count int64
	if err := q.db.QueryRow(ctx, countActiveTariffs, wilayaID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count active tariffs: %w", err)
	}
	return count, nil
}

const setWilayaActive = `
UPDATE wilayas SET is_active = $2 WHERE id = $1
`

func (q *Queries) SetWilayaActive(ctx context.Context, wilayaID int64, active bool) error {
	if _, err := q.db.Exec(ctx, setWilayaActive, wilayaID, active); err != nil {
		return fmt.Errorf("set wilaya active: %w", err)
	}
	return nil
}

func scanTariff(row pgx.Row) (*domain.DeliveryTariff, error) {
	var (
		t  domain.DeliveryTariff
		dt string
	)
	if err := row.Scan(&t.ID, &t.WilayaID, &dt, &t.Price, &t.IsActive); err != nil {
		return nil, err
	}
	t.DeliveryType = domain.DeliveryType(dt)
	return &t, nil
}
