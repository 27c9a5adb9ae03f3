package repository

import (
	"context"
	"fmt"

	"github.com/bensaadi/parapharma/internal/domain"
)

// InsertLoyaltyEntryParams appends a signed entry to the loyalty ledger.
type InsertLoyaltyEntryParams struct {
	ClientID    int64
	Points      int64
	Description string
}

const insertLoyaltyEntry = `
INSERT INTO loyalty_points (client_id, points, description)
VALUES ($1, $2, $3)
RETURNING id, client_id, points, description, created_at
`

func (q *Queries) InsertLoyaltyEntry(ctx context.Context, arg InsertLoyaltyEntryParams) (*domain.LoyaltyEntry, error) {
	var e domain.LoyaltyEntry
	err := q.db.QueryRow(ctx, insertLoyaltyEntry, arg.ClientID, arg.Points, arg.Description).Scan(
		&e.ID, &e.ClientID, &e.Points, &e.Description, &e.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert loyalty entry: %w", err)
	}
	return &e, nil
}

const sumLoyaltyPoints = `
SELECT COALESCE(SUM(points), 0) FROM loyalty_points WHERE client_id = $1
`

// SumLoyaltyPoints derives the client's balance from the ledger. The ledger
// is the source of truth; the sum is never stored.
func (q *Queries) SumLoyaltyPoints(ctx context.Context, clientID int64) (int64, error) {
	var balance int64
	if err := q.db.QueryRow(ctx, sumLoyaltyPoints, clientID).Scan(&balance); err != nil {
		return 0, fmt.Errorf("sum loyalty points: %w", err)
	}
	return balance, nil
}

const listLoyaltyEntries = `
SELECT id, client_id, points, description, created_at
FROM loyalty_points
WHERE client_id = $1
ORDER BY created_at DESC, id DESC
`

func (q *Queries) ListLoyaltyEntries(ctx context.Context, clientID int64) ([]domain.LoyaltyEntry, error) {
	rows, err := q.db.Query(ctx, listLoyaltyEntries, clientID)
	if err != nil {
		return nil, fmt.Errorf("list loyalty entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LoyaltyEntry
	for rows.Next() {
		var e domain.LoyaltyEntry
		if err := rows.Scan(&e.ID, &e.ClientID, &e.Points, &e.Description, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("list loyalty entries: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
