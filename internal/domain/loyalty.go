package domain

import "time"

// LoyaltyEntry is one row of the append-only loyalty ledger. Points are
// signed: positive for awards, negative for conversions. A client's balance
// is the sum of their entries and is never stored mutably.
type LoyaltyEntry struct {
	ID          int64     `json:"id"`
	ClientID    int64     `json:"client_id"`
	Points      int64     `json:"points"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}
