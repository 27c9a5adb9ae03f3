package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bensaadi/parapharma/internal/domain"
	"github.com/bensaadi/parapharma/internal/repository"
	"github.com/bensaadi/parapharma/internal/telemetry"
)

// DefaultLoyaltyRatePercent awards 1 point per 100 DZD of order total.
const DefaultLoyaltyRatePercent = 1

// LoyaltyService maintains the append-only points ledger. The balance is
// always derived by summing the ledger; nothing stores a running total.
type LoyaltyService struct {
	store       repository.Store
	metrics     *telemetry.BusinessMetrics
	logger      *slog.Logger
	ratePercent int64
}

// NewLoyaltyService creates a LoyaltyService. ratePercent <= 0 falls back
// to DefaultLoyaltyRatePercent. metrics may be nil.
func NewLoyaltyService(store repository.Store, metrics *telemetry.BusinessMetrics, logger *slog.Logger, ratePercent int64) *LoyaltyService {
	if ratePercent <= 0 {
		ratePercent = DefaultLoyaltyRatePercent
	}
	return &LoyaltyService{
		store:       store,
		metrics:     metrics,
		logger:      logger,
		ratePercent: ratePercent,
	}
}

// GetBalance sums the client's ledger.
func (s *LoyaltyService) GetBalance(ctx context.Context, clientID int64) (int64, error) {
	balance, err := s.store.SumLoyaltyPoints(ctx, clientID)
	if err != nil {
		return 0, domain.Internal(err, "loyalty.get_balance", "failed to sum loyalty points")
	}
	return balance, nil
}

// History returns the client's ledger entries, newest first.
func (s *LoyaltyService) History(ctx context.Context, clientID int64) ([]domain.LoyaltyEntry, error) {
	entries, err := s.store.ListLoyaltyEntries(ctx, clientID)
	if err != nil {
		return nil, domain.Internal(err, "loyalty.history", "failed to list loyalty entries")
	}
	return entries, nil
}

// ConvertToDiscountTx spends points inside the caller's transaction and
// returns the discount amount (1 point = 1 DZD). The client row is locked
// first so two concurrent spends cannot both read the same balance.
func (s *LoyaltyService) ConvertToDiscountTx(ctx context.Context, q repository.Querier, clientID int64, points int64) (int64, error) {
	const op = "loyalty.convert_to_discount"

	if points <= 0 {
		return 0, ErrInvalidPoints
	}

	if err := q.LockClient(ctx, clientID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrClientNotFound
		}
		return 0, domain.Internal(err, op, "failed to lock client")
	}

	balance, err := q.SumLoyaltyPoints(ctx, clientID)
	if err != nil {
		return 0, domain.Internal(err, op, "failed to sum loyalty points")
	}
	if points > balance {
		return 0, ErrInsufficientPoints
	}

	_, err = q.InsertLoyaltyEntry(ctx, repository.InsertLoyaltyEntryParams{
		ClientID:    clientID,
		Points:      -points,
		Description: "Points converted to order discount",
	})
	if err != nil {
		return 0, domain.Internal(err, op, "failed to record points spend")
	}

	if s.metrics != nil {
		s.metrics.LoyaltyPointsSpent.Add(float64(points))
	}
	return points, nil
}

// ConvertToDiscount is the standalone form of ConvertToDiscountTx.
func (s *LoyaltyService) ConvertToDiscount(ctx context.Context, clientID int64, points int64) (int64, error) {
	var discount int64
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		var err error
		discount, err = s.ConvertToDiscountTx(ctx, q, clientID, points)
		return err
	})
	if err != nil {
		return 0, err
	}
	return discount, nil
}

// AwardPointsTx credits points for a completed order inside the caller's
// transaction. Orders too small to earn a point are skipped silently.
func (s *LoyaltyService) AwardPointsTx(ctx context.Context, q repository.Querier, clientID int64, orderTotal int64, orderID int64) error {
	const op = "loyalty.award_points"

	points := orderTotal * s.ratePercent / 100
	if points <= 0 {
		return nil
	}

	_, err := q.InsertLoyaltyEntry(ctx, repository.InsertLoyaltyEntryParams{
		ClientID:    clientID,
		Points:      points,
		Description: fmt.Sprintf("Points earned on order #%d", orderID),
	})
	if err != nil {
		return domain.Internal(err, op, "failed to award points")
	}

	if s.metrics != nil {
		s.metrics.LoyaltyPointsEarned.Add(float64(points))
	}
	return nil
}

// AwardPoints is the standalone form of AwardPointsTx.
func (s *LoyaltyService) AwardPoints(ctx context.Context, clientID int64, orderTotal int64, orderID int64) error {
	return s.store.ExecTx(ctx, func(q repository.Querier) error {
		return s.AwardPointsTx(ctx, q, clientID, orderTotal, orderID)
	})
}
