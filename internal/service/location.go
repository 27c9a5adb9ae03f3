package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/bensaadi/parapharma/internal/cache"
	"github.com/bensaadi/parapharma/internal/domain"
	"github.com/bensaadi/parapharma/internal/repository"
	"github.com/bensaadi/parapharma/internal/telemetry"
)

// tariffCacheTTL bounds how long a tariff may live in cache without a
// mutation. Mutations bust their keys synchronously; the TTL is a backstop.
const tariffCacheTTL = 12 * time.Hour

const activeWilayasKey = "wilayas:active"

func tariffKey(wilayaID int64, dt domain.DeliveryType) string {
	return fmt.Sprintf("tariff:%d:%s", wilayaID, dt)
}

// LocationService resolves delivery tariffs and manages their activation.
// Read paths are cached; every mutation busts the exact keys it touches so
// a price change can never outlive the cache on a checkout path.
type LocationService struct {
	store   repository.Store
	cache   cache.Cache
	metrics *telemetry.BusinessMetrics
	logger  *slog.Logger
}

// NewLocationService creates a LocationService. metrics may be nil.
func NewLocationService(store repository.Store, c cache.Cache, metrics *telemetry.BusinessMetrics, logger *slog.Logger) *LocationService {
	return &LocationService{
		store:   store,
		cache:   c,
		metrics: metrics,
		logger:  logger,
	}
}

// GetDeliveryPrice returns the active price for (wilaya, delivery type),
// or ErrNoTariff when none is configured. This cached path serves quotes;
// order creation re-reads the tariff inside its own transaction.
func (s *LocationService) GetDeliveryPrice(ctx context.Context, wilayaID int64, dt domain.DeliveryType) (int64, error) {
	if !dt.Valid() {
		return 0, ErrUnknownDeliveryType
	}

	key := tariffKey(wilayaID, dt)
	if cached, err := s.cache.Get(ctx, key); err == nil {
		if price, err := strconv.ParseInt(cached, 10, 64); err == nil {
			if s.metrics != nil {
				s.metrics.TariffCacheHits.Inc()
			}
			return price, nil
		}
	} else if !errors.Is(err, cache.ErrMiss) {
		// Degrade to the database on cache trouble.
		s.logger.Warn("tariff cache read failed", "key", key, "error", err)
	}

	if s.metrics != nil {
		s.metrics.TariffCacheMisses.Inc()
	}

	tariff, err := s.store.GetActiveTariff(ctx, wilayaID, dt)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return 0, ErrNoTariff
		}
		return 0, domain.Internal(err, "location.get_delivery_price", "failed to resolve tariff")
	}

	if err := s.cache.Set(ctx, key, strconv.FormatInt(tariff.Price, 10), tariffCacheTTL); err != nil {
		s.logger.Warn("tariff cache write failed", "key", key, "error", err)
	}
	return tariff.Price, nil
}

// ListActiveWilayas returns all wilayas currently open for delivery.
func (s *LocationService) ListActiveWilayas(ctx context.Context) ([]domain.Wilaya, error) {
	if cached, err := s.cache.Get(ctx, activeWilayasKey); err == nil {
		var wilayas []domain.Wilaya
		if err := json.Unmarshal([]byte(cached), &wilayas); err == nil {
			return wilayas, nil
		}
	}

	wilayas, err := s.store.ListActiveWilayas(ctx)
	if err != nil {
		return nil, domain.Internal(err, "location.list_active_wilayas", "failed to list wilayas")
	}

	if encoded, err := json.Marshal(wilayas); err == nil {
		if err := s.cache.Set(ctx, activeWilayasKey, string(encoded), tariffCacheTTL); err != nil {
			s.logger.Warn("wilaya cache write failed", "error", err)
		}
	}
	return wilayas, nil
}

// ListTariffs returns all tariffs of a wilaya, active or not (admin view).
func (s *LocationService) ListTariffs(ctx context.Context, wilayaID int64) ([]domain.DeliveryTariff, error) {
	tariffs, err := s.store.ListTariffs(ctx, wilayaID)
	if err != nil {
		return nil, domain.Internal(err, "location.list_tariffs", "failed to list tariffs")
	}
	return tariffs, nil
}

// SetTariff sets (and activates) the price for a (wilaya, delivery type)
// pair, reactivating the wilaya per the cascade invariant.
func (s *LocationService) SetTariff(ctx context.Context, wilayaID int64, dt domain.DeliveryType, price int64) (*domain.DeliveryTariff, error) {
	const op = "location.set_tariff"

	if !dt.Valid() {
		return nil, ErrUnknownDeliveryType
	}
	if price < 0 {
		return nil, domain.Invalid(op, "price must not be negative")
	}

	var tariff *domain.DeliveryTariff
	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		if _, err := q.GetWilaya(ctx, wilayaID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrWilayaNotFound
			}
			return domain.Internal(err, op, "failed to load wilaya")
		}

		var err error
		tariff, err = q.UpsertTariff(ctx, repository.UpsertTariffParams{
			WilayaID:     wilayaID,
			DeliveryType: dt,
			Price:        price,
		})
		if err != nil {
			return domain.Internal(err, op, "failed to upsert tariff")
		}

		// An active tariff makes its wilaya active.
		if err := q.SetWilayaActive(ctx, wilayaID, true); err != nil {
			return domain.Internal(err, op, "failed to activate wilaya")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, wilayaID)
	return tariff, nil
}

// SetDeliveryTypeActive flips one tariff's active flag and cascades the
// wilaya's top-level activity: a wilaya is active only while it has at
// least one active tariff.
func (s *LocationService) SetDeliveryTypeActive(ctx context.Context, wilayaID int64, dt domain.DeliveryType, active bool) error {
	const op = "location.set_delivery_type_active"

	if !dt.Valid() {
		return ErrUnknownDeliveryType
	}

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		rows, err := q.SetTariffActive(ctx, wilayaID, dt, active)
		if err != nil {
			return domain.Internal(err, op, "failed to update tariff")
		}
		if rows == 0 {
			return ErrTariffNotFound
		}

		remaining, err := q.CountActiveTariffs(ctx, wilayaID)
		if err != nil {
			return domain.Internal(err, op, "failed to count active tariffs")
		}
		if err := q.SetWilayaActive(ctx, wilayaID, remaining > 0); err != nil {
			return domain.Internal(err, op, "failed to cascade wilaya activity")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, wilayaID)
	return nil
}

// SetWilayaActive toggles delivery for a whole wilaya: all of its tariffs
// and the wilaya flag move together.
func (s *LocationService) SetWilayaActive(ctx context.Context, wilayaID int64, active bool) error {
	const op = "location.set_wilaya_active"

	err := s.store.ExecTx(ctx, func(q repository.Querier) error {
		if _, err := q.GetWilaya(ctx, wilayaID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return ErrWilayaNotFound
			}
			return domain.Internal(err, op, "failed to load wilaya")
		}
		if err := q.SetAllTariffsActive(ctx, wilayaID, active); err != nil {
			return domain.Internal(err, op, "failed to update tariffs")
		}
		if err := q.SetWilayaActive(ctx, wilayaID, active); err != nil {
			return domain.Internal(err, op, "failed to update wilaya")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidate(ctx, wilayaID)
	return nil
}

// invalidate busts every cache key a tariff mutation can touch. Runs
// synchronously right after commit; a failure leaves only the TTL backstop,
// so it is logged loudly.
func (s *LocationService) invalidate(ctx context.Context, wilayaID int64) {
	keys := []string{
		tariffKey(wilayaID, domain.DeliveryHome),
		tariffKey(wilayaID, domain.DeliveryDesk),
		activeWilayasKey,
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Error("tariff cache invalidation failed", "wilaya_id", wilayaID, "error", err)
	}
}
