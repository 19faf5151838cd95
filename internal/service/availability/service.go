package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okateru/plango/internal/domain"
	redisx "github.com/okateru/plango/internal/redis"
	postgresrepo "github.com/okateru/plango/internal/repository/postgres"
	redisrepo "github.com/okateru/plango/internal/repository/redis"
	"github.com/okateru/plango/internal/service/plans"
)

type Config struct {
	StatusTTL time.Duration
}

// Result is the status payload for one (plan, event) pair. FetchedAtUnix is
// monotonic per pair so consumers can discard out-of-order responses.
type Result struct {
	Elements      domain.StatusMap `json:"elements"`
	FetchedAtUnix int64            `json:"fetched_at_unix"`
}

// Service computes the live element status map for a floor plan and event
// from the booking rows. Elements with no bookings stay absent from the map;
// absence implies available with unknown count.
type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisx.StatusPubSub
	plans  *plans.Service
	cfg    Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, pubsub *redisx.StatusPubSub, plansSvc *plans.Service, cfg Config) *Service {
	if cfg.StatusTTL <= 0 {
		cfg.StatusTTL = 5 * time.Second
	}

	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		plans:  plansSvc,
		cfg:    cfg,
	}
}

// Status returns the element status map for (planID, eventID), through a
// short-lived cache.
//
// Returns:
//   - error: availability.ErrPlanNotFound if the plan does not exist.
func (s *Service) Status(ctx context.Context, planID, eventID string) (*Result, error) {
	const op = "service.availability.Status"

	key := redisx.KeyPlanStatus(planID, eventID)

	result, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.StatusTTL,
		func(ctx context.Context) (Result, error) {
			return s.compute(ctx, planID, eventID)
		},
	)
	if err != nil {
		if errors.Is(err, plans.ErrPlanNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPlanNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &result, nil
}

// Refresh recomputes the status map immediately, bypassing the cache, and
// publishes a status-changed message for live listeners.
func (s *Service) Refresh(ctx context.Context, planID, eventID string) (*Result, error) {
	const op = "service.availability.Refresh"

	if err := s.cache.InvalidateStatus(ctx, planID, eventID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.compute(ctx, planID, eventID)
	if err != nil {
		if errors.Is(err, plans.ErrPlanNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPlanNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	_ = redisrepo.SetJSON(ctx, s.cache, redisx.KeyPlanStatus(planID, eventID), result, s.cfg.StatusTTL)
	_ = s.pubsub.PublishStatusChanged(ctx, planID, eventID)

	return &result, nil
}

func (s *Service) compute(ctx context.Context, planID, eventID string) (Result, error) {
	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		return Result{}, err
	}

	booked, err := s.store.Bookings().BookedSeatsByElement(ctx, planID, eventID)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Elements:      Classify(plan, booked),
		FetchedAtUnix: time.Now().Unix(),
	}, nil
}

// Classify derives per-element status from booked seat counts. Only bookable
// elements with at least one booked seat get an entry: fully booked capacity
// is sold_out, anything in between is partial with the remaining count.
func Classify(plan *domain.FloorPlan, booked map[string]int) domain.StatusMap {
	out := make(domain.StatusMap)

	for i := range plan.Elements {
		el := &plan.Elements[i]
		if !el.Bookable {
			continue
		}

		taken, ok := booked[el.ID]
		if !ok || taken <= 0 {
			continue
		}

		remaining := el.Capacity - taken
		if remaining <= 0 {
			out[el.ID] = domain.ElementStatus{Status: domain.StatusSoldOut, Available: 0}
			continue
		}
		out[el.ID] = domain.ElementStatus{Status: domain.StatusPartial, Available: remaining}
	}

	return out
}
