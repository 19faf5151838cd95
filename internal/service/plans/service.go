package plans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/okateru/plango/internal/domain"
	redisx "github.com/okateru/plango/internal/redis"
	"github.com/okateru/plango/internal/repository"
	postgresrepo "github.com/okateru/plango/internal/repository/postgres"
	redisrepo "github.com/okateru/plango/internal/repository/redis"
	"github.com/okateru/plango/internal/uow"
)

type Config struct {
	DocumentTTL time.Duration
	ListTTL     time.Duration
}

// Service implements the storage collaborator contract: list, fetch, save,
// duplicate and delete floor plans. Saves are last-write-wins; there is no
// optimistic concurrency control.
type Service struct {
	store  *postgresrepo.Store
	cache  *redisrepo.Cache
	pubsub *redisx.PlansPubSub
	uow    *uow.UoW
	cfg    Config
}

func New(store *postgresrepo.Store, cache *redisrepo.Cache, pubsub *redisx.PlansPubSub, cfg Config) *Service {
	if cfg.DocumentTTL <= 0 {
		cfg.DocumentTTL = 60 * time.Second
	}

	if cfg.ListTTL <= 0 {
		cfg.ListTTL = 15 * time.Second
	}

	return &Service{
		store:  store,
		cache:  cache,
		pubsub: pubsub,
		uow:    uow.NewUoW(store),
		cfg:    cfg,
	}
}

// List returns plan summaries, optionally filtered by linked-location id,
// through a short-lived cache.
func (s *Service) List(ctx context.Context, locationID string) ([]domain.PlanSummary, error) {
	const op = "service.plans.List"

	key := redisx.KeyPlanList(locationID)

	summaries, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.ListTTL,
		func(ctx context.Context) ([]domain.PlanSummary, error) {
			return s.store.Plans().ListSummaries(ctx, locationID)
		},
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return summaries, nil
}

// Get retrieves one full floor-plan document by id, utilizing the cache.
//
// Returns:
//   - error: plans.ErrPlanNotFound if the plan is not found.
func (s *Service) Get(ctx context.Context, id string) (*domain.FloorPlan, error) {
	const op = "service.plans.Get"

	key := redisx.KeyPlanDocument(id)

	plan, err := redisrepo.GetOrSetJSON(
		ctx,
		s.cache,
		key,
		s.cfg.DocumentTTL,
		func(ctx context.Context) (domain.FloorPlan, error) {
			p, err := s.store.Plans().Get(ctx, id)
			if err != nil {
				if errors.Is(err, repository.ErrNotFound) {
					return domain.FloorPlan{}, ErrPlanNotFound
				}

				return domain.FloorPlan{}, err
			}

			return *p, nil
		},
	)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPlanNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &plan, nil
}

// Save persists a document (creating it when it has no id) and returns the
// assigned id. The caches are invalidated and a plan-changed message is
// published after commit.
func (s *Service) Save(ctx context.Context, plan *domain.FloorPlan) (string, error) {
	const op = "service.plans.Save"

	if plan.Title == "" {
		return "", fmt.Errorf("%s: %w", op, ErrEmptyTitle)
	}

	var id string

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		id, err = s.store.Plans().With(tx).Save(ctx, plan)
		if err != nil {
			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidatePlan(ctx, id, plan.LinkedLocation)
			_ = s.pubsub.PublishPlanChanged(ctx, id)
		})

		return nil
	})
	if err != nil {
		return "", err
	}

	return id, nil
}

// Duplicate copies a stored plan under a new id.
//
// Returns:
//   - error: plans.ErrPlanNotFound if the source plan is not found.
func (s *Service) Duplicate(ctx context.Context, id string) (string, error) {
	const op = "service.plans.Duplicate"

	var newID string

	err := s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		var err error
		newID, err = s.store.Plans().With(tx).Duplicate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrPlanNotFound)
			}

			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidatePlan(ctx, newID, "")
			_ = s.pubsub.PublishPlanChanged(ctx, newID)
		})

		return nil
	})
	if err != nil {
		return "", err
	}

	return newID, nil
}

// Delete removes a stored plan.
//
// Returns:
//   - error: plans.ErrPlanNotFound if the plan is not found.
func (s *Service) Delete(ctx context.Context, id string) error {
	const op = "service.plans.Delete"

	return s.uow.Do(ctx, func(ctx context.Context, tx postgresrepo.DB, after func(uow.AfterCommit)) error {
		if err := s.store.Plans().With(tx).Delete(ctx, id); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("%s: %w", op, ErrPlanNotFound)
			}

			return fmt.Errorf("%s: %w", op, err)
		}

		after(func(ctx context.Context) {
			_ = s.cache.InvalidatePlan(ctx, id, "")
			_ = s.pubsub.PublishPlanChanged(ctx, id)
		})

		return nil
	})
}
