package service

import (
	"github.com/okateru/plango/internal/editor"
	redisx "github.com/okateru/plango/internal/redis"
	postgres "github.com/okateru/plango/internal/repository/postgres"
	redis "github.com/okateru/plango/internal/repository/redis"
	"github.com/okateru/plango/internal/service/availability"
	"github.com/okateru/plango/internal/service/plans"
	"github.com/okateru/plango/internal/service/session"
)

type Services struct {
	Plans        *plans.Service
	Availability *availability.Service
	Sessions     *session.Service
}

type Config struct {
	Plans        plans.Config
	Availability availability.Config
	Sessions     session.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	plansPub *redisx.PlansPubSub,
	statusPub *redisx.StatusPubSub,
	limiter *redis.SlidingWindowLimiter,
	manager *editor.Manager,
	cfg Config,
) *Services {
	plansSvc := plans.New(store, cache, plansPub, cfg.Plans)

	return &Services{
		Plans:        plansSvc,
		Availability: availability.New(store, cache, statusPub, plansSvc, cfg.Availability),
		Sessions:     session.New(manager, plansSvc, limiter, cfg.Sessions),
	}
}
