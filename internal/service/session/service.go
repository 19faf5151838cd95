package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/okateru/plango/internal/editor"
	redisrepo "github.com/okateru/plango/internal/repository/redis"
	"github.com/okateru/plango/internal/service/plans"
)

type Config struct{}

// Service bridges transport to the editor engine: it opens sessions over
// stored plans, resolves live sessions, and routes saves through the plans
// service so cache invalidation and change notifications stay in one place.
type Service struct {
	manager *editor.Manager
	plans   *plans.Service
	limiter *redisrepo.SlidingWindowLimiter
	cfg     Config
}

func New(manager *editor.Manager, plansSvc *plans.Service, limiter *redisrepo.SlidingWindowLimiter, cfg Config) *Service {
	return &Service{
		manager: manager,
		plans:   plansSvc,
		limiter: limiter,
		cfg:     cfg,
	}
}

// Open starts an editing session. With a plan id the stored document is
// loaded; without one the session starts blank. rlKey rate-limits session
// opens per caller.
//
// Returns:
//   - error: session.ErrPlanNotFound if the referenced plan does not exist.
//   - error: session.ErrRateLimited when the caller opens sessions too fast.
func (s *Service) Open(ctx context.Context, planID, rlKey string) (*editor.Session, error) {
	const op = "service.session.Open"

	if s.limiter != nil && rlKey != "" {
		ok, _, retry, err := s.limiter.Allow(ctx, rlKey)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if !ok {
			return nil, fmt.Errorf("%s: %w, retry in %s", op, ErrRateLimited, retry)
		}
	}

	if planID == "" {
		return s.manager.Open(nil), nil
	}

	plan, err := s.plans.Get(ctx, planID)
	if err != nil {
		if errors.Is(err, plans.ErrPlanNotFound) {
			return nil, fmt.Errorf("%s: %w", op, ErrPlanNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return s.manager.Open(plan), nil
}

// Get resolves a live session by id.
func (s *Service) Get(id string) (*editor.Session, error) {
	const op = "service.session.Get"

	sess, err := s.manager.Get(id)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	}

	return sess, nil
}

// Save persists the session's current document through the plans service and
// clears the session's dirty flag. Returns the assigned plan id.
func (s *Service) Save(ctx context.Context, sessionID string) (string, error) {
	const op = "service.session.Save"

	sess, err := s.manager.Get(sessionID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, ErrSessionNotFound)
	}

	doc := sess.Document()

	id, err := s.plans.Save(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	sess.MarkSaved(id)
	return id, nil
}

// Close discards a session. Closing with unsaved changes requires
// confirmation (editor.ErrConfirmationRequired otherwise).
func (s *Service) Close(id string, confirmed bool) error {
	const op = "service.session.Close"

	if err := s.manager.Close(id, confirmed); err != nil {
		if errors.Is(err, editor.ErrSessionNotFound) {
			return fmt.Errorf("%s: %w", op, ErrSessionNotFound)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}
