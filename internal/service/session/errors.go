package session

import (
	"errors"
)

var (
	ErrSessionNotFound = errors.New("editing session not found")
	ErrPlanNotFound    = errors.New("floor plan not found")
	ErrRateLimited     = errors.New("rate limited")
)
