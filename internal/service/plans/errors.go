package plans

import (
	"errors"
)

var (
	ErrPlanNotFound = errors.New("floor plan not found")
	ErrEmptyTitle   = errors.New("floor plan title must not be empty")
)
